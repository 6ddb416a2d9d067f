package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobNameFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://acct.blob.core.windows.net/profileimages/profile_1_2.png", "profile_1_2.png"},
		{"query string", "https://acct.blob.core.windows.net/profileimages/a.jpg?sv=2024&sig=x", "a.jpg"},
		{"escaped", "https://acct.blob.core.windows.net/profileimages/my%20photo.png", "my photo.png"},
		{"azurite", "http://127.0.0.1:10000/devstoreaccount1/profileimages/p.webp", "p.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := blobNameFromURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobNameFromURL_NoName(t *testing.T) {
	_, err := blobNameFromURL("https://acct.blob.core.windows.net/")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestNewAzureStore_BadConnectionString(t *testing.T) {
	_, err := NewAzureStore("not-a-connection-string", "profileimages")
	assert.Error(t, err)
}

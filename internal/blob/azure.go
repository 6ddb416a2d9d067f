package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

var ErrInvalidURL = errors.New("blob url has no object name")

// AzureStore keeps profile images in a single Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
}

func NewAzureStore(connectionString, containerName string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	return &AzureStore{client: client, container: containerName}, nil
}

// EnsureContainer creates the container with public blob read access if it
// does not exist yet.
func (s *AzureStore) EnsureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, &azblob.CreateContainerOptions{
		Access: to.Ptr(container.PublicAccessTypeBlob),
	})
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("creating container %s: %w", s.container, err)
	}
	return nil
}

func (s *AzureStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	_, err := s.client.UploadStream(ctx, s.container, name, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}

	return s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(name).
		URL(), nil
}

// Delete removes the blob the URL points to. A blob that is already gone is
// not an error.
func (s *AzureStore) Delete(ctx context.Context, blobURL string) error {
	name, err := blobNameFromURL(blobURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

func blobNameFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing blob url: %w", err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", ErrInvalidURL
	}
	return url.PathUnescape(name)
}

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("blob storage is not configured")

// Disabled stands in when no storage account is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error {
	return ErrNotConfigured
}

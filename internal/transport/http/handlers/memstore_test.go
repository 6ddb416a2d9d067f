package handlers

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres repositories.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	friends  map[uuid.UUID]*domain.Friend
	messages []*domain.Message
	listings map[uuid.UUID]*domain.HousingListing
	apps     map[uuid.UUID]*domain.HousingApplication
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*domain.User),
		friends:  make(map[uuid.UUID]*domain.Friend),
		listings: make(map[uuid.UUID]*domain.HousingListing),
		apps:     make(map[uuid.UUID]*domain.HousingApplication),
	}
}

type memUsers struct{ *memStore }

func (s memUsers) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memUsers) GetByRefreshTokenHash(_ context.Context, hash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.RefreshTokenHash != nil && *u.RefreshTokenHash == hash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (s memUsers) SetRefreshToken(_ context.Context, id uuid.UUID, hash *string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.RefreshTokenHash, u.RefreshTokenExpiresAt = hash, expiresAt
	}
	return nil
}

func (s memUsers) RotateRefreshToken(_ context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RefreshTokenHash == nil || *u.RefreshTokenHash != oldHash {
		return repository.ErrStaleState
	}
	u.RefreshTokenHash, u.RefreshTokenExpiresAt = &newHash, &expiresAt
	return nil
}

func (s memUsers) SetProfileImage(_ context.Context, id uuid.UUID, url *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.ProfileImageURL = url
	}
	return nil
}

type memFriends struct{ *memStore }

func (s memFriends) Create(_ context.Context, f *domain.Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.friends[f.ID] = &cp
	return nil
}

func (s memFriends) GetByID(_ context.Context, id uuid.UUID) (*domain.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.friends[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (s memFriends) GetByPair(_ context.Context, a, b uuid.UUID) (*domain.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.friends {
		if f.Involves(a) && f.Involves(b) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memFriends) UpdateStatus(_ context.Context, id uuid.UUID, status domain.FriendStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.friends[id]
	if !ok || f.Status != domain.FriendPending {
		return repository.ErrStaleState
	}
	f.Status, f.UpdatedAt = status, &at
	return nil
}

func (s memFriends) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, id)
	return nil
}

func (s memFriends) ListAccepted(_ context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	return s.filter(func(f *domain.Friend) bool {
		return f.Status == domain.FriendAccepted && f.Involves(userID)
	}), nil
}

func (s memFriends) ListPending(_ context.Context, addresseeID uuid.UUID) ([]domain.Friend, error) {
	return s.filter(func(f *domain.Friend) bool {
		return f.Status == domain.FriendPending && f.AddresseeID == addresseeID
	}), nil
}

func (s memFriends) filter(keep func(*domain.Friend) bool) []domain.Friend {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Friend
	for _, f := range s.friends {
		if keep(f) {
			out = append(out, *f)
		}
	}
	return out
}

type memMessages struct{ *memStore }

func (s memMessages) Create(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.messages = append(s.messages, &cp)
	return nil
}

func (s memMessages) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memMessages) ListConversation(_ context.Context, a, b uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := len(s.messages)
	if before != nil {
		end = slices.IndexFunc(s.messages, func(m *domain.Message) bool { return m.ID == *before })
		if end < 0 {
			return nil, nil
		}
	}

	var out []domain.Message
	for i := end - 1; i >= 0 && len(out) < limit; i-- {
		m := s.messages[i]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (s memMessages) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.IsRead = true
		}
	}
	return nil
}

func (s memMessages) CountUnread(_ context.Context, receiverID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

type memListings struct{ *memStore }

func (s memListings) Create(_ context.Context, l *domain.HousingListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s memListings) GetByID(_ context.Context, id uuid.UUID) (*domain.HousingListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (s memListings) List(_ context.Context) ([]domain.HousingListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HousingListing
	for _, l := range s.listings {
		out = append(out, *l)
	}
	return out, nil
}

func (s memListings) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listings, id)
	for appID, a := range s.apps {
		if a.ListingID == id {
			delete(s.apps, appID)
		}
	}
	return nil
}

type memApps struct{ *memStore }

func (s memApps) Create(_ context.Context, a *domain.HousingApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.ListingID == a.ListingID && existing.ApplicantID == a.ApplicantID {
			return repository.ErrDuplicate
		}
	}
	cp := *a
	s.apps[a.ID] = &cp
	return nil
}

func (s memApps) GetByID(_ context.Context, id uuid.UUID) (*domain.HousingApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s memApps) ListByListing(_ context.Context, listingID uuid.UUID) ([]domain.HousingApplication, error) {
	return s.filter(func(a *domain.HousingApplication) bool { return a.ListingID == listingID }), nil
}

func (s memApps) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]domain.HousingApplication, error) {
	return s.filter(func(a *domain.HousingApplication) bool { return a.ApplicantID == applicantID }), nil
}

func (s memApps) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Status != domain.ApplicationPending {
		return repository.ErrStaleState
	}
	a.Status = status
	return nil
}

func (s memApps) filter(keep func(*domain.HousingApplication) bool) []domain.HousingApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HousingApplication
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

// memBlobs keeps uploaded objects by URL.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memBlobs) Upload(_ context.Context, name, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	url := "https://blobs.test/profileimages/" + name
	b.objects[url] = data
	return url, nil
}

func (b *memBlobs) Delete(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, url)
	return nil
}

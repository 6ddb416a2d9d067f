package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vedran77/habyx/internal/domain"
)

// MockUserRepository implements repository.UserRepository for testing.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, hash *string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, hash, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, oldHash, newHash, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) SetProfileImage(ctx context.Context, id uuid.UUID, url *string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

// MockFriendRepository implements repository.FriendRepository for testing.
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) Create(ctx context.Context, f *domain.Friend) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFriendRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friend, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Friend), args.Error(1)
}

func (m *MockFriendRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (*domain.Friend, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Friend), args.Error(1)
}

func (m *MockFriendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *MockFriendRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFriendRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Friend), args.Error(1)
}

func (m *MockFriendRepository) ListPending(ctx context.Context, addresseeID uuid.UUID) ([]domain.Friend, error) {
	args := m.Called(ctx, addresseeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Friend), args.Error(1)
}

// MockMessageRepository implements repository.MessageRepository for testing.
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListConversation(ctx context.Context, userA, userB uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	args := m.Called(ctx, receiverID)
	return args.Int(0), args.Error(1)
}

// MockHousingRepository implements repository.HousingRepository for testing.
type MockHousingRepository struct {
	mock.Mock
}

func (m *MockHousingRepository) Create(ctx context.Context, l *domain.HousingListing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockHousingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.HousingListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HousingListing), args.Error(1)
}

func (m *MockHousingRepository) List(ctx context.Context) ([]domain.HousingListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HousingListing), args.Error(1)
}

func (m *MockHousingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockApplicationRepository implements repository.ApplicationRepository for testing.
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.HousingApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.HousingApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HousingApplication), args.Error(1)
}

func (m *MockApplicationRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.HousingApplication, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HousingApplication), args.Error(1)
}

func (m *MockApplicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.HousingApplication, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HousingApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockBlobStore implements BlobStore for testing.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockPublisher implements Publisher for testing.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// recordingNotifier collects the events pushed to it.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(e string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) NotifyFriendRequest(*domain.Friend)  { n.record("friend_request") }
func (n *recordingNotifier) NotifyFriendResponse(*domain.Friend) { n.record("friend_response") }
func (n *recordingNotifier) NotifyNewMessage(*domain.Message)    { n.record("message") }
func (n *recordingNotifier) NotifyApplication(*domain.HousingApplication, uuid.UUID) {
	n.record("application")
}
func (n *recordingNotifier) NotifyApplicationDecided(*domain.HousingApplication) {
	n.record("application_decided")
}

// memoryCache is an in-process ListingCache.
type memoryCache struct {
	list        []domain.HousingListing
	hasList     bool
	version     int64
	items       map[uuid.UUID]*domain.HousingListing
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[uuid.UUID]*domain.HousingListing)}
}

func (c *memoryCache) GetListings(context.Context) ([]domain.HousingListing, int64, bool, error) {
	return c.list, c.version, c.hasList, nil
}

func (c *memoryCache) SetListings(_ context.Context, version int64, l []domain.HousingListing) error {
	if version != c.version {
		return nil
	}
	c.list, c.hasList = l, true
	return nil
}

func (c *memoryCache) GetListing(_ context.Context, id uuid.UUID) (*domain.HousingListing, bool, error) {
	l, ok := c.items[id]
	return l, ok, nil
}

func (c *memoryCache) SetListing(_ context.Context, l *domain.HousingListing) error {
	c.items[l.ID] = l
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	c.invalidated++
	c.version++
	c.list, c.hasList = nil, false
	for _, id := range ids {
		delete(c.items, id)
	}
	return nil
}

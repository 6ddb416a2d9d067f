package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/events"
	"github.com/vedran77/habyx/internal/repository"
)

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrNotListingOwner     = errors.New("only the listing owner can perform this action")
	ErrOwnListing          = errors.New("cannot apply to your own listing")
	ErrListingUnavailable  = errors.New("listing is not available")
	ErrAlreadyApplied      = errors.New("you have already applied to this listing")
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationDecided  = errors.New("application has already been decided")
	ErrInvalidDecision     = errors.New("status must be Approved or Rejected")
)

// ListingCache is a read-through cache for the public listing reads.
// A miss is reported with ok false and a nil error. The collection is
// versioned: a fill passes back the version its read observed, and
// Invalidate moves to a new version so a fill racing a write is never served.
type ListingCache interface {
	GetListings(ctx context.Context) (listings []domain.HousingListing, version int64, ok bool, err error)
	SetListings(ctx context.Context, version int64, listings []domain.HousingListing) error
	GetListing(ctx context.Context, id uuid.UUID) (*domain.HousingListing, bool, error)
	SetListing(ctx context.Context, listing *domain.HousingListing) error
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

type HousingService struct {
	housingRepo repository.HousingRepository
	appRepo     repository.ApplicationRepository
	cache       ListingCache
	notifier    Notifier
	publisher   Publisher
}

func NewHousingService(housingRepo repository.HousingRepository, appRepo repository.ApplicationRepository) *HousingService {
	return &HousingService{
		housingRepo: housingRepo,
		appRepo:     appRepo,
	}
}

func (s *HousingService) SetCache(c ListingCache) {
	s.cache = c
}

func (s *HousingService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *HousingService) SetPublisher(p Publisher) {
	s.publisher = p
}

type CreateListingInput struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Price             float64    `json:"price"`
	Location          string     `json:"location"`
	Bedrooms          int        `json:"bedrooms"`
	Bathrooms         int        `json:"bathrooms"`
	IsAvailable       *bool      `json:"is_available"`
	AvailableFrom     *time.Time `json:"available_from"`
	HasWifi           bool       `json:"has_wifi"`
	HasParking        bool       `json:"has_parking"`
	IsFurnished       bool       `json:"is_furnished"`
	UtilitiesIncluded bool       `json:"utilities_included"`
	ImageURLs         []string   `json:"image_urls"`
}

func (s *HousingService) List(ctx context.Context) ([]domain.HousingListing, error) {
	var version int64
	fill := false
	if s.cache != nil {
		listings, v, ok, err := s.cache.GetListings(ctx)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "listing cache read failed", "err", err)
		case ok:
			return listings, nil
		default:
			version, fill = v, true
		}
	}

	listings, err := s.housingRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []domain.HousingListing{}
	}

	if fill {
		if err := s.cache.SetListings(ctx, version, listings); err != nil {
			slog.WarnContext(ctx, "listing cache write failed", "err", err)
		}
	}
	return listings, nil
}

func (s *HousingService) Get(ctx context.Context, id uuid.UUID) (*domain.HousingListing, error) {
	if s.cache != nil {
		if listing, ok, err := s.cache.GetListing(ctx, id); err != nil {
			slog.WarnContext(ctx, "listing cache read failed", "listing_id", id, "err", err)
		} else if ok {
			return listing, nil
		}
	}

	listing, err := s.housingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, listing); err != nil {
			slog.WarnContext(ctx, "listing cache write failed", "listing_id", id, "err", err)
		}
	}
	return listing, nil
}

// Create stores a listing owned by ownerID. Ownership and timestamps never
// come from the payload.
func (s *HousingService) Create(ctx context.Context, ownerID uuid.UUID, input CreateListingInput) (*domain.HousingListing, error) {
	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}
	images := input.ImageURLs
	if images == nil {
		images = []string{}
	}

	now := time.Now()
	listing := &domain.HousingListing{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Title:             strings.TrimSpace(input.Title),
		Description:       strings.TrimSpace(input.Description),
		Price:             input.Price,
		Location:          strings.TrimSpace(input.Location),
		Bedrooms:          input.Bedrooms,
		Bathrooms:         input.Bathrooms,
		IsAvailable:       available,
		AvailableFrom:     input.AvailableFrom,
		HasWifi:           input.HasWifi,
		HasParking:        input.HasParking,
		IsFurnished:       input.IsFurnished,
		UtilitiesIncluded: input.UtilitiesIncluded,
		ImageURLs:         images,
		CreatedAt:         now,
		UpdatedAt:         &now,
	}

	if err := s.housingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	s.invalidate(ctx)
	publish(ctx, s.publisher, events.ListingCreated, listing)

	return listing, nil
}

func (s *HousingService) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	listing, err := s.ownedListing(ctx, userID, listingID)
	if err != nil {
		return err
	}

	if err := s.housingRepo.Delete(ctx, listing.ID); err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}

	s.invalidate(ctx, listing.ID)
	publish(ctx, s.publisher, events.ListingDeleted, map[string]uuid.UUID{"id": listing.ID})

	return nil
}

func (s *HousingService) Apply(ctx context.Context, userID, listingID uuid.UUID, message string) (*domain.HousingApplication, error) {
	listing, err := s.housingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.OwnerID == userID {
		return nil, ErrOwnListing
	}
	if !listing.IsAvailable {
		return nil, ErrListingUnavailable
	}

	app := &domain.HousingApplication{
		ID:          uuid.New(),
		ListingID:   listingID,
		ApplicantID: userID,
		Message:     strings.TrimSpace(message),
		Status:      domain.ApplicationPending,
		CreatedAt:   time.Now(),
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyApplied
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("creating application: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyApplication(app, listing.OwnerID)
	}
	publish(ctx, s.publisher, events.ApplicationSubmitted, app)

	return app, nil
}

// ListApplications returns the applications of a listing to its owner.
func (s *HousingService) ListApplications(ctx context.Context, userID, listingID uuid.UUID) ([]domain.HousingApplication, error) {
	if _, err := s.ownedListing(ctx, userID, listingID); err != nil {
		return nil, err
	}

	apps, err := s.appRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.HousingApplication{}
	}
	return apps, nil
}

func (s *HousingService) MyApplications(ctx context.Context, userID uuid.UUID) ([]domain.HousingApplication, error) {
	apps, err := s.appRepo.ListByApplicant(ctx, userID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.HousingApplication{}
	}
	return apps, nil
}

// DecideApplication approves or rejects a pending application on one of the
// user's listings.
func (s *HousingService) DecideApplication(ctx context.Context, userID, appID uuid.UUID, status domain.ApplicationStatus) error {
	if status != domain.ApplicationApproved && status != domain.ApplicationRejected {
		return ErrInvalidDecision
	}

	app, err := s.appRepo.GetByID(ctx, appID)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrApplicationNotFound
	}
	if _, err := s.ownedListing(ctx, userID, app.ListingID); err != nil {
		return err
	}
	if !app.Status.CanTransition(status) {
		return ErrApplicationDecided
	}

	if err := s.appRepo.UpdateStatus(ctx, appID, status); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrApplicationDecided
		}
		return fmt.Errorf("updating application: %w", err)
	}
	app.Status = status

	if s.notifier != nil {
		s.notifier.NotifyApplicationDecided(app)
	}
	publish(ctx, s.publisher, events.ApplicationDecided, app)

	return nil
}

func (s *HousingService) ownedListing(ctx context.Context, userID, listingID uuid.UUID) (*domain.HousingListing, error) {
	listing, err := s.housingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.OwnerID != userID {
		return nil, ErrNotListingOwner
	}
	return listing, nil
}

func (s *HousingService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		slog.WarnContext(ctx, "listing cache invalidation failed", "err", err)
	}
}

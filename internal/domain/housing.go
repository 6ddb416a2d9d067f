package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type HousingListing struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Price             float64    `json:"price"`
	Location          string     `json:"location"`
	Bedrooms          int        `json:"bedrooms"`
	Bathrooms         int        `json:"bathrooms"`
	IsAvailable       bool       `json:"is_available"`
	AvailableFrom     *time.Time `json:"available_from,omitempty"`
	HasWifi           bool       `json:"has_wifi"`
	HasParking        bool       `json:"has_parking"`
	IsFurnished       bool       `json:"is_furnished"`
	UtilitiesIncluded bool       `json:"utilities_included"`
	ImageURLs         []string   `json:"image_urls"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationApproved ApplicationStatus = "Approved"
	ApplicationRejected ApplicationStatus = "Rejected"
)

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch {
	case strings.EqualFold(s, string(ApplicationPending)):
		return ApplicationPending, nil
	case strings.EqualFold(s, string(ApplicationApproved)):
		return ApplicationApproved, nil
	case strings.EqualFold(s, string(ApplicationRejected)):
		return ApplicationRejected, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	switch s {
	case ApplicationPending:
		return next == ApplicationApproved || next == ApplicationRejected
	case ApplicationApproved, ApplicationRejected:
		return false
	}
	return false
}

type HousingApplication struct {
	ID          uuid.UUID         `json:"id"`
	ListingID   uuid.UUID         `json:"listing_id"`
	ApplicantID uuid.UUID         `json:"applicant_id"`
	Message     string            `json:"message"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	// Joined fields
	Applicant    *UserSummary `json:"applicant,omitempty"`
	ListingTitle string       `json:"listing_title,omitempty"`
}

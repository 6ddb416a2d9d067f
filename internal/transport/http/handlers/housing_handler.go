package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/service"
	"github.com/vedran77/habyx/internal/transport/http/middleware"
	"github.com/vedran77/habyx/pkg/validator"
)

type HousingHandler struct {
	housingService *service.HousingService
}

func NewHousingHandler(housingService *service.HousingService) *HousingHandler {
	return &HousingHandler{housingService: housingService}
}

func (h *HousingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.housingService.List(r.Context())
	if err != nil {
		writeInternalError(w, r, "list listings", err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *HousingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "listing")
	if !ok {
		return
	}

	listing, err := h.housingService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Listing not found")
		} else {
			writeInternalError(w, r, "get listing", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *HousingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateListingInput
	if !decodeJSON(w, r, &input) {
		return
	}

	errs := validator.ValidateListing(validator.Listing{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Price:       input.Price,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
	})
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	listing, err := h.housingService.Create(r.Context(), userID, input)
	if err != nil {
		writeInternalError(w, r, "create listing", err)
		return
	}

	w.Header().Set("Location", "/api/housing/"+listing.ID.String())
	writeJSON(w, http.StatusCreated, listing)
}

func (h *HousingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id", "listing")
	if !ok {
		return
	}

	if err := h.housingService.Delete(r.Context(), userID, id); err != nil {
		h.writeListingError(w, r, "delete listing", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HousingHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id", "listing")
	if !ok {
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateApplication(input.Message); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	app, err := h.housingService.Apply(r.Context(), userID, id, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Listing not found")
		case errors.Is(err, service.ErrOwnListing):
			writeError(w, http.StatusBadRequest, "OWN_LISTING", "Cannot apply to your own listing")
		case errors.Is(err, service.ErrListingUnavailable):
			writeError(w, http.StatusBadRequest, "LISTING_UNAVAILABLE", "Listing is not available")
		case errors.Is(err, service.ErrAlreadyApplied):
			writeError(w, http.StatusConflict, "ALREADY_APPLIED", "You have already applied to this listing")
		default:
			writeInternalError(w, r, "apply to listing", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

func (h *HousingHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := pathID(w, r, "id", "listing")
	if !ok {
		return
	}

	apps, err := h.housingService.ListApplications(r.Context(), userID, id)
	if err != nil {
		h.writeListingError(w, r, "list applications", err)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

func (h *HousingHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	apps, err := h.housingService.MyApplications(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, "list my applications", err)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

func (h *HousingHandler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	appID, ok := pathID(w, r, "id", "application")
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	status, err := domain.ParseApplicationStatus(input.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be Approved or Rejected")
		return
	}

	err = h.housingService.DecideApplication(r.Context(), userID, appID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDecision):
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be Approved or Rejected")
		case errors.Is(err, service.ErrApplicationDecided):
			writeError(w, http.StatusBadRequest, "ALREADY_DECIDED", "Application has already been decided")
		case errors.Is(err, service.ErrApplicationNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Application not found")
		default:
			h.writeListingError(w, r, "decide application", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HousingHandler) writeListingError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, service.ErrNotListingOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the listing owner can perform this action")
	default:
		writeInternalError(w, r, op, err)
	}
}

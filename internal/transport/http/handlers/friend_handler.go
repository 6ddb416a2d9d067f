package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/service"
	"github.com/vedran77/habyx/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, "list friends", err)
		return
	}

	writeJSON(w, http.StatusOK, friends)
}

func (h *FriendHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	pending, err := h.friendService.ListPending(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, "list pending requests", err)
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotRequestSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_REQUEST_SELF", "Cannot send a friend request to yourself")
		case errors.Is(err, service.ErrRequestAlreadyExists):
			writeError(w, http.StatusBadRequest, "REQUEST_EXISTS", "Friend request already exists")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			writeInternalError(w, r, "send friend request", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

// Respond takes either a bare JSON string ("Accepted") or {"status":"Accepted"}.
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}

	status, err := decodeFriendStatus(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be Accepted or Rejected")
		return
	}

	err = h.friendService.Respond(r.Context(), userID, requestID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be Accepted or Rejected")
		case errors.Is(err, service.ErrRequestNotPending):
			writeError(w, http.StatusBadRequest, "NOT_PENDING", "Friend request has already been answered")
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Friend request not found")
		case errors.Is(err, service.ErrNotAddressee):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the addressee can respond to this request")
		default:
			writeInternalError(w, r, "respond to friend request", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	friendID, ok := pathID(w, r, "id", "friend")
	if !ok {
		return
	}

	err := h.friendService.Remove(r.Context(), userID, friendID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Friend not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not part of this friendship")
		default:
			writeInternalError(w, r, "remove friend", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeFriendStatus(body io.Reader) (domain.FriendStatus, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<10))
	if err != nil {
		return "", err
	}

	var status domain.FriendStatus
	if err := json.Unmarshal(raw, &status); err == nil {
		return status, nil
	}

	var obj struct {
		Status domain.FriendStatus `json:"status"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	if obj.Status == "" {
		return "", errors.New("missing status")
	}
	return obj.Status, nil
}

package handlers

import "net/http"

// Routes groups the API handlers for registration on a ServeMux.
type Routes struct {
	Auth         *AuthHandler
	Friends      *FriendHandler
	ProfileImage *ProfileImageHandler
	Housing      *HousingHandler
	Messages     *MessageHandler
}

// Register mounts the /api surface. auth guards the protected routes.
func (rt Routes) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// Public
	mux.HandleFunc("POST /api/auth/register", rt.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", rt.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", rt.Auth.Refresh)
	mux.HandleFunc("GET /api/housing", rt.Housing.List)
	mux.HandleFunc("GET /api/housing/{id}", rt.Housing.Get)

	// Protected - Account
	mux.Handle("POST /api/auth/logout", protected(rt.Auth.Logout))
	mux.Handle("GET /api/users/me", protected(rt.Auth.Me))

	// Protected - Friends
	mux.Handle("GET /api/friends", protected(rt.Friends.List))
	mux.Handle("GET /api/friends/pending", protected(rt.Friends.Pending))
	mux.Handle("POST /api/friends/send-request/{id}", protected(rt.Friends.SendRequest))
	mux.Handle("PUT /api/friends/respond/{id}", protected(rt.Friends.Respond))
	mux.Handle("DELETE /api/friends/{id}", protected(rt.Friends.Remove))
	mux.Handle("POST /api/friends/upload-profile-image", protected(rt.ProfileImage.Upload))
	mux.Handle("DELETE /api/friends/profile-image", protected(rt.ProfileImage.Delete))

	// Protected - Housing
	mux.Handle("POST /api/housing", protected(rt.Housing.Create))
	mux.Handle("DELETE /api/housing/{id}", protected(rt.Housing.Delete))
	mux.Handle("POST /api/housing/{id}/applications", protected(rt.Housing.Apply))
	mux.Handle("GET /api/housing/{id}/applications", protected(rt.Housing.ListApplications))
	mux.Handle("GET /api/housing/applications/mine", protected(rt.Housing.MyApplications))
	mux.Handle("PUT /api/housing/applications/{id}", protected(rt.Housing.DecideApplication))

	// Protected - Messages
	mux.Handle("GET /api/messages/unread-count", protected(rt.Messages.UnreadCount))
	mux.Handle("POST /api/messages/{userId}", protected(rt.Messages.Send))
	mux.Handle("GET /api/messages/{userId}", protected(rt.Messages.Conversation))
	mux.Handle("PUT /api/messages/{id}/read", protected(rt.Messages.MarkRead))
}

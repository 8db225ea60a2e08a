package api

import (
	"net/http"
	"strings"

	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      authService
	contacts  contactStore
	reviews   reviewStore
	posts     blogPostStore
}

func newAdminHandler(auth authService, contacts contactStore, reviews reviewStore, posts blogPostStore, exposeDetails bool) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger, exposeDetails),
		logger:    logger,
		auth:      auth,
		contacts:  contacts,
		reviews:   reviews,
		posts:     posts,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// login exchanges admin credentials for a bearer token
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/login [post]
func (h adminHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if err := validateRequest(req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, identity, err := h.auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Uint("adminId", identity.ID).Str("username", identity.Username).Msg("admin logged in")
		h.responder.WriteJSON(w, LoginResponse{
			Message: "Login successful",
			Token:   token,
			Admin:   identity,
		})
	}
}

// verify reports the identity behind a still valid token
// @Summary Verify token
// @Tags Admin
// @Produce json
// @Success 200 {object} VerifyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/admin/verify [get]
func (h adminHandler) verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		h.responder.WriteJSON(w, VerifyResponse{Valid: true, Admin: identity})
	}
}

// dashboard returns row counts for the admin landing page
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} DashboardResponse
// @Router /api/admin/dashboard [get]
func (h adminHandler) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		approved, pending := true, false
		published, draft := true, false

		var resp DashboardResponse
		var err error
		if resp.Contacts, err = h.contacts.Count(ctx); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count contacts", "contacts", err))
			return
		}
		if resp.Reviews.Pending, err = h.reviews.Count(ctx, &pending); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count reviews", "reviews", err))
			return
		}
		if resp.Reviews.Approved, err = h.reviews.Count(ctx, &approved); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count reviews", "reviews", err))
			return
		}
		if resp.Posts.Published, err = h.posts.Count(ctx, &published); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count blog posts", "blog_posts", err))
			return
		}
		if resp.Posts.Draft, err = h.posts.Count(ctx, &draft); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count blog posts", "blog_posts", err))
			return
		}
		resp.Reviews.Total = resp.Reviews.Pending + resp.Reviews.Approved
		resp.Posts.Total = resp.Posts.Published + resp.Posts.Draft

		h.responder.WriteJSON(w, resp)
	}
}

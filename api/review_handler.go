package api

import (
	"net/http"
	"strings"

	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultPublicReviewLimit = 10
	defaultAdminReviewLimit  = 20
)

type reviewHandler struct {
	responder Responder
	logger    zerolog.Logger
	reviews   reviewStore
	notifier  notifier
}

func newReviewHandler(reviews reviewStore, notifier notifier, exposeDetails bool) reviewHandler {
	logger := log.With().Str("handlerName", "reviewHandler").Logger()

	return reviewHandler{
		responder: NewResponder(logger, exposeDetails),
		logger:    logger,
		reviews:   reviews,
		notifier:  notifier,
	}
}

type reviewRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,emailshape,max=255"`
	Rating  *int   `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=10,max=1000"`
}

func (rr *reviewRequest) normalize() {
	rr.Name = strings.TrimSpace(rr.Name)
	rr.Email = strings.TrimSpace(rr.Email)
	rr.Comment = strings.TrimSpace(rr.Comment)
}

// getApprovedReviews is the public review feed
// @Summary List approved reviews
// @Tags Reviews
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} ReviewListResponse
// @Router /api/reviews [get]
func (h reviewHandler) getApprovedReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := parsePage(r, defaultPublicReviewLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		approved := true
		reviews, total, err := h.reviews.FindPage(r.Context(), page, &approved)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find reviews", "reviews", err))
			return
		}

		// Reviewer emails are for moderators only.
		public := make([]models.Review, 0, len(reviews))
		for _, review := range reviews {
			review.Email = ""
			public = append(public, review)
		}

		h.responder.WriteJSON(w, ReviewListResponse{
			Reviews:    public,
			Pagination: database.NewPagination(page, total),
		})
	}
}

// getReviewStats summarizes approved reviews
// @Summary Review statistics
// @Tags Reviews
// @Produce json
// @Success 200 {object} models.ReviewStats
// @Router /api/reviews/stats [get]
func (h reviewHandler) getReviewStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.reviews.Stats(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate reviews", "reviews", err))
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

// createReview stores a pending review and notifies the clinic
// @Summary Submit review
// @Tags Reviews
// @Accept json
// @Produce json
// @Success 201 {object} ReviewCreatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/reviews [post]
func (h reviewHandler) createReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.normalize()
		if err := validateRequest(req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		review := models.Review{
			Name:    req.Name,
			Email:   req.Email,
			Rating:  *req.Rating,
			Comment: req.Comment,
		}
		if err := h.reviews.Add(r.Context(), &review); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create review", "review", err))
			return
		}

		h.logger.Info().Uint("reviewId", review.ID).Int("rating", review.Rating).Msg("review submitted")
		h.notifier.Notify(services.KindNewReview, review)

		h.responder.WriteStatusJSON(w, http.StatusCreated, ReviewCreatedResponse{
			Message:  "Review submitted successfully and is pending approval",
			ReviewID: review.ID,
		})
	}
}

// getAllReviews lists reviews for moderation
// @Summary List reviews (admin)
// @Tags Reviews
// @Produce json
// @Param status query string false "all, pending or approved"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} ReviewListResponse
// @Router /api/reviews/admin [get]
func (h reviewHandler) getAllReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		approved, ok := models.ApprovedFilter(r.URL.Query().Get("status"))
		if !ok {
			h.responder.WriteError(w, errs.NewInvalidQueryParamError("status", "status must be one of all, pending, approved"))
			return
		}

		page, err := parsePage(r, defaultAdminReviewLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		reviews, total, err := h.reviews.FindPage(r.Context(), page, approved)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find reviews", "reviews", err))
			return
		}
		if reviews == nil {
			reviews = []models.Review{}
		}

		h.responder.WriteJSON(w, ReviewListResponse{
			Reviews:    reviews,
			Pagination: database.NewPagination(page, total),
		})
	}
}

// approveReview publishes a pending review; approving twice is harmless
// @Summary Approve review
// @Tags Reviews
// @Param id path int true "Review ID"
// @Success 200 {object} ReviewResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/reviews/{id}/approve [put]
func (h reviewHandler) approveReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		review, err := h.reviews.Approve(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("approve review", "review", err))
			return
		}

		h.responder.WriteJSON(w, ReviewResponse{Message: "Review approved successfully", Review: review})
	}
}

// deleteReview removes a review
// @Summary Delete review
// @Tags Reviews
// @Param id path int true "Review ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/reviews/{id} [delete]
func (h reviewHandler) deleteReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.reviews.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete review", "review", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Message: "Review deleted successfully"})
	}
}

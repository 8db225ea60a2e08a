package api

import (
	"net/http"

	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers public routes and the admin routes behind requireAdmin.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.health())

	// Public routes
	r.Group(func(r chi.Router) {
		r.Post("/api/contact", handlers.contactHandler.createContact())

		r.Get("/api/reviews", handlers.reviewHandler.getApprovedReviews())
		r.Get("/api/reviews/stats", handlers.reviewHandler.getReviewStats())
		r.Post("/api/reviews", handlers.reviewHandler.createReview())

		r.Get("/api/blog", handlers.blogPostHandler.getPublishedPosts())
		r.Get("/api/blog/categories", handlers.blogPostHandler.getCategories())
		r.Get("/api/blog/{slug}", handlers.blogPostHandler.getPostBySlug())

		r.Post("/api/admin/login", handlers.adminHandler.login())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.requireAdmin)

		r.Get("/api/contact", handlers.contactHandler.getContacts())
		r.Delete("/api/contact/{id}", handlers.contactHandler.deleteContact())

		r.Get("/api/reviews/admin", handlers.reviewHandler.getAllReviews())
		r.Put("/api/reviews/{id}/approve", handlers.reviewHandler.approveReview())
		r.Delete("/api/reviews/{id}", handlers.reviewHandler.deleteReview())

		r.Get("/api/blog/admin/all", handlers.blogPostHandler.getAllPosts())
		r.Get("/api/blog/admin/{id}", handlers.blogPostHandler.getPost())
		r.Post("/api/blog", handlers.blogPostHandler.createBlogPost())
		r.Put("/api/blog/{id}", handlers.blogPostHandler.updateBlogPost())
		r.Patch("/api/blog/{id}/publish", handlers.blogPostHandler.togglePublish())
		r.Delete("/api/blog/{id}", handlers.blogPostHandler.deleteBlogPost())

		r.Get("/api/admin/verify", handlers.adminHandler.verify())
		r.Get("/api/admin/dashboard", handlers.adminHandler.dashboard())
	})
}

func notFound(responder Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewNotFoundError("Route not found"))
	}
}

func methodNotAllowed(responder Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewApiErr(http.StatusMethodNotAllowed, "Method not allowed"))
	}
}

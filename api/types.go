package api

import (
	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler   healthHandler
	contactHandler  contactHandler
	reviewHandler   reviewHandler
	blogPostHandler blogPostHandler
	adminHandler    adminHandler
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Field    string   `json:"field,omitempty"`
	Details  string   `json:"details,omitempty"`
	Required []string `json:"required,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ContactCreatedResponse struct {
	Message   string `json:"message"`
	ContactID uint   `json:"contactId"`
}

type ContactListResponse struct {
	Contacts   []models.Contact    `json:"contacts"`
	Pagination database.Pagination `json:"pagination"`
}

type ReviewCreatedResponse struct {
	Message  string `json:"message"`
	ReviewID uint   `json:"reviewId"`
}

type ReviewListResponse struct {
	Reviews    []models.Review     `json:"reviews"`
	Pagination database.Pagination `json:"pagination"`
}

type ReviewResponse struct {
	Message string         `json:"message"`
	Review  *models.Review `json:"review"`
}

type BlogPostCreatedResponse struct {
	Message string `json:"message"`
	PostID  uint   `json:"postId"`
	Slug    string `json:"slug"`
}

// PublicAuthor is all the public blog shows of the admin who wrote a post.
type PublicAuthor struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PublicBlogPost shadows the author of models.BlogPost so login names and
// emails never reach public responses.
type PublicBlogPost struct {
	models.BlogPost
	Author *PublicAuthor `json:"author,omitempty"`
}

// BlogFeedResponse is the public feed; it pages by offset.
type BlogFeedResponse struct {
	Posts      []PublicBlogPost          `json:"posts"`
	Pagination database.OffsetPagination `json:"pagination"`
}

type BlogPostListResponse struct {
	Posts      []models.BlogPost   `json:"posts"`
	Pagination database.Pagination `json:"pagination"`
}

type BlogPostDetailResponse struct {
	Post    PublicBlogPost   `json:"post"`
	Related []PublicBlogPost `json:"related"`
}

type BlogPostResponse struct {
	Message string           `json:"message"`
	Post    *models.BlogPost `json:"post"`
}

type LoginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	Admin   services.Identity `json:"admin"`
}

type VerifyResponse struct {
	Valid bool              `json:"valid"`
	Admin services.Identity `json:"admin"`
}

type DashboardResponse struct {
	Contacts int64        `json:"contacts"`
	Reviews  ReviewCounts `json:"reviews"`
	Posts    PostCounts   `json:"posts"`
}

type ReviewCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

type PostCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

package api

import (
	"context"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
)

type contactStore interface {
	Add(ctx context.Context, contact *models.Contact) error
	FindPage(ctx context.Context, page database.Page) ([]models.Contact, int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type reviewStore interface {
	Add(ctx context.Context, review *models.Review) error
	FindPage(ctx context.Context, page database.Page, approved *bool) ([]models.Review, int64, error)
	Count(ctx context.Context, approved *bool) (int64, error)
	Approve(ctx context.Context, id uint) (*models.Review, error)
	Stats(ctx context.Context) (models.ReviewStats, error)
	Delete(ctx context.Context, id uint) error
}

type blogPostStore interface {
	FindAll(ctx context.Context, filter models.BlogPostFilter, limit, offset int) ([]models.BlogPost, int64, error)
	FindByID(ctx context.Context, id uint) (*models.BlogPost, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
	FindRelated(ctx context.Context, post *models.BlogPost, limit int) ([]models.BlogPost, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	Count(ctx context.Context, published *bool) (int64, error)
	Add(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, id uint, patch models.BlogPostPatch) (*models.BlogPost, error)
	Delete(ctx context.Context, id uint) error
}

type authService interface {
	tokenVerifier
	Login(ctx context.Context, username, password string) (string, services.Identity, error)
}

type notifier interface {
	Notify(kind services.Kind, data any)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// dependencies are the collaborators the router hands to its handlers.
type dependencies struct {
	contacts contactStore
	reviews  reviewStore
	posts    blogPostStore
	auth     authService
	notifier notifier
	db       pinger
}

func databaseDependencies(db database.Database, auth authService, notifier notifier) dependencies {
	return dependencies{
		contacts: db.ContactRepo(),
		reviews:  db.ReviewRepo(),
		posts:    db.BlogPostRepo(),
		auth:     auth,
		notifier: notifier,
		db:       db,
	}
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps dependencies, exposeDetails bool, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		healthHandler:   newHealthHandler(deps.db, startupTime, exposeDetails),
		contactHandler:  newContactHandler(deps.contacts, deps.notifier, exposeDetails),
		reviewHandler:   newReviewHandler(deps.reviews, deps.notifier, exposeDetails),
		blogPostHandler: newBlogPostHandler(deps.posts, exposeDetails),
		adminHandler:    newAdminHandler(deps.auth, deps.contacts, deps.reviews, deps.posts, exposeDetails),
	}
}

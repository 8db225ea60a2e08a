package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	defaultFeedLimit      = 10
	defaultAdminPostLimit = 20
	relatedPostLimit      = 3
	excerptLength         = 160
)

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     blogPostStore
}

func newBlogPostHandler(posts blogPostStore, exposeDetails bool) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger, exposeDetails),
		logger:    logger,
		posts:     posts,
	}
}

type blogPostRequest struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Slug            string   `json:"slug" validate:"max=255"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content" validate:"required"`
	Image           string   `json:"image"`
	Category        string   `json:"category" validate:"max=100"`
	Tags            []string `json:"tags"`
	MetaTitle       string   `json:"metaTitle" validate:"max=255"`
	MetaDescription string   `json:"metaDescription"`
	Published       bool     `json:"published"`
	Featured        bool     `json:"featured"`
}

func (b *blogPostRequest) normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Slug = strings.TrimSpace(b.Slug)
	b.Excerpt = strings.TrimSpace(b.Excerpt)
	b.Content = strings.TrimSpace(b.Content)
	b.Image = strings.TrimSpace(b.Image)
	b.Category = strings.TrimSpace(b.Category)
	b.MetaTitle = strings.TrimSpace(b.MetaTitle)
	b.MetaDescription = strings.TrimSpace(b.MetaDescription)
}

func normalizePatch(patch *models.BlogPostPatch) {
	for _, field := range []*string{patch.Title, patch.Slug, patch.Excerpt, patch.Content, patch.Image, patch.Category, patch.MetaTitle, patch.MetaDescription} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func cleanTags(tags []string) datatypes.JSONSlice[string] {
	cleaned := datatypes.JSONSlice[string]{}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}

func publicPost(post models.BlogPost) PublicBlogPost {
	public := PublicBlogPost{BlogPost: post}
	if post.Author != nil {
		public.Author = &PublicAuthor{ID: post.Author.ID, Name: post.Author.Name}
	}
	public.BlogPost.Author = nil
	return public
}

func publicPosts(posts []models.BlogPost) []PublicBlogPost {
	public := make([]PublicBlogPost, 0, len(posts))
	for _, post := range posts {
		public = append(public, publicPost(post))
	}
	return public
}

// checkSlug enforces slug shape and uniqueness. excludeID lets a post keep its own slug.
func (h blogPostHandler) checkSlug(ctx context.Context, slug string, excludeID uint) error {
	if !services.ValidSlug(slug) {
		return errs.NewInvalidFieldError("slug", "Slug may only contain lowercase letters, numbers and single hyphens")
	}
	taken, err := h.posts.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return wrapDatabaseError("check slug", "blog post", err)
	}
	if taken {
		return errs.NewInvalidFieldError("slug", "Slug already exists")
	}
	return nil
}

// getPublishedPosts is the public blog feed
// @Summary List published posts
// @Tags Blog Posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Rows to skip"
// @Param page query int false "Page number, overrides offset"
// @Param category query string false "Category"
// @Param featured query bool false "Featured only"
// @Param search query string false "Title or excerpt text"
// @Success 200 {object} BlogFeedResponse
// @Router /api/blog [get]
func (h blogPostHandler) getPublishedPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r, defaultFeedLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		offset, err := parseOffset(r, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		featured, err := parseOptionalBool(r, "featured")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		published := true
		filter := models.BlogPostFilter{
			Published: &published,
			Featured:  featured,
			Category:  strings.TrimSpace(r.URL.Query().Get("category")),
			Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		}

		posts, total, err := h.posts.FindAll(r.Context(), filter, limit, offset)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog posts", "blog_posts", err))
			return
		}

		h.responder.WriteJSON(w, BlogFeedResponse{
			Posts:      publicPosts(posts),
			Pagination: database.NewOffsetPagination(limit, offset, total),
		})
	}
}

// getCategories lists categories of published posts, largest first
// @Summary Blog categories
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} models.CategoryCount
// @Router /api/blog/categories [get]
func (h blogPostHandler) getCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.posts.Categories(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find categories", "blog_posts", err))
			return
		}
		if categories == nil {
			categories = []models.CategoryCount{}
		}
		h.responder.WriteJSON(w, categories)
	}
}

// getPostBySlug returns a published post with related posts and counts the view
// @Summary Read post
// @Tags Blog Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} BlogPostDetailResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/blog/{slug} [get]
func (h blogPostHandler) getPostBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		post, err := h.posts.FindPublishedBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}

		if err := h.posts.IncrementViews(r.Context(), post.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count view", "blog post", err))
			return
		}
		post.Views++

		related, err := h.posts.FindRelated(r.Context(), post, relatedPostLimit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find related posts", "blog_posts", err))
			return
		}

		h.responder.WriteJSON(w, BlogPostDetailResponse{Post: publicPost(*post), Related: publicPosts(related)})
	}
}

// getAllPosts lists every post, drafts included
// @Summary List posts (admin)
// @Tags Blog Posts
// @Produce json
// @Param status query string false "all, published or draft"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} BlogPostListResponse
// @Router /api/blog/admin/all [get]
func (h blogPostHandler) getAllPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		published, ok := models.PublishedFilter(r.URL.Query().Get("status"))
		if !ok {
			h.responder.WriteError(w, errs.NewInvalidQueryParamError("status", "status must be one of all, published, draft"))
			return
		}

		page, err := parsePage(r, defaultAdminPostLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		posts, total, err := h.posts.FindAll(r.Context(), models.BlogPostFilter{Published: published}, page.Limit, page.Offset())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog posts", "blog_posts", err))
			return
		}
		if posts == nil {
			posts = []models.BlogPost{}
		}

		h.responder.WriteJSON(w, BlogPostListResponse{
			Posts:      posts,
			Pagination: database.NewPagination(page, total),
		})
	}
}

// getPost returns any post by id without counting a view
// @Summary Get post (admin)
// @Tags Blog Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} ErrorResponse
// @Router /api/blog/admin/{id} [get]
func (h blogPostHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, post)
	}
}

// createBlogPost creates a new blog post authored by the calling admin
// @Summary Create blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Success 201 {object} BlogPostCreatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/blog [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blogPostRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.normalize()
		if err := validateRequest(req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		slug := req.Slug
		if slug == "" {
			slug = services.Slugify(req.Title)
		}
		if err := h.checkSlug(r.Context(), slug, 0); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		excerpt := req.Excerpt
		if excerpt == "" {
			excerpt = services.Excerpt(services.PlainText(req.Content), excerptLength)
		}
		metaTitle := req.MetaTitle
		if metaTitle == "" {
			metaTitle = req.Title
		}

		post := models.BlogPost{
			Title:           req.Title,
			Slug:            slug,
			Excerpt:         excerpt,
			Content:         req.Content,
			Image:           req.Image,
			Category:        req.Category,
			Tags:            cleanTags(req.Tags),
			MetaTitle:       metaTitle,
			MetaDescription: req.MetaDescription,
			Published:       req.Published,
			Featured:        req.Featured,
			ReadTime:        services.ReadTime(req.Content),
		}
		if identity, ok := identityFromContext(r.Context()); ok {
			authorID := identity.ID
			post.AuthorID = &authorID
		}

		if err := h.posts.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create blog post", "blog post", err))
			return
		}

		h.logger.Info().Uint("postId", post.ID).Str("slug", post.Slug).Bool("published", post.Published).Msg("blog post created")

		h.responder.WriteStatusJSON(w, http.StatusCreated, BlogPostCreatedResponse{
			Message: "Blog post created successfully",
			PostID:  post.ID,
			Slug:    post.Slug,
		})
	}
}

// updateBlogPost changes only the supplied fields of a post
// @Summary Update blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} BlogPostResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/blog/{id} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var patch models.BlogPostPatch
		if err := decodeJSON(r, &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		normalizePatch(&patch)
		if err := validateRequest(patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.posts.FindByID(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}

		if patch.Slug != nil {
			if err := h.checkSlug(r.Context(), *patch.Slug, id); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}
		if patch.Content != nil {
			readTime := services.ReadTime(*patch.Content)
			patch.ReadTime = &readTime
		}
		if patch.Tags != nil {
			tags := cleanTags(*patch.Tags)
			patch.Tags = &tags
		}

		post, err := h.posts.Update(r.Context(), id, patch)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update blog post", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, BlogPostResponse{Message: "Blog post updated successfully", Post: post})
	}
}

// togglePublish flips a post between draft and published
// @Summary Toggle publish
// @Tags Blog Posts
// @Param id path int true "Post ID"
// @Success 200 {object} BlogPostResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/blog/{id}/publish [patch]
func (h blogPostHandler) togglePublish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		current, err := h.posts.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}

		published := !current.Published
		post, err := h.posts.Update(r.Context(), id, models.BlogPostPatch{Published: &published})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update blog post", "blog post", err))
			return
		}

		message := "Blog post unpublished"
		if post.Published {
			message = "Blog post published"
		}
		h.responder.WriteJSON(w, BlogPostResponse{Message: message, Post: post})
	}
}

// deleteBlogPost deletes a blog post by ID
// @Summary Delete blog post
// @Tags Blog Posts
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/blog/{id} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete blog post", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Message: "Blog post deleted successfully"})
	}
}

package api

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// clock hands out strictly increasing timestamps so created_at ordering is deterministic.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

var testClock = &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

func pageOf[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := min(offset+limit, len(rows))
	return slices.Clone(rows[offset:end])
}

type fakeContacts struct {
	mu      sync.Mutex
	rows    []models.Contact
	nextID  uint
	failErr error
}

func (f *fakeContacts) Add(_ context.Context, contact *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.nextID++
	contact.ID = f.nextID
	contact.CreatedAt = testClock.next()
	f.rows = append(f.rows, *contact)
	return nil
}

func (f *fakeContacts) newestFirst() []models.Contact {
	rows := slices.Clone(f.rows)
	slices.Reverse(rows)
	return rows
}

func (f *fakeContacts) FindPage(_ context.Context, page database.Page) ([]models.Contact, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(f.newestFirst(), page.Limit, page.Offset()), int64(len(f.rows)), f.failErr
}

func (f *fakeContacts) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), f.failErr
}

func (f *fakeContacts) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = slices.Delete(f.rows, i, i+1)
			return nil
		}
	}
	return errs.NewNotFound("contact")
}

type fakeReviews struct {
	mu     sync.Mutex
	rows   []models.Review
	nextID uint
}

func (f *fakeReviews) Add(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	review.ID = f.nextID
	review.Approved = false
	review.CreatedAt = testClock.next()
	review.UpdatedAt = review.CreatedAt
	f.rows = append(f.rows, *review)
	return nil
}

func (f *fakeReviews) matching(approved *bool) []models.Review {
	var rows []models.Review
	for i := len(f.rows) - 1; i >= 0; i-- {
		if approved == nil || f.rows[i].Approved == *approved {
			rows = append(rows, f.rows[i])
		}
	}
	return rows
}

func (f *fakeReviews) FindPage(_ context.Context, page database.Page, approved *bool) ([]models.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.matching(approved)
	return pageOf(rows, page.Limit, page.Offset()), int64(len(rows)), nil
}

func (f *fakeReviews) Count(_ context.Context, approved *bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(approved))), nil
}

func (f *fakeReviews) Approve(_ context.Context, id uint) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			if !f.rows[i].Approved {
				f.rows[i].Approved = true
				f.rows[i].UpdatedAt = testClock.next()
			}
			review := f.rows[i]
			return &review, nil
		}
	}
	return nil, errs.NewNotFound("review")
}

func (f *fakeReviews) Stats(context.Context) (models.ReviewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := models.ReviewStats{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, review := range f.matching(boolRef(true)) {
		stats.Distribution[review.Rating]++
		stats.Total++
		sum += int64(review.Rating)
	}
	if stats.Total > 0 {
		stats.Average = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

func (f *fakeReviews) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = slices.Delete(f.rows, i, i+1)
			return nil
		}
	}
	return errs.NewNotFound("review")
}

func (f *fakeReviews) get(id uint) (models.Review, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			return row, true
		}
	}
	return models.Review{}, false
}

type fakePosts struct {
	mu      sync.Mutex
	rows    []models.BlogPost
	nextID  uint
	authors map[uint]models.Admin
}

// withAuthor attaches the full admin row, as the repository preload does.
func (f *fakePosts) withAuthor(post models.BlogPost) models.BlogPost {
	if post.AuthorID != nil {
		if author, ok := f.authors[*post.AuthorID]; ok {
			post.Author = &author
		}
	}
	return post
}

func (f *fakePosts) matches(post models.BlogPost, filter models.BlogPostFilter) bool {
	if filter.Published != nil && post.Published != *filter.Published {
		return false
	}
	if filter.Featured != nil && post.Featured != *filter.Featured {
		return false
	}
	if filter.Category != "" && post.Category != filter.Category {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(post.Title), needle) && !strings.Contains(strings.ToLower(post.Excerpt), needle) {
			return false
		}
	}
	return true
}

func (f *fakePosts) FindAll(_ context.Context, filter models.BlogPostFilter, limit, offset int) ([]models.BlogPost, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.BlogPost
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.matches(f.rows[i], filter) {
			post := f.withAuthor(f.rows[i])
			post.Content = ""
			rows = append(rows, post)
		}
	}
	return pageOf(rows, limit, offset), int64(len(rows)), nil
}

func (f *fakePosts) find(id uint) (int, bool) {
	for i, row := range f.rows {
		if row.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *fakePosts) FindByID(_ context.Context, id uint) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, errs.NewNotFound("blog post")
	}
	post := f.withAuthor(f.rows[i])
	return &post, nil
}

func (f *fakePosts) FindPublishedBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Slug == slug && row.Published {
			post := f.withAuthor(row)
			return &post, nil
		}
	}
	return nil, errs.NewNotFound("blog post")
}

func (f *fakePosts) SlugTaken(_ context.Context, slug string, excludeID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Slug == slug && row.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) IncrementViews(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.find(id); ok {
		f.rows[i].Views++
	}
	return nil
}

func (f *fakePosts) FindRelated(_ context.Context, post *models.BlogPost, limit int) ([]models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	related := []models.BlogPost{}
	if post.Category == "" {
		return related, nil
	}
	for i := len(f.rows) - 1; i >= 0 && len(related) < limit; i-- {
		row := f.rows[i]
		if row.Published && row.Category == post.Category && row.ID != post.ID {
			row.Content = ""
			related = append(related, row)
		}
	}
	return related, nil
}

func (f *fakePosts) Categories(context.Context) ([]models.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, row := range f.rows {
		if row.Published && row.Category != "" {
			counts[row.Category]++
		}
	}
	categories := []models.CategoryCount{}
	for category, count := range counts {
		categories = append(categories, models.CategoryCount{Category: category, Count: count})
	}
	slices.SortFunc(categories, func(a, b models.CategoryCount) int {
		if a.Count != b.Count {
			return int(b.Count - a.Count)
		}
		return strings.Compare(a.Category, b.Category)
	})
	return categories, nil
}

func (f *fakePosts) Count(_ context.Context, published *bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if f.matches(row, models.BlogPostFilter{Published: published}) {
			n++
		}
	}
	return n, nil
}

func (f *fakePosts) Add(_ context.Context, post *models.BlogPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Slug == post.Slug {
			return errors.New(`ERROR: duplicate key value violates unique constraint "idx_blog_posts_slug"`)
		}
	}
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = testClock.next()
	post.UpdatedAt = post.CreatedAt
	f.rows = append(f.rows, *post)
	return nil
}

func (f *fakePosts) Update(_ context.Context, id uint, patch models.BlogPostPatch) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, errs.NewNotFound("blog post")
	}
	post := &f.rows[i]
	setIf(&post.Title, patch.Title)
	setIf(&post.Slug, patch.Slug)
	setIf(&post.Excerpt, patch.Excerpt)
	setIf(&post.Content, patch.Content)
	setIf(&post.Image, patch.Image)
	setIf(&post.Category, patch.Category)
	setIf(&post.Tags, patch.Tags)
	setIf(&post.MetaTitle, patch.MetaTitle)
	setIf(&post.MetaDescription, patch.MetaDescription)
	setIf(&post.Published, patch.Published)
	setIf(&post.Featured, patch.Featured)
	setIf(&post.ReadTime, patch.ReadTime)
	post.UpdatedAt = testClock.next()
	updated := *post
	return &updated, nil
}

func (f *fakePosts) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return errs.NewNotFound("blog post")
	}
	f.rows = slices.Delete(f.rows, i, i+1)
	return nil
}

func (f *fakePosts) get(id uint) models.BlogPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, _ := f.find(id)
	return f.rows[i]
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func boolRef(b bool) *bool {
	return &b
}

type fakeAdmins struct {
	admins map[string]*models.Admin
}

func (f *fakeAdmins) FindActiveByUsername(_ context.Context, username string) (*models.Admin, error) {
	admin, ok := f.admins[username]
	if !ok || !admin.Active {
		return nil, errs.NewNotFound("admin")
	}
	return admin, nil
}

type sentNotification struct {
	kind services.Kind
	data any
}

// fakeNotifier records notifications; like the real one it never reports failure.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(kind services.Kind, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{kind: kind, data: data})
}

func (f *fakeNotifier) notifications() []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sent)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

const (
	testAdminUsername = "admin"
	testAdminPassword = "correct-horse"
)

type testEnv struct {
	contacts *fakeContacts
	reviews  *fakeReviews
	posts    *fakePosts
	notifier *fakeNotifier
	admins   *fakeAdmins
	auth     *services.Authenticator
	db       *fakePinger
	deps     dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admins := &fakeAdmins{admins: map[string]*models.Admin{
		testAdminUsername: {ID: 1, Username: testAdminUsername, Email: "admin@clinica.es", Name: "Admin", Password: string(hash), Active: true},
	}}

	env := &testEnv{
		contacts: &fakeContacts{},
		reviews:  &fakeReviews{},
		posts:    &fakePosts{authors: map[uint]models.Admin{1: *admins.admins[testAdminUsername]}},
		notifier: &fakeNotifier{},
		admins:   admins,
		auth:     services.NewAuthenticator(admins, config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 24 * time.Hour}),
		db:       &fakePinger{},
	}
	env.deps = dependencies{
		contacts: env.contacts,
		reviews:  env.reviews,
		posts:    env.posts,
		auth:     env.auth,
		notifier: env.notifier,
		db:       env.db,
	}
	return env
}

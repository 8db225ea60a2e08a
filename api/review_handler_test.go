package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReview() map[string]any {
	return map[string]any{
		"name":    "Luis",
		"email":   "luis@example.com",
		"rating":  5,
		"comment": "Atención excelente y muy rápida.",
	}
}

func submitReview(t *testing.T, h http.Handler, mutate func(map[string]any)) uint {
	t.Helper()
	body := validReview()
	if mutate != nil {
		mutate(body)
	}
	rec := do(t, h, http.MethodPost, "/api/reviews", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[ReviewCreatedResponse](t, rec).ReviewID
}

func TestCreateReviewStartsPending(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()

	id := submitReview(t, h, func(b map[string]any) { b["approved"] = true })

	stored, ok := env.reviews.get(id)
	require.True(t, ok)
	assert.False(t, stored.Approved)
	assert.Equal(t, 5, stored.Rating)

	sent := env.notifier.notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, services.KindNewReview, sent[0].kind)

	rec := do(t, h, http.MethodGet, "/api/reviews", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[ReviewListResponse](t, rec).Reviews)
}

func TestCreateReviewRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(map[string]any){
		"rating zero":        func(b map[string]any) { b["rating"] = 0 },
		"rating six":         func(b map[string]any) { b["rating"] = 6 },
		"rating negative":    func(b map[string]any) { b["rating"] = -1 },
		"rating fractional":  func(b map[string]any) { b["rating"] = 4.5 },
		"rating string":      func(b map[string]any) { b["rating"] = "5" },
		"comment too short":  func(b map[string]any) { b["comment"] = "123456789" },
		"comment padded":     func(b map[string]any) { b["comment"] = "   short    " },
		"comment too long":   func(b map[string]any) { b["comment"] = strings.Repeat("a", 1001) },
		"bad email":          func(b map[string]any) { b["email"] = "nope" },
		"missing rating":     func(b map[string]any) { delete(b, "rating") },
		"missing everything": func(b map[string]any) { clear(b) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			body := validReview()
			mutate(body)

			rec := do(t, env.router(), http.MethodPost, "/api/reviews", body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Empty(t, env.reviews.rows)
		})
	}
}

func TestCreateReviewCommentBoundaries(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()

	submitReview(t, h, func(b map[string]any) { b["comment"] = strings.Repeat("a", 10) })
	submitReview(t, h, func(b map[string]any) { b["comment"] = strings.Repeat("a", 1000) })
	// Length counts characters, not bytes.
	submitReview(t, h, func(b map[string]any) { b["comment"] = strings.Repeat("ñ", 1000) })
	submitReview(t, h, func(b map[string]any) { b["rating"] = 1 })

	assert.Len(t, env.reviews.rows, 4)
}

func TestMissingReviewFieldsAreListed(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.router(), http.MethodPost, "/api/reviews", map[string]any{"name": "Luis"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Missing required fields", resp.Error)
	assert.ElementsMatch(t, []string{"email", "rating", "comment"}, resp.Required)
}

func TestApproveReviewIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	token := env.token(t)
	id := submitReview(t, h, nil)

	rec := do(t, h, http.MethodPut, "/api/reviews/1/approve", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[ReviewResponse](t, rec)
	assert.True(t, first.Review.Approved)

	rec = do(t, h, http.MethodPut, "/api/reviews/1/approve", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody[ReviewResponse](t, rec)
	assert.True(t, second.Review.Approved)
	assert.Equal(t, first.Review.UpdatedAt, second.Review.UpdatedAt)

	stored, _ := env.reviews.get(id)
	assert.True(t, stored.Approved)

	rec = do(t, h, http.MethodPut, "/api/reviews/99/approve", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/reviews/1/approve", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicReviewsHideEmailAndPending(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	token := env.token(t)

	approvedID := submitReview(t, h, nil)
	submitReview(t, h, func(b map[string]any) { b["name"] = "Pendiente" })
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/reviews/1/approve", nil, token).Code)

	rec := do(t, h, http.MethodGet, "/api/reviews", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "luis@example.com")

	resp := decodeBody[ReviewListResponse](t, rec)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, approvedID, resp.Reviews[0].ID)
	assert.Equal(t, 10, resp.Pagination.Limit)
	assert.EqualValues(t, 1, resp.Pagination.Total)
}

func TestAdminReviewListFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	token := env.token(t)

	submitReview(t, h, nil)
	submitReview(t, h, nil)
	submitReview(t, h, nil)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/reviews/2/approve", nil, token).Code)

	count := func(query string) int64 {
		rec := do(t, h, http.MethodGet, "/api/reviews/admin"+query, nil, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[ReviewListResponse](t, rec)
		assert.Equal(t, 20, resp.Pagination.Limit)
		for _, review := range resp.Reviews {
			assert.NotEmpty(t, review.Email)
		}
		return resp.Pagination.Total
	}

	assert.EqualValues(t, 3, count(""))
	assert.EqualValues(t, 3, count("?status=all"))
	assert.EqualValues(t, 2, count("?status=pending"))
	assert.EqualValues(t, 1, count("?status=approved"))

	rec := do(t, h, http.MethodGet, "/api/reviews/admin?status=rejected", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decodeBody[ErrorResponse](t, rec).Field)
}

func TestReviewStats(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	token := env.token(t)

	submitReview(t, h, func(b map[string]any) { b["rating"] = 5 })
	submitReview(t, h, func(b map[string]any) { b["rating"] = 3 })
	submitReview(t, h, func(b map[string]any) { b["rating"] = 1 })
	for _, id := range []string{"1", "2"} {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/reviews/"+id+"/approve", nil, token).Code)
	}

	rec := do(t, h, http.MethodGet, "/api/reviews/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decodeBody[models.ReviewStats](t, rec)
	assert.EqualValues(t, 2, stats.Total)
	assert.InDelta(t, 4.0, stats.Average, 0.001)
	assert.EqualValues(t, 1, stats.Distribution[5])
	assert.EqualValues(t, 0, stats.Distribution[1])
	assert.Len(t, stats.Distribution, 5)
}

func TestDeleteReview(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	token := env.token(t)
	submitReview(t, h, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/api/reviews/1", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/reviews/1", nil, token).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, "/api/reviews/1", nil, "bad").Code)
}

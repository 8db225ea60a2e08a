package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedConstructorsMatchSentinels(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("review")))
	assert.True(t, IsNotFound(NewNotFoundError("gone")))
	assert.True(t, IsBadRequest(NewBadRequestError("bad")))
	assert.True(t, IsMissingTokenError(NewMissingTokenError()))
	assert.True(t, IsInvalidTokenError(NewInvalidTokenError()))
	assert.True(t, IsMissingRequiredFieldError(NewMissingFieldsError([]string{"name"})))
	assert.False(t, IsNotFound(NewBadRequestError("bad")))

	wrapped := fmt.Errorf("handler: %w", NewNotFound("contact"))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
}

func TestMessagesStayUserFacing(t *testing.T) {
	assert.Equal(t, "review not found", NewNotFound("review").Error())
	assert.Equal(t, "Invalid credentials", NewInvalidCredentialsError().Error())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(NewMissingTokenError()))
	assert.Equal(t, http.StatusForbidden, StatusOf(NewInvalidTokenError()))
}

func TestNewDatabaseError(t *testing.T) {
	notFound := NewNotFound("blog post")
	assert.Same(t, notFound, NewDatabaseError("find", "blog post", notFound))

	dup := NewDatabaseError("create", "blog post", errors.New(`ERROR: duplicate key value violates unique constraint "idx_blog_posts_slug"`))
	assert.Equal(t, http.StatusBadRequest, dup.StatusCode)
	assert.True(t, IsAlreadyExists(dup))

	generic := NewDatabaseError("list", "contacts", errors.New("syntax error"))
	assert.Equal(t, http.StatusInternalServerError, generic.StatusCode)
	assert.True(t, IsInternal(generic))
	assert.Contains(t, generic.GetFullError(), "syntax error")
}

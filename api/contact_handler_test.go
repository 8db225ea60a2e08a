package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() map[string]any {
	return map[string]any{
		"name":       "Ana",
		"phone":      "555-1",
		"email":      "a@b.com",
		"postalCode": "28001",
	}
}

func TestCreateContact(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()

	rec := do(t, h, http.MethodPost, "/api/contact", validContact(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[ContactCreatedResponse](t, rec)
	assert.Equal(t, uint(1), resp.ContactID)
	assert.NotEmpty(t, resp.Message)

	require.Len(t, env.contacts.rows, 1)
	stored := env.contacts.rows[0]
	assert.Equal(t, "Ana", stored.Name)
	assert.Equal(t, "555-1", stored.Phone)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.Equal(t, "28001", stored.PostalCode)
	assert.False(t, stored.CreatedAt.IsZero())

	sent := env.notifier.notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, services.KindNewContact, sent[0].kind)
	assert.Equal(t, stored, sent[0].data.(models.Contact))
}

func TestCreateContactTrimsInput(t *testing.T) {
	env := newTestEnv(t)

	body := validContact()
	body["name"] = "  Ana  "
	body["postalCode"] = " 28001 "
	rec := do(t, env.router(), http.MethodPost, "/api/contact", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "Ana", env.contacts.rows[0].Name)
	assert.Equal(t, "28001", env.contacts.rows[0].PostalCode)
}

func TestCreateContactValidation(t *testing.T) {
	cases := map[string]struct {
		mutate   func(map[string]any)
		field    string
		required []string
	}{
		"short postal code":      {mutate: func(b map[string]any) { b["postalCode"] = "280" }, field: "postalCode"},
		"letters in postal code": {mutate: func(b map[string]any) { b["postalCode"] = "28a01" }, field: "postalCode"},
		"bad email":              {mutate: func(b map[string]any) { b["email"] = "a@b" }, field: "email"},
		"email with spaces":      {mutate: func(b map[string]any) { b["email"] = "a b@c.com" }, field: "email"},
		"missing fields": {
			mutate:   func(b map[string]any) { delete(b, "name"); b["phone"] = "   " },
			required: []string{"name", "phone"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			body := validContact()
			tc.mutate(body)

			rec := do(t, env.router(), http.MethodPost, "/api/contact", body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			resp := decodeBody[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			if tc.field != "" {
				assert.Equal(t, tc.field, resp.Field)
			}
			if tc.required != nil {
				assert.ElementsMatch(t, tc.required, resp.Required)
			}
			assert.Empty(t, env.contacts.rows)
			assert.Empty(t, env.notifier.notifications())
		})
	}
}

func TestCreateContactMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.router(), http.MethodPost, "/api/contact", `{"name":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Malformed JSON body", decodeBody[ErrorResponse](t, rec).Error)

	rec = do(t, env.router(), http.MethodPost, "/api/contact", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateContactStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.contacts.failErr = fmt.Errorf("dial tcp: connection refused")

	rec := do(t, env.router(withExposeDetails(false)), http.MethodPost, "/api/contact", validContact(), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Internal Server Error", resp.Error)
	assert.Empty(t, resp.Details)
	assert.Empty(t, env.notifier.notifications())
}

func TestGetContactsPaginates(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	for i := 0; i < 45; i++ {
		body := validContact()
		body["name"] = fmt.Sprintf("Contact %02d", i)
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/contact", body, "").Code)
	}
	token := env.token(t)

	rec := do(t, h, http.MethodGet, "/api/contact", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeBody[ContactListResponse](t, rec)
	assert.Len(t, first.Contacts, 20)
	assert.Equal(t, "Contact 44", first.Contacts[0].Name)
	assert.Equal(t, 1, first.Pagination.Page)
	assert.Equal(t, 20, first.Pagination.Limit)
	assert.EqualValues(t, 45, first.Pagination.Total)
	assert.Equal(t, 3, first.Pagination.TotalPages)

	rec = do(t, h, http.MethodGet, "/api/contact?page=3&limit=20", nil, token)
	last := decodeBody[ContactListResponse](t, rec)
	assert.Len(t, last.Contacts, 5)
	assert.Equal(t, "Contact 00", last.Contacts[4].Name)

	rec = do(t, h, http.MethodGet, "/api/contact?page=9", nil, token)
	beyond := decodeBody[ContactListResponse](t, rec)
	assert.NotNil(t, beyond.Contacts)
	assert.Empty(t, beyond.Contacts)
	assert.Contains(t, rec.Body.String(), `"contacts":[]`)
}

func TestGetContactsRejectsBadPaging(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	for _, query := range []string{"page=0", "page=-1", "limit=0", "limit=abc", "page=1.5"} {
		t.Run(query, func(t *testing.T) {
			rec := do(t, env.router(), http.MethodGet, "/api/contact?"+query, nil, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := do(t, env.router(), http.MethodGet, "/api/contact?limit=500", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, decodeBody[ContactListResponse](t, rec).Pagination.Limit)
}

func TestGetContactsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.router(), http.MethodGet, "/api/contact", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, env.router(), http.MethodGet, "/api/contact", nil, "forged.token.value")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteContact(t *testing.T) {
	env := newTestEnv(t)
	h := env.router()
	token := env.token(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/contact", validContact(), "").Code)

	rec := do(t, h, http.MethodDelete, "/api/contact/1", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.contacts.rows)

	rec = do(t, h, http.MethodDelete, "/api/contact/1", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "contact not found", decodeBody[ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodDelete, "/api/contact/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

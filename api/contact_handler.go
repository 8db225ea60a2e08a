package api

import (
	"net/http"
	"strings"

	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/davidzaratecamp/paginacarebackend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultContactLimit = 20

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	contacts  contactStore
	notifier  notifier
}

func newContactHandler(contacts contactStore, notifier notifier, exposeDetails bool) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger, exposeDetails),
		logger:    logger,
		contacts:  contacts,
		notifier:  notifier,
	}
}

type contactRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Phone      string `json:"phone" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,emailshape,max=255"`
	PostalCode string `json:"postalCode" validate:"required,postalcode"`
}

func (c *contactRequest) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
}

// createContact stores a contact form submission and notifies the clinic
// @Summary Submit contact form
// @Tags Contacts
// @Accept json
// @Produce json
// @Success 201 {object} ContactCreatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/contact [post]
func (h contactHandler) createContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.normalize()
		if err := validateRequest(req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		contact := models.Contact{
			Name:       req.Name,
			Phone:      req.Phone,
			Email:      req.Email,
			PostalCode: req.PostalCode,
		}
		if err := h.contacts.Add(r.Context(), &contact); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create contact", "contact", err))
			return
		}

		h.logger.Info().Uint("contactId", contact.ID).Msg("contact form submitted")
		h.notifier.Notify(services.KindNewContact, contact)

		h.responder.WriteStatusJSON(w, http.StatusCreated, ContactCreatedResponse{
			Message:   "Contact form submitted successfully",
			ContactID: contact.ID,
		})
	}
}

// getContacts lists contact submissions, newest first
// @Summary List contacts
// @Tags Contacts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} ContactListResponse
// @Router /api/contact [get]
func (h contactHandler) getContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := parsePage(r, defaultContactLimit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		contacts, total, err := h.contacts.FindPage(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find contacts", "contacts", err))
			return
		}
		if contacts == nil {
			contacts = []models.Contact{}
		}

		h.responder.WriteJSON(w, ContactListResponse{
			Contacts:   contacts,
			Pagination: database.NewPagination(page, total),
		})
	}
}

// deleteContact removes a contact submission
// @Summary Delete contact
// @Tags Contacts
// @Param id path int true "Contact ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/contact/{id} [delete]
func (h contactHandler) deleteContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.contacts.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete contact", "contact", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Message: "Contact deleted successfully"})
	}
}

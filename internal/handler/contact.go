package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/service"
)

// ContactHandler handles block-list HTTP requests.
type ContactHandler struct {
	blocklist *service.BlocklistService
}

// NewContactHandler creates a new ContactHandler instance.
func NewContactHandler(blocklist *service.BlocklistService) *ContactHandler {
	return &ContactHandler{blocklist: blocklist}
}

// BlockContactRequest is the payload for blocking a contact.
type BlockContactRequest struct {
	ContactName      string   `json:"contact_name"`
	ContactPhone     string   `json:"contact_phone"`
	ContactEmail     string   `json:"contact_email"`
	RelationshipType string   `json:"relationship_type"`
	Platforms        []string `json:"platforms"`
	Severity         string   `json:"severity"`
	Reason           string   `json:"reason"`
}

// Create blocks a new contact.
func (h *ContactHandler) Create(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req BlockContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	severity := models.Severity(req.Severity)
	if req.Severity == "" {
		severity = models.SeverityMedium
	}

	contact, err := h.blocklist.Block(c.Request.Context(), userID, service.BlockContactInput{
		ContactName:      req.ContactName,
		ContactPhone:     req.ContactPhone,
		ContactEmail:     req.ContactEmail,
		RelationshipType: req.RelationshipType,
		Platforms:        req.Platforms,
		Severity:         severity,
		Reason:           req.Reason,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// List returns the user's contacts. With ?active=true only enforced blocks
// are returned.
func (h *ContactHandler) List(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	activeOnly := c.Query("active") == "true"

	contacts, err := h.blocklist.List(c.Request.Context(), userID, activeOnly)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// Get returns one contact.
func (h *ContactHandler) Get(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	contactID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	contact, err := h.blocklist.Get(c.Request.Context(), userID, contactID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// UpdateContactRequest is the payload for editing a blocked contact. Phone
// and email are not editable.
type UpdateContactRequest struct {
	ContactName      string   `json:"contact_name"`
	RelationshipType string   `json:"relationship_type"`
	Platforms        []string `json:"platforms"`
	Severity         string   `json:"severity"`
	Reason           string   `json:"reason"`
}

// Update edits the descriptive fields of an active block.
func (h *ContactHandler) Update(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	contactID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contact, err := h.blocklist.Update(c.Request.Context(), userID, contactID, service.UpdateContactInput{
		ContactName:      req.ContactName,
		RelationshipType: req.RelationshipType,
		Platforms:        req.Platforms,
		Severity:         models.Severity(req.Severity),
		Reason:           req.Reason,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Delete unblocks a contact directly, bypassing the guardian flow.
func (h *ContactHandler) Delete(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	contactID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.blocklist.Unblock(c.Request.Context(), userID, contactID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

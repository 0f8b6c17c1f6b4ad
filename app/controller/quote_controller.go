package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"origen-dotacion/models"
	"origen-dotacion/service"

	"go.uber.org/zap"
)

// QuoteController builds the quote message and outbound links for a session cart
type QuoteController struct {
	sessions       *service.CartSessions
	whatsAppNumber string
	quoteEmail     string
	logger         *zap.SugaredLogger
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(sessions *service.CartSessions, whatsAppNumber, quoteEmail string, logger *zap.SugaredLogger) *QuoteController {
	return &QuoteController{
		sessions:       sessions,
		whatsAppNumber: whatsAppNumber,
		quoteEmail:     quoteEmail,
		logger:         logger,
	}
}

// CreateQuote handles POST /quote
// Example body: {"company": "Acme", "contact": "Ana", "phone": "300 123 4567"}
// An empty body is accepted; every contact field is optional.
func (c *QuoteController) CreateQuote(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "CreateQuote", http.MethodPost) {
		return
	}

	var contact models.QuoteContact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil && !errors.Is(err, io.EOF) {
		c.logger.Warnf("❌ CreateQuote: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var items []models.QuoteItem
	if id := requestSession(r); id != "" {
		items = c.sessions.Get(r.Context(), id).QuoteItems()
	}
	quote := service.BuildQuote(contact, items, c.whatsAppNumber, c.quoteEmail)

	c.logger.Infof("✅ CreateQuote: %d lines, %d items", quote.ItemCount, quote.TotalItems)
	writeJSON(w, http.StatusOK, quote, c.logger, "CreateQuote")
}

// ContactLink handles GET /contact/whatsapp
// Returns the generic WhatsApp link of the floating contact button.
func (c *QuoteController) ContactLink(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "ContactLink", http.MethodGet) {
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		message = service.DefaultContactGreet
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"href": service.WhatsAppLink(c.whatsAppNumber, message),
	}, c.logger, "ContactLink")
}

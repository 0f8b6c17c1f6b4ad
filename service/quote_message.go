package service

import (
	"fmt"
	"strings"

	"origen-dotacion/models"
	"origen-dotacion/utils"
)

// Quote defaults
const (
	DefaultQuoteEmail   = "ventas@origen.com"
	DefaultQuoteSubject = "Solicitud de cotización - Origen"
	DefaultContactGreet = "Hola 👋 Vengo desde Origen. Quiero más información sobre sus productos y cotización."

	whatsAppBaseURL = "https://wa.me/"
)

// BuildQuoteMessage renders the quote request text for the given contact and items.
// The output depends only on its inputs.
func BuildQuoteMessage(contact models.QuoteContact, items []models.QuoteItem) string {
	lines := []string{
		"Hola, Origen 👋",
		"Quiero solicitar una cotización con estos productos:",
		"",
	}

	for i, it := range items {
		meta := []string{fmt.Sprintf("x%d", it.Qty)}
		if size := utils.Norm(it.Size); size != "" {
			meta = append(meta, "Talla: "+size)
		}
		if color := utils.Norm(it.Color); color != "" {
			meta = append(meta, "Color: "+color)
		}
		if note := utils.Norm(it.Note); note != "" {
			meta = append(meta, "Nota: "+note)
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s) — %s", i+1, it.Name, it.Ref, strings.Join(meta, " • ")))
	}

	lines = append(lines, "", "Datos de contacto:")
	lines = appendLabeled(lines, "Empresa", contact.Company)
	lines = appendLabeled(lines, "Contacto", contact.Contact)
	lines = appendLabeled(lines, "Teléfono", contact.Phone)
	lines = appendLabeled(lines, "Email", contact.Email)

	if notes := utils.Norm(contact.Notes); notes != "" {
		lines = append(lines, "", "Notas: "+notes)
	}

	return strings.Join(lines, "\n")
}

func appendLabeled(lines []string, label, value string) []string {
	value = utils.Norm(value)
	if value == "" {
		return lines
	}
	return append(lines, label+": "+value)
}

// WhatsAppLink builds a wa.me link carrying message. Non-digits are stripped
// from number; without digits the link lets the user pick the chat.
func WhatsAppLink(number, message string) string {
	digits := utils.DigitsOnly(number)
	return whatsAppBaseURL + digits + "?text=" + utils.EncodeURIComponent(message)
}

// MailtoLink builds a mailto link. Empty address and subject use the defaults.
func MailtoLink(address, subject, body string) string {
	address = utils.Norm(address)
	if address == "" {
		address = DefaultQuoteEmail
	}
	if subject == "" {
		subject = DefaultQuoteSubject
	}
	return "mailto:" + address +
		"?subject=" + utils.EncodeURIComponent(subject) +
		"&body=" + utils.EncodeURIComponent(body)
}

// BuildQuote renders the message and both outbound links for a cart
func BuildQuote(contact models.QuoteContact, items []models.QuoteItem, whatsAppNumber, quoteEmail string) models.QuoteResponse {
	msg := BuildQuoteMessage(contact, items)

	total := 0
	for _, it := range items {
		total += it.Qty
	}

	return models.QuoteResponse{
		Message:      msg,
		WhatsAppHref: WhatsAppLink(whatsAppNumber, msg),
		MailtoHref:   MailtoLink(quoteEmail, "", msg),
		ItemCount:    len(items),
		TotalItems:   total,
	}
}

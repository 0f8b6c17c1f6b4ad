package service

import (
	"errors"
	"strings"
	"testing"

	"origen-dotacion/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildQuoteMessage_SingleItemNoContact(t *testing.T) {
	msg := BuildQuoteMessage(models.QuoteContact{}, []models.QuoteItem{
		{Name: "Widget", Ref: "R1", Qty: 2, Size: "M"},
	})

	want := strings.Join([]string{
		"Hola, Origen 👋",
		"Quiero solicitar una cotización con estos productos:",
		"",
		"1. Widget (R1) — x2 • Talla: M",
		"",
		"Datos de contacto:",
	}, "\n")
	assert.Equal(t, want, msg)
	assert.NotContains(t, msg, "Empresa:")
	assert.NotContains(t, msg, "Notas:")
}

func TestBuildQuoteMessage_FullContact(t *testing.T) {
	contact := models.QuoteContact{
		Company: "Acme",
		Contact: "Ana",
		Email:   "ana@acme.co",
		Phone:   "300 123 4567",
		Notes:   "Entrega en Bogotá",
	}
	items := []models.QuoteItem{
		{Name: "Overol", Ref: "IND-1", Qty: 10, Size: "L", Color: "Azul", Note: "Logo bordado"},
		{Name: "Gorro", Ref: "AF-3", Qty: 1},
	}

	msg := BuildQuoteMessage(contact, items)

	want := strings.Join([]string{
		"Hola, Origen 👋",
		"Quiero solicitar una cotización con estos productos:",
		"",
		"1. Overol (IND-1) — x10 • Talla: L • Color: Azul • Nota: Logo bordado",
		"2. Gorro (AF-3) — x1",
		"",
		"Datos de contacto:",
		"Empresa: Acme",
		"Contacto: Ana",
		"Teléfono: 300 123 4567",
		"Email: ana@acme.co",
		"",
		"Notas: Entrega en Bogotá",
	}, "\n")
	assert.Equal(t, want, msg)
}

func TestBuildQuoteMessage_NoItems(t *testing.T) {
	msg := BuildQuoteMessage(models.QuoteContact{Email: "x@y.z"}, nil)

	want := "Hola, Origen 👋\nQuiero solicitar una cotización con estos productos:\n\n\nDatos de contacto:\nEmail: x@y.z"
	assert.Equal(t, want, msg)
}

func TestBuildQuoteMessage_BlankContactFieldsOmitted(t *testing.T) {
	msg := BuildQuoteMessage(models.QuoteContact{Company: "   ", Notes: "\t"}, []models.QuoteItem{{Name: "A", Ref: "B", Qty: 1}})

	assert.NotContains(t, msg, "Empresa")
	assert.NotContains(t, msg, "Notas")
	assert.True(t, strings.HasSuffix(msg, "Datos de contacto:"))
}

func TestBuildQuoteMessage_Deterministic(t *testing.T) {
	items := []models.QuoteItem{{Name: "A", Ref: "1", Qty: 3, Color: "Rojo"}}
	contact := models.QuoteContact{Contact: "Luis"}

	assert.Equal(t, BuildQuoteMessage(contact, items), BuildQuoteMessage(contact, items))
}

func TestWhatsAppLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/573001234567?text=Hola%20mundo", WhatsAppLink("+57 300 123-4567", "Hola mundo"))
	assert.Equal(t, "https://wa.me/?text=Hola", WhatsAppLink("", "Hola"))
	assert.Equal(t, "https://wa.me/?text=%F0%9F%91%8B%0A1.", WhatsAppLink("n/a", "👋\n1."))
}

func TestMailtoLink(t *testing.T) {
	link := MailtoLink("", "", "a b&c")
	assert.Equal(t, "mailto:ventas@origen.com?subject=Solicitud%20de%20cotizaci%C3%B3n%20-%20Origen&body=a%20b%26c", link)

	assert.True(t, strings.HasPrefix(MailtoLink("compras@acme.co", "Hola", "x"), "mailto:compras@acme.co?subject=Hola&body=x"))
}

func TestBuildQuote(t *testing.T) {
	items := []models.QuoteItem{{Name: "A", Ref: "1", Qty: 3}, {Name: "B", Ref: "2", Qty: 2}}

	q := BuildQuote(models.QuoteContact{}, items, "300", "")

	assert.Equal(t, 2, q.ItemCount)
	assert.Equal(t, 5, q.TotalItems)
	assert.True(t, strings.HasPrefix(q.WhatsAppHref, "https://wa.me/300?text=Hola%2C%20Origen"))
	assert.True(t, strings.HasPrefix(q.MailtoHref, "mailto:ventas@origen.com?"))
	assert.Contains(t, q.Message, "2. B (2) — x2")
}

func TestCopyToClipboard(t *testing.T) {
	old := clipboardWriteAll
	defer func() { clipboardWriteAll = old }()

	var copied string
	clipboardWriteAll = func(s string) error {
		copied = s
		return nil
	}
	notice, ok := CopyToClipboard("hola", zap.NewNop().Sugar())
	require.True(t, ok)
	assert.Equal(t, "hola", copied)
	assert.Equal(t, ClipboardCopiedNotice, notice)

	clipboardWriteAll = func(string) error { return errors.New("no xclip") }
	notice, ok = CopyToClipboard("hola", zap.NewNop().Sugar())
	assert.False(t, ok)
	assert.Equal(t, "No se pudo copiar. Selecciona el texto manualmente.", notice)
}

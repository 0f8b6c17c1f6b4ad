package models

// QuoteContact holds the contact form of the quote page. Every field is optional.
type QuoteContact struct {
	Company string `json:"company,omitempty"`
	Contact string `json:"contact,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// QuoteItem is the part of a cart line that goes into the message
type QuoteItem struct {
	Name  string `json:"name"`
	Ref   string `json:"ref"`
	Qty   int    `json:"qty"`
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
	Note  string `json:"note,omitempty"`
}

// QuoteResponse is returned by POST /quote
type QuoteResponse struct {
	Message      string `json:"message"`
	WhatsAppHref string `json:"whatsappHref"`
	MailtoHref   string `json:"mailtoHref"`
	ItemCount    int    `json:"itemCount"`
	TotalItems   int    `json:"totalItems"`
}

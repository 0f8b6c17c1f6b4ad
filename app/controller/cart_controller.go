package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"origen-dotacion/models"
	"origen-dotacion/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cart session transport
const (
	CartSessionCookie = "origen_cart_session"
	CartSessionHeader = "X-Cart-Session"

	cartSessionMaxAge = 365 * 24 * 60 * 60
	storageWarning    = "No se pudo guardar el carrito; los cambios se perderán al reiniciar."
)

// CartController handles HTTP requests for the quote cart
type CartController struct {
	sessions *service.CartSessions
	catalog  service.CatalogStoreInterface
	logger   *zap.SugaredLogger
}

// NewCartController creates a new CartController
func NewCartController(sessions *service.CartSessions, catalog service.CatalogStoreInterface, logger *zap.SugaredLogger) *CartController {
	return &CartController{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// requestSession returns the cart session of the request, or "" when it carries
// none. The header takes precedence for non-browser clients. Values that are not
// UUIDs are ignored.
func requestSession(r *http.Request) string {
	if id, ok := parseSession(r.Header.Get(CartSessionHeader)); ok {
		return id
	}
	if cookie, err := r.Cookie(CartSessionCookie); err == nil {
		if id, ok := parseSession(cookie.Value); ok {
			return id
		}
	}
	return ""
}

func parseSession(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// issueSession sets a new session cookie on the response
func issueSession(w http.ResponseWriter) string {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CartSessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   cartSessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// openCart opens the locked cart of the request session. Without a session,
// mint issues a new one; otherwise ok is false and nothing is opened.
func (c *CartController) openCart(w http.ResponseWriter, r *http.Request, mint bool) (cart *service.CartStore, release func(), ok bool) {
	id := requestSession(r)
	if id == "" {
		if !mint {
			return nil, nil, false
		}
		id = issueSession(w)
	}
	cart, release = c.sessions.Open(r.Context(), id)
	return cart, release, true
}

func (c *CartController) writeEmptyCart(w http.ResponseWriter, handler string) {
	writeJSON(w, http.StatusOK, models.CartResponse{Items: []models.CartLine{}}, c.logger, handler)
}

func (c *CartController) writeCart(w http.ResponseWriter, cart *service.CartStore, persistErr error, handler string) {
	resp := models.CartResponse{
		Items:      cart.Items(),
		TotalItems: cart.TotalItems(),
	}
	if persistErr != nil {
		c.logger.Warnf("⚠️  %s: %v", handler, persistErr)
		resp.Warning = storageWarning
	}
	writeJSON(w, http.StatusOK, resp, c.logger, handler)
}

// GetCart handles GET /cart
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetCart", http.MethodGet) {
		return
	}
	id := requestSession(r)
	if id == "" {
		c.writeEmptyCart(w, "GetCart")
		return
	}
	c.writeCart(w, c.sessions.Get(r.Context(), id), nil, "GetCart")
}

// AddItem handles POST /cart/items
// Example body: {"productSlug": "overol-industrial-ripstop", "size": "M", "qty": 2}
// Without size or color, the first option of the product is used.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "AddItem", http.MethodPost) {
		return
	}

	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warnf("❌ AddItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	product, ok := c.findProduct(req)
	if !ok {
		c.logger.Infof("⚠️  AddItem: Product not found: slug=%q id=%q", req.ProductSlug, req.ProductID)
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	opts := models.AddOptions{
		Size:  strings.TrimSpace(req.Size),
		Color: strings.TrimSpace(req.Color),
		Note:  req.Note,
		Qty:   req.Qty.Float(),
	}
	if opts.Size == "" && len(product.Sizes) > 0 {
		opts.Size = product.Sizes[0]
	}
	if opts.Color == "" && len(product.Colors) > 0 {
		opts.Color = product.Colors[0]
	}

	cart, release, _ := c.openCart(w, r, true)
	defer release()
	err := cart.Add(r.Context(), product, opts)
	c.logger.Debugf("🛒 AddItem: product=%s size=%q color=%q total=%d", product.Slug, opts.Size, opts.Color, cart.TotalItems())
	c.writeCart(w, cart, err, "AddItem")
}

func (c *CartController) findProduct(req models.AddToCartRequest) (models.Product, bool) {
	if slug := strings.TrimSpace(req.ProductSlug); slug != "" {
		return c.catalog.ProductBySlug(slug)
	}
	if id := strings.TrimSpace(req.ProductID); id != "" {
		return c.catalog.ProductByID(id)
	}
	return models.Product{}, false
}

// UpdateItem handles PATCH /cart/items/{lineId}
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "UpdateItem", http.MethodPatch) {
		return
	}

	var req models.UpdateCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	lineID := r.PathValue("lineId")
	cart, release, ok := c.openCart(w, r, false)
	if !ok {
		http.Error(w, fmt.Sprintf("Cart line not found: %s", lineID), http.StatusNotFound)
		return
	}
	defer release()
	if _, ok := cart.Line(lineID); !ok {
		http.Error(w, fmt.Sprintf("Cart line not found: %s", lineID), http.StatusNotFound)
		return
	}

	var err error
	if req.Note != nil {
		err = cart.SetNote(r.Context(), lineID, *req.Note)
	}
	if req.Qty != nil && err == nil {
		err = cart.SetQty(r.Context(), lineID, float64(*req.Qty))
	}
	c.writeCart(w, cart, err, "UpdateItem")
}

// RemoveItem handles DELETE /cart/items/{lineId}
// Unknown lines are ignored.
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "RemoveItem", http.MethodDelete) {
		return
	}

	cart, release, ok := c.openCart(w, r, false)
	if !ok {
		c.writeEmptyCart(w, "RemoveItem")
		return
	}
	defer release()
	err := cart.Remove(r.Context(), r.PathValue("lineId"))
	c.writeCart(w, cart, err, "RemoveItem")
}

// ClearCart handles DELETE /cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "ClearCart", http.MethodDelete) {
		return
	}

	cart, release, ok := c.openCart(w, r, false)
	if !ok {
		c.writeEmptyCart(w, "ClearCart")
		return
	}
	defer release()
	err := cart.Clear(r.Context())
	c.writeCart(w, cart, err, "ClearCart")
}

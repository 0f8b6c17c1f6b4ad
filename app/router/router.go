package router

import (
	"net/http"
	"time"

	"origen-dotacion/app/controller"

	"go.uber.org/zap"
)

type Controllers struct {
	Catalog  *controller.CatalogController
	Image    *controller.ImageController
	Warmup   *controller.ImageWarmupController
	Brochure *controller.BrochureController
	Cart     *controller.CartController
	Quote    *controller.QuoteController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on a new mux.
// staticDir is served under /static/ when not empty.
func SetupRoutes(controllers *Controllers, staticDir string, logger *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Catalog routes
	mux.HandleFunc("/catalog", controllers.Catalog.GetCatalog)
	mux.HandleFunc("/catalog/categories", controllers.Catalog.GetCategories)
	mux.HandleFunc("/catalog/categories/{slug}", controllers.Catalog.GetCategoryPage)
	mux.HandleFunc("/catalog/products/{slug}", controllers.Catalog.GetProduct)
	mux.HandleFunc("/catalog/products/{slug}/image", controllers.Image.GetProductImage)
	mux.HandleFunc("/catalog/featured", controllers.Catalog.GetFeatured)
	mux.HandleFunc("/catalog/selection/{slug}", controllers.Catalog.GetSelection)
	mux.HandleFunc("/catalog/search", controllers.Catalog.Search)
	mux.HandleFunc("/catalog/banners", controllers.Catalog.GetBanners)
	mux.HandleFunc("/admin/catalog/refresh", controllers.Catalog.Refresh)
	mux.HandleFunc("/admin/images/warm", controllers.Warmup.WarmImages)

	// Brochure routes
	mux.HandleFunc("/catalog/brochure", controllers.Brochure.Download)
	mux.HandleFunc("/catalog/brochure/render", controllers.Brochure.Render)

	// Cart routes - /cart handles both GET (list) and DELETE (clear)
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			controllers.Cart.ClearCart(w, r)
			return
		}
		controllers.Cart.GetCart(w, r)
	})
	mux.HandleFunc("/cart/items", controllers.Cart.AddItem)
	mux.HandleFunc("/cart/items/{lineId}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			controllers.Cart.RemoveItem(w, r)
			return
		}
		controllers.Cart.UpdateItem(w, r)
	})

	// Quote routes
	mux.HandleFunc("/quote", controllers.Quote.CreateQuote)
	mux.HandleFunc("/contact/whatsapp", controllers.Quote.ContactLink)

	if staticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	return logRequests(mux, logger)
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, logger *zap.SugaredLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Infow("📥 request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

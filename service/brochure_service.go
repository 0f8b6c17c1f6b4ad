package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"
	"time"

	"origen-dotacion/models"
	"origen-dotacion/utils"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrCategoryNotFound is returned when a brochure is requested for an unknown category
var ErrCategoryNotFound = errors.New("category not found")

const (
	brochureItemsPerPage = 9
	brochureTimeout      = 45 * time.Second
)

//go:embed templates/brochure.html
var brochureTemplates embed.FS

var brochureTemplate = template.Must(template.New("brochure.html").
	Funcs(template.FuncMap{"add1": func(i int) int { return i + 1 }}).
	ParseFS(brochureTemplates, "templates/brochure.html"))

// BrochureItem is one product card of the printable brochure
type BrochureItem struct {
	Name     string
	Ref      string
	ImageURL string
	Price    string
	Sizes    string
	Colors   string
}

// BrochureService renders the printable product brochure of a category
type BrochureService struct {
	catalog        CatalogStoreInterface
	baseURL        string
	chromePath     string
	whatsAppNumber string
	quoteEmail     string
	logger         *zap.SugaredLogger
}

// NewBrochureService creates a new BrochureService.
// baseURL is the address where this server is reachable by headless Chrome.
func NewBrochureService(catalog CatalogStoreInterface, baseURL, chromePath, whatsAppNumber, quoteEmail string, logger *zap.SugaredLogger) *BrochureService {
	return &BrochureService{
		catalog:        catalog,
		baseURL:        strings.TrimRight(baseURL, "/"),
		chromePath:     chromePath,
		whatsAppNumber: whatsAppNumber,
		quoteEmail:     quoteEmail,
		logger:         logger,
	}
}

// detectChromePath returns the configured Chrome binary when it exists,
// otherwise the first common installation path found
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// paginateItems splits items into pages of 9 items each
func paginateItems(items []BrochureItem) [][]BrochureItem {
	var pages [][]BrochureItem
	for i := 0; i < len(items); i += brochureItemsPerPage {
		end := min(i+brochureItemsPerPage, len(items))
		pages = append(pages, items[i:end])
	}
	return pages
}

// brochureProducts resolves the title and products of a brochure.
// "todos" and an empty slug cover the whole catalog.
func (s *BrochureService) brochureProducts(slug string) (string, []models.Product, error) {
	if slug == "" || utils.NormalizeText(slug) == models.AllCategorySlug {
		return "Catálogo completo", s.catalog.Products(), nil
	}

	categoryPage := s.catalog.CategoryPage(slug)
	if categoryPage.Category == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, slug)
	}
	return categoryPage.Category.Name, categoryPage.Products, nil
}

func (s *BrochureService) toItem(p models.Product) BrochureItem {
	item := BrochureItem{
		Name:   p.Name,
		Ref:    p.Ref,
		Sizes:  strings.Join(p.Sizes, " · "),
		Colors: strings.Join(p.Colors, " · "),
	}
	if p.ShowPrice && p.Price != nil {
		item.Price = utils.FormatPrice(*p.Price, p.Currency)
	}
	if len(p.Images) > 0 {
		item.ImageURL = fmt.Sprintf("%s/catalog/products/%s/image?size=%s", s.baseURL, url.PathEscape(p.Slug), ImageSizeThumb)
	}
	return item
}

// RenderBrochureHTML renders the brochure HTML for a category slug
func (s *BrochureService) RenderBrochureHTML(slug string) (string, error) {
	title, products, err := s.brochureProducts(slug)
	if err != nil {
		return "", err
	}

	items := make([]BrochureItem, 0, len(products))
	for _, p := range products {
		items = append(items, s.toItem(p))
	}

	templateData := struct {
		Title        string
		Pages        [][]BrochureItem
		ProductCount int
		UpdatedAt    string
		BaseURL      string
		WhatsAppHref string
		Email        string
	}{
		Title:        title,
		Pages:        paginateItems(items),
		ProductCount: len(items),
		UpdatedAt:    s.catalog.Snapshot().UpdatedAt,
		BaseURL:      s.baseURL,
		WhatsAppHref: WhatsAppLink(s.whatsAppNumber, DefaultContactGreet),
		Email:        utils.Norm(s.quoteEmail),
	}
	if templateData.Email == "" {
		templateData.Email = DefaultQuoteEmail
	}

	var buf bytes.Buffer
	if err := brochureTemplate.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// renderURL is the page headless Chrome prints
func (s *BrochureService) renderURL(slug string) string {
	return fmt.Sprintf("%s/catalog/brochure/render?category=%s", s.baseURL, url.QueryEscape(slug))
}

func (s *BrochureService) newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("enable-print-preview", true),
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// waitForAssets waits until fonts and every image settled (loaded or failed)
var waitForAssets = chromedp.Evaluate(`
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete) { resolve(); return; }
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}))
		]);
	})();
`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) })

// GeneratePDF prints the brochure of a category to an A4 PDF using chromedp
func (s *BrochureService) GeneratePDF(ctx context.Context, slug string) ([]byte, error) {
	if _, _, err := s.brochureProducts(slug); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, brochureTimeout)
	defer cancel()

	browserCtx, closeBrowser := s.newBrowser(ctx)
	defer closeBrowser()

	renderURL := s.renderURL(slug)
	s.logger.Infof("📄 BrochureService.GeneratePDF: Rendering %s", renderURL)

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(794, 1123), // A4 at 96 DPI
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		waitForAssets,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 = 8.27" x 11.69"; page breaks come from CSS
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	s.logger.Infof("✓ BrochureService.GeneratePDF: %d bytes for category=%q", len(pdfBuf), slug)
	return pdfBuf, nil
}

// GenerateCoverPNG captures the first brochure page as a PNG, for sharing on chat apps
func (s *BrochureService) GenerateCoverPNG(ctx context.Context, slug string) ([]byte, error) {
	if _, _, err := s.brochureProducts(slug); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, brochureTimeout)
	defer cancel()

	browserCtx, closeBrowser := s.newBrowser(ctx)
	defer closeBrowser()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(794, 1123),
		chromedp.Navigate(s.renderURL(slug)),
		chromedp.WaitReady("body"),
		waitForAssets,
		chromedp.Screenshot(".page", &buf, chromedp.NodeVisible),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture cover: %w", err)
	}
	return buf, nil
}

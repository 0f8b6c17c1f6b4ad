package models

// OrderSentinel is the sort position of anything without an explicit order
const OrderSentinel = 9999

// AllCategorySlug is the slug of the synthetic aggregate category
const AllCategorySlug = "todos"

// Category represents a catalog category. ParentSlug makes it a subcategory.
type Category struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"` // icon name (e.g. "Engineering", "HealthAndSafety")
	ParentSlug  *string  `json:"parentSlug,omitempty"`
	Order       *float64 `json:"order,omitempty"`
}

// SortOrder returns Order or the sentinel when missing
func (c Category) SortOrder() float64 {
	if c.Order == nil {
		return OrderSentinel
	}
	return *c.Order
}

// IsRoot reports whether the category has no parent
func (c Category) IsRoot() bool {
	return c.ParentSlug == nil || *c.ParentSlug == ""
}

// ProductImage is one image of a product gallery
type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Product represents a product of the catalog
type Product struct {
	ID            string         `json:"id"`
	Slug          string         `json:"slug"`
	Ref           string         `json:"ref"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	CategorySlugs []string       `json:"categorySlugs"`
	Images        []ProductImage `json:"images"`
	Sizes         []string       `json:"sizes,omitempty"`
	Colors        []string       `json:"colors,omitempty"`
	ShowPrice     bool           `json:"showPrice,omitempty"`
	Price         *float64       `json:"price,omitempty"`    // only meaningful when ShowPrice
	Currency      string         `json:"currency,omitempty"` // "COP" or "USD"
	Featured      bool           `json:"featured,omitempty"` // shown on home
	Tags          []string       `json:"tags,omitempty"`
}

// FirstImageURL returns the first non-empty image URL or ""
func (p Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// InAnyCategory reports whether the product references one of the given slugs
func (p Product) InAnyCategory(slugs map[string]bool) bool {
	for _, s := range p.CategorySlugs {
		if s != "" && slugs[s] {
			return true
		}
	}
	return false
}

// Banner is a carousel slide
type Banner struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	ImageURL string   `json:"imageUrl"`
	CTALabel string   `json:"ctaLabel,omitempty"`
	CTAHref  string   `json:"ctaHref,omitempty"`
	Order    *float64 `json:"order,omitempty"`
}

// SortOrder returns Order or the sentinel when missing
func (b Banner) SortOrder() float64 {
	if b.Order == nil {
		return OrderSentinel
	}
	return *b.Order
}

// Catalog is the whole snapshot served to the storefront
type Catalog struct {
	UpdatedAt  string     `json:"updatedAt"` // ISO 8601
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
	Banners    []Banner   `json:"banners"`
}

// CategoryNode is a root category with its sorted children
type CategoryNode struct {
	Category
	Children []Category `json:"children"`
}

// CategorySection groups the products of a root category and its children.
// Used by the "todos" page.
type CategorySection struct {
	Parent   Category   `json:"parent"`
	Children []Category `json:"children"`
	Products []Product  `json:"products"`
	AnchorID string     `json:"anchorId"`
}

// CategoryPage is what the category screen needs for one slug
type CategoryPage struct {
	Slug     string            `json:"slug"`
	Category *Category         `json:"category,omitempty"`
	Children []Category        `json:"children"`
	Products []Product         `json:"products"`
	Sections []CategorySection `json:"sections,omitempty"`
}

// SearchResult holds matching categories and products
type SearchResult struct {
	Query      string     `json:"query"`
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

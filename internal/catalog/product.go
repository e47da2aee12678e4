package catalog

import "encoding/json"

// DefaultTagline is shown when a product carries no tagline of its own.
const DefaultTagline = "Designed for comfort, built for every day."

// Product is the canonical, fully defaulted product view-model consumed by
// listing, detail, and card renderers.
type Product struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description"`
	Tagline        string            `json:"tagline"`
	Badge          *string           `json:"badge"`
	Price          float64           `json:"price"`
	PriceFormatted string            `json:"priceFormatted"`
	Category       *Category         `json:"category"`
	Variants       []Variant         `json:"variants"`
	Colors         []Color           `json:"colors"`
	Images         []json.RawMessage `json:"images"`
	MediaSections  []MediaSection    `json:"mediaSections"`
}

// Category is the shape-preserved category subset.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Variant is a normalized product variant.
type Variant struct {
	ID        string  `json:"id"`
	ColorName string  `json:"color_name"`
	HexCode   string  `json:"hex_code"`
	Price     float64 `json:"price"`
	Sizes     []Size  `json:"sizes"`
	Images    []Image `json:"images"`
}

// Size is a normalized variant size.
type Size struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// Image is a variant image. URL is nil when the raw image exposed none of
// the known URL keys.
type Image struct {
	URL *string `json:"url,omitempty"`
	Alt string  `json:"alt"`
}

// Color describes the variant at the same index in Product.Variants.
type Color struct {
	Hex   string `json:"hex"`
	Label string `json:"label"`
}

// MediaSection is a grouped block of marketing content.
type MediaSection struct {
	Type  string      `json:"type"`
	Items []MediaItem `json:"items"`
}

// MediaItem is one image, video, or text entry of a media section.
type MediaItem struct {
	Type string  `json:"type"`
	URL  *string `json:"url"`
	Text string  `json:"text"`
}

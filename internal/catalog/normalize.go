package catalog

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// Normalize maps a raw product record to its canonical view-model. A nil
// record yields nil, which callers treat as "product not found". Any present
// record produces a fully populated Product; the input is never modified.
func Normalize(raw *RawProduct) *Product {
	if raw == nil {
		return nil
	}

	price := 0.0
	if raw.BasePrice != nil {
		price = *raw.BasePrice
	}

	priceFormatted := FormatPrice(price)
	if raw.BasePrice == nil && raw.BasePriceLiteral != "" {
		priceFormatted = raw.BasePriceLiteral
	}

	variants := make([]Variant, 0, len(raw.Variants))
	for _, rv := range raw.Variants {
		variants = append(variants, normalizeVariant(rv, raw.Title, price))
	}

	// Colors come from the normalized variants so both slices stay aligned.
	colors := make([]Color, 0, len(variants))
	for _, v := range variants {
		colors = append(colors, Color{Hex: v.HexCode, Label: v.ColorName})
	}

	images := make([]json.RawMessage, 0, len(raw.Images))
	for _, img := range raw.Images {
		images = append(images, slices.Clone(img))
	}

	sections := make([]MediaSection, 0, len(raw.MediaSections))
	for _, rs := range raw.MediaSections {
		sections = append(sections, normalizeMediaSection(rs))
	}

	p := &Product{
		ID:             raw.ID,
		Title:          raw.Title,
		Slug:           raw.Slug,
		Description:    raw.Description,
		Tagline:        raw.Tagline,
		Price:          price,
		PriceFormatted: priceFormatted,
		Variants:       variants,
		Colors:         colors,
		Images:         images,
		MediaSections:  sections,
	}
	if p.Tagline == "" {
		p.Tagline = DefaultTagline
	}
	if raw.Badge != "" {
		badge := raw.Badge
		p.Badge = &badge
	}
	if raw.Category != nil {
		p.Category = &Category{
			ID:   raw.Category.ID,
			Name: raw.Category.Name,
			Slug: raw.Category.Slug,
		}
	}
	return p
}

// FormatPrice renders a price as dollars with exactly two decimals. Rounding
// works on the exact binary value, so 1.005 (stored as 1.00499...) gives
// "$1.00".
func FormatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return "$" + strconv.FormatFloat(price, 'f', 2, 64)
	}
	return "$" + decimal.NewFromFloatWithExponent(price, -2).StringFixed(2)
}

func normalizeVariant(rv RawVariant, title string, basePrice float64) Variant {
	v := Variant{
		ID:        rv.ID,
		ColorName: rv.ColorName,
		HexCode:   rv.HexCode,
		Price:     basePrice,
		Sizes:     make([]Size, 0, len(rv.Sizes)),
		Images:    make([]Image, 0, len(rv.Images)),
	}
	if rv.PriceOverride != nil {
		v.Price = *rv.PriceOverride
	}
	for _, s := range rv.Sizes {
		v.Sizes = append(v.Sizes, Size{ID: s.ID, Label: s.SizeLabel, Stock: s.Stock})
	}
	for i, img := range rv.Images {
		v.Images = append(v.Images, Image{
			URL: resolveImageURL(img),
			Alt: title + " - " + rv.ColorName + " - " + strconv.Itoa(i+1),
		})
	}
	return v
}

// resolveImageURL picks image_url, then image, then url.
func resolveImageURL(img RawImage) *string {
	for _, candidate := range []*string{img.ImageURL, img.Image, img.URL} {
		if candidate != nil {
			u := *candidate
			return &u
		}
	}
	return nil
}

func normalizeMediaSection(rs RawMediaSection) MediaSection {
	s := MediaSection{
		Type:  rs.SectionType,
		Items: make([]MediaItem, 0, len(rs.Items)),
	}
	for _, ri := range rs.Items {
		item := MediaItem{Type: ri.ItemType, Text: ri.Text}
		switch {
		case ri.Image != nil:
			u := *ri.Image
			item.URL = &u
		case ri.VideoURL != nil:
			u := *ri.VideoURL
			item.URL = &u
		}
		s.Items = append(s.Items, item)
	}
	return s
}

package catalog

import (
	"encoding/json"
	"errors"
	"math"
	"slices"

	"github.com/tidwall/gjson"
)

// Boundary errors returned by the raw payload parser.
var (
	ErrInvalidPayload = errors.New("invalid product payload")
	ErrNotObject      = errors.New("product payload is not a JSON object")
)

// RawProduct is a product record as received from the catalog API. Every
// field is optional; zero values mean the field was absent or unusable.
type RawProduct struct {
	ID          string
	Title       string
	Slug        string
	Description string
	Tagline     string
	Badge       string

	// BasePrice is nil when base_price was absent or not a JSON number.
	BasePrice *float64
	// BasePriceLiteral keeps the text of a base_price that was present
	// but not numeric.
	BasePriceLiteral string

	Category      *RawCategory
	Variants      []RawVariant
	Images        []json.RawMessage
	MediaSections []RawMediaSection
}

// RawCategory is the category object embedded in a raw product.
type RawCategory struct {
	ID   string
	Name string
	Slug string
}

// RawVariant is a purchasable color/price/stock combination as received.
type RawVariant struct {
	ID            string
	ColorName     string
	HexCode       string
	PriceOverride *float64
	Sizes         []RawSize
	Images        []RawImage
}

// RawSize is one size entry of a raw variant.
type RawSize struct {
	ID        string
	SizeLabel string
	Stock     int
}

// RawImage carries the three keys a variant image URL may live under.
// A nil pointer means the key was absent or null.
type RawImage struct {
	ImageURL *string
	Image    *string
	URL      *string
}

// RawMediaSection is a marketing content block as received.
type RawMediaSection struct {
	SectionType string
	Items       []RawMediaItem
}

// RawMediaItem is one entry of a raw media section.
type RawMediaItem struct {
	ItemType string
	Image    *string
	VideoURL *string
	Text     string
}

// ParseRawProduct decodes one raw product payload. A JSON null yields a nil
// product and no error. Wrong-shaped optional fields are absorbed into zero
// values; only malformed JSON and a non-object top level are rejected.
func ParseRawProduct(data []byte) (*RawProduct, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, ErrNotObject
	}
	p := rawProductFrom(res)
	return &p, nil
}

// ParseRawProductList decodes a JSON array of raw products. Null or
// non-object elements become nil entries so positions are preserved.
func ParseRawProductList(data []byte) ([]*RawProduct, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPayload
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return []*RawProduct{}, nil
	}
	if !res.IsArray() {
		return nil, ErrInvalidPayload
	}
	items := res.Array()
	out := make([]*RawProduct, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			out = append(out, nil)
			continue
		}
		p := rawProductFrom(item)
		out = append(out, &p)
	}
	return out, nil
}

// UnmarshalJSON applies the lenient parsing rules of ParseRawProduct so a
// RawProduct can be embedded in any JSON envelope.
func (p *RawProduct) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidPayload
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil
	}
	if !res.IsObject() {
		return ErrNotObject
	}
	*p = rawProductFrom(res)
	return nil
}

func rawProductFrom(res gjson.Result) RawProduct {
	p := RawProduct{
		ID:          text(res.Get("id")),
		Title:       text(res.Get("title")),
		Slug:        text(res.Get("slug")),
		Description: text(res.Get("description")),
		Tagline:     text(res.Get("tagline")),
		Badge:       text(res.Get("badge")),
	}

	if price := res.Get("base_price"); defined(price) {
		if v, ok := number(price); ok {
			p.BasePrice = &v
		} else if price.Type == gjson.Number {
			p.BasePriceLiteral = price.Raw
		} else {
			p.BasePriceLiteral = price.String()
		}
	}

	if cat := res.Get("category"); cat.IsObject() {
		p.Category = &RawCategory{
			ID:   text(cat.Get("id")),
			Name: text(cat.Get("name")),
			Slug: text(cat.Get("slug")),
		}
	}

	for _, v := range array(res.Get("variants")) {
		p.Variants = append(p.Variants, rawVariantFrom(v))
	}

	for _, img := range array(res.Get("images")) {
		p.Images = append(p.Images, json.RawMessage(slices.Clone([]byte(img.Raw))))
	}

	for _, s := range array(res.Get("media_sections")) {
		section := RawMediaSection{SectionType: text(s.Get("section_type"))}
		for _, item := range array(s.Get("items")) {
			section.Items = append(section.Items, RawMediaItem{
				ItemType: text(item.Get("item_type")),
				Image:    optional(item.Get("image")),
				VideoURL: optional(item.Get("video_url")),
				Text:     text(item.Get("text")),
			})
		}
		p.MediaSections = append(p.MediaSections, section)
	}

	return p
}

func rawVariantFrom(v gjson.Result) RawVariant {
	rv := RawVariant{
		ID:        text(v.Get("id")),
		ColorName: text(v.Get("color_name")),
		HexCode:   text(v.Get("hex_code")),
	}
	if f, ok := number(v.Get("price_override")); ok {
		rv.PriceOverride = &f
	}
	for _, s := range array(v.Get("sizes")) {
		rv.Sizes = append(rv.Sizes, RawSize{
			ID:        text(s.Get("id")),
			SizeLabel: text(s.Get("size_label")),
			Stock:     int(s.Get("stock").Int()),
		})
	}
	for _, img := range array(v.Get("images")) {
		rv.Images = append(rv.Images, RawImage{
			ImageURL: optional(img.Get("image_url")),
			Image:    optional(img.Get("image")),
			URL:      optional(img.Get("url")),
		})
	}
	return rv
}

// defined reports whether a key is present with a non-null value.
func defined(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// number returns r as a finite float. Numbers that overflow float64 are
// reported as not numeric.
func number(r gjson.Result) (float64, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	f := r.Float()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func text(r gjson.Result) string {
	if !defined(r) {
		return ""
	}
	return r.String()
}

func optional(r gjson.Result) *string {
	if !defined(r) {
		return nil
	}
	s := r.String()
	return &s
}

// array returns the elements of r when it is a JSON array, else nil.
func array(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

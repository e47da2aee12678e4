package slug

import (
	gosimpleslug "github.com/gosimple/slug"
)

// Make builds a URL-friendly slug, transliterating non-ASCII letters.
//
//	"Trail Runner 2" -> "trail-runner-2"
//	"Çocuk Ürünleri" -> "cocuk-urunleri"
func Make(name string) string {
	return gosimpleslug.Make(name)
}

// IsValid reports whether s is already a canonical slug.
func IsValid(s string) bool {
	return gosimpleslug.IsSlug(s)
}

// Canonical returns s unchanged when it is a valid slug and its slugified
// form otherwise, so "Trail-Runner" and "trail-runner" share one cache key.
func Canonical(s string) string {
	if IsValid(s) {
		return s
	}
	return Make(s)
}

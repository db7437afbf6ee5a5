package recording

import (
	"fmt"
	"strings"
)

// Category is the operational bucket assigned to a recording per processing
// attempt. Reprocessing may reassign it.
type Category string

const (
	CategoryCoaching Category = "Coaching"
	CategoryGamePlan Category = "GamePlan"
	CategorySAT      Category = "SAT"
	CategoryMISC     Category = "MISC"
	CategoryTrivial  Category = "Trivial"
)

var allCategories = []Category{
	CategoryCoaching,
	CategoryGamePlan,
	CategorySAT,
	CategoryMISC,
	CategoryTrivial,
}

// Valid reports whether the category is a member of the closed set.
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// PathSegment returns the storage path segment the downstream filer uses for
// this category.
func (c Category) PathSegment() string {
	return strings.ToLower(string(c))
}

// SuppressNotifications reports whether filing under this category should
// suppress the usual completion notifications. Trivial recordings and no-show
// MISC sessions are noise nobody wants pinged about.
func (c Category) SuppressNotifications(noShow bool) bool {
	if c == CategoryTrivial {
		return true
	}
	return c == CategoryMISC && noShow
}

// ParseCategory maps a declared category tag (for example on manual imports)
// to the closed Category set.
func ParseCategory(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	for _, known := range allCategories {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", value)
}

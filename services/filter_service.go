package services

import (
	"strconv"
	"strings"

	"github.com/gilded-grove/concierge-api/config"
)

// ProductFilter is the transient query shape handed to a product provider.
// Built per request, never persisted.
type ProductFilter struct {
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PriceMinCents int64    `json:"price_min_cents,omitempty"`
	PriceMaxCents int64    `json:"price_max_cents,omitempty"`
	ReadyToShip   *bool    `json:"ready_to_ship,omitempty"`
	FeaturedOnly  bool     `json:"featured_only,omitempty"`
	Sort          string   `json:"sort,omitempty"` // price-asc, price-desc, newest
	Limit         int      `json:"limit,omitempty"`
	Query         string   `json:"query,omitempty"`
}

// categorySynonyms maps the ways customers name a category to its canonical
// singular form.
var categorySynonyms = map[string]string{
	"ring":      "ring",
	"rings":     "ring",
	"band":      "ring",
	"bands":     "ring",
	"solitaire": "ring",
	"necklace":  "necklace",
	"necklaces": "necklace",
	"pendant":   "necklace",
	"pendants":  "necklace",
	"chain":     "necklace",
	"chains":    "necklace",
	"bracelet":  "bracelet",
	"bracelets": "bracelet",
	"bangle":    "bracelet",
	"bangles":   "bracelet",
	"tennis":    "bracelet",
	"earring":   "earrings",
	"earrings":  "earrings",
	"stud":      "earrings",
	"studs":     "earrings",
	"hoop":      "earrings",
	"hoops":     "earrings",
}

// siblingCategories lists the alternatives offered when a category search
// comes back empty. Order matters: the first two siblings become suggestions.
var siblingCategories = map[string][]string{
	"ring":     {"bracelet", "necklace"},
	"necklace": {"earrings", "ring"},
	"bracelet": {"ring", "necklace"},
	"earrings": {"necklace", "bracelet"},
}

// CanonicalCategory normalizes a category word to its canonical singular
// form, or returns "" when the word names no known category
func CanonicalCategory(word string) string {
	return categorySynonyms[strings.ToLower(strings.TrimSpace(word))]
}

// SiblingsOf returns the alternative categories offered for an empty result
func SiblingsOf(category string) []string {
	return siblingCategories[category]
}

// FilterService translates a resolved intent and its extracted parameters
// into a provider query
type FilterService struct {
	fallbackCategory string
}

// NewFilterService creates a filter service using the configured fallback
// category for unrecognized input
func NewFilterService(cfg *config.Config) *FilterService {
	fallback := cfg.FallbackCategory
	if fallback == "" {
		fallback = "ring"
	}
	return &FilterService{fallbackCategory: fallback}
}

// BuildFilter produces a ProductFilter from intent params. Unrecognized
// categories fall back to the configured default rather than failing.
func (s *FilterService) BuildFilter(params map[string]string) ProductFilter {
	filter := ProductFilter{Limit: 12}

	if raw, ok := params["category"]; ok {
		if canonical := CanonicalCategory(raw); canonical != "" {
			filter.Category = canonical
		} else {
			filter.Category = s.fallbackCategory
		}
	}

	if raw, ok := params["tags"]; ok {
		for _, tag := range strings.Split(raw, ",") {
			if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
				filter.Tags = append(filter.Tags, t)
			}
		}
	}

	if raw, ok := params["priceLt"]; ok {
		// Customers quote whole dollars; the catalog stores cents
		if dollars, err := strconv.ParseInt(raw, 10, 64); err == nil && dollars > 0 {
			filter.PriceMaxCents = dollars * 100
		}
	}

	if raw, ok := params["readyToShip"]; ok {
		if ready, err := strconv.ParseBool(raw); err == nil {
			filter.ReadyToShip = &ready
		}
	}

	if raw, ok := params["featured"]; ok {
		if featured, err := strconv.ParseBool(raw); err == nil {
			filter.FeaturedOnly = featured
		}
	}

	if raw, ok := params["q"]; ok {
		filter.Query = strings.TrimSpace(raw)
	}

	if raw, ok := params["sort"]; ok {
		switch raw {
		case "price-asc", "price-desc", "newest":
			filter.Sort = raw
		}
	}

	return filter
}

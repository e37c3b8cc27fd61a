// Package pricing holds the quote catalog and derives price and timeline
// estimates from a selection.
package pricing

import (
	"errors"
	"fmt"
	"slices"
)

// Feature is an optional add-on for a project type. Price is in whole USD.
type Feature struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Price int    `json:"price" yaml:"price"`
}

// ProjectType is a base offering of the catalog.
type ProjectType struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description"`
	BasePrice   int       `json:"basePrice" yaml:"base_price"`
	BaseDays    int       `json:"baseDays" yaml:"base_days"`
	Features    []Feature `json:"features" yaml:"features"`
}

// Feature looks up a feature of t by id.
func (t *ProjectType) Feature(id string) (Feature, bool) {
	for _, f := range t.Features {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// Catalog is an immutable set of project types and budget bands.
type Catalog struct {
	types   []ProjectType
	index   map[string]int
	budgets []string
}

var (
	ErrEmptyCatalog = errors.New("catalog has no project types")
	ErrInvalidType  = errors.New("invalid project type")
)

// NewCatalog validates types and budgets and returns a catalog holding copies of them.
func NewCatalog(types []ProjectType, budgets []string) (*Catalog, error) {
	if len(types) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		types:   make([]ProjectType, len(types)),
		index:   make(map[string]int, len(types)),
		budgets: slices.Clone(budgets),
	}
	for i, t := range types {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: type #%d has no id", ErrInvalidType, i+1)
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate type id %q", ErrInvalidType, t.ID)
		}
		if t.BasePrice < 0 {
			return nil, fmt.Errorf("%w: %q has a negative base price", ErrInvalidType, t.ID)
		}
		if t.BaseDays <= 0 {
			return nil, fmt.Errorf("%w: %q must have positive base days", ErrInvalidType, t.ID)
		}
		seen := make(map[string]bool, len(t.Features))
		for _, f := range t.Features {
			if f.ID == "" {
				return nil, fmt.Errorf("%w: %q has a feature without id", ErrInvalidType, t.ID)
			}
			if seen[f.ID] {
				return nil, fmt.Errorf("%w: %q lists feature %q twice", ErrInvalidType, t.ID, f.ID)
			}
			if f.Price < 0 {
				return nil, fmt.Errorf("%w: feature %q of %q has a negative price", ErrInvalidType, f.ID, t.ID)
			}
			seen[f.ID] = true
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		t.Features = slices.Clone(t.Features)
		c.types[i] = t
		c.index[t.ID] = i
	}
	return c, nil
}

// Types returns the project types in catalog order.
func (c *Catalog) Types() []ProjectType {
	out := make([]ProjectType, len(c.types))
	for i, t := range c.types {
		t.Features = slices.Clone(t.Features)
		out[i] = t
	}
	return out
}

// Type looks up a project type by id.
func (c *Catalog) Type(id string) (*ProjectType, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	t := c.types[i]
	t.Features = slices.Clone(t.Features)
	return &t, true
}

// BudgetBands returns the budget labels offered to the user.
func (c *Catalog) BudgetBands() []string {
	return slices.Clone(c.budgets)
}

// HasBudgetBand reports whether band is one of the offered labels.
func (c *Catalog) HasBudgetBand(band string) bool {
	return slices.Contains(c.budgets, band)
}

// DefaultBudgetBands are offered when the catalog file does not list any.
var DefaultBudgetBands = []string{
	"Under $500",
	"$500 - $1,000",
	"$1,000 - $3,000",
	"$3,000+",
	"Not sure yet",
}

var defaultTypes = []ProjectType{
	{
		ID:          "landing",
		Name:        "Landing Page",
		Description: "A single page to present a product, event or person.",
		BasePrice:   150,
		BaseDays:    7,
		Features: []Feature{
			{ID: "responsive", Name: "Responsive Design", Price: 30},
			{ID: "animation", Name: "Animations", Price: 50},
			{ID: "seo", Name: "SEO Optimization", Price: 20},
			{ID: "contact-form", Name: "Contact Form", Price: 20},
			{ID: "analytics", Name: "Analytics", Price: 20},
		},
	},
	{
		ID:          "business",
		Name:        "Business Website",
		Description: "A multi-page company site with editable content.",
		BasePrice:   400,
		BaseDays:    14,
		Features: []Feature{
			{ID: "responsive", Name: "Responsive Design", Price: 30},
			{ID: "cms", Name: "CMS Integration", Price: 120},
			{ID: "blog", Name: "Blog", Price: 80},
			{ID: "seo", Name: "SEO Optimization", Price: 50},
			{ID: "multi-lang", Name: "Multi-language", Price: 80},
			{ID: "contact-form", Name: "Contact Form", Price: 20},
		},
	},
	{
		ID:          "ecommerce",
		Name:        "E-commerce Store",
		Description: "An online shop with catalog, cart and checkout.",
		BasePrice:   700,
		BaseDays:    21,
		Features: []Feature{
			{ID: "responsive", Name: "Responsive Design", Price: 30},
			{ID: "payment", Name: "Payment Gateway", Price: 150},
			{ID: "inventory", Name: "Inventory Management", Price: 100},
			{ID: "auth", Name: "User Accounts", Price: 80},
			{ID: "admin", Name: "Admin Dashboard", Price: 150},
			{ID: "seo", Name: "SEO Optimization", Price: 50},
		},
	},
	{
		ID:          "webapp",
		Name:        "Web Application",
		Description: "A custom application with its own backend.",
		BasePrice:   1000,
		BaseDays:    30,
		Features: []Feature{
			{ID: "auth", Name: "Authentication", Price: 300},
			{ID: "api", Name: "API Development", Price: 400},
			{ID: "realtime", Name: "Real-time Features", Price: 500},
			{ID: "admin", Name: "Admin Dashboard", Price: 500},
			{ID: "deploy", Name: "Deployment & Hosting", Price: 400},
			{ID: "testing", Name: "Automated Testing", Price: 300},
		},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(defaultTypes, DefaultBudgetBands)
	if err != nil {
		panic(err)
	}
	return c
}

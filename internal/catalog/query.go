package catalog

import (
	"math"
	"sort"
	"strings"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 4

type SortOption string

const (
	SortNone      SortOption = ""
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
	SortName      SortOption = "name"
)

// Query is the client-side view state: search term, inclusive price range,
// sort option and requested page. A MaxPrice of zero means unbounded.
type Query struct {
	SearchTerm string
	MinPrice   float64
	MaxPrice   float64
	Sort       SortOption
	Page       int
}

// Result is one recomputed catalog view. Page is the effective page, which
// may differ from Query.Page: requests past the last page are clamped so a
// narrowed filter never renders an empty page.
type Result struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
	Page       int       `json:"page"`
}

// Apply recomputes the view from scratch: filter, then sort, then paginate.
func Apply(products []Product, q Query) Result {
	filtered := Filter(products, q.SearchTerm, q.MinPrice, q.MaxPrice)
	Sort(filtered, q.Sort)
	return paginate(filtered, q.Page)
}

// Filter keeps products whose name contains the search term
// (case-insensitive) and whose price lies within [minPrice, maxPrice]
// inclusive. maxPrice <= 0 leaves the range unbounded above.
func Filter(products []Product, searchTerm string, minPrice, maxPrice float64) []Product {
	term := strings.ToLower(searchTerm)

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		if p.Price < minPrice {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Sort orders products in place according to the sort option.
func Sort(products []Product, opt SortOption) {
	switch opt {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortName:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	}
}

func paginate(products []Product, page int) Result {
	total := len(products)
	totalPages := int(math.Ceil(float64(total) / float64(PageSize)))

	if page < 1 {
		page = 1
	}
	// Clamp rather than render nothing when a filter change shrank the result
	// set below the requested page.
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	if total == 0 {
		return Result{Products: []Product{}, Total: 0, TotalPages: 0, Page: 1}
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}

	return Result{
		Products:   products[start:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
	}
}

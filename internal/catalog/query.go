// Package catalog implements the storefront's product query engine: typed
// filter criteria combined as conjunctive predicates, explicit sort orders,
// and offset pagination over hydrated product views.
package catalog

import (
	"sort"
	"strings"

	"github.com/Awaddd/bazaar-backend/internal/domain"
)

// Sort is an explicit product ordering.
type Sort string

const (
	// SortNewest orders by descending id, so the most recently created
	// products come first. This is the default.
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNameAsc   Sort = "name_asc"
)

// ParseSort maps a caller-supplied sort string to a Sort. Unrecognized
// values fall back to SortNewest silently.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
		return Sort(s)
	default:
		return SortNewest
	}
}

// Query is the typed filter/sort/page criteria for listing products. All
// filters are optional and combine with AND semantics; the order they are
// set in never affects the result.
type Query struct {
	// ExcludeID drops this single product from the result. Used for
	// related-items views that must not show the current product.
	ExcludeID *int64

	// Brands keeps only products whose brand name matches one of these
	// exactly (case-sensitive).
	Brands []string

	// MinPriceCents and MaxPriceCents are inclusive bounds. A min above
	// the max yields an empty result rather than an error.
	MinPriceCents *int64
	MaxPriceCents *int64

	// Size keeps only products carrying an available size entry with this
	// number.
	Size *int

	// Search is a case-insensitive substring match against the product name.
	Search string

	Sort Sort

	// Page is 1-based; values below 1 are treated as 1. Limit nil means
	// the result is returned unpaged.
	Page  int
	Limit *int
}

// Result is one page of matching products plus the total match count
// before pagination.
type Result struct {
	Products []domain.ProductView
	Total    int
}

// Run filters, sorts, and paginates the given product collection according
// to the query. The input slice is not modified.
func Run(products []domain.ProductView, q Query) Result {
	matched := make([]domain.ProductView, 0, len(products))

	searchLower := strings.ToLower(q.Search)
	brandSet := make(map[string]struct{}, len(q.Brands))
	for _, b := range q.Brands {
		brandSet[b] = struct{}{}
	}

	for _, p := range products {
		if matches(p, q, searchLower, brandSet) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, q.Sort)

	total := len(matched)

	if q.Limit == nil {
		return Result{Products: matched, Total: total}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := *q.Limit
	if limit < 0 {
		limit = 0
	}

	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return Result{Products: matched[offset:end], Total: total}
}

func matches(p domain.ProductView, q Query, searchLower string, brandSet map[string]struct{}) bool {
	if q.ExcludeID != nil && p.ID == *q.ExcludeID {
		return false
	}

	if len(brandSet) > 0 {
		if _, ok := brandSet[p.Brand]; !ok {
			return false
		}
	}

	if q.MinPriceCents != nil && p.PriceCents < *q.MinPriceCents {
		return false
	}
	if q.MaxPriceCents != nil && p.PriceCents > *q.MaxPriceCents {
		return false
	}

	if q.Size != nil && !p.HasAvailableSize(*q.Size) {
		return false
	}

	if searchLower != "" && !strings.Contains(strings.ToLower(p.Name), searchLower) {
		return false
	}

	return true
}

// sortProducts orders the matched products in place. Sorts are stable so
// ties keep their original relative order.
func sortProducts(products []domain.ProductView, sortBy Sort) {
	switch sortBy {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceCents < products[j].PriceCents
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceCents > products[j].PriceCents
		})
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Name < products[j].Name
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ID > products[j].ID
		})
	}
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_SubstringAndPriceMustBothMatch(t *testing.T) {
	products := []Product{
		{Name: "Mug", Price: 10},
		{Name: "Mat", Price: 100},
	}

	// "Mat" matches the substring but fails price <= 50; "Mug" is in range but
	// lacks the substring. Nothing survives.
	got := Filter(products, "ma", 0, 50)
	assert.Empty(t, got)
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	products := []Product{
		{Name: "Coffee Mug", Price: 10},
		{Name: "Doormat", Price: 15},
		{Name: "Kettle", Price: 30},
	}

	got := Filter(products, "MA", 0, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Doormat", got[0].Name)
}

func TestFilter_PriceRangeInclusive(t *testing.T) {
	products := []Product{
		{Name: "a", Price: 10},
		{Name: "b", Price: 50},
		{Name: "c", Price: 51},
	}

	got := Filter(products, "", 10, 50)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
}

func TestSort_PriceAscending(t *testing.T) {
	products := []Product{{Price: 30}, {Price: 10}, {Price: 20}}

	Sort(products, SortPriceAsc)

	assert.Equal(t, []float64{10, 20, 30}, prices(products))
}

func TestSort_PriceDescending(t *testing.T) {
	products := []Product{{Price: 30}, {Price: 10}, {Price: 20}}

	Sort(products, SortPriceDesc)

	assert.Equal(t, []float64{30, 20, 10}, prices(products))
}

func TestSort_NameLexicographic(t *testing.T) {
	products := []Product{{Name: "b"}, {Name: "a"}}

	Sort(products, SortName)

	assert.Equal(t, "a", products[0].Name)
	assert.Equal(t, "b", products[1].Name)
}

func TestSort_NoneKeepsOrder(t *testing.T) {
	products := []Product{{Name: "z", Price: 1}, {Name: "a", Price: 2}}

	Sort(products, SortNone)

	assert.Equal(t, "z", products[0].Name)
}

func TestApply_Pagination(t *testing.T) {
	products := make([]Product, 7)
	for i := range products {
		products[i] = Product{Name: string(rune('a' + i)), Price: float64(i + 1)}
	}

	res := Apply(products, Query{Page: 1})
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Products, 4)

	res = Apply(products, Query{Page: 2})
	assert.Len(t, res.Products, 3)
	assert.Equal(t, 2, res.Page)
}

func TestApply_PageClampedWhenFilterShrinksResults(t *testing.T) {
	products := []Product{
		{Name: "mug 1", Price: 5},
		{Name: "mug 2", Price: 6},
		{Name: "mug 3", Price: 7},
		{Name: "towel 1", Price: 8},
		{Name: "towel 2", Price: 9},
	}

	// Page 2 exists unfiltered...
	res := Apply(products, Query{Page: 2})
	require.Equal(t, 2, res.Page)
	require.NotEmpty(t, res.Products)

	// ...but narrowing to "mug" leaves 3 items on a single page. The stale
	// page request must not render an empty page.
	res = Apply(products, Query{SearchTerm: "mug", Page: 2})
	assert.Equal(t, 1, res.Page)
	assert.Len(t, res.Products, 3)
}

func TestApply_EmptyResult(t *testing.T) {
	res := Apply(nil, Query{SearchTerm: "nothing", Page: 3})
	assert.Empty(t, res.Products)
	assert.Zero(t, res.TotalPages)
	assert.Equal(t, 1, res.Page)
}

func prices(products []Product) []float64 {
	out := make([]float64, len(products))
	for i, p := range products {
		out[i] = p.Price
	}
	return out
}

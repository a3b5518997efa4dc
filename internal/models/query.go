package models

// SortKey selects the ordering of a product listing.
type SortKey string

const (
	SortNewest    SortKey = "createdAt"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
)

// ParseSortKey maps a raw query value to a SortKey.
// Empty and unrecognised values resolve to SortNewest.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNewest:
		return SortKey(raw)
	default:
		return SortNewest
	}
}

const (
	DefaultPageSize = 8
	MaxPageSize     = 100
)

// ProductQuery describes a filtered, sorted, paginated catalog listing.
type ProductQuery struct {
	Search   string
	Category Category // empty or CategoryAll disables the filter
	Page     int      // 1-based
	Limit    int
	Sort     SortKey
}

// Offset is the number of matching products skipped before the page starts.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// FiltersCategory reports whether the query restricts results to one category.
func (q ProductQuery) FiltersCategory() bool {
	return q.Category != "" && q.Category != CategoryAll
}

// ProductPage is one page of a product listing plus the pagination envelope.
type ProductPage struct {
	Items []Product `json:"data"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
	Limit int       `json:"limit"`
}

// PageCount returns ceil(total/limit).
func PageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

package component

import (
	"net/url"
	"strconv"
	"strings"
)

// ListParams holds the search and pagination state of the invoice listing.
type ListParams struct {
	Query string // Search term (empty for everything)
	Page  int    // Current page number, starting at 1
}

// QueryString returns the query string portion of the URL (without leading ?).
func (p ListParams) QueryString() string {
	params := url.Values{}

	if q := strings.TrimSpace(p.Query); q != "" {
		params.Set("query", q)
	}
	// Page 1 is the default
	if p.Page > 1 {
		params.Set("page", strconv.Itoa(p.Page))
	}

	return params.Encode()
}

// BuildURL constructs a full URL with the base path and query parameters.
func (p ListParams) BuildURL(baseURL string) string {
	qs := p.QueryString()
	if qs == "" {
		return baseURL
	}
	return baseURL + "?" + qs
}

// WithQuery returns a copy with the search term changed.
// This resets pagination since the result set changes.
func (p ListParams) WithQuery(query string) ListParams {
	p.Query = query
	return p.WithoutPagination()
}

// WithoutPagination returns a copy with pagination reset to the first page.
func (p ListParams) WithoutPagination() ListParams {
	p.Page = 1
	return p
}

// WithPage returns a copy for navigating to page.
func (p ListParams) WithPage(page int) ListParams {
	p.Page = page
	return p
}

// ParseQueryString parses a query string into ListParams. Unparseable or
// non-positive pages fall back to the first page.
func ParseQueryString(qs string) ListParams {
	values, err := url.ParseQuery(qs)
	if err != nil {
		return ListParams{Page: 1}
	}
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return ListParams{
		Query: values.Get("query"),
		Page:  page,
	}
}

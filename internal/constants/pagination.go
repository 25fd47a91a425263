package constants

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination Query Parameters
const (
	QueryParamPage     = "page"
	QueryParamLimit    = "limit"
	QueryParamSortBy   = "sortBy"
	QueryParamOrdering = "ordering"
)

// Pagination Limits
const (
	MinPage  = 1
	MinLimit = 1
)

// PaginationParams holds the page window requested by the client.
type PaginationParams struct {
	Page   int // 1-based page number
	Limit  int // page size
	Offset int // (Page - 1) * Limit
}

// ParsePaginationParams reads page and limit from the query string. A limit
// that is missing or not a positive integer falls back to defaultLimit and
// is capped at maxLimit. The second return value is false when page is
// present but not a positive integer.
func ParsePaginationParams(c *gin.Context, defaultLimit, maxLimit int) (PaginationParams, bool) {
	page := MinPage
	if raw := c.Query(QueryParamPage); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < MinPage {
			return PaginationParams{}, false
		}
		page = p
	}

	limit := defaultLimit
	if raw := c.Query(QueryParamLimit); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l >= MinLimit {
			limit = l
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, true
}

// TotalPages returns the number of pages for total items; an empty result
// still has one page.
func (p PaginationParams) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 1
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// PageLinks builds the absolute next/previous URLs for the current request.
// Every other query parameter is preserved. A nil link means there is no
// such page.
func PageLinks(c *gin.Context, p PaginationParams, total int64) (next, previous *string) {
	if int64(p.Page)*int64(p.Limit) < total {
		link := pageURL(c, p.Page+1)
		next = &link
	}
	if p.Page > MinPage {
		link := pageURL(c, p.Page-1)
		previous = &link
	}
	return next, previous
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader(HeaderXForwardedProto); proto != "" {
		scheme = proto
	}

	host := c.Request.Host
	if fwd := c.GetHeader(HeaderXForwardedHost); fwd != "" {
		host = fwd
	}

	query := c.Request.URL.Query()
	query.Set(QueryParamPage, strconv.Itoa(page))

	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

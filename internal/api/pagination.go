package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// pageRequest reads the page and limit query parameters.
func pageRequest(c *gin.Context, defaultLimit int) (types.PageRequest, bool) {
	page := types.PageRequest{Page: 1, Limit: defaultLimit}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(notFound("page"))
			return page, false
		}
		page.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(badQuery("limit", "limit must be a positive integer"))
			return page, false
		}
		page.Limit = min(n, maxPageSize)
	}
	return page, true
}

// newPage wraps one page of results with links to its neighbours. A page past
// the end of a non-empty list is not found.
func newPage[T any](c *gin.Context, results []T, total int64, page types.PageRequest) (*types.Page[T], error) {
	if page.Page > 1 && int64(page.Offset()) >= total {
		return nil, notFound("page")
	}
	if results == nil {
		results = []T{}
	}
	p := &types.Page[T]{Count: total, Results: results}
	if int64(page.Offset()+len(results)) < total {
		p.Next = pageURL(c, page.Page+1)
	}
	if page.Page > 1 {
		p.Previous = pageURL(c, page.Page-1)
	}
	return p, nil
}

func pageURL(c *gin.Context, n int) *string {
	u := *c.Request.URL
	q := u.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, u.RequestURI())
	return &link
}

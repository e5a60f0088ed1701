package pagination

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

const MaxLimit = 100

// Params is the page window requested through ?page=&limit=.
type Params struct {
	Page  int
	Limit int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// FromQuery reads page and limit, falling back to page 1 and defaultLimit
// for missing or malformed values.
func FromQuery(c *gin.Context, defaultLimit int) Params {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Page is the list envelope: total count, neighbour page links and results.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func New[T any](c *gin.Context, p Params, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}

	out := Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Limit) < total {
		next := pageURL(c, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

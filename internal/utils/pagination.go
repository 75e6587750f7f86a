package utils

import "github.com/gofiber/fiber/v2"

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is the parsed page window plus the echo fields for responses.
type Pagination struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// ParsePagination reads page and limit query params with sane clamping.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", DefaultPageSize)
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// PageResponse wraps a paginated collection with its total count.
func PageResponse(items interface{}, total int64, p Pagination) fiber.Map {
	return fiber.Map{
		"items": items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}
}

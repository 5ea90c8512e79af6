package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination and sorting parameters
type Params struct {
	Page      int
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string // "asc" or "desc"; repositories enforce field allow-lists
}

// Parse extracts and validates page/limit/sort from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortOrder := c.Query("sort_order")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = ""
	}

	return Params{
		Page:      page,
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    c.Query("sort_by"),
		SortOrder: sortOrder,
	}
}

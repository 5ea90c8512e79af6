package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	p := Parse(ctxWithQuery(""))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Empty(t, p.SortOrder)
}

func TestParseClampsLimit(t *testing.T) {
	p := Parse(ctxWithQuery("page=3&limit=500"))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset)

	p = Parse(ctxWithQuery("page=-1&limit=0"))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}

func TestParseSortOrder(t *testing.T) {
	p := Parse(ctxWithQuery("sort_by=code&sort_order=desc"))
	assert.Equal(t, "code", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)

	p = Parse(ctxWithQuery("sort_order=sideways"))
	assert.Empty(t, p.SortOrder, "unknown directions are discarded")
}

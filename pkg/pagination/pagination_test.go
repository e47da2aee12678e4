package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/products", nil))
	assert.Equal(t, DefaultParams(), p)
	assert.Equal(t, 0, p.Offset())
}

func TestFromRequest_Values(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/products?page=3&per_page=10", nil))
	assert.Equal(t, Params{Page: 3, PerPage: 10}, p)
	assert.Equal(t, 20, p.Offset())
}

func TestFromRequest_GarbageBecomesZero(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/products?page=abc&per_page=-5", nil))
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, -5, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 45, Params{Page: 2, PerPage: 20})

	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)
	assert.Equal(t, []string{"a", "b"}, r.Data)
}

func TestNewResult_NilDataAndLastPage(t *testing.T) {
	r := NewResult[string](nil, 40, Params{Page: 2, PerPage: 20})

	assert.Equal(t, []string{}, r.Data)
	assert.Equal(t, 2, r.TotalPages)
	assert.False(t, r.HasNext)
}

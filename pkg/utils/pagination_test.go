package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func params(query string) PaginationParams {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return GetPaginationParams(e.NewContext(req, httptest.NewRecorder()))
}

func TestGetPaginationParams(t *testing.T) {
	assert.Equal(t, PaginationParams{Page: 1, PageSize: defaultPageSize, Offset: 0}, params(""))
	assert.Equal(t, PaginationParams{Page: 3, PageSize: 10, Offset: 20}, params("page=3&limit=10"))
	assert.Equal(t, PaginationParams{Page: 1, PageSize: defaultPageSize, Offset: 0}, params("page=-2&limit=1000"))
	assert.Equal(t, PaginationParams{Page: 1, PageSize: defaultPageSize, Offset: 0}, params("page=x&limit=y"))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Paginate(items, PaginationParams{Page: 1, PageSize: 2, Offset: 0}))
	assert.Equal(t, []int{5}, Paginate(items, PaginationParams{Page: 3, PageSize: 2, Offset: 4}))
	assert.Equal(t, []int{}, Paginate(items, PaginationParams{Page: 4, PageSize: 2, Offset: 6}))
}

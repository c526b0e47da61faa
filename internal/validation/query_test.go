package validation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"arenad/internal/errors"
	"arenad/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextFor(target string) echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestQueryDescriptor(t *testing.T) {
	c := contextFor("/api/groups?page=2&pageSize=5&sortField=name&sortOrder=desc&shape=extended&search=chess&name=Club")

	desc, err := QueryDescriptor(c, 100)
	require.NoError(t, err)
	assert.Equal(t, repository.QueryDescriptor{
		Filters:   map[string]any{"search": "chess", "name": "Club"},
		Page:      2,
		PageSize:  5,
		SortField: "name",
		SortOrder: "desc",
		Shape:     "extended",
	}, desc)
}

func TestQueryDescriptorPagination(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantErr  bool
		page     int
		pageSize int
	}{
		{"absent", "/x", false, 0, 0},
		{"non-positive passes through", "/x?page=0&pageSize=-3", false, 0, -3},
		{"non-integer page", "/x?page=two", true, 0, 0},
		{"non-integer page size", "/x?page=1&pageSize=1.5", true, 0, 0},
		{"page size at max", "/x?page=1&pageSize=100", false, 1, 100},
		{"page size above max", "/x?page=1&pageSize=101", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := QueryDescriptor(contextFor(tt.target), 100)
			if tt.wantErr {
				require.Error(t, err)
				ae, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadRequest, ae.GetHTTPStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, desc.Page)
			assert.Equal(t, tt.pageSize, desc.PageSize)
		})
	}
}

func TestQueryDescriptorUnboundedPageSize(t *testing.T) {
	desc, err := QueryDescriptor(contextFor("/x?pageSize=5000"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5000, desc.PageSize)
}

func TestFilterPairs(t *testing.T) {
	filters, err := FilterPairs([]string{"game=chess", "isPublic=true", "search=a=b", "game=go"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"game": "go", "isPublic": "true", "search": "a=b"}, filters)

	for _, bad := range []string{"novalue", "=x", "1abc=x", "page=2"} {
		_, err := FilterPairs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestID(t *testing.T) {
	assert.NoError(t, ID("5f8d2c1e-4b1a-4f0e-9a55-0d7c0b0f2f11"))
	assert.NoError(t, ID("g-chess"))
	assert.Error(t, ID(""))
	assert.Error(t, ID("../etc"))
	assert.Error(t, ID("a b"))
}

func TestPortNumber(t *testing.T) {
	assert.NoError(t, PortNumber(8080))
	assert.Error(t, PortNumber(0))
	assert.Error(t, PortNumber(70000))
}

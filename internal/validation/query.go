// Package validation turns untrusted request input into engine inputs.
package validation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"arenad/internal/errors"
	"arenad/internal/repository"

	"github.com/labstack/echo/v4"
)

// Reserved query parameters. Every other parameter is a filter.
const (
	ParamPage      = "page"
	ParamPageSize  = "pageSize"
	ParamSortField = "sortField"
	ParamSortOrder = "sortOrder"
	ParamShape     = "shape"
)

var reserved = map[string]bool{
	ParamPage:      true,
	ParamPageSize:  true,
	ParamSortField: true,
	ParamSortOrder: true,
	ParamShape:     true,
}

// IsReserved reports whether name is a pagination, sort or shape parameter
func IsReserved(name string) bool {
	return reserved[name]
}

// QueryDescriptor reads a list request from the query string of c.
// page and pageSize must be integers; values <= 0 are passed through and
// the engine treats them as absent. A pageSize above maxPageSize is
// rejected when maxPageSize is positive.
func QueryDescriptor(c echo.Context, maxPageSize int) (repository.QueryDescriptor, error) {
	var (
		desc  repository.QueryDescriptor
		shape string
	)

	err := echo.QueryParamsBinder(c).
		Int(ParamPage, &desc.Page).
		Int(ParamPageSize, &desc.PageSize).
		String(ParamSortField, &desc.SortField).
		String(ParamSortOrder, &desc.SortOrder).
		String(ParamShape, &shape).
		BindError()
	if err != nil {
		if be, ok := err.(*echo.BindingError); ok {
			return desc, errors.ValidationFailed(be.Field, strings.Join(be.Values, ","), "must be an integer")
		}
		return desc, errors.InvalidInput(err.Error())
	}

	if maxPageSize > 0 && desc.PageSize > maxPageSize {
		return desc, errors.ValidationFailed(ParamPageSize, strconv.Itoa(desc.PageSize),
			fmt.Sprintf("must not exceed %d", maxPageSize))
	}

	desc.Shape = repository.Shape(shape)
	desc.Filters = Filters(c.QueryParams())
	return desc, nil
}

// Filters collects every non-reserved parameter. Only the first value of a
// repeated parameter is used.
func Filters(values url.Values) map[string]any {
	filters := make(map[string]any, len(values))
	for key, vals := range values {
		if IsReserved(key) || len(vals) == 0 {
			continue
		}
		filters[key] = vals[0]
	}
	return filters
}

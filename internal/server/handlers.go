package server

import (
	"net/http"

	"arenad/internal/db"
	"arenad/internal/errors"
	"arenad/internal/interfaces"
	"arenad/internal/repository"
	"arenad/internal/validation"

	"github.com/labstack/echo/v4"
)

// Body keys handled by the server instead of being stored as columns
const (
	ownerIDKey   = "ownerId"
	memberIDsKey = "memberIds"
)

// resourceHandler serves the CRUD routes of one resource
type resourceHandler struct {
	name        string
	repo        interfaces.EntityRepository
	maxPageSize int
}

// list godoc
// @Summary List a resource
// @Description Shaped, filtered, sorted and paginated rows. Unknown filters and sort fields are ignored.
// @Tags resources
// @Produce json
// @Param resource path string true "groups, tournaments, stages, rosters, participations, lfp or users"
// @Param page query int false "Page number, starting at 1"
// @Param pageSize query int false "Rows per page"
// @Param sortField query string false "Sort key"
// @Param sortOrder query string false "asc or desc"
// @Param shape query string false "MINI, MINI_WITH_LOGO, BASE or EXTENDED"
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/{resource} [get]
func (h *resourceHandler) list(c echo.Context) error {
	desc, err := validation.QueryDescriptor(c, h.maxPageSize)
	if err != nil {
		return errors.HandleError(c, err)
	}

	result, err := h.repo.GetQuery(c.Request().Context(), desc)
	if err != nil {
		return h.fail(c, err)
	}

	meta, err := repository.MakeMetadata(desc, result, requestURL(c))
	if err != nil {
		return errors.HandleError(c, errors.InvalidInput(err.Error()))
	}

	rows := result.Rows
	if rows == nil {
		rows = []repository.Row{}
	}
	return c.JSON(http.StatusOK, ListResponse{
		Data:       rows,
		Pagination: meta.Pagination,
		Links:      meta.Links,
	})
}

// get godoc
// @Summary Get one row
// @Tags resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Key"
// @Param shape query string false "Projection shape"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/{resource}/{id} [get]
func (h *resourceHandler) get(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return errors.HandleError(c, err)
	}

	rows, err := h.repo.GetSingleQuery(c.Request().Context(), id, repository.Shape(c.QueryParam(validation.ParamShape)))
	if err != nil {
		return h.fail(c, err)
	}
	if len(rows) == 0 {
		return errors.HandleError(c, errors.NotFound(h.name, id))
	}
	return c.JSON(http.StatusOK, ItemResponse{Data: rows[0]})
}

// create godoc
// @Summary Create a row
// @Description groups accept ownerId to create the owner membership; rosters accept memberIds.
// @Tags resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Success 201 {object} ItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/{resource} [post]
func (h *resourceHandler) create(c echo.Context) error {
	values, err := bindBody(c)
	if err != nil {
		return errors.HandleError(c, err)
	}
	if len(values) == 0 {
		return errors.HandleError(c, errors.InvalidInput("request body must be a non-empty JSON object"))
	}

	ctx := c.Request().Context()
	var res repository.Result
	switch {
	case hasKey(values, ownerIDKey):
		creator, ok := h.repo.(interfaces.GroupCreator)
		if !ok {
			return errors.HandleError(c, errors.ValidationFailed(ownerIDKey, "", "not supported for "+h.name))
		}
		owner, _ := values[ownerIDKey].(string)
		delete(values, ownerIDKey)
		if err := validation.ID(owner); err != nil {
			return errors.HandleError(c, err)
		}
		res, err = creator.CreateWithOwner(ctx, values, owner)

	case hasKey(values, memberIDsKey):
		creator, ok := h.repo.(interfaces.RosterCreator)
		if !ok {
			return errors.HandleError(c, errors.ValidationFailed(memberIDsKey, "", "not supported for "+h.name))
		}
		members, convErr := stringList(values[memberIDsKey])
		delete(values, memberIDsKey)
		if convErr != nil {
			return errors.HandleError(c, convErr)
		}
		res, err = creator.CreateWithMembers(ctx, values, members)

	default:
		res, err = h.repo.CreateEntity(ctx, values)
	}
	if err != nil {
		return h.fail(c, err)
	}

	row, ok := res.Row()
	if !ok {
		return errors.HandleError(c, errors.CreationFailed(h.name))
	}
	return c.JSON(http.StatusCreated, ItemResponse{Data: row})
}

// update godoc
// @Summary Patch a row
// @Tags resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Key"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/{resource}/{id} [patch]
func (h *resourceHandler) update(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return errors.HandleError(c, err)
	}
	patch, err := bindBody(c)
	if err != nil {
		return errors.HandleError(c, err)
	}

	res, err := h.repo.UpdateEntity(c.Request().Context(), id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	row, ok := res.Row()
	if !ok {
		return errors.HandleError(c, errors.NotFound(h.name, id))
	}
	return c.JSON(http.StatusOK, ItemResponse{Data: row})
}

// delete godoc
// @Summary Delete a row
// @Tags resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Key"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/{resource}/{id} [delete]
func (h *resourceHandler) delete(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return errors.HandleError(c, err)
	}

	res, err := h.repo.DeleteEntity(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	row, ok := res.Row()
	if !ok {
		return errors.HandleError(c, errors.NotFound(h.name, id))
	}
	return c.JSON(http.StatusOK, ItemResponse{Data: row})
}

func (h *resourceHandler) id(c echo.Context) (string, error) {
	id := c.Param("id")
	return id, validation.ID(id)
}

// fail classifies a store error before rendering it
func (h *resourceHandler) fail(c echo.Context, err error) error {
	return errors.HandleError(c, db.TranslateError(h.name, err))
}

// bindBody decodes a JSON object body. Path and query parameters are not
// merged in.
func bindBody(c echo.Context) (map[string]any, error) {
	values := make(map[string]any)
	if err := (&echo.DefaultBinder{}).BindBody(c, &values); err != nil {
		return nil, errors.InvalidInput("request body must be a JSON object")
	}
	return values, nil
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func stringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, errors.ValidationFailed(memberIDsKey, "", "must be an array of ids")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.ValidationFailed(memberIDsKey, "", "must be an array of ids")
		}
		if err := validation.ID(s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// requestURL rebuilds the absolute URL the client requested
func requestURL(c echo.Context) string {
	req := c.Request()
	return c.Scheme() + "://" + req.Host + req.RequestURI
}

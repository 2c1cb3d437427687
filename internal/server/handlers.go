package server

import (
	"errors"
	"net/http"
	"strconv"

	"shopchat/internal/history"
	"shopchat/internal/logging"
	"shopchat/internal/store"
	"shopchat/internal/ux"

	"github.com/labstack/echo/v4"
)

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, newErrorMessage("", code, message))
}

func (s *Server) storeError(c echo.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, ErrorCodeNotFound, err.Error())
	}
	logging.ServerWarn("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return errorJSON(c, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

func (s *Server) requireCatalog(c echo.Context) bool {
	if s.catalog != nil {
		return true
	}
	_ = errorJSON(c, http.StatusServiceUnavailable, ErrorCodeInternal, "catalog not configured")
	return false
}

func (s *Server) handleHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":      "healthy",
		"connections": s.ConnectionCount(),
	}
	if s.catalog != nil {
		if st, err := s.catalog.Stats(c.Request().Context()); err == nil {
			body["catalog"] = st
		}
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) handleHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, history.Items())
}

func (s *Server) handleHistoryItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "id must be an integer")
	}
	it, ok := history.Find(id)
	if !ok {
		return errorJSON(c, http.StatusNotFound, ErrorCodeNotFound, "no such chat")
	}
	return c.JSON(http.StatusOK, it)
}

// SettingsPatch is the PUT /settings body. Omitted fields are unchanged.
type SettingsPatch struct {
	Appearance        *string `json:"appearance"`
	NotificationSound *bool   `json:"notification_sound"`
}

func (s *Server) handleGetSettings(c echo.Context) error {
	if s.settings == nil {
		return c.JSON(http.StatusOK, ux.DefaultSettings())
	}
	return c.JSON(http.StatusOK, s.settings.Get())
}

func (s *Server) handlePutSettings(c echo.Context) error {
	if s.settings == nil {
		return errorJSON(c, http.StatusServiceUnavailable, ErrorCodeInternal, "settings not configured")
	}

	var patch SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "invalid request body")
	}

	var appearance ux.Appearance
	if patch.Appearance != nil {
		a, err := ux.ParseAppearance(*patch.Appearance)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
		}
		appearance = a
	}

	updated, err := s.settings.Update(func(st *ux.Settings) {
		if patch.Appearance != nil {
			st.Appearance = appearance
		}
		if patch.NotificationSound != nil {
			st.NotificationSound = *patch.NotificationSound
		}
	})
	if err != nil {
		if errors.Is(err, ux.ErrInvalidAppearance) {
			return errorJSON(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
		}
		return errorJSON(c, http.StatusInternalServerError, ErrorCodeInternal, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleCategories(c echo.Context) error {
	if !s.requireCatalog(c) {
		return nil
	}
	activeOnly := c.QueryParam("all") != "true"
	cats, err := s.catalog.ListCategories(c.Request().Context(), activeOnly)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(cats))
}

func (s *Server) handleCategory(c echo.Context) error {
	if !s.requireCatalog(c) {
		return nil
	}
	cat, err := s.catalog.CategoryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) handleCategoryProducts(c echo.Context) error {
	if !s.requireCatalog(c) {
		return nil
	}
	products, err := s.catalog.ProductsInCategory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(products))
}

func (s *Server) handleProducts(c echo.Context) error {
	if !s.requireCatalog(c) {
		return nil
	}
	products, err := s.catalog.ListProducts(c.Request().Context())
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(products))
}

func (s *Server) handleUserOrders(c echo.Context) error {
	if !s.requireCatalog(c) {
		return nil
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "user id must be an integer")
	}
	orders, err := s.catalog.OrdersForUser(c.Request().Context(), id)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(orders))
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

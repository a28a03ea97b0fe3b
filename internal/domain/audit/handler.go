package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/censo/censo/internal/platform/auth"
	"github.com/censo/censo/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "nir"))
	readGroup.GET("/audit-log", h.ListEntries)
}

func (h *Handler) ListEntries(c echo.Context) error {
	pg := pagination.FromContext(c)

	if category := c.QueryParam("category"); category != "" {
		entries, total, err := h.svc.ListByCategory(c.Request().Context(), category, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
	}

	entries, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}

package sector

import (
	"net/http"

	"github.com/google/uuid"
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
	readGroup := api.Group("", auth.RequireRole("admin", "nir", "nurse"))
	readGroup.GET("/sectors", h.ListSectors)
	readGroup.GET("/sectors/:id", h.GetSector)

	writeGroup := api.Group("", auth.RequireRole("admin", "nir"))
	writeGroup.POST("/sectors", h.CreateSector)
	writeGroup.PUT("/sectors/:id", h.UpdateSector)
	writeGroup.DELETE("/sectors/:id", h.DeleteSector)
}

func (h *Handler) CreateSector(c echo.Context) error {
	var sec Sector
	if err := c.Bind(&sec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSector(c.Request().Context(), &sec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sec)
}

func (h *Handler) GetSector(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sec, err := h.svc.GetSector(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "sector not found")
	}
	return c.JSON(http.StatusOK, sec)
}

func (h *Handler) ListSectors(c echo.Context) error {
	pg := pagination.FromContext(c)
	sectors, total, err := h.svc.ListSectors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(sectors, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateSector(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sec Sector
	if err := c.Bind(&sec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sec.ID = id
	if err := h.svc.UpdateSector(c.Request().Context(), &sec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sec)
}

func (h *Handler) DeleteSector(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSector(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// FloorHandler manages the floor plan: areas and the tables inside
// them, plus the board view every terminal polls between taps.
type FloorHandler struct {
	Areas  *repository.AreaRepo
	Tables *repository.TableRepo
}

func NewFloorHandler(areas *repository.AreaRepo, tables *repository.TableRepo) *FloorHandler {
	return &FloorHandler{Areas: areas, Tables: tables}
}

// ----- DTOs -----

type areaReq struct {
	Name string `json:"name"`
	Sort int    `json:"sort"`
}
type tableCreateReq struct {
	AreaID uint64 `json:"area_id"`
	Name   string `json:"name"`
}
type tableRenameReq struct {
	Name string `json:"name"`
}

type tableView struct {
	ID     uint64 `json:"id"`
	AreaID uint64 `json:"area_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
type areaView struct {
	ID     uint64      `json:"id"`
	Name   string      `json:"name"`
	Sort   int         `json:"sort"`
	Tables []tableView `json:"tables"`
}

func toTableViews(tables []model.Table) []tableView {
	out := make([]tableView, 0, len(tables))
	for _, t := range tables {
		out = append(out, tableView{ID: t.ID, AreaID: t.AreaID, Name: t.Name, Status: t.Status})
	}
	return out
}

// Board returns every area with its tables and their EMPTY / IN_USE
// flags. This is the read the response cache earns its keep on.
func (h *FloorHandler) Board(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	areas, err := h.Areas.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	board := make([]areaView, 0, len(areas))
	for _, a := range areas {
		tables, err := h.Tables.ListByArea(ctx, a.ID)
		if err != nil {
			return fail(c, err)
		}
		board = append(board, areaView{
			ID: a.ID, Name: a.Name, Sort: a.Sort, Tables: toTableViews(tables),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"areas": board})
}

// CreateArea adds a floor zone.
func (h *FloorHandler) CreateArea(c echo.Context) error {
	var req areaReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Areas.Create(ctx, strings.TrimSpace(req.Name), req.Sort)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, areaView{ID: a.ID, Name: a.Name, Sort: a.Sort, Tables: []tableView{}})
}

// UpdateArea renames or reorders a zone.
func (h *FloorHandler) UpdateArea(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid area id"})
	}
	var req areaReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Areas.Update(ctx, id, strings.TrimSpace(req.Name), req.Sort); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteArea removes a zone and its tables. Refused while any table of
// the zone is IN_USE.
func (h *FloorHandler) DeleteArea(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid area id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Areas.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTable adds a table to a zone, starting EMPTY.
func (h *FloorHandler) CreateTable(c echo.Context) error {
	var req tableCreateReq
	if err := c.Bind(&req); err != nil || req.AreaID == 0 || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "area_id and name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tables.Create(ctx, req.AreaID, strings.TrimSpace(req.Name))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, tableView{ID: t.ID, AreaID: t.AreaID, Name: t.Name, Status: t.Status})
}

// RenameTable relabels a table. Orders already written keep the name
// they snapshotted.
func (h *FloorHandler) RenameTable(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req tableRenameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tables.Rename(ctx, id, strings.TrimSpace(req.Name)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTable removes a table; refused while it is IN_USE.
func (h *FloorHandler) DeleteTable(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tables.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

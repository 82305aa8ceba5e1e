package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// MenuHandler manages the sellable catalog. The register reads it; the
// management endpoints write it.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

func NewMenuHandler(menu *repository.MenuRepo) *MenuHandler {
	return &MenuHandler{Menu: menu}
}

// ----- DTOs -----

type groupReq struct {
	Name string `json:"name"`
	Sort int    `json:"sort"`
}
type itemReq struct {
	GroupID   uint64 `json:"group_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	IsActive  *bool  `json:"is_active"`
	Sort      int    `json:"sort"`
}

type groupView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Sort int    `json:"sort"`
}
type itemView struct {
	ID        uint64 `json:"id"`
	GroupID   uint64 `json:"group_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	IsActive  bool   `json:"is_active"`
	Sort      int    `json:"sort"`
}

func toItemView(it model.MenuItem) itemView {
	return itemView{
		ID: it.ID, GroupID: it.GroupID, Name: it.Name,
		UnitPrice: it.UnitPrice, IsActive: it.IsActive, Sort: it.Sort,
	}
}

// ListGroups returns the menu tabs in display order.
func (h *MenuHandler) ListGroups(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	groups, err := h.Menu.ListGroups(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupView{ID: g.ID, Name: g.Name, Sort: g.Sort})
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": out})
}

// CreateGroup adds a menu tab.
func (h *MenuHandler) CreateGroup(c echo.Context) error {
	var req groupReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Menu.CreateGroup(ctx, strings.TrimSpace(req.Name), req.Sort)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, groupView{ID: g.ID, Name: g.Name, Sort: g.Sort})
}

// UpdateGroup renames or reorders a tab.
func (h *MenuHandler) UpdateGroup(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	var req groupReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.UpdateGroup(ctx, id, strings.TrimSpace(req.Name), req.Sort); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteGroup removes a tab and its items.
func (h *MenuHandler) DeleteGroup(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.DeleteGroup(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListItems returns the sellable items, optionally filtered by
// ?group_id= and ordered by ?sort= (name | price | sort).
func (h *MenuHandler) ListItems(c echo.Context) error {
	var groupID *uint64
	if raw := c.QueryParam("group_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group_id"})
		}
		groupID = &n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Menu.ListActiveItems(ctx, groupID, c.QueryParam("sort"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, toItemView(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CreateItem adds a catalog entry. New items default to active.
func (h *MenuHandler) CreateItem(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil || req.GroupID == 0 || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "group_id and name required"})
	}
	if req.UnitPrice <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit_price must be positive"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Menu.CreateItem(ctx, model.MenuItem{
		GroupID: req.GroupID, Name: strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice, IsActive: active, Sort: req.Sort,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toItemView(it))
}

// UpdateItem rewrites an item's mutable fields. Lines already written
// keep their snapshots, so price edits never touch open orders.
func (h *MenuHandler) UpdateItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.UnitPrice <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit_price must be positive"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Menu.UpdateItem(ctx, model.MenuItem{
		ID: id, Name: strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice, IsActive: active, Sort: req.Sort,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteItem removes a catalog entry.
func (h *MenuHandler) DeleteItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.DeleteItem(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/handler"
	"github.com/minhvo/cafe-pos/internal/middleware"
)

// RegisterPOS registers every staff-facing endpoint under /v1 behind
// JWT auth. cacheMW wraps only the read endpoints that tolerate a few
// seconds of staleness (floor board, menu); every order mutation goes
// straight to the database. Pass nil to disable caching.
func RegisterPOS(
	e *echo.Echo,
	orders *handler.OrderHandler,
	floor *handler.FloorHandler,
	menu *handler.MenuHandler,
	history *handler.HistoryHandler,
	jwtSecret string,
	cacheMW echo.MiddlewareFunc,
) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	if cacheMW == nil {
		cacheMW = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	// ---- Order lifecycle ----
	g.POST("/tables/:id/open", orders.OpenTable)
	g.GET("/orders/:id", orders.GetOrder)
	g.POST("/orders/:id/items", orders.AddItem)
	g.PATCH("/lines/:id", orders.ChangeLine)
	g.POST("/orders/:id/checkout", orders.CheckoutOrder)

	// ---- Floor ----
	g.GET("/floor", floor.Board, cacheMW)
	g.POST("/areas", floor.CreateArea)
	g.PUT("/areas/:id", floor.UpdateArea)
	g.PATCH("/areas/:id", floor.UpdateArea) // alias for clients that use PATCH
	g.DELETE("/areas/:id", floor.DeleteArea)
	g.POST("/tables", floor.CreateTable)
	g.PUT("/tables/:id", floor.RenameTable)
	g.PATCH("/tables/:id", floor.RenameTable)
	g.DELETE("/tables/:id", floor.DeleteTable)

	// ---- Menu ----
	g.GET("/menu/groups", menu.ListGroups, cacheMW)
	g.POST("/menu/groups", menu.CreateGroup)
	g.PUT("/menu/groups/:id", menu.UpdateGroup)
	g.PATCH("/menu/groups/:id", menu.UpdateGroup)
	g.DELETE("/menu/groups/:id", menu.DeleteGroup)
	g.GET("/menu/items", menu.ListItems, cacheMW)
	g.POST("/menu/items", menu.CreateItem)
	g.PUT("/menu/items/:id", menu.UpdateItem)
	g.PATCH("/menu/items/:id", menu.UpdateItem)
	g.DELETE("/menu/items/:id", menu.DeleteItem)

	// ---- History ----
	g.GET("/history/today", history.ListPayments, cacheMW)
	g.GET("/history/orders/:id", orders.GetOrder)
}

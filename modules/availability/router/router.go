package router

import (
	"slotwise/core/middleware"
	"slotwise/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	controller *controller.AvailabilityController
}

func NewAvailabilityRouter(ctrl *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{controller: ctrl}
}

func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	availability := v1.Group("/private/availability")
	availability.Use(mw.AuthMiddleware())

	availability.GET("/day", r.controller.GetDayAvailability)
	availability.POST("/propose", r.controller.ProposeSlots)
}

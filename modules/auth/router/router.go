package router

import (
	"slotwise/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(ctrl *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: ctrl}
}

func (r *AuthRouter) Setup(e *echo.Echo) {
	auth := e.Group("/api/v1/public/auth")

	auth.POST("/google", r.controller.ConnectCalendar)
}

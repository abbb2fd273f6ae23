package controller

import (
	basecontroller "slotwise/core/controller"
	"slotwise/core/errors"
	"slotwise/modules/auth/dto"
	"slotwise/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	basecontroller.BaseController
	service service.AuthService
}

func NewAuthController(svc service.AuthService) *AuthController {
	return &AuthController{
		BaseController: basecontroller.NewBaseController(),
		service:        svc,
	}
}

// ConnectCalendar stores Google Calendar credentials and returns an API token.
// POST /api/v1/public/auth/google
func (c *AuthController) ConnectCalendar(ctx echo.Context) error {
	var req dto.ConnectCalendarRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	result, appErr := c.service.ConnectCalendar(ctx.Request().Context(), service.ConnectCalendarInput{
		AuthCode:     req.AuthCode,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	})
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "calendar connected")
}

package auth

import (
	"slotwise/core/config"
	"slotwise/modules/auth/controller"
	"slotwise/modules/auth/router"
	"slotwise/modules/auth/service"
	providerrepo "slotwise/modules/provider/repository"

	"github.com/labstack/echo/v4"
)

// Init wires the auth module and registers its routes.
func Init(e *echo.Echo, creds providerrepo.CredentialRepository) service.AuthService {
	svc := service.NewAuthService(config.Get().GoogleAPI, creds)
	ctrl := controller.NewAuthController(svc)
	router.NewAuthRouter(ctrl).Setup(e)
	return svc
}

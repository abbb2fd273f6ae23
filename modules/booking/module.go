package booking

import (
	"slotwise/core/cache"
	"slotwise/core/database"
	"slotwise/core/middleware"
	"slotwise/core/workers"
	"slotwise/modules/booking/controller"
	"slotwise/modules/booking/repository"
	"slotwise/modules/booking/router"
	"slotwise/modules/booking/service"
	providersvc "slotwise/modules/provider/service"

	"github.com/labstack/echo/v4"
)

// Init wires the booking module and registers its routes.
func Init(e *echo.Echo, db database.IDatabase, provider providersvc.Provider, locker cache.Cache, enqueuer workers.CompensationEnqueuer, mw *middleware.Middleware) service.BookingService {
	repo := repository.NewBookingRepository(db)
	validator := service.NewBookingValidator(provider)
	svc := service.NewBookingService(repo, validator, provider, locker, enqueuer)

	ctrl := controller.NewBookingController(svc)
	router.NewBookingRouter(ctrl).Setup(e, mw)

	return svc
}

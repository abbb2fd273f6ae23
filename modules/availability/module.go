package availability

import (
	"time"

	"slotwise/core/config"
	"slotwise/core/middleware"
	"slotwise/modules/availability/controller"
	"slotwise/modules/availability/router"
	"slotwise/modules/availability/service"
	providersvc "slotwise/modules/provider/service"

	"github.com/labstack/echo/v4"
)

// Init wires the availability module and registers its routes.
func Init(e *echo.Echo, provider providersvc.Provider, mw *middleware.Middleware) service.AvailabilityService {
	cfg := config.Get()

	svc := service.NewAvailabilityService(
		provider,
		cfg.Booking.WorkDayStartHour,
		cfg.Booking.WorkDayEndHour,
		time.Duration(cfg.Booking.BucketMinutes)*time.Minute,
	)
	ctrl := controller.NewAvailabilityController(svc)
	router.NewAvailabilityRouter(ctrl).Setup(e, mw)

	return svc
}

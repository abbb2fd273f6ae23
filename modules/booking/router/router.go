package router

import (
	"slotwise/core/middleware"
	"slotwise/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: ctrl}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	bookings := v1.Group("/private/bookings")
	bookings.Use(mw.AuthMiddleware())

	bookings.POST("", r.controller.CreateBooking)
	bookings.GET("", r.controller.ListBookings)
	bookings.GET("/:id", r.controller.GetBooking)
	bookings.DELETE("/:id", r.controller.DeleteBooking)
}

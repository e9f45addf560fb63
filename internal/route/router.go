package router

import (
	"ticket-service/internal/module/ticket/handler"
	"ticket-service/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func Initialize(app *fiber.App, handlerTicket *handler.TicketHandler, m *middleware.Middleware) *fiber.App {

	// health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("OK")
	})

	Api := app.Group("/api")

	// customer routes
	v1 := Api.Group("/v1")
	v1.Post("/tickets", m.ValidateToken, handlerTicket.BookTicket)
	v1.Put("/tickets/:id/cancel", m.ValidateToken, handlerTicket.CancelTicket)
	v1.Get("/tickets", m.ValidateToken, handlerTicket.ShowBookings)
	v1.Get("/event-tickets", handlerTicket.ShowEventTickets)
	v1.Get("/event-tickets/price", handlerTicket.GetTicketPrice)

	// service-to-service routes
	private := Api.Group("/private")
	private.Post("/event-tickets", handlerTicket.CreateEventTickets)

	return app

}

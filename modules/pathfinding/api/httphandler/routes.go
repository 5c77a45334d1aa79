package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Post("/paths", h.GetPaths)
	r.Post("/paths/batch", h.GetPathsBatch)
	r.Get("/info", h.GetInfo)
	return nil
}

package httphandler

import (
	"github.com/channelmesh/pathfinder/modules/pathfinding/constants"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getInfoResult struct {
	Version  string `json:"version"`
	Operator string `json:"operator"`
	Message  string `json:"message,omitempty"`
	Channels int    `json:"channels"`
	Nodes    int    `json:"nodes"`
}

type getInfoResponse = HttpResponse[getInfoResult]

func (h *HttpHandler) GetInfo(ctx *fiber.Ctx) (err error) {
	stats := h.usecase.Stats(ctx.UserContext())

	resp := getInfoResponse{
		Result: &getInfoResult{
			Version:  constants.Version,
			Operator: h.operator,
			Message:  h.message,
			Channels: stats.Channels,
			Nodes:    stats.Nodes,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}

package httphandler

import (
	"github.com/channelmesh/pathfinder/modules/pathfinding/usecase"
)

type HttpHandler struct {
	usecase  *usecase.Usecase
	operator string
	message  string
}

func New(operator, message string, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase:  usecase,
		operator: operator,
		message:  message,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

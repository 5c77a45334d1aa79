package api

import (
	"github.com/channelmesh/pathfinder/modules/pathfinding/api/httphandler"
	"github.com/channelmesh/pathfinder/modules/pathfinding/usecase"
)

func NewHTTPHandler(operator, message string, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(operator, message, usecase)
}

package usecase

import (
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
)

type Usecase struct {
	graph *network.TokenNetwork
}

func New(graph *network.TokenNetwork) *Usecase {
	return &Usecase{
		graph: graph,
	}
}

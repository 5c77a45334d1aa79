package pathfinding

import (
	"context"

	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/core/datasources"
	"github.com/channelmesh/pathfinder/core/feed"
	"github.com/channelmesh/pathfinder/core/types"
	"github.com/channelmesh/pathfinder/internal/config"
	pathfindingapi "github.com/channelmesh/pathfinder/modules/pathfinding/api"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	pathfindingusecase "github.com/channelmesh/pathfinder/modules/pathfinding/usecase"
	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

func New(injector do.Injector) (feed.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	graph := network.NewTokenNetwork()
	datasource := do.MustInvoke[datasources.Datasource[types.Event]](injector)

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.Pathfinding.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			pathfindingUsecase := pathfindingusecase.New(graph)
			pathfindingHTTPHandler := pathfindingapi.NewHTTPHandler(conf.Modules.Pathfinding.Operator, conf.Modules.Pathfinding.Message, pathfindingUsecase)
			if err := pathfindingHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount pathfinding API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	processor := NewProcessor(graph)
	return feed.New(processor, datasource), nil
}

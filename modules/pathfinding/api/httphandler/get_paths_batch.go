package httphandler

import (
	"context"

	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const getPathsBatchMaxQueries = 100

type getPathsBatchRequest struct {
	Queries []getPathsRequest `json:"queries"`
}

func (r getPathsBatchRequest) Validate() error {
	var errList []error
	if len(r.Queries) == 0 {
		errList = append(errList, errors.New("at least one query is required"))
	}
	if len(r.Queries) > getPathsBatchMaxQueries {
		errList = append(errList, errors.Errorf("cannot exceed %d queries", getPathsBatchMaxQueries))
	}
	for i, query := range r.Queries {
		if err := query.Validate(); err != nil {
			errList = append(errList, errors.Wrapf(err, "queries[%d]", i))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getPathsBatchResult struct {
	List []*getPathsResult `json:"list"`
}

type getPathsBatchResponse = HttpResponse[getPathsBatchResult]

// GetPathsBatch answers up to getPathsBatchMaxQueries path queries in one
// request. The batch fails as a whole: if any single query is rejected, the
// response carries that error and no partial results.
func (h *HttpHandler) GetPathsBatch(ctx *fiber.Ctx) (err error) {
	var req getPathsBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("unable to parse request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	processQuery := func(ctx context.Context, query getPathsRequest) (*getPathsResult, error) {
		source, _ := common.NewAddressFromString(query.From)
		target, _ := common.NewAddressFromString(query.To)
		maxPaths := query.MaxPaths
		if maxPaths == 0 {
			maxPaths = defaultMaxPaths
		}

		routes, err := h.usecase.FindPaths(ctx, source, target, query.Value, maxPaths)
		if err != nil {
			return nil, errors.Wrap(err, "error during FindPaths")
		}
		return &getPathsResult{
			Routes: lo.Map(routes, func(r network.Route, _ int) route {
				return route{
					Path:         r.Path,
					EstimatedFee: r.Fee,
					Hops:         r.HopCount,
				}
			}),
		}, nil
	}

	results := make([]*getPathsResult, len(req.Queries))
	eg, ectx := errgroup.WithContext(ctx.UserContext())
	for i, query := range req.Queries {
		eg.Go(func() error {
			result, err := processQuery(ectx, query)
			if err != nil {
				return errors.Wrapf(err, "error during processQuery for query %d", i)
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return errors.WithStack(err)
	}

	resp := getPathsBatchResponse{
		Result: &getPathsBatchResult{
			List: results,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}

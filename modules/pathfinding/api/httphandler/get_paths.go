package httphandler

import (
	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// defaultMaxPaths is used when a query does not say how many routes it wants.
const defaultMaxPaths = 5

type getPathsRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    int64  `json:"value"`
	MaxPaths int    `json:"max_paths"`
}

func (r getPathsRequest) Validate() error {
	var errList []error
	if r.From == "" {
		errList = append(errList, errors.New("'from' is required"))
	} else if _, err := common.NewAddressFromString(r.From); err != nil {
		errList = append(errList, errors.New("'from' is not a valid address"))
	}
	if r.To == "" {
		errList = append(errList, errors.New("'to' is required"))
	} else if _, err := common.NewAddressFromString(r.To); err != nil {
		errList = append(errList, errors.New("'to' is not a valid address"))
	}
	if r.Value <= 0 {
		errList = append(errList, errors.New("'value' must be a positive integer"))
	}
	if r.MaxPaths < 0 {
		errList = append(errList, errors.New("'max_paths' must not be negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type route struct {
	Path         []common.Address `json:"path"`
	EstimatedFee int64            `json:"estimated_fee"`
	Hops         int              `json:"hops"`
}

type getPathsResult struct {
	Routes []route `json:"routes"`
}

type getPathsResponse = HttpResponse[getPathsResult]

func (h *HttpHandler) GetPaths(ctx *fiber.Ctx) (err error) {
	var req getPathsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("unable to parse request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	source, _ := common.NewAddressFromString(req.From)
	target, _ := common.NewAddressFromString(req.To)
	maxPaths := req.MaxPaths
	if maxPaths == 0 {
		maxPaths = defaultMaxPaths
	}

	routes, err := h.usecase.FindPaths(ctx.UserContext(), source, target, req.Value, maxPaths)
	if err != nil {
		return errors.Wrap(err, "error during FindPaths")
	}

	resp := getPathsResponse{
		Result: &getPathsResult{
			Routes: lo.Map(routes, func(r network.Route, _ int) route {
				return route{
					Path:         r.Path,
					EstimatedFee: r.Fee,
					Hops:         r.HopCount,
				}
			}),
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}

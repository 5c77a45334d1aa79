package httphandler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/channelmesh/pathfinder/common"
	"github.com/channelmesh/pathfinder/modules/pathfinding/network"
	"github.com/channelmesh/pathfinder/modules/pathfinding/usecase"
	"github.com/channelmesh/pathfinder/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(n int) common.Address {
	return utils.Must(common.NewAddressFromString(fmt.Sprintf("%040x", n)))
}

func newTestApp(t *testing.T) (*fiber.App, *network.TokenNetwork) {
	t.Helper()
	graph := network.NewTokenNetwork()

	app := fiber.New(fiber.Config{
		ErrorHandler: errorhandler.NewHTTPErrorHandler(),
	})
	handler := New("test-operator", "hello", usecase.New(graph))
	require.NoError(t, handler.Mount(app))
	return app, graph
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestGetPaths(t *testing.T) {
	app, graph := newTestApp(t)
	require.NoError(t, graph.OpenChannel(1, testAddr(1), testAddr(2), 100, 100, 100))
	require.NoError(t, graph.OpenChannel(2, testAddr(2), testAddr(3), 100, 100, 100))

	resp := postJSON(t, app, "/v1/paths", map[string]any{
		"from":  testAddr(1).String(),
		"to":    testAddr(3).String(),
		"value": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body getPathsResponse
	decodeBody(t, resp, &body)
	require.NotNil(t, body.Result)
	require.Len(t, body.Result.Routes, 1)
	assert.Equal(t, []common.Address{testAddr(1), testAddr(2), testAddr(3)}, body.Result.Routes[0].Path)
	assert.Equal(t, int64(0), body.Result.Routes[0].EstimatedFee)
	assert.Equal(t, 2, body.Result.Routes[0].Hops)
}

func TestGetPathsNoRouteReturnsEmptyList(t *testing.T) {
	app, graph := newTestApp(t)
	require.NoError(t, graph.OpenChannel(1, testAddr(1), testAddr(2), 100, 5, 5))
	require.NoError(t, graph.OpenChannel(2, testAddr(2), testAddr(3), 100, 5, 5))

	resp := postJSON(t, app, "/v1/paths", map[string]any{
		"from":  testAddr(1).String(),
		"to":    testAddr(3).String(),
		"value": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body getPathsResponse
	decodeBody(t, resp, &body)
	require.NotNil(t, body.Result)
	assert.Empty(t, body.Result.Routes)
}

func TestGetPathsValidation(t *testing.T) {
	app, graph := newTestApp(t)
	require.NoError(t, graph.OpenChannel(1, testAddr(1), testAddr(2), 100, 100, 100))

	type testcase struct {
		name string
		body map[string]any
	}
	testcases := []testcase{
		{name: "missing from", body: map[string]any{"to": testAddr(2).String(), "value": 10}},
		{name: "bad address", body: map[string]any{"from": "nope", "to": testAddr(2).String(), "value": 10}},
		{name: "missing value", body: map[string]any{"from": testAddr(1).String(), "to": testAddr(2).String()}},
		{name: "negative value", body: map[string]any{"from": testAddr(1).String(), "to": testAddr(2).String(), "value": -1}},
		{name: "unknown source", body: map[string]any{"from": testAddr(9).String(), "to": testAddr(2).String(), "value": 10}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/v1/paths", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetPathsBatch(t *testing.T) {
	app, graph := newTestApp(t)
	require.NoError(t, graph.OpenChannel(1, testAddr(1), testAddr(2), 100, 100, 100))
	require.NoError(t, graph.OpenChannel(2, testAddr(2), testAddr(3), 100, 100, 100))

	resp := postJSON(t, app, "/v1/paths/batch", map[string]any{
		"queries": []map[string]any{
			{"from": testAddr(1).String(), "to": testAddr(3).String(), "value": 10},
			{"from": testAddr(3).String(), "to": testAddr(1).String(), "value": 10},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body getPathsBatchResponse
	decodeBody(t, resp, &body)
	require.NotNil(t, body.Result)
	require.Len(t, body.Result.List, 2)
	require.Len(t, body.Result.List[0].Routes, 1)
	assert.Equal(t, []common.Address{testAddr(1), testAddr(2), testAddr(3)}, body.Result.List[0].Routes[0].Path)
	require.Len(t, body.Result.List[1].Routes, 1)
	assert.Equal(t, []common.Address{testAddr(3), testAddr(2), testAddr(1)}, body.Result.List[1].Routes[0].Path)
}

func TestGetPathsBatchFailsAsAWhole(t *testing.T) {
	app, graph := newTestApp(t)
	require.NoError(t, graph.OpenChannel(1, testAddr(1), testAddr(2), 100, 100, 100))

	// one bad query rejects the whole batch
	resp := postJSON(t, app, "/v1/paths/batch", map[string]any{
		"queries": []map[string]any{
			{"from": testAddr(1).String(), "to": testAddr(2).String(), "value": 10},
			{"from": testAddr(9).String(), "to": testAddr(2).String(), "value": 10},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetInfo(t *testing.T) {
	app, graph := newTestApp(t)
	require.NoError(t, graph.OpenChannel(1, testAddr(1), testAddr(2), 100, 100, 100))

	req := httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body getInfoResponse
	decodeBody(t, resp, &body)
	require.NotNil(t, body.Result)
	assert.Equal(t, "test-operator", body.Result.Operator)
	assert.Equal(t, "hello", body.Result.Message)
	assert.Equal(t, 1, body.Result.Channels)
	assert.Equal(t, 2, body.Result.Nodes)
}

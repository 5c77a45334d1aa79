package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/channelmesh/pathfinder/core/datasources"
	"github.com/channelmesh/pathfinder/core/feed"
	"github.com/channelmesh/pathfinder/core/types"
	"github.com/channelmesh/pathfinder/internal/config"
	"github.com/channelmesh/pathfinder/modules/pathfinding"
	"github.com/channelmesh/pathfinder/pkg/errorhandler"
	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Register modules
var Modules = do.Package(
	do.LazyNamed("pathfinding", pathfinding.New),
)

const shutdownTimeout = 60 * time.Second

func NewRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start pathfinder service",
		RunE:  runHandler,
	}

	// Add local flags
	flags := runCmd.Flags()
	flags.Int("port", 8000, "HTTP server port")

	// Bind flags to configuration
	config.BindPFlag("http_server.port", flags.Lookup("port"))

	return runCmd
}

func runHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Initialize application process context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	// Initialize event datasource
	do.Provide(injector, func(i do.Injector) (*datasources.StreamDatasource[types.Event], error) {
		return datasources.NewStreamDatasource[types.Event]("stream"), nil
	})
	do.Provide(injector, func(i do.Injector) (datasources.Datasource[types.Event], error) {
		return do.MustInvoke[*datasources.StreamDatasource[types.Event]](i), nil
	})

	// Initialize HTTP server
	do.Provide(injector, func(i do.Injector) (*fiber.App, error) {
		app := fiber.New(fiber.Config{
			AppName:      "Pathfinder",
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.
			Use(cors.New()).
			Use(requestid.New()).
			Use(fiberrecover.New(fiberrecover.Config{
				EnableStackTrace: true,
				StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
					buf := make([]byte, 1024)
					buf = buf[:runtime.Stack(buf, false)]
					logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", slogx.Any("panic", e), slogx.String("stacktrace", string(buf)))
				},
			})).
			Use(compress.New(compress.Config{
				Level: compress.LevelDefault,
			}))

		// Health check
		app.Get("/", func(c *fiber.Ctx) error {
			return errors.WithStack(c.SendStatus(http.StatusOK))
		})

		return app, nil
	})

	// Initialize worker context to separate worker's lifecycle from main process
	ctxWorker, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	// Run modules
	{
		worker, err := do.InvokeNamed[feed.Worker](injector, "pathfinding")
		if err != nil {
			return errors.Wrap(err, "can't init pathfinding module")
		}

		go func() {
			// stop main process if worker stopped
			defer stop()

			ctx := logger.WithContext(ctxWorker, slogx.String("module", "pathfinding"))
			logger.InfoContext(ctx, "Starting pathfinding feed")
			if err := worker.Run(ctx); err != nil {
				logger.PanicContext(ctx, "Something went wrong, error during running feed", slogx.Error(err))
			}
		}()
	}

	// Run API server
	httpServer := do.MustInvoke[*fiber.App](injector)
	go func() {
		// stop main process if API stopped
		defer stop()

		logger.InfoContext(ctx, "Started HTTP server", slogx.Int("port", conf.HTTPServer.Port))
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			logger.PanicContext(ctx, "Something went wrong, error during running HTTP server", slogx.Error(err))
		}
	}()

	// Stop application if worker context is done
	go func() {
		<-ctxWorker.Done()
		defer stop()

		logger.InfoContext(ctx, "Pathfinder worker is stopped. Stopping application...")
	}()

	logger.InfoContext(ctxWorker, "Pathfinder started")

	// Wait for interrupt signal to gracefully stop the server
	<-ctx.Done()

	// Force shutdown if timeout exceeded or got signal again
	go func() {
		defer os.Exit(1)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
		case <-time.After(shutdownTimeout + 15*time.Second):
			logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
		}
	}()

	if err := injector.Shutdown(); err != nil {
		logger.PanicContext(ctx, "Failed while gracefully shutting down", slogx.Error(err))
	}

	return nil
}

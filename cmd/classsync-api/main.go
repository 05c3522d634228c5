package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/classsync-api/api/swagger"
	"github.com/noah-isme/classsync-api/internal/dto"
	"github.com/noah-isme/classsync-api/internal/handler"
	"github.com/noah-isme/classsync-api/internal/middleware"
	"github.com/noah-isme/classsync-api/pkg/config"
	"github.com/noah-isme/classsync-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/classsync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classsync-api/pkg/middleware/requestid"
)

const (
	Version = "1.0.0"
	appName = "classsync-api"
)

// @title ClassSync API
// @version 1.0.0
// @description Shared room bookings, class subjects and roving-teacher schedules for one school
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "School room booking and timetable API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations on start")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(skipMigrate)
		},
	}
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations on start")

	cmd.AddCommand(serveCmd, importCmd(), resetCmd(), migrateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func importCmd() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import fixed bookings and teacher schedules from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer file.Close()

				report, err := a.imports.Import(ctx, file, encoding)
				if err != nil {
					return err
				}
				return printJSON(cmd, report)
			})
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "", "auto, euc-kr or utf-8 (defaults to IMPORT_ENCODING)")
	return cmd
}

func resetCmd() *cobra.Command {
	var (
		confirm bool
		pin     string
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every booking, reservation, subject and teacher schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				result, err := a.admin.Reset(ctx, dto.ResetRequest{Confirm: confirm, Pin: pin})
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm that all data will be deleted")
	cmd.Flags().StringVar(&pin, "pin", "", "Admin PIN when ADMIN_PIN_HASH is set")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return a.migrate(ctx)
			})
		},
	}
}

// withApp wires the services for a one-shot command and cancels on SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}

func serve(skipMigrate bool) error {
	return withApp(func(ctx context.Context, a *app) error {
		if !skipMigrate {
			if err := a.migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		hubCtx, cancelHub := context.WithCancel(context.Background())
		hubDone := make(chan struct{})
		go func() {
			a.hub.Run(hubCtx)
			close(hubDone)
		}()
		defer func() {
			cancelHub()
			<-hubDone
		}()

		// request contexts derive from baseCtx so open event streams end on shutdown
		baseCtx, cancelRequests := context.WithCancel(context.Background())
		defer cancelRequests()
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Port),
			Handler:           newRouter(a),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return baseCtx },
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Sugar().Infow("server starting", "addr", srv.Addr, "env", a.cfg.Env, "strict_reservations", a.cfg.Reservations.Strict)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		cancelRequests()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("graceful shutdown incomplete", zap.Error(err))
		}
		return nil
	})
}

func newRouter(a *app) *gin.Engine {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	handler.RegisterRoutes(r, a.cfg.APIPrefix, handler.Handlers{
		Auth:         handler.NewAuthHandler(a.auth),
		Catalog:      handler.NewCatalogHandler(),
		Collections:  handler.NewCollectionHandler(a.hub, a.cfg.Stream.Heartbeat),
		Cells:        handler.NewCellHandler(a.booking),
		Reservations: handler.NewReservationHandler(a.reservations, a.timetable),
		Views:        handler.NewViewHandler(a.timetable),
		Reports:      handler.NewReportHandler(a.reports),
		Admin:        handler.NewAdminHandler(a.imports, a.admin, a.cfg.Import.MaxBytes),
		Assistant:    handler.NewAssistantHandler(a.assistant),
		Metrics:      handler.NewMetricsHandler(a.metrics, a.db),
	}, middleware.OptionalJWT(a.auth), middleware.JWT(a.auth))

	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

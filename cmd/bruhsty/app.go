package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/bruhsty/bruhsty/internal/config"
	"github.com/bruhsty/bruhsty/internal/service"
	"github.com/bruhsty/bruhsty/internal/storage"
	"github.com/bruhsty/bruhsty/persistence"
	"github.com/bruhsty/bruhsty/persistence/oteladapters"
	"github.com/bruhsty/bruhsty/persistence/promadapters"
	"github.com/bruhsty/bruhsty/persistence/sqlengine"
)

const (
	shutdownTimeout     = 5 * time.Second
	instrumentationName = "bruhsty"
)

// databaseOverrides are the config keys that BRUHSTY_DATABASE_* variables override.
var databaseOverrides = []string{
	"database.driver",
	"database.adapter",
	"database.host",
	"database.port",
	"database.username",
	"database.password",
	"database.database",
	"database.ssl_mode",
	"database.path",
}

type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	transactor *sqlengine.Transactor
	service    *service.Service
	closers    []func()
}

// withApp wires the service for one command run and tears it down afterwards.
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, logger: cfg.Log.NewLogger(os.Stderr)}
	defer a.close()

	options := []persistence.Option{persistence.WithLogger(a.logger)}

	if viper.GetBool("otel-logs") {
		options = append(options, persistence.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)))
	}

	if viper.GetBool("otel-traces") {
		options = append(options, persistence.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))))
	}

	switch addr := viper.GetString("metrics-addr"); {
	case addr != "":
		registry := prometheus.NewRegistry()
		options = append(options, persistence.WithMetrics(promadapters.NewMetricsCollector(registry)))
		a.serveMetrics(addr, registry)
	case viper.GetBool("otel-metrics"):
		options = append(options, persistence.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))))
	}

	if err := a.openTransactor(ctx, options); err != nil {
		return err
	}

	bus, err := service.NewBus(service.NewLogMailer(a.logger), a.logger, options...)
	if err != nil {
		return err
	}

	newUnitOfWork := func() (service.UnitOfWork, error) {
		return storage.NewSQLUnitOfWork(a.transactor, bus, options...)
	}

	a.service, err = service.New(newUnitOfWork,
		service.WithInstrumentation(options...),
		service.WithChannels(channels(cfg.Channels)...),
	)
	if err != nil {
		return err
	}

	return run(ctx, a)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}

	for _, key := range databaseOverrides {
		if !viper.IsSet(key) {
			continue
		}

		value := viper.GetString(key)
		switch key {
		case "database.driver":
			cfg.Database.Driver = value
		case "database.adapter":
			cfg.Database.Adapter = value
		case "database.host":
			cfg.Database.Host = value
		case "database.port":
			cfg.Database.Port = viper.GetInt(key)
		case "database.username":
			cfg.Database.Username = value
		case "database.password":
			cfg.Database.Password = value
		case "database.database":
			cfg.Database.Database = value
		case "database.ssl_mode":
			cfg.Database.SSLMode = value
		case "database.path":
			cfg.Database.Path = value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func channels(configured []config.Channel) []service.Channel {
	result := make([]service.Channel, 0, len(configured))
	for _, channel := range configured {
		result = append(result, service.Channel{ID: channel.ID, InviteLink: channel.InviteLink, LevelID: channel.LevelID})
	}

	return result
}

func (a *app) openTransactor(ctx context.Context, options []persistence.Option) error {
	sqlOptions := []sqlengine.Option{
		sqlengine.WithDialect(a.cfg.Database.Dialect()),
		sqlengine.WithInstrumentation(options...),
	}

	db := a.cfg.Database

	var err error
	switch {
	case db.Driver == config.DriverSQLite:
		conn, openErr := db.OpenSQLite(ctx)
		if openErr != nil {
			return openErr
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		a.transactor, err = sqlengine.NewTransactorFromSQLDB(conn, sqlOptions...)

	case db.Adapter == config.AdapterSQL:
		conn, openErr := db.OpenSQLDB(ctx)
		if openErr != nil {
			return openErr
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		a.transactor, err = sqlengine.NewTransactorFromSQLDB(conn, sqlOptions...)

	case db.Adapter == config.AdapterSQLX:
		conn, openErr := db.OpenSQLX(ctx)
		if openErr != nil {
			return openErr
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		a.transactor, err = sqlengine.NewTransactorFromSQLX(conn, sqlOptions...)

	default:
		pool, openErr := db.OpenPGXPool(ctx)
		if openErr != nil {
			return openErr
		}
		a.closers = append(a.closers, pool.Close)
		a.transactor, err = sqlengine.NewTransactorFromPGXPool(pool, sqlOptions...)
	}

	return err
}

func (a *app) serveMetrics(addr string, registry *prometheus.Registry) {
	server := &http.Server{
		Addr:              addr,
		Handler:           promadapters.Handler(registry),
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err.Error())
		}
	}()

	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func parseTelegramID(arg string) (int64, error) {
	var id int64
	if _, err := fmt.Sscan(arg, &id); err != nil {
		return 0, fmt.Errorf("invalid telegram id %q", arg)
	}

	return id, nil
}

package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/filekit/bootstrap"
	"github.com/kbukum/filekit/component"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/drivers"
	"github.com/kbukum/filekit/observability"
	"github.com/kbukum/filekit/server"
	"github.com/kbukum/filekit/util"
	"github.com/kbukum/filekit/version"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serve the configured disks over HTTP until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "otel-endpoint",
			Usage:   "OTLP/HTTP collector host:port; enables traces and metrics",
			EnvVars: []string{"OTEL_EXPORTER_OTLP_ENDPOINT"},
		},
	},
	Action: serve,
}

func serve(c *cli.Context) error {
	settings, cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	if disk := c.String(flagDisk.Name); disk != "" {
		settings.Set(filesystem.KeyDefaultDisk, disk)
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	app.Version = util.Coalesce(app.Version, version.Get().Version)

	var metrics *observability.Metrics
	if endpoint := c.String("otel-endpoint"); endpoint != "" {
		var shutdown func(context.Context) error
		metrics, shutdown, err = initTelemetry(c.Context, app, endpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				app.Logger.Warn("telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	fsOpts := []filesystem.Option{
		filesystem.WithRegistry(drivers.NewRegistry(nil)),
		filesystem.WithLogger(app.Logger.WithComponent("filesystem")),
	}
	if metrics != nil {
		fsOpts = append(fsOpts, filesystem.WithMetrics(metrics))
	}
	fs := filesystem.NewComponent(filesystem.NewSettingsSource(settings), fsOpts...)
	if err := app.RegisterComponent(fs); err != nil {
		return err
	}

	// The server needs a bound Storage, so it is built once components
	// have started.
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		var opts []server.Option
		if metrics != nil {
			opts = append(opts, server.WithMetrics(metrics))
		}
		srv := server.New(a.Cfg.Server, fs.Storage(), a.Logger.WithComponent("server"), opts...)
		srv.ApplyDefaults(a.Name, func(ctx context.Context) component.Report {
			return a.Components.Report(ctx, a.Name, a.Version)
		})
		for _, r := range srv.GinEngine().Routes() {
			a.Summary.TrackRoute(r.Method, r.Path)
		}

		httpComp := server.NewComponent(srv)
		if err := httpComp.Start(ctx); err != nil {
			return err
		}
		a.OnStop(httpComp.Stop)
		a.Logger.Info("serving files", map[string]interface{}{"addr": srv.Addr()})
		return nil
	})

	return app.Run(c.Context)
}

// initTelemetry installs the global tracer and meter providers. The
// returned function flushes and stops both.
func initTelemetry(ctx context.Context, app *bootstrap.App[*Config], endpoint string) (*observability.Metrics, func(context.Context) error, error) {
	tcfg := observability.DefaultTracerConfig(app.Name)
	tcfg.ServiceVersion = app.Version
	tcfg.Environment = app.Cfg.Environment
	tcfg.Endpoint = endpoint
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, nil, err
	}

	mcfg := observability.DefaultMeterConfig(app.Name)
	mcfg.ServiceVersion = app.Version
	mcfg.Environment = app.Cfg.Environment
	mcfg.Endpoint = endpoint
	mp, err := observability.InitMeter(ctx, mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}
	return metrics, shutdown, nil
}

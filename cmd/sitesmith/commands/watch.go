package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/site"
	"git.home.luguber.info/inful/sitesmith/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Content string `help:"Content root (overrides content_path)"`
	Output  string `short:"o" help:"Output directory (overrides output_path)"`
	Listen  string `help:"Address serving the generated site" default:"127.0.0.1:8080"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	opts := (&BuildCmd{Content: w.Content, Output: w.Output}).options(cfg)

	reg := prom.NewRegistry()
	gen := site.NewGenerator(opts).WithRecorder(metrics.NewPrometheusRecorder(reg))
	ctx := g.context()

	if _, err := rebuild(ctx, g, gen); err != nil {
		return err
	}

	stopMetrics := startMetricsServer(g, cfg, cfg.Metrics.Listen, reg)
	defer stopMetrics()

	srv := &http.Server{
		Addr:              w.Listen,
		Handler:           http.FileServer(http.Dir(opts.OutputPath)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer shutdownServer(g, srv)
	_, _ = fmt.Fprintf(g.stdout(), "Serving %s on http://%s\n", opts.OutputPath, w.Listen)

	watcher, err := watch.New([]string{opts.ContentPath}, []string{opts.OutputPath}, func(ctx context.Context, changed []string) {
		g.logger().Info("Change detected, rebuilding", logfields.Count(len(changed)))
		if _, err := rebuild(ctx, g, gen); err != nil {
			g.logger().Error("Rebuild failed", logfields.Error(err))
		}
	})
	if err != nil {
		return err
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve %s: %w", w.Listen, err)
		}
		return nil
	case err := <-watchErr:
		return err
	}
}

func rebuild(ctx context.Context, g *Global, gen *site.Generator) (*site.BuildReport, error) {
	report, err := gen.Build(ctx)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintln(g.stdout(), report.Summary())
	return report, nil
}

func shutdownServer(g *Global, srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		g.logger().Warn("HTTP server shutdown failed", logfields.Error(err))
	}
}

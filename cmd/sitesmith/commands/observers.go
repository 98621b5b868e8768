package commands

import (
	"errors"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/events"
	"git.home.luguber.info/inful/sitesmith/internal/history"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/recipe"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

// runObserver assembles the observers for a recipe run. The returned close
// function releases the history database and the NATS connection.
func runObserver(g *Global, cfg *config.Config, recordHistory bool, rec metrics.Recorder) (recipe.Observer, func(), error) {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	obs := recipe.MultiObserver{
		recipe.LoggingObserver{Logger: g.logger()},
		recipe.NewRecorderObserver(rec),
	}
	var closers []func() error

	if recordHistory && !cfg.History.Disabled {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		obs = append(obs, history.NewObserver(store))
		closers = append(closers, store.Close)
	}

	if cfg.Events.NATSURL != "" {
		policy := retry.NewPolicy(retry.Backoff(cfg.Events.Backoff), 0, 0, cfg.Events.ConnectRetries)
		pub, err := events.NewNATSPublisher(g.context(), cfg.Events.NATSURL, policy)
		if err != nil {
			g.logger().Warn("Run events disabled", logfields.URL(cfg.Events.NATSURL), logfields.Error(err))
		} else {
			obs = append(obs, events.NewObserver(pub, cfg.Events.Subject))
			closers = append(closers, pub.Close)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				g.logger().Warn("Failed to close run observer", logfields.Error(err))
			}
		}
	}
	return obs, closeAll, nil
}

// startMetricsServer serves the registry on addr until the returned stop
// function is called. An empty addr disables it.
func startMetricsServer(g *Global, cfg *config.Config, addr string, reg *prom.Registry) func() {
	if addr == "" {
		return func() {}
	}
	srv := metrics.NewServer(addr, cfg.Metrics.Path, reg)

	go func() {
		g.logger().Info("Serving metrics", logfields.URL("http://"+addr+cfg.Metrics.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger().Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return func() { shutdownServer(g, srv) }
}

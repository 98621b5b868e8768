// Package metrics provides observability hooks for recipe runs and site builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	runner := recipe.NewRunner(executor).
//		WithObserver(recipe.NewRecorderObserver(metrics.NewPrometheusRecorder(reg)))
//
// The Prometheus implementation registers its collectors on the supplied
// registry; HTTPHandler exposes that registry for scraping.
package metrics

// Package metrics provides parse pipeline metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	p := pipeline.New(parsers, transformers, dispatcher,
//	    pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// HTTPHandler exposes a Prometheus registry for scraping.
package metrics

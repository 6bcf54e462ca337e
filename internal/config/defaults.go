package config

import "time"

const (
	defaultTOCDepth      = 3
	defaultConcurrency   = 4
	defaultWatchDebounce = 250 * time.Millisecond
	DefaultNATSSubject   = "contentpipe.parsed"
	defaultMetricsPath   = "/metrics"
)

func applyDefaults(c *Config) {
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Markdown.TOCDepth == 0 {
		c.Markdown.TOCDepth = defaultTOCDepth
	}
	if c.Markdown.Unsafe == nil {
		c.Markdown.Unsafe = boolPtr(true)
	}
	if c.Markdown.GFM == nil {
		c.Markdown.GFM = boolPtr(true)
	}
	if c.Run.Concurrency == 0 {
		c.Run.Concurrency = defaultConcurrency
	}
	if c.Run.WatchDebounce == "" {
		c.Run.WatchDebounce = defaultWatchDebounce.String()
	}
	if c.Output.Format == "" {
		c.Output.Format = OutputJSON
	}
	if c.Sinks.NATS.URL != "" && c.Sinks.NATS.Subject == "" {
		c.Sinks.NATS.Subject = DefaultNATSSubject
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaultMetricsPath
	}
}

func boolPtr(b bool) *bool { return &b }

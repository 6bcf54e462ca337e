package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments made by Normalize.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated and free-form fields in place before
// defaults are applied. Unknown enum values are left as-is for Validate to
// reject.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	c.Logging.Level = normalizeEnum(res, "logging.level", c.Logging.Level, logLevels)
	c.Logging.Format = normalizeEnum(res, "logging.format", c.Logging.Format, logFormats)
	c.Output.Format = normalizeEnum(res, "output.format", c.Output.Format, outputFormats)

	for i, name := range c.Transformers.Disabled {
		c.Transformers.Disabled[i] = normalizeKey(name)
	}
	c.Sinks.SQLite.Path = strings.TrimSpace(c.Sinks.SQLite.Path)
	c.Sinks.NATS.URL = strings.TrimSpace(c.Sinks.NATS.URL)
	c.Metrics.Address = strings.TrimSpace(c.Metrics.Address)
	return res
}

func normalizeEnum[T ~string](res *NormalizationResult, field string, raw T, values map[string]T) T {
	if raw == "" {
		return raw
	}
	canonical, ok := values[normalizeKey(string(raw))]
	if !ok {
		return raw
	}
	if canonical != raw {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s from '%s' to '%s'", field, raw, canonical))
	}
	return canonical
}

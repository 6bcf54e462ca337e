package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the configuration after defaults have been applied.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Version, validation.Required, validation.In(CurrentVersion)),
		validation.Field(&c.Logging),
		validation.Field(&c.Markdown),
		validation.Field(&c.Transformers),
		validation.Field(&c.Run),
		validation.Field(&c.Output),
		validation.Field(&c.Sinks),
		validation.Field(&c.Metrics),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
		validation.Field(&l.Format, validation.In(LogFormatJSON, LogFormatText)),
	)
}

func (m MarkdownConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.TOCDepth, validation.Min(1), validation.Max(6)),
	)
}

func (t TransformersConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Disabled, validation.Each(validation.Required)),
	)
}

func (r RunConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Concurrency, validation.Min(1), validation.Max(256)),
		validation.Field(&r.WatchDebounce, validation.By(isDuration)),
	)
}

func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.In(OutputJSON, OutputYAML, OutputNone)),
	)
}

func (s SinksConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.NATS),
	)
}

func (n NATSConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.URL, validation.By(hasScheme("nats", "tls", "ws", "wss"))),
		validation.Field(&n.Subject,
			validation.When(n.URL != "", validation.Required),
			validation.By(noWhitespace)),
	)
}

func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path, validation.By(func(v any) error {
			if p, _ := v.(string); p != "" && !strings.HasPrefix(p, "/") {
				return fmt.Errorf("must start with /")
			}
			return nil
		})),
	)
}

func isDuration(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration such as 250ms")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func hasScheme(schemes ...string) validation.RuleFunc {
	return func(v any) error {
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		for _, u := range strings.Split(s, ",") {
			scheme, _, ok := strings.Cut(strings.TrimSpace(u), "://")
			if !ok {
				return fmt.Errorf("must be a URL with one of the schemes %s", strings.Join(schemes, ", "))
			}
			found := false
			for _, want := range schemes {
				if scheme == want {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unsupported scheme %q", scheme)
			}
		}
		return nil
	}
}

func noWhitespace(v any) error {
	s, _ := v.(string)
	if strings.ContainsAny(s, " \t\r\n") {
		return fmt.Errorf("must not contain whitespace")
	}
	return nil
}

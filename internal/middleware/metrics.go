package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/ollxel/geotimer-bot/internal/bot/handlers"
	"github.com/ollxel/geotimer-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		handler := extractHandlerName(c)
		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordUpdate(handler, status, time.Since(start))

		return err
	}
}

func extractHandlerName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		// Callback payloads carry ids; keep only the action part as a label.
		if idx := strings.LastIndexByte(cb.Data, '_'); idx > 0 {
			return cb.Data[:idx]
		}
		return cb.Data
	}

	if msg := c.Message(); msg != nil && msg.Location != nil {
		return "location"
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		if idx := strings.IndexByte(text, ' '); idx > 0 {
			return text[:idx]
		}
		return text
	}

	if c.Text() != "" {
		return "text"
	}

	return "unknown"
}

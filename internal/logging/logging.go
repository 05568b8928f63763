package logging

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger: human readable output in
// development, JSON lines otherwise.
func Setup(production bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if production {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		zlog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
}

// RequestLogger logs one line per request once the handler chain is done.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		evt := zlog.Info()
		switch {
		case status >= 500:
			evt = zlog.Error()
		case status >= 400:
			evt = zlog.Warn()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

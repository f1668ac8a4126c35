package config

import (
	"io"
	"log/slog"
)

func ConfigureLogger(c *Logger, w io.Writer) (*slog.Logger, error) {
	return c.configure(w)
}

package util

import (
	"log/slog"
	"time"
)

// Trace 记录耗时，用法：defer util.Trace("remove background")()
func Trace(msg string) func() {
	start := time.Now()
	slog.Debug(msg + " start")
	return func() {
		slog.Info(msg+" done", "elapsed", time.Since(start))
	}
}

package metrics

import (
	"fmt"
	"log/slog"
)

// errorLog routes promhttp gather and encode errors to slog.
type errorLog struct{}

func (errorLog) Println(v ...interface{}) {
	slog.Warn("metrics: exposition error", "err", fmt.Sprint(v...))
}

package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// PrintAdapter adapts slog.Logger to the Print-style logger chi's request
// logger expects, so request lines pass through the masker too.
type PrintAdapter struct {
	Logger *slog.Logger
}

// Print implements middleware.LoggerInterface.
func (a *PrintAdapter) Print(v ...any) {
	a.Logger.Info(strings.TrimSpace(fmt.Sprint(v...)))
}

// Printf logs a formatted line at info level.
func (a *PrintAdapter) Printf(format string, v ...any) {
	a.Logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib *log.Logger whose lines are emitted as slog records
// at warn level, tagged with the component name. It serves code that runs
// before the application logger exists, such as configuration loading.
func New(component string) *log.Logger {
	handler := slog.Default().With("component", component).Handler()
	return slog.NewLogLogger(handler, slog.LevelWarn)
}

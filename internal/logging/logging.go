// Package logging wraps charmbracelet/log with the leveled, prefixed
// loggers the CBS engine uses at its node-boundary events. SIPP and RRA*
// never log: those run once per low-level expansion and would flood
// output far past anything useful.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger prefixed with component, writing to stderr.
func New(component string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
}

// Discard returns a logger that drops everything, for tests and for
// callers that want the engine silent.
func Discard() *log.Logger {
	l := log.New(os.Stderr)
	l.SetLevel(log.FatalLevel + 1)
	return l
}

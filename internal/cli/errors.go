package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/pkordes/festsched/internal/domain"
)

// Exit codes. Scripts can tell bad input from missing data without parsing
// messages.
const (
	exitError        = 1
	exitValidation   = 2
	exitNotFound     = 3
	exitInsufficient = 4
)

// exitCode maps a command error onto an exit code by its domain sentinel.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return exitValidation
	case errors.Is(err, domain.ErrNotFound):
		return exitNotFound
	case errors.Is(err, domain.ErrInsufficientData):
		return exitInsufficient
	}
	return exitError
}

// hint returns a follow-up suggestion for errors the user can fix, or "".
func hint(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		return "the cache has no records for a table this document needs; run `festsched sync` or `festsched import` first"
	case errors.Is(err, domain.ErrNotFound):
		return "the setting has never been stored"
	}
	return ""
}

// reportError prints err and any hint to w.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
	if h := hint(err); h != "" {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("hint: "+h))
	}
}

package main

import (
	"errors"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
)

// Exit codes for the doc2pdf command.
const (
	ExitSuccess    = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitIO         = 3
	ExitConversion = 4
	ExitPartial    = 5
)

// exitCodeFor maps an error from runConvert onto a process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNoInput),
		errors.Is(err, ErrInvalidTimeout),
		errors.Is(err, doc2pdf.ErrRequestedEngineIncompatible),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrEmptyConfigName),
		errors.Is(err, config.ErrConfigParse),
		errors.Is(err, config.ErrNoEngines),
		errors.Is(err, config.ErrUnknownEngine),
		errors.Is(err, config.ErrUnknownFormat),
		errors.Is(err, config.ErrInvalidTimeout),
		errors.Is(err, config.ErrDuplicateEngine):
		return ExitUsage
	case errors.Is(err, doc2pdf.ErrUnreadableInput),
		errors.Is(err, doc2pdf.ErrNotADirectory),
		errors.Is(err, doc2pdf.ErrUnsupportedFormat):
		return ExitIO
	case errors.Is(err, ErrAllFailed):
		return ExitConversion
	case errors.Is(err, ErrPartialFailure):
		return ExitPartial
	default:
		return ExitGeneral
	}
}

package doc2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// Validation errors. These are terminal for a document: no engine is
	// invoked once one of them is returned.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrUnreadableInput   = errors.New("input is missing, empty, or unreadable")

	// ErrRequestedEngineIncompatible distinguishes "user asked for the wrong
	// tool" from "all tools failed". Returned before any attempt is recorded.
	ErrRequestedEngineIncompatible = errors.New("requested engine does not accept the document format")

	// ErrEngineNotConfigured marks fatal adapter misconfiguration that no
	// fallback could fix. The orchestrator disables the engine for the rest
	// of the run instead of aborting the document.
	ErrEngineNotConfigured = errors.New("engine is not configured")

	// Chromium engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrHTMLConversion = errors.New("HTML conversion failed")

	// Batch errors.
	ErrNotADirectory = errors.New("batch input is not a directory")

	// ErrRefineFailed marks a writing-refinement failure. The document never
	// reaches the orchestrator; it is recorded as a rejection.
	ErrRefineFailed = errors.New("writing refinement failed")
)

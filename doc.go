// Package doc2pdf converts LaTeX and Markdown documents to PDF by delegating
// to interchangeable conversion engines with automatic fallback.
//
// # Quick Start
//
// Register engines, build an orchestrator, and convert:
//
//	orch := doc2pdf.NewOrchestrator([]doc2pdf.EngineRegistration{
//	    {Engine: doc2pdf.NewPandocEngine(doc2pdf.PandocOptions{Command: "pandoc"}), Priority: 1},
//	    {Engine: doc2pdf.NewChromiumEngine(doc2pdf.ChromiumOptions{}), Priority: 2},
//	})
//
//	doc, err := doc2pdf.Validate("paper.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcome, err := orch.ConvertDocument(ctx, doc, "", "paper.pdf")
//
// The outcome records every attempt in order; the document succeeded iff the
// last attempt did. Engines for one document always run sequentially so a
// metered remote engine is never invoked before a cheaper one has failed.
//
// # Engines
//
// Three engines ship with the package:
//
//   - pandoc: local toolchain, Markdown and LaTeX
//   - remote-service: compile API with submit/poll/download, LaTeX by default
//   - chromium: goldmark plus headless Chrome (go-rod), Markdown only
//
// All engines capture ordinary failures (missing binary, HTTP errors,
// timeouts) as failed attempts so the orchestrator can fall through to the
// next engine. Only fatal misconfiguration surfaces as an error, which
// disables that engine for the remainder of the run.
//
// # Batch Processing
//
// BatchRunner processes every regular file directly under a directory,
// validating and converting each independently:
//
//	runner := doc2pdf.NewBatchRunner(orch, doc2pdf.BatchOptions{Workers: 4})
//	result, err := runner.Run(ctx, "./docs")
//
// Documents may run in parallel; each document's fallback chain stays
// sequential. One document's failure never stops its siblings.
//
// # Reporting
//
// Reporter emits one structured log record per attempt and hands successful
// artifacts to best-effort notifiers (email, webhook):
//
//	reporter := doc2pdf.NewReporter(logger,
//	    doc2pdf.NewWebhookNotifier(doc2pdf.WebhookOptions{URL: hookURL}))
//	reporter.ReportBatch(ctx, result)
//
// # Browser Requirements
//
// The chromium engine needs Chrome/Chromium; go-rod downloads a managed
// instance on first run. Set ROD_NO_SANDBOX=1 in containers and
// ROD_BROWSER_BIN to use a custom binary.
package doc2pdf

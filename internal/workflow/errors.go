// Package workflow runs the reconciliation pipeline for one scanned
// document as a state graph: init (download and render pages), classify
// (detect each page's document type), extract (one oracle call per group
// of consecutive same-type pages) and correlate (fold the extractions into
// a ledger).
package workflow

import "errors"

// Sentinel errors for workflow operations. Oracle failures on single pages
// or groups are not errors; they degrade to ledger warnings.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrRenderFailed     = errors.New("failed to render page images")
	ErrNoPages          = errors.New("document has no pages")
	ErrInvalidState     = errors.New("invalid workflow state")
)

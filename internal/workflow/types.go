package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

const (
	KeyDocumentID  = "document_id"
	KeyTempDir     = "temp_dir"
	KeyFilename    = "filename"
	KeyPages       = "pages"
	KeyExtractions = "extractions"
	KeyOutcome     = "outcome"
)

// maxGroupPages caps how many consecutive pages share one extraction call.
const maxGroupPages = 4

// Page is one rendered page of the source scan and its classification.
type Page struct {
	Number       int                    `json:"number"`
	ImagePath    string                 `json:"-"`
	DocumentType reconcile.DocumentType `json:"document_type"`
	Confidence   float64                `json:"confidence"`
	Warning      string                 `json:"warning,omitempty"`
}

// Group is a run of consecutive pages of the same document type submitted
// to the oracle together.
type Group struct {
	DocumentType reconcile.DocumentType `json:"document_type"`
	Pages        []int                  `json:"pages"`
}

func (g Group) label() string {
	if len(g.Pages) == 1 {
		return fmt.Sprintf("page %d", g.Pages[0])
	}
	nums := make([]string, len(g.Pages))
	for i, p := range g.Pages {
		nums[i] = fmt.Sprint(p)
	}
	return "pages " + strings.Join(nums, ", ")
}

// Groups partitions pages, in order, into runs of the same known document
// type of at most maxSize pages. Unknown pages always stand alone.
func Groups(pages []Page, maxSize int) []Group {
	maxSize = max(maxSize, 1)

	var out []Group
	for _, p := range pages {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if p.DocumentType != reconcile.DocUnknown &&
				last.DocumentType == p.DocumentType &&
				len(last.Pages) < maxSize {
				last.Pages = append(last.Pages, p.Number)
				continue
			}
		}
		out = append(out, Group{DocumentType: p.DocumentType, Pages: []int{p.Number}})
	}
	return out
}

// Result is the output of one workflow execution.
type Result struct {
	DocumentID  uuid.UUID              `json:"document_id"`
	Filename    string                 `json:"filename"`
	PageCount   int                    `json:"page_count"`
	Pages       []Page                 `json:"pages"`
	Extractions []reconcile.Extraction `json:"extractions"`
	Outcome     reconcile.Outcome      `json:"outcome"`
	CompletedAt time.Time              `json:"completed_at"`
}

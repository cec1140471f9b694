package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/formatting"
)

type classification struct {
	DocumentType flexString     `json:"document_type"`
	Confidence   flexConfidence `json:"confidence"`
}

// Classification is the oracle's verdict on which document a page shows.
type Classification struct {
	DocumentType reconcile.DocumentType `json:"document_type"`
	Confidence   float64                `json:"confidence"`
}

// DecodeClassification reads a page classification response. Unrecognized
// labels classify as DocUnknown; content that is not a JSON object fails with
// formatting.ErrParseFailed.
func DecodeClassification(content string) (Classification, error) {
	raw, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return Classification{}, err
	}

	var c classification
	if err := json.Unmarshal(raw, &c); err != nil {
		return Classification{}, fmt.Errorf("%w: %w", formatting.ErrParseFailed, err)
	}

	return Classification{
		DocumentType: ParseDocumentType(c.DocumentType.String()),
		Confidence:   float64(c.Confidence),
	}, nil
}

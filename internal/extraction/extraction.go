// Package extraction adapts raw vision-oracle responses into the engine's
// canonical extraction shape. Each generation of response schema has an
// isolated adapter; every adapter tolerates missing or malformed optional
// fields and applies safe defaults. Only text that is not JSON at all fails.
package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/formatting"
)

type schema interface {
	extraction() reconcile.Extraction
}

type adapter func(raw json.RawMessage) (reconcile.Extraction, error)

func decodeAs[S schema](raw json.RawMessage) (reconcile.Extraction, error) {
	var s S
	if err := json.Unmarshal(raw, &s); err != nil {
		return reconcile.Extraction{}, err
	}
	return s.extraction(), nil
}

func decodeLegacy(docType reconcile.DocumentType) adapter {
	return func(raw json.RawMessage) (reconcile.Extraction, error) {
		var l legacy
		if err := json.Unmarshal(raw, &l); err != nil {
			return reconcile.Extraction{}, err
		}
		if docType == reconcile.DocUnknown {
			docType = ParseDocumentType(l.DocumentType.String())
		}
		return l.extraction(docType), nil
	}
}

var adapters = map[reconcile.DocumentType]adapter{
	reconcile.DocDeliveryNote:  decodeAs[deliveryNote],
	reconcile.DocLoadingList:   decodeAs[loadingList],
	reconcile.DocPalletReceipt: decodeAs[palletReceipt],
	reconcile.DocGoodsReceipt:  decodeAs[goodsReceipt],
}

// envelope reads the keys used to route an object to its adapter.
type envelope struct {
	DocumentType flexString        `json:"document_type"`
	Location     *json.RawMessage  `json:"location"`
	Pallets      *json.RawMessage  `json:"pallets"`
	Data         *json.RawMessage  `json:"data"`
	Pages        flexList[flexInt] `json:"pages"`
}

// legacy responses are flat: a single location plus a pallets table.
func (p envelope) legacy() bool {
	return p.Location != nil && p.Pallets != nil
}

// Decode converts oracle response content into extractions. docType is the
// document type the page group was classified as; DocUnknown defers to the
// type named inside the response. A single object yields one extraction and
// a grouped array yields one per element, in array order.
//
// Content that cannot be parsed as JSON returns an error wrapping
// formatting.ErrParseFailed.
func Decode(docType reconcile.DocumentType, content string) ([]reconcile.Extraction, error) {
	raw, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %w", formatting.ErrParseFailed, ErrUnsupportedShape)
	}

	switch raw[0] {
	case '{':
		ex, err := decodeObject(docType, raw)
		if err != nil {
			return nil, err
		}
		return []reconcile.Extraction{ex}, nil
	case '[':
		return decodeGroup(docType, raw)
	default:
		return nil, fmt.Errorf("%w: %w", formatting.ErrParseFailed, ErrUnsupportedShape)
	}
}

func decodeGroup(docType reconcile.DocumentType, raw json.RawMessage) ([]reconcile.Extraction, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("%w: %w", formatting.ErrParseFailed, err)
	}

	var out []reconcile.Extraction
	for i, el := range elements {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			continue
		}

		ex, err := decodeObject(docType, el)
		if err != nil {
			return nil, fmt.Errorf("group element %d: %w", i, err)
		}
		out = append(out, ex)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %w", formatting.ErrParseFailed, ErrUnsupportedShape)
	}
	return out, nil
}

func decodeObject(docType reconcile.DocumentType, raw json.RawMessage) (reconcile.Extraction, error) {
	var p envelope
	if err := json.Unmarshal(raw, &p); err != nil {
		return reconcile.Extraction{}, fmt.Errorf("%w: %w", formatting.ErrParseFailed, err)
	}

	// Grouped envelope: {document_type, pages, data}.
	var pages []int
	if p.Data != nil && len(bytes.TrimSpace(*p.Data)) > 0 && bytes.TrimSpace(*p.Data)[0] == '{' {
		for _, pg := range p.Pages {
			if pg > 0 {
				pages = append(pages, int(pg))
			}
		}
		if t := ParseDocumentType(p.DocumentType.String()); t != reconcile.DocUnknown {
			docType = t
		}
		raw = *p.Data
		p = envelope{}
		if err := json.Unmarshal(raw, &p); err != nil {
			return reconcile.Extraction{}, fmt.Errorf("%w: %w", formatting.ErrParseFailed, err)
		}
	}

	if docType == "" || docType == reconcile.DocUnknown {
		docType = ParseDocumentType(p.DocumentType.String())
	}

	decode, ok := adapters[docType]
	if !ok || p.legacy() {
		decode = decodeLegacy(docType)
	}

	ex, err := decode(raw)
	if err != nil {
		return reconcile.Extraction{}, fmt.Errorf("%w: %w", formatting.ErrParseFailed, err)
	}

	if len(pages) > 0 {
		ex.Pages = pages
		ex.Page = pages[0]
		for i := range ex.Records {
			ex.Records[i].Page = pages[0]
		}
	}
	return ex, nil
}

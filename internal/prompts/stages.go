package prompts

import (
	"encoding/json"
	"slices"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

// Stage identifies a workflow stage that carries its own prompt.
type Stage string

// Valid workflow stages.
const (
	StageClassify             Stage = "classify"
	StageExtractDeliveryNote  Stage = "extract_delivery_note"
	StageExtractLoadingList   Stage = "extract_loading_list"
	StageExtractPalletReceipt Stage = "extract_pallet_receipt"
	StageExtractGoodsReceipt  Stage = "extract_goods_receipt"
)

var stages = []Stage{
	StageClassify,
	StageExtractDeliveryNote,
	StageExtractLoadingList,
	StageExtractPalletReceipt,
	StageExtractGoodsReceipt,
}

var extractStages = map[reconcile.DocumentType]Stage{
	reconcile.DocDeliveryNote:  StageExtractDeliveryNote,
	reconcile.DocLoadingList:   StageExtractLoadingList,
	reconcile.DocPalletReceipt: StageExtractPalletReceipt,
	reconcile.DocGoodsReceipt:  StageExtractGoodsReceipt,
}

// Stages returns the list of valid workflow stages.
func Stages() []Stage {
	return stages
}

// ExtractStage returns the extraction stage for a document type. Unknown
// documents have no extraction stage.
func ExtractStage(t reconcile.DocumentType) (Stage, bool) {
	s, ok := extractStages[t]
	return s, ok
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known workflow stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}

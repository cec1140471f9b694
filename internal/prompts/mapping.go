package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/query"
	"github.com/JaimeStill/saldo/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

// Overrides for one stage sort together, the active one first.
var defaultSort = []query.SortField{
	{Field: "Stage"},
	{Field: "Active", Descending: true},
	{Field: "Name"},
}

// Filters narrows a prompt listing. DocumentType selects the extraction
// stage of that document type, so a client can ask for the overrides
// that affect pallet receipts without knowing stage names.
type Filters struct {
	Stage        *Stage                  `json:"stage,omitempty"`
	DocumentType *reconcile.DocumentType `json:"document_type,omitempty"`
	Name         *string                 `json:"name,omitempty"`
	Active       *bool                   `json:"active,omitempty"`
}

// Validate reports ErrInvalidStage for a document type without an
// extraction stage.
func (f Filters) Validate() error {
	if f.DocumentType == nil {
		return nil
	}
	if _, ok := ExtractStage(*f.DocumentType); !ok {
		return ErrInvalidStage
	}
	return nil
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	var docStage *Stage
	if f.DocumentType != nil {
		if s, ok := ExtractStage(*f.DocumentType); ok {
			docStage = &s
		}
	}
	return b.
		WhereEquals("Stage", f.Stage).
		WhereEquals("Stage", docStage).
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery reads stage, document_type, name and active. An
// unknown stage or document type is an error; an unreadable active flag
// is ignored.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("stage"); s != "" {
		stage, err := ParseStage(s)
		if err != nil {
			return f, err
		}
		f.Stage = &stage
	}
	if d := values.Get("document_type"); d != "" {
		dt := reconcile.ParseDocumentType(d)
		f.DocumentType = &dt
	}
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f, f.Validate()
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Stage,
		&p.Instructions,
		&p.Description,
		&p.Active,
	)
	return p, err
}

package documents

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/saldo/pkg/query"
	"github.com/JaimeStill/saldo/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("reference", "Reference").
	Project("carrier", "Carrier").
	Project("status", "Status").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "ledgers", "l", "LEFT JOIN", "d.id = l.document_id").
	Project("review_required", "ReviewRequired").
	Project("reconciled_at", "ReconciledAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Filename, Reference and Carrier use
// case-insensitive contains matching; the rest match exactly.
type Filters struct {
	Status         *string `json:"status,omitempty"`
	Filename       *string `json:"filename,omitempty"`
	ContentType    *string `json:"content_type,omitempty"`
	Reference      *string `json:"reference,omitempty"`
	Carrier        *string `json:"carrier,omitempty"`
	ReviewRequired *bool   `json:"review_required,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType).
		WhereContains("Reference", f.Reference).
		WhereContains("Carrier", f.Carrier).
		WhereEquals("ReviewRequired", f.ReviewRequired)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// An unparseable review_required value is ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}
	if ref := values.Get("reference"); ref != "" {
		f.Reference = &ref
	}
	if c := values.Get("carrier"); c != "" {
		f.Carrier = &c
	}
	if rr := values.Get("review_required"); rr != "" {
		if v, err := strconv.ParseBool(rr); err == nil {
			f.ReviewRequired = &v
		}
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.Reference,
		&d.Carrier,
		&d.Status,
		&d.UploadedAt,
		&d.UpdatedAt,
		&d.ReviewRequired,
		&d.ReconciledAt,
	)
	return d, err
}

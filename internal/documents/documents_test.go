package documents_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/documents"
	"github.com/JaimeStill/saldo/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", documents.ErrNotFound, http.StatusNotFound},
		{"duplicate", documents.ErrDuplicate, http.StatusConflict},
		{"file too large", documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported type", documents.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{"invalid file", documents.ErrInvalidFile, http.StatusBadRequest},
		{"invalid status", documents.ErrInvalidStatus, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", documents.ErrNotFound), http.StatusNotFound},
		{"wrapped unsupported", fmt.Errorf("create: %w", documents.ErrUnsupportedType), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documents.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "review", "complete", "failed"} {
		if got, err := documents.ParseStatus(s); err != nil || string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}

	if _, err := documents.ParseStatus("archived"); !errors.Is(err, documents.ErrInvalidStatus) {
		t.Errorf("ParseStatus(archived) error = %v, want ErrInvalidStatus", err)
	}
}

func TestLedgerKey(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	want := "ledgers/550e8400-e29b-41d4-a716-446655440000/ledger.json"
	if got := documents.LedgerKey(id); got != want {
		t.Errorf("LedgerKey = %q, want %q", got, want)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"status":          {"review"},
			"filename":        {"tour"},
			"content_type":    {"application/pdf"},
			"reference":       {"LS-4711"},
			"carrier":         {"krause"},
			"review_required": {"true"},
		}

		f := documents.FiltersFromQuery(values)

		if f.Status == nil || *f.Status != "review" {
			t.Errorf("Status = %v, want review", f.Status)
		}
		if f.Filename == nil || *f.Filename != "tour" {
			t.Errorf("Filename = %v, want tour", f.Filename)
		}
		if f.ContentType == nil || *f.ContentType != "application/pdf" {
			t.Errorf("ContentType = %v, want application/pdf", f.ContentType)
		}
		if f.Reference == nil || *f.Reference != "LS-4711" {
			t.Errorf("Reference = %v, want LS-4711", f.Reference)
		}
		if f.Carrier == nil || *f.Carrier != "krause" {
			t.Errorf("Carrier = %v, want krause", f.Carrier)
		}
		if f.ReviewRequired == nil || !*f.ReviewRequired {
			t.Errorf("ReviewRequired = %v, want true", f.ReviewRequired)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{})

		if f.Status != nil || f.Filename != nil || f.ContentType != nil ||
			f.Reference != nil || f.Carrier != nil || f.ReviewRequired != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})

	t.Run("invalid review_required ignored", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{"review_required": {"maybe"}})

		if f.ReviewRequired != nil {
			t.Errorf("ReviewRequired = %v, want nil for invalid input", f.ReviewRequired)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "documents", "d").
		Project("status", "Status").
		Project("filename", "Filename").
		Project("content_type", "ContentType").
		Project("reference", "Reference").
		Project("carrier", "Carrier").
		Join("public", "ledgers", "l", "LEFT JOIN", "d.id = l.document_id").
		Project("review_required", "ReviewRequired")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{}.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT d.status, d.filename, d.content_type, d.reference, d.carrier, l.review_required " +
			"FROM public.documents d LEFT JOIN public.ledgers l ON d.id = l.document_id"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("carrier contains filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{Carrier: ptr("krause")}.Apply(b)
		_, args := b.Build()

		if len(args) != 1 || args[0] != "%krause%" {
			t.Errorf("args = %v, want [%%krause%%]", args)
		}
	})

	t.Run("review required filters on ledger column", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{ReviewRequired: ptr(true)}.Apply(b)
		sql, args := b.Build()

		if want := "WHERE l.review_required = $1"; !strings.Contains(sql, want) {
			t.Errorf("sql = %q, want %q", sql, want)
		}
		if v, ok := args[0].(*bool); !ok || !*v {
			t.Errorf("args[0] = %v, want *true", args[0])
		}
	})

	t.Run("multiple filters combine with AND", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{
			Status:    ptr("pending"),
			Filename:  ptr("tour"),
			Reference: ptr("LS"),
		}.Apply(b)
		_, args := b.Build()

		if len(args) != 3 {
			t.Errorf("args length = %d, want 3", len(args))
		}
	})
}

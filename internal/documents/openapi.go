package documents

import "github.com/JaimeStill/saldo/pkg/openapi"

type spec struct {
	Tags    []string
	Schemas map[string]*openapi.Schema

	List         *openapi.Operation
	Find         *openapi.Operation
	Upload       *openapi.Operation
	Search       *openapi.Operation
	UpdateStatus *openapi.Operation
	Delete       *openapi.Operation
}

var Docs = spec{
	Tags: []string{"Documents"},

	Schemas: map[string]*openapi.Schema{
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "string", Format: "uuid"},
				"filename":        {Type: "string"},
				"content_type":    {Type: "string", Enum: []any{ContentTypePDF, ContentTypePNG}},
				"size_bytes":      {Type: "integer"},
				"page_count":      {Type: "integer"},
				"storage_key":     {Type: "string"},
				"reference":       {Type: "string"},
				"carrier":         {Type: "string"},
				"status":          {Type: "string", Enum: []any{"pending", "review", "complete", "failed"}},
				"uploaded_at":     {Type: "string", Format: "date-time"},
				"updated_at":      {Type: "string", Format: "date-time"},
				"review_required": {Type: "boolean"},
				"reconciled_at":   {Type: "string", Format: "date-time"},
			},
		},
		"DocumentPageResult": openapi.PageResultSchema("Document"),
		"DocumentSearchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":            {Type: "integer"},
				"page_size":       {Type: "integer"},
				"search":          {Type: "string"},
				"sort":            {Type: "string"},
				"status":          {Type: "string"},
				"filename":        {Type: "string"},
				"content_type":    {Type: "string"},
				"reference":       {Type: "string"},
				"carrier":         {Type: "string"},
				"review_required": {Type: "boolean"},
			},
		},
		"StatusCommand": {
			Type:     "object",
			Required: []string{"status"},
			Properties: map[string]*openapi.Schema{
				"status": {Type: "string", Enum: []any{"pending", "review", "complete", "failed"}},
			},
		},
	},

	List: &openapi.Operation{
		Summary: "List documents",
		Parameters: openapi.PageQuery("Search filename, reference and carrier",
			openapi.EnumQuery("status", "Filter by status",
				StatusPending, StatusReview, StatusComplete, StatusFailed),
			openapi.Query("carrier", "string", "Filter by carrier"),
			openapi.Query("review_required", "boolean", "Filter by ledger review disposition"),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated documents", "DocumentPageResult"),
		},
	},

	Find: &openapi.Operation{
		Summary:    "Find document",
		Parameters: []*openapi.Parameter{openapi.PathID("Document ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Upload: &openapi.Operation{
		Summary:     "Upload a scanned freight document",
		Description: "Accepts a PDF or PNG scan with optional reference and carrier hints.",
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {
					Schema: &openapi.Schema{
						Type:     "object",
						Required: []string{"file"},
						Properties: map[string]*openapi.Schema{
							"file":      {Type: "string", Format: "binary"},
							"reference": {Type: "string"},
							"carrier":   {Type: "string"},
						},
					},
				},
			},
		},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Uploaded document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			415: openapi.ResponseRef("UnsupportedMediaType"),
		},
	},

	Search: &openapi.Operation{
		Summary:     "Search documents",
		RequestBody: openapi.RequestBodyJSON("DocumentSearchRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated documents", "DocumentPageResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	UpdateStatus: &openapi.Operation{
		Summary:     "Set document status",
		Parameters:  []*openapi.Parameter{openapi.PathID("Document ID")},
		RequestBody: openapi.RequestBodyJSON("StatusCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Delete: &openapi.Operation{
		Summary:    "Delete document, its scan and its ledger",
		Parameters: []*openapi.Parameter{openapi.PathID("Document ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Document deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

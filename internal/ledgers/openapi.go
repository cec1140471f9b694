package ledgers

import "github.com/JaimeStill/saldo/pkg/openapi"

type spec struct {
	Tags    []string
	Schemas map[string]*openapi.Schema

	List           *openapi.Operation
	Find           *openapi.Operation
	FindByDocument *openapi.Operation
	Search         *openapi.Operation
	Reconcile      *openapi.Operation
	ReconcileBatch *openapi.Operation
	Validate       *openapi.Operation
	Approve        *openapi.Operation
	Delete         *openapi.Operation
}

var Docs = spec{
	Tags: []string{"Ledgers"},

	Schemas: map[string]*openapi.Schema{
		"Ledger": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "string", Format: "uuid"},
				"document_id":        {Type: "string", Format: "uuid"},
				"references":         {Type: "object", Description: "order_number, delivery_number and tour_number"},
				"shipper":            {Type: "string"},
				"consignee":          {Type: "string"},
				"carrier":            {Type: "string"},
				"vehicle_plate":      {Type: "string"},
				"stop_count":         {Type: "integer"},
				"page_count":         {Type: "integer"},
				"average_confidence": {Type: "number"},
				"review_required":    {Type: "boolean"},
				"review_reasons":     {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"warnings":           {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"errors":             {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"gap_fill":           {Type: "string", Enum: []any{"", "assumed_exchange", "delivery_only"}},
				"tie_break":          {Type: "boolean"},
				"export_key":         {Type: "string"},
				"reconciled_at":      {Type: "string", Format: "date-time"},
				"approved_by":        {Type: "string"},
				"approved_at":        {Type: "string", Format: "date-time"},
				"rows":               {Type: "array", Items: openapi.SchemaRef("LedgerRow")},
				"issues":             {Type: "array", Items: openapi.SchemaRef("LedgerIssue")},
			},
		},
		"LedgerRow": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"pallet_type":       {Type: "string", Example: "EUR"},
				"pickup_received":   {Type: "integer"},
				"pickup_given":      {Type: "integer"},
				"delivery_given":    {Type: "integer"},
				"delivery_received": {Type: "integer"},
				"saldo":             {Type: "integer", Description: "pickup_given - pickup_received"},
			},
		},
		"LedgerIssue": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"pallet_type": {Type: "string"},
				"check":       {Type: "string"},
				"severity":    {Type: "string", Enum: []any{"error", "warning"}},
				"message":     {Type: "string"},
				"corrected":   {Type: "boolean"},
			},
		},
		"LedgerPageResult": openapi.PageResultSchema("Ledger"),
		"LedgerSearchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":            {Type: "integer"},
				"page_size":       {Type: "integer"},
				"search":          {Type: "string"},
				"sort":            {Type: "string"},
				"document_id":     {Type: "string", Format: "uuid"},
				"carrier":         {Type: "string"},
				"consignee":       {Type: "string"},
				"delivery_number": {Type: "string"},
				"review_required": {Type: "boolean"},
				"approved_by":     {Type: "string"},
				"min_confidence":  {Type: "number"},
				"max_confidence":  {Type: "number"},
			},
		},
		"BatchCommand": {
			Type:     "object",
			Required: []string{"document_ids"},
			Properties: map[string]*openapi.Schema{
				"document_ids": {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
			},
		},
		"BatchResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"ledgers": {Type: "array", Items: openapi.SchemaRef("Ledger")},
				"failures": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"document_id": {Type: "string", Format: "uuid"},
							"error":       {Type: "string"},
						},
					},
				},
			},
		},
		"Entry": {
			Type:        "object",
			Description: "One pallet type with pickup and delivery sides",
			Properties: map[string]*openapi.Schema{
				"pallet_type": {Type: "string"},
				"pickup":      {Type: "object"},
				"delivery":    {Type: "object"},
				"saldo":       {Type: "integer"},
				"exchanged":   {Type: "boolean"},
				"dpl_issued":  {Type: "boolean"},
				"dpl_number":  {Type: "string"},
			},
		},
		"ValidationResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"original":  openapi.SchemaRef("Entry"),
				"adjusted":  openapi.SchemaRef("Entry"),
				"issues":    {Type: "array", Items: openapi.SchemaRef("LedgerIssue")},
				"corrected": {Type: "boolean"},
			},
		},
		"ApproveCommand": {
			Type:     "object",
			Required: []string{"approved_by"},
			Properties: map[string]*openapi.Schema{
				"approved_by": {Type: "string"},
			},
		},
	},

	List: &openapi.Operation{
		Summary: "List ledgers",
		Parameters: openapi.PageQuery("Search carrier, consignee and reference numbers",
			openapi.Query("carrier", "string", "Filter by carrier"),
			openapi.Query("consignee", "string", "Filter by consignee"),
			openapi.Query("delivery_number", "string", "Filter by delivery number"),
			openapi.Query("review_required", "boolean", "Filter by review disposition"),
			openapi.Query("approved_by", "string", "Filter by reviewer"),
			openapi.ConfidenceQuery("min_confidence", "Lowest average confidence"),
			openapi.ConfidenceQuery("max_confidence", "Highest average confidence"),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated ledgers", "LedgerPageResult"),
		},
	},

	Find: &openapi.Operation{
		Summary:    "Find ledger with rows and issues",
		Parameters: []*openapi.Parameter{openapi.PathID("Ledger ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Ledger", "Ledger"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	FindByDocument: &openapi.Operation{
		Summary:    "Find the ledger reconciled from a document",
		Parameters: []*openapi.Parameter{openapi.PathID("Document ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Ledger", "Ledger"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Search: &openapi.Operation{
		Summary:     "Search ledgers",
		RequestBody: openapi.RequestBodyJSON("LedgerSearchRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated ledgers", "LedgerPageResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Reconcile: &openapi.Operation{
		Summary:     "Reconcile a document",
		Description: "Classifies and extracts every page, correlates the stops and stores the resulting ledger. Reconciling again replaces the previous ledger.",
		Parameters:  []*openapi.Parameter{openapi.PathID("Document ID")},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Stored ledger", "Ledger"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},

	ReconcileBatch: &openapi.Operation{
		Summary:     "Reconcile several documents",
		Description: "Each document is reconciled independently. Failures are reported per document.",
		RequestBody: openapi.RequestBodyJSON("BatchCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Ledgers and failures", "BatchResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Validate: &openapi.Operation{
		Summary:     "Validate a single entry",
		Description: "Runs the consistency checks without storing anything.",
		RequestBody: openapi.RequestBodyJSON("Entry", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Validation result", "ValidationResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Approve: &openapi.Operation{
		Summary:     "Approve a ledger in review",
		Parameters:  []*openapi.Parameter{openapi.PathID("Ledger ID")},
		RequestBody: openapi.RequestBodyJSON("ApproveCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Approved ledger", "Ledger"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},

	Delete: &openapi.Operation{
		Summary:    "Delete a ledger",
		Parameters: []*openapi.Parameter{openapi.PathID("Ledger ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Ledger deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

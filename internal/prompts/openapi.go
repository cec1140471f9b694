package prompts

import "github.com/JaimeStill/saldo/pkg/openapi"

type spec struct {
	Tags    []string
	Schemas map[string]*openapi.Schema

	List         *openapi.Operation
	Stages       *openapi.Operation
	Find         *openapi.Operation
	Instructions *openapi.Operation
	Spec         *openapi.Operation
	Preview      *openapi.Operation
	Create       *openapi.Operation
	Update       *openapi.Operation
	Delete       *openapi.Operation
	Search       *openapi.Operation
	Activate     *openapi.Operation
	Deactivate   *openapi.Operation
}

func stageParam() *openapi.Parameter {
	return &openapi.Parameter{
		Name:     "stage",
		In:       "path",
		Required: true,
		Schema:   &openapi.Schema{Type: "string", Enum: stageEnum()},
	}
}

func documentTypeEnum() []any {
	out := make([]any, 0, len(extractStages))
	for _, s := range stages {
		for dt, es := range extractStages {
			if es == s {
				out = append(out, string(dt))
			}
		}
	}
	return out
}

func stageEnum() []any {
	out := make([]any, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

var Docs = spec{
	Tags: []string{"Prompts"},

	Schemas: map[string]*openapi.Schema{
		"Prompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"name":         {Type: "string"},
				"stage":        {Type: "string", Enum: stageEnum()},
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
				"active":       {Type: "boolean"},
			},
		},
		"PromptCommand": {
			Type:     "object",
			Required: []string{"name", "stage", "instructions"},
			Properties: map[string]*openapi.Schema{
				"name":         {Type: "string"},
				"stage":        {Type: "string", Enum: stageEnum()},
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
			},
		},
		"PromptPageResult": openapi.PageResultSchema("Prompt"),
		"StageInfo": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"stage":         {Type: "string", Enum: stageEnum()},
				"document_type": {Type: "string", Enum: documentTypeEnum()},
			},
		},
		"StageContent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"stage":   {Type: "string"},
				"content": {Type: "string"},
			},
		},
	},

	List: &openapi.Operation{
		Summary: "List prompt overrides",
		Parameters: openapi.PageQuery("Search name and description",
			openapi.EnumQuery("stage", "Filter by stage", stageEnum()...),
			openapi.EnumQuery("document_type", "Filter by the extraction stage of a document type", documentTypeEnum()...),
			openapi.Query("name", "string", "Name contains"),
			openapi.Query("active", "boolean", "Filter by active flag"),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated prompts", "PromptPageResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Stages: &openapi.Operation{
		Summary: "List workflow stages",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Stages in workflow order",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("StageInfo")}},
				},
			},
		},
	},

	Find: &openapi.Operation{
		Summary:    "Find prompt override",
		Parameters: []*openapi.Parameter{openapi.PathID("Prompt ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Instructions: &openapi.Operation{
		Summary:    "Effective instructions for a stage",
		Parameters: []*openapi.Parameter{stageParam()},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Instructions", "StageContent"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Spec: &openapi.Operation{
		Summary:    "Response specification for a stage",
		Parameters: []*openapi.Parameter{stageParam()},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Specification", "StageContent"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Preview: &openapi.Operation{
		Summary:     "Compose the full prompt for a stage",
		Description: "Effective instructions, response specification and the multi-page addendum.",
		Parameters: []*openapi.Parameter{
			stageParam(),
			openapi.Query("pages", "string", "Comma separated page numbers, default 1"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Composed prompt", "StageContent"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},

	Create: &openapi.Operation{
		Summary:     "Create prompt override",
		RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created prompt", "Prompt"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},

	Update: &openapi.Operation{
		Summary:     "Update prompt override",
		Parameters:  []*openapi.Parameter{openapi.PathID("Prompt ID")},
		RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated prompt", "Prompt"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Delete: &openapi.Operation{
		Summary:    "Delete prompt override",
		Parameters: []*openapi.Parameter{openapi.PathID("Prompt ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Prompt deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Search: &openapi.Operation{
		Summary:     "Search prompt overrides",
		RequestBody: openapi.RequestBodyJSON("PageRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated prompts", "PromptPageResult"),
		},
	},

	Activate: &openapi.Operation{
		Summary:     "Activate prompt override",
		Description: "Deactivates any other override for the same stage.",
		Parameters:  []*openapi.Parameter{openapi.PathID("Prompt ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Active prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	Deactivate: &openapi.Operation{
		Summary:    "Deactivate prompt override",
		Parameters: []*openapi.Parameter{openapi.PathID("Prompt ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Inactive prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

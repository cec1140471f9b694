package openapi

const (
	schemaPrefix   = "#/components/schemas/"
	responsePrefix = "#/components/responses/"
	contentJSON    = "application/json"
)

// SchemaRef points at a component schema.
func SchemaRef(name string) *Schema {
	return &Schema{Ref: schemaPrefix + name}
}

// ResponseRef points at a shared component response such as NotFound.
func ResponseRef(name string) *Response {
	return &Response{Ref: responsePrefix + name}
}

func jsonContent(schemaName string) map[string]*MediaType {
	return map[string]*MediaType{contentJSON: {Schema: SchemaRef(schemaName)}}
}

func RequestBodyJSON(schemaName string, required bool) *RequestBody {
	return &RequestBody{Required: required, Content: jsonContent(schemaName)}
}

func ResponseJSON(description, schemaName string) *Response {
	return &Response{Description: description, Content: jsonContent(schemaName)}
}

// PathID is the required {id} path parameter every saldo resource uses.
func PathID(description string) *Parameter {
	return &Parameter{
		Name:        "id",
		In:          "path",
		Required:    true,
		Description: description,
		Schema:      &Schema{Type: "string", Format: "uuid"},
	}
}

// Query is an optional query parameter of the given JSON type.
func Query(name, typ, description string) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "query",
		Description: description,
		Schema:      &Schema{Type: typ},
	}
}

// EnumQuery is an optional string query parameter limited to values.
func EnumQuery(name, description string, values ...any) *Parameter {
	p := Query(name, "string", description)
	p.Schema.Enum = values
	return p
}

// ConfidenceQuery is an optional number query parameter bounded to the
// oracle confidence range [0, 1].
func ConfidenceQuery(name, description string) *Parameter {
	lo, hi := 0.0, 1.0
	p := Query(name, "number", description)
	p.Schema.Minimum = &lo
	p.Schema.Maximum = &hi
	return p
}

// PageQuery returns the page, page_size, search and sort parameters shared
// by every list endpoint, followed by filters.
func PageQuery(search string, filters ...*Parameter) []*Parameter {
	return append([]*Parameter{
		Query("page", "integer", "Page number (1-indexed)"),
		Query("page_size", "integer", "Results per page"),
		Query("search", "string", search),
		Query("sort", "string", "Comma-separated sort fields, prefix - for descending"),
	}, filters...)
}

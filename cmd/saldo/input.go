package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// response is one saved oracle answer for a page group.
type response struct {
	Page         int             `json:"page"`
	Pages        []int           `json:"pages"`
	DocumentType string          `json:"document_type"`
	Response     json.RawMessage `json:"response"`
}

func (r response) first() int {
	if r.Page > 0 {
		return r.Page
	}
	if len(r.Pages) > 0 {
		return slices.Min(r.Pages)
	}
	return 0
}

func (r response) label() string {
	pages := r.Pages
	if len(pages) == 0 && r.Page > 0 {
		pages = []int{r.Page}
	}
	switch len(pages) {
	case 0:
		return "group"
	case 1:
		return fmt.Sprintf("page %d", pages[0])
	default:
		return fmt.Sprintf("pages %d-%d", slices.Min(pages), slices.Max(pages))
	}
}

// content returns the oracle text. A JSON string is the raw model output;
// any other value is treated as already parsed.
func (r response) content() string {
	raw := bytes.TrimSpace(r.Response)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// readDocument decodes a JSON or YAML file into v. YAML input is converted
// to JSON first so the json tags and custom unmarshalers apply unchanged.
func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// readResponses accepts either a list of responses or an object with a
// "responses" list, and returns them in page order.
func readResponses(path string) ([]response, error) {
	var list []response
	if err := readDocument(path, &list); err != nil {
		var wrapped struct {
			Responses []response `json:"responses"`
		}
		if werr := readDocument(path, &wrapped); werr != nil {
			return nil, err
		}
		list = wrapped.Responses
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%s: no responses", path)
	}

	slices.SortStableFunc(list, func(a, b response) int {
		return a.first() - b.first()
	})
	return list, nil
}

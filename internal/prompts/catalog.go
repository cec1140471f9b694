package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogEntry struct {
	Instructions string `yaml:"instructions"`
	Spec         string `yaml:"spec"`
}

type catalog struct {
	Stages map[string]catalogEntry `yaml:"stages"`
}

var defaults = mustLoadCatalog(catalogYAML)

func mustLoadCatalog(data []byte) map[Stage]catalogEntry {
	entries, err := loadCatalog(data)
	if err != nil {
		panic(err)
	}
	return entries
}

func loadCatalog(data []byte) (map[Stage]catalogEntry, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	entries := make(map[Stage]catalogEntry, len(c.Stages))
	for name, e := range c.Stages {
		stage, err := ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("prompt catalog stage %q: %w", name, err)
		}
		entries[stage] = catalogEntry{
			Instructions: strings.TrimSpace(e.Instructions),
			Spec:         strings.TrimSpace(e.Spec),
		}
	}

	for _, s := range stages {
		e, ok := entries[s]
		if !ok || e.Instructions == "" || e.Spec == "" {
			return nil, fmt.Errorf("prompt catalog missing stage %q", s)
		}
	}

	return entries, nil
}

// Instructions returns the default instructions for a workflow stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	e, ok := defaults[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return e.Instructions, nil
}

// Spec returns the response specification for a workflow stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	e, ok := defaults[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return e.Spec, nil
}

// Compose joins instructions and spec into a single prompt. When more than
// one page is attached, the prompt names the page numbers and allows a
// grouped array response.
func Compose(instructions, spec string, pages []int) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	if len(pages) > 1 {
		nums := make([]string, len(pages))
		for i, p := range pages {
			nums[i] = fmt.Sprint(p)
		}
		sb.WriteString("\n\nThe attached images are pages ")
		sb.WriteString(strings.Join(nums, ", "))
		sb.WriteString(". When they belong to one document, respond with one object covering all of them.")
		sb.WriteString(" When they hold separate documents, respond with a JSON array with one entry per document:")
		sb.WriteString(` {"document_type": "<type>", "pages": [<page numbers>], "data": {<object as specified above>}}`)
	}

	return sb.String()
}

// Defaults composes prompts from the embedded catalog alone. It serves
// callers that run without a database.
type Defaults struct{}

func (Defaults) Compose(_ context.Context, stage Stage, pages []int) (string, error) {
	instructions, err := Instructions(stage)
	if err != nil {
		return "", err
	}
	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}
	return Compose(instructions, spec, pages), nil
}

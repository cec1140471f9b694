// Package prompts owns the instructions sent to the vision oracle. Defaults
// come from an embedded YAML catalog; named overrides stored in Postgres can
// replace a stage's instructions at runtime.
package prompts

import (
	"strings"

	"github.com/google/uuid"
)

// Prompt represents a named instruction override for a workflow stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate trims the command and reports ErrInvalid when the name or
// instructions are empty, or ErrInvalidStage for an unknown stage.
func (c *CreateCommand) Validate() error {
	return validate(&c.Name, &c.Instructions, c.Stage)
}

// Validate applies the same rules as CreateCommand.Validate.
func (c *UpdateCommand) Validate() error {
	return validate(&c.Name, &c.Instructions, c.Stage)
}

func validate(name, instructions *string, stage Stage) error {
	*name = strings.TrimSpace(*name)
	*instructions = strings.TrimSpace(*instructions)
	if *name == "" || *instructions == "" {
		return ErrInvalid
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	return nil
}

package api

import (
	"github.com/JaimeStill/saldo/internal/documents"
	"github.com/JaimeStill/saldo/internal/ledgers"
	"github.com/JaimeStill/saldo/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Ledgers   ledgers.System
	Prompts   prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	docsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	ledgersSystem := ledgers.New(
		runtime.Database.Connection(),
		runtime.Oracle,
		runtime.OracleConfig,
		runtime.Engine,
		runtime.Logger,
		runtime.Pagination,
		runtime.Storage,
		docsSystem,
		promptsSystem,
	)

	return &Domain{
		Documents: docsSystem,
		Ledgers:   ledgersSystem,
		Prompts:   promptsSystem,
	}
}

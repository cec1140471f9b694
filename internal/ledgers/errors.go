package ledgers

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/saldo/internal/oracle"
)

// Domain errors for ledger operations.
var (
	ErrNotFound          = errors.New("ledger not found")
	ErrDuplicate         = errors.New("ledger already exists")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrCorrelationFailed = errors.New("correlation failed")
	ErrInvalidStatus     = errors.New("document is not in review status")
	ErrInvalidRequest    = errors.New("invalid request")
)

// MapHTTPStatus maps ledger domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidStatus):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrOracleExhausted):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

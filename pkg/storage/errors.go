package storage

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("empty blob key")
	ErrInvalidKey = errors.New("invalid blob key")
)

var httpStatus = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrEmptyKey, http.StatusBadRequest},
	{ErrInvalidKey, http.StatusBadRequest},
}

// MapHTTPStatus returns the response status for a storage error. Unknown
// errors are treated as server failures.
func MapHTTPStatus(err error) int {
	for _, m := range httpStatus {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// CheckKey validates a blob key such as "scans/<id>/lieferschein.pdf" or
// "ledgers/<id>/ledger.json". Keys are relative slash-separated paths; an
// empty, "." or ".." segment and backslashes are rejected so a key taken
// from a URL can never leave its prefix.
func CheckKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsRune(key, '\\') {
		return ErrInvalidKey
	}
	for segment := range strings.SplitSeq(key, "/") {
		switch segment {
		case "", ".", "..":
			return ErrInvalidKey
		}
	}
	return nil
}

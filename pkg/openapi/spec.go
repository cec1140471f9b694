package openapi

import (
	"cmp"
	"encoding/json"
	"net/http"
)

// Version is the OpenAPI revision the generated document targets.
const Version = "3.1.0"

// Spec is the generated API document served at /openapi.json.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec creates an empty document titled from cfg. The published server
// is cfg.Server, or basePath when that is unset.
func NewSpec(cfg *Config, version, basePath string) *Spec {
	s := &Spec{
		OpenAPI: Version,
		Info: &Info{
			Title:       cfg.Title,
			Version:     version,
			Description: cfg.Description,
		},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
	if server := cmp.Or(cfg.Server, basePath); server != "" {
		s.Servers = []*Server{{URL: server}}
	}
	return s
}

// JSON renders the document for serving.
func (s *Spec) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ServeSpec serves a rendered document. The document is fixed for the
// life of the process, so clients may cache it.
func ServeSpec(data []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Write(data)
	}
}

package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/saldo/pkg/module"
)

// echoPath answers with the path the inner router received.
func echoPath() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
	return mux
}

func TestNewPrefix(t *testing.T) {
	if got := module.New("/api", echoPath()).Prefix(); got != "/api" {
		t.Errorf("Prefix() = %s, want /api", got)
	}

	for _, prefix := range []string{"", "api", "/", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				err, _ := recover().(error)
				if !errors.Is(err, module.ErrInvalidPrefix) {
					t.Errorf("panic = %v, want ErrInvalidPrefix", err)
				}
			}()
			module.New(prefix, echoPath())
		})
	}
}

func TestServeStripsPrefix(t *testing.T) {
	m := module.New("/api", echoPath())

	tests := []struct {
		path string
		want string
	}{
		{"/api/ledgers/reconcile", "/ledgers/reconcile"},
		{"/api/storage/download/ledgers/abc/ledger.json", "/storage/download/ledgers/abc/ledger.json"},
		{"/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			m.Serve(rec, req)

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("inner path = %s, want %s", got, tt.want)
			}
			if req.URL.Path != tt.path {
				t.Errorf("caller request modified: %s", req.URL.Path)
			}
		})
	}
}

func TestModuleMiddlewareOrder(t *testing.T) {
	m := module.New("/api", echoPath())

	var order []string
	for _, name := range []string{"request_id", "logger"} {
		m.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/ledgers", nil))
	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/ledgers", nil))

	want := []string{"request_id", "logger", "request_id", "logger"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestRouter(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPath()))
	router.Fallback("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"module", "/api/ledgers", http.StatusOK, "/ledgers"},
		{"module trailing slash", "/api/ledgers/", http.StatusOK, "/ledgers"},
		{"fallback", "/healthz", http.StatusOK, "ok"},
		{"lookalike prefix not owned", "/apiv2/ledgers", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterPrefixes(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/ops", echoPath()))
	router.Mount(module.New("/api", echoPath()))

	got := router.Prefixes()
	if len(got) != 2 || got[0] != "/api" || got[1] != "/ops" {
		t.Errorf("Prefixes() = %v, want [/api /ops]", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("mounting /api twice should panic")
		}
	}()
	router.Mount(module.New("/api", echoPath()))
}

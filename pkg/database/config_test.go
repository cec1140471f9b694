package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/saldo/pkg/database"
)

func TestFinalize(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		cfg  database.Config
		want database.Config
	}{
		{
			name: "defaults",
			cfg:  database.Config{Name: "saldo", User: "saldo"},
			want: database.Config{
				Host: "localhost", Port: 5432, Name: "saldo", User: "saldo", SSLMode: "disable",
				MaxOpenConns: 25, MaxIdleConns: 5, ConnMaxLifetime: "15m", ConnTimeout: "5s",
			},
		},
		{
			name: "environment wins over file",
			env: map[string]string{
				"SALDO_TEST_DB_HOST":     "pg.lager.internal",
				"SALDO_TEST_DB_PORT":     "5433",
				"SALDO_TEST_DB_NAME":     "saldo_prod",
				"SALDO_TEST_DB_USER":     "dispo",
				"SALDO_TEST_DB_PASSWORD": "geheim",
				"SALDO_TEST_DB_SSL":      "require",
				"SALDO_TEST_DB_MAX_OPEN": "40",
				"SALDO_TEST_DB_MAX_IDLE": "8",
				"SALDO_TEST_DB_LIFETIME": "30m",
				"SALDO_TEST_DB_TIMEOUT":  "10s",
			},
			cfg: database.Config{Host: "localhost", Name: "saldo", User: "saldo"},
			want: database.Config{
				Host: "pg.lager.internal", Port: 5433, Name: "saldo_prod", User: "dispo", Password: "geheim",
				SSLMode: "require", MaxOpenConns: 40, MaxIdleConns: 8, ConnMaxLifetime: "30m", ConnTimeout: "10s",
			},
		},
		{
			name: "unparsable port ignored",
			env:  map[string]string{"SALDO_TEST_DB_PORT": "fünf"},
			cfg:  database.Config{Port: 6432, Name: "saldo", User: "saldo"},
			want: database.Config{
				Host: "localhost", Port: 6432, Name: "saldo", User: "saldo", SSLMode: "disable",
				MaxOpenConns: 25, MaxIdleConns: 5, ConnMaxLifetime: "15m", ConnTimeout: "5s",
			},
		},
	}

	env := &database.Env{
		Host:            "SALDO_TEST_DB_HOST",
		Port:            "SALDO_TEST_DB_PORT",
		Name:            "SALDO_TEST_DB_NAME",
		User:            "SALDO_TEST_DB_USER",
		Password:        "SALDO_TEST_DB_PASSWORD",
		SSLMode:         "SALDO_TEST_DB_SSL",
		MaxOpenConns:    "SALDO_TEST_DB_MAX_OPEN",
		MaxIdleConns:    "SALDO_TEST_DB_MAX_IDLE",
		ConnMaxLifetime: "SALDO_TEST_DB_LIFETIME",
		ConnTimeout:     "SALDO_TEST_DB_TIMEOUT",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := tt.cfg
			if err := cfg.Finalize(env); err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}
			if cfg != tt.want {
				t.Errorf("config = %+v\nwant     %+v", cfg, tt.want)
			}
		})
	}
}

func TestFinalizeRejects(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr []string
	}{
		{"no database", database.Config{User: "saldo"}, []string{"name required"}},
		{"no role", database.Config{Name: "saldo"}, []string{"user required"}},
		{"idle pool larger than open", database.Config{Name: "saldo", User: "saldo", MaxOpenConns: 4, MaxIdleConns: 8}, []string{"exceeds max_open_conns"}},
		{
			"both durations malformed",
			database.Config{Name: "saldo", User: "saldo", ConnMaxLifetime: "eine Stunde", ConnTimeout: "5"},
			[]string{"invalid conn_max_lifetime", "invalid conn_timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("Finalize() error = nil")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err, want)
				}
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "saldo", User: "saldo", MaxOpenConns: 25}
	base.Merge(&database.Config{Host: "pg.lager.internal", Password: "geheim"})

	want := database.Config{Host: "pg.lager.internal", Port: 5432, Name: "saldo", User: "saldo", Password: "geheim", MaxOpenConns: 25}
	if base != want {
		t.Errorf("merged = %+v\nwant     %+v", base, want)
	}
}

func TestConnectionStrings(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantDsn string
		wantURL string
	}{
		{
			"local",
			database.Config{Host: "localhost", Port: 5432, Name: "saldo", User: "saldo", SSLMode: "disable"},
			"host=localhost port=5432 dbname=saldo user=saldo password= sslmode=disable",
			"postgres://saldo@localhost:5432/saldo?sslmode=disable",
		},
		{
			"escaped password",
			database.Config{Host: "db", Port: 5433, Name: "saldo", User: "dispo", Password: "p@ss/wort", SSLMode: "require"},
			"host=db port=5433 dbname=saldo user=dispo password=p@ss/wort sslmode=require",
			"postgres://dispo:p%40ss%2Fwort@db:5433/saldo?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Dsn(); got != tt.wantDsn {
				t.Errorf("Dsn() = %s, want %s", got, tt.wantDsn)
			}
			if got := tt.cfg.URL(); got != tt.wantURL {
				t.Errorf("URL() = %s, want %s", got, tt.wantURL)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := database.Config{ConnMaxLifetime: "90m", ConnTimeout: "2s"}

	if d := cfg.ConnMaxLifetimeDuration(); d != 90*time.Minute {
		t.Errorf("ConnMaxLifetimeDuration() = %v, want 90m", d)
	}
	if d := cfg.ConnTimeoutDuration(); d != 2*time.Second {
		t.Errorf("ConnTimeoutDuration() = %v, want 2s", d)
	}
}

package storage_test

import (
	"testing"

	"github.com/JaimeStill/saldo/pkg/storage"
)

func TestConfigFinalize(t *testing.T) {
	env := &storage.Env{
		ContainerName:    "SALDO_TEST_STORAGE_CONTAINER",
		ConnectionString: "SALDO_TEST_STORAGE_CONN",
		MaxListSize:      "SALDO_TEST_STORAGE_MAX_LIST",
	}

	tests := []struct {
		name string
		env  map[string]string
		cfg  storage.Config
		want storage.Config
	}{
		{
			name: "defaults",
			cfg:  storage.Config{ConnectionString: azuriteConnString},
			want: storage.Config{ContainerName: "saldo", ConnectionString: azuriteConnString, MaxListSize: 50},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"SALDO_TEST_STORAGE_CONTAINER": "lieferscheine",
				"SALDO_TEST_STORAGE_CONN":      "UseDevelopmentStorage=true",
				"SALDO_TEST_STORAGE_MAX_LIST":  "200",
			},
			cfg:  storage.Config{ContainerName: "saldo", ConnectionString: azuriteConnString},
			want: storage.Config{ContainerName: "lieferscheine", ConnectionString: "UseDevelopmentStorage=true", MaxListSize: 200},
		},
		{
			name: "list size capped",
			cfg:  storage.Config{ConnectionString: azuriteConnString, MaxListSize: 100000},
			want: storage.Config{ContainerName: "saldo", ConnectionString: azuriteConnString, MaxListSize: storage.MaxListCap},
		},
		{
			name: "negative list size reset",
			env:  map[string]string{"SALDO_TEST_STORAGE_MAX_LIST": "-5"},
			cfg:  storage.Config{ConnectionString: azuriteConnString},
			want: storage.Config{ContainerName: "saldo", ConnectionString: azuriteConnString, MaxListSize: 50},
		},
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
				t.Errorf("config = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestConfigFinalizeRequiresConnection(t *testing.T) {
	cfg := storage.Config{ContainerName: "scans"}
	err := cfg.Finalize(nil)
	if err == nil || err.Error() != "connection_string required" {
		t.Errorf("Finalize() error = %v, want connection_string required", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{ContainerName: "scans", ConnectionString: "UseDevelopmentStorage=true", MaxListSize: 50}
	base.Merge(&storage.Config{MaxListSize: 500})

	want := storage.Config{ContainerName: "scans", ConnectionString: "UseDevelopmentStorage=true", MaxListSize: 500}
	if base != want {
		t.Errorf("merged = %+v, want %+v", base, want)
	}
}

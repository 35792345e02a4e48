package duckdb

import (
	"context"
	"testing"

	"fwetl/internal/storage"
)

func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() {}, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "duckdb", DSN: "results/lsa.duckdb", Table: "task2"})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	defer repo.Close()
	if gotCfg.DSN != "results/lsa.duckdb" || gotCfg.Table != "task2" {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
}

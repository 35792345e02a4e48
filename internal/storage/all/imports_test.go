package all

import (
	"slices"
	"testing"

	"fwetl/internal/ddl"
	"fwetl/internal/storage"
)

func TestAllBackendsRegistered(t *testing.T) {
	t.Parallel()

	kinds := storage.ListKinds()
	for kind := range ddl.Dialects {
		if !slices.Contains(kinds, kind) {
			t.Fatalf("storage kind %q not registered; have %v", kind, kinds)
		}
	}
}

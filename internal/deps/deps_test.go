package deps_test

import (
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/deps"
	"github.com/saadbenchakroun/auto-video-generator/internal/testsupport"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Nope", Command: "definitely-not-a-real-binary-1234"},
		{Name: "Unset", Command: ""},
	})
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	for _, status := range statuses {
		if status.Available {
			t.Fatalf("%s reported available", status.Name)
		}
		if status.Detail == "" {
			t.Fatalf("%s missing detail", status.Name)
		}
	}
	missing := deps.MissingRequired(statuses)
	if len(missing) != 2 {
		t.Fatalf("MissingRequired = %v", missing)
	}
}

func TestCheckBinariesFindsStubbed(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("%s unavailable: %s", status.Name, status.Detail)
		}
	}
	if missing := deps.MissingRequired(statuses); len(missing) != 0 {
		t.Fatalf("MissingRequired = %v", missing)
	}
}

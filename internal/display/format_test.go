package display

import (
	"strings"
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/storage"
)

func TestFormatEndpointsAligns(t *testing.T) {
	out := FormatEndpoints([]*storage.Entity{
		{Kind: entity.KindEndpoint, Name: "/orders", Verb: "GET", Module: "app", File: "app/routes.py", Line: 3},
		{Kind: entity.KindEndpoint, Name: "/orders/{id}", Verb: "DELETE", Module: "app", Auth: entity.AuthSession, File: "app/routes.py", Line: 9},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "VERB") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "/orders") || !strings.Contains(lines[1], "-") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "session") || !strings.Contains(lines[2], "app/routes.py:9") {
		t.Errorf("row = %q", lines[2])
	}
}

func TestFormatStepsIndentsChain(t *testing.T) {
	out := FormatSteps([]storage.Step{
		{Kind: entity.RelationExposes, SourceName: "/orders", SourceKind: entity.KindEndpoint, TargetName: "OrderPage", TargetKind: entity.KindView},
		{Kind: entity.RelationUses, SourceName: "OrderPage", SourceKind: entity.KindView, TargetName: "OrderService", TargetKind: entity.KindService},
		{Kind: entity.RelationPersists, SourceName: "Order", SourceKind: entity.KindModel, TargetName: "OrderService", TargetKind: entity.KindService},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "└── ") || !strings.Contains(lines[0], "exposes") {
		t.Errorf("step 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    └── ") {
		t.Errorf("step 1 not indented: %q", lines[1])
	}
	if !strings.Contains(lines[2], "OrderService (service) persists Order (model)") {
		t.Errorf("persists step reads wrong: %q", lines[2])
	}
}

func TestFormatTraceIndentsByDepth(t *testing.T) {
	out := FormatTrace([]storage.TraceRow{
		{Entity: &storage.Entity{Kind: entity.KindView, Name: "OrderPage", File: "app/views.py", Line: 1}, Depth: 1},
		{Entity: &storage.Entity{Kind: entity.KindService, Name: "OrderService", File: "app/services.py", Line: 1}, Depth: 2},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if !strings.HasPrefix(lines[0], "├── OrderPage") {
		t.Errorf("row 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    └── OrderService") {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	if got := Truncate("a-very-long-identifier", 10); got != "a-very-..." {
		t.Errorf("Truncate = %q", got)
	}
}

package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ts-factory/bublik-logtree/internal/presentation/graph"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

const payload = `{"main_package": {"id": 1, "name": "ts", "type": "pkg", "children": [
	{"id": 2, "name": "a", "type": "pkg", "children": [
		{"id": 3, "name": "b", "type": "session", "children": [
			{"id": 4, "name": "say \"hi\"", "type": "test", "has_error": true},
			{"id": 5, "name": "loop", "type": "iter"}
		]}
	]}
]}}`

func build(t *testing.T) *domain.Tree {
	t.Helper()
	tr, err := tree.Build(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tr
}

func TestGenerateMermaid(t *testing.T) {
	selected := int64(4)

	tests := []struct {
		name        string
		overlay     *graph.TreeOverlay
		contains    []string
		notContains []string
	}{
		{
			name: "Kind Shapes",
			contains: []string{
				"n1[\"ts\"]",
				"n3([\"a/b <br/> ⋯\"])",
				"n5((\"loop\"))",
			},
		},
		{
			name: "Edges",
			contains: []string{
				"n1 --> n3",
				"n3 --> n4",
				"n3 --> n5",
			},
			notContains: []string{"n2"},
		},
		{
			name: "Label Escaping",
			contains: []string{
				"n4[/\"say 'hi'\"/]",
			},
		},
		{
			name: "Failed Style",
			contains: []string{
				"classDef failed",
				"class n4 failed;",
			},
		},
		{
			name:    "Overlay",
			overlay: &graph.TreeOverlay{Path: []int64{1, 3, 4}, Selected: &selected},
			contains: []string{
				"class n1 onpath;",
				"class n3 onpath;",
				"class n4 current;",
			},
			notContains: []string{"class n4 onpath;"},
		},
	}

	tr := build(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tr, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("missing header:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\nGot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output NOT to contain %q\nGot:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestGenerateMermaid_Empty(t *testing.T) {
	got := graph.GenerateMermaid(domain.EmptyTree(), nil)
	if !strings.Contains(got, "empty") {
		t.Errorf("expected empty marker, got:\n%s", got)
	}
}

package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectTaskLookupArgs(t *testing.T) {
	t.Parallel()

	const id = "3f1c2a9e-7b4d-4c8e-9a51-0d2e6f7b8c90"

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"flowboard"},
			want: []string{"flowboard"},
		},
		{
			name: "direct task id first token",
			in:   []string{"flowboard", id},
			want: []string{"flowboard", "tasks", "show", id},
		},
		{
			name: "direct task id after value flag",
			in:   []string{"flowboard", "--dir", "./tmp-test-ws", id},
			want: []string{"flowboard", "--dir", "./tmp-test-ws", "tasks", "show", id},
		},
		{
			name: "direct task id after equals flag",
			in:   []string{"flowboard", "--store=sqlite", id},
			want: []string{"flowboard", "--store=sqlite", "tasks", "show", id},
		},
		{
			name: "direct task id after bool flag",
			in:   []string{"flowboard", "--pretty", id},
			want: []string{"flowboard", "--pretty", "tasks", "show", id},
		},
		{
			name: "direct task id after double dash",
			in:   []string{"flowboard", "--dir", "./tmp-test-ws", "--", id},
			want: []string{"flowboard", "--dir", "./tmp-test-ws", "--", "tasks", "show", id},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"flowboard", "tasks", "show", id},
			want: []string{"flowboard", "tasks", "show", id},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"flowboard", "wat"},
			want: []string{"flowboard", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectTaskLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectTaskLookupArgs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces trimmed", "json, dot", []string{"json", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		base   string
		format string
		count  int
		want   string
	}{
		{"default single", "", "family", "svg", 1, "family.svg"},
		{"explicit single", "tree.out", "family", "svg", 1, "tree.out"},
		{"default multiple", "", "family", "png", 2, "family.png"},
		{"output base multiple", "out/tree", "family", "pdf", 2, "out/tree.pdf"},
		{"output with format ext", "tree.svg", "family", "png", 2, "tree.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.base, tt.format, tt.count); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutBase(t *testing.T) {
	for in, want := range map[string]string{
		"family.layout.json": "family",
		"dir/tree.json":      "dir/tree",
		"plain":              "plain",
	} {
		if got := layoutBase(in); got != want {
			t.Errorf("layoutBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "family")
	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"json": []byte("{}"), "dot": []byte("digraph {}")},
		formats:   []string{"json", "dot"},
		base:      base,
	})
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	for _, ext := range []string{".json", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", base+ext, err)
		}
	}
}

func TestWriteArtifactsStdoutNeedsOneFormat(t *testing.T) {
	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"json": nil, "dot": nil},
		formats:   []string{"json", "dot"},
		output:    stdoutArg,
	})
	if err == nil {
		t.Error("expected an error for two formats on stdout")
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeHousehold(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(household())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "family.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPersonCandidates(t *testing.T) {
	path := writeHousehold(t)
	tests := []struct {
		path, prefix string
		want         []string
	}{
		{path, "", []string{"p\tPat", "a\tAnn", "b\tBen", "c\tCat", "d\tDan", "e\tEve"}},
		{path, "a", []string{"a\tAnn"}},
		{path, "zz", nil},
		{stdinArg, "", nil},
		{"", "", nil},
		{filepath.Join(t.TempDir(), "missing.json"), "", nil},
	}
	for _, tt := range tests {
		if got := personCandidates(tt.path, tt.prefix); !slices.Equal(got, tt.want) {
			t.Errorf("personCandidates(%q, %q) = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

// complete runs cobra's hidden completion command and returns the
// candidate lines, without the trailing directive line.
func complete(t *testing.T, args ...string) []string {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"__complete"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("complete %v: %v", args, err)
	}
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if !strings.HasPrefix(l, ":") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestCompletePersonIDs(t *testing.T) {
	path := writeHousehold(t)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"show id", []string{"show", path, "d"}, []string{"d\tDan"}},
		{"anchor flag", []string{"render", path, "--anchor", "e"}, []string{"e\tEve"}},
		{"show after id", []string{"show", path, "a", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := complete(t, tt.args...); !slices.Equal(got, tt.want) {
				t.Errorf("candidates = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(io.Discard, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out.String(), "kintree") {
				t.Errorf("%s script does not mention kintree", shell)
			}
		})
	}
}

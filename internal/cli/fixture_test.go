package cli

import (
	"context"
	"io"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// household is Pat -> Ann, Ann married to Ben, their children Cat and Dan,
// and Cat's daughter Eve. Initially Eve is hidden below Cat.
func household() *family.Document {
	return &family.Document{People: []family.Person{
		{ID: "p", Name: "Pat", BirthYear: family.Year(1900), DeathYear: family.Year(1970)},
		{ID: "a", Name: "Ann", BirthYear: family.Year(1930), ParentIDs: []string{"p"}, SpouseIDs: []string{"b"}},
		{ID: "b", Name: "Ben", SpouseIDs: []string{"a"}},
		{ID: "c", Name: "Cat", ParentIDs: []string{"a", "b"}},
		{ID: "d", Name: "Dan", ParentIDs: []string{"a", "b"}},
		{ID: "e", Name: "Eve", ParentIDs: []string{"c"}},
	}}
}

func quietOptions() pipeline.Options {
	return pipeline.Options{Logger: newLogger(io.Discard, LogInfo)}
}

func loadHousehold(t *testing.T) *pipeline.Session {
	t.Helper()
	s, err := pipeline.Load(context.Background(), household(), quietOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

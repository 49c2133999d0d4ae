package codesearch

import (
	"errors"
	"testing"

	"github.com/jparise/gh-codesearch/internal/github"
	"github.com/jparise/gh-codesearch/internal/query"
)

func TestAggregate(t *testing.T) {
	q := query.SearchQuery{SearchTerm: "foo bar", Restrictions: map[string]string{"language": "go"}}
	items := []github.SearchResult{
		{Name: "a.go", Path: "pkg/a.go", SHA: "1", URL: "u1", Score: 2, Repository: github.Repository{Name: "r", FullName: "o/r"}},
		{Name: "b.go", Path: "b.go", SHA: "2", URL: "u2", Score: 1, Repository: github.Repository{Name: "s", FullName: "o/s"}},
		{Name: "c.go", Path: "c.go", SHA: "3", URL: "u3", Score: 0.5, Repository: github.Repository{Name: "r", FullName: "o/r"}},
	}
	outcomes := []Outcome{
		{Path: "/tmp/x/1-a.go"},
		{Err: errors.New("boom")},
		{Path: "/tmp/x/3-c.go"},
	}

	got := Aggregate(q, items, outcomes)
	if len(got) != len(items) {
		t.Fatalf("Aggregate() returned %d entries, want %d", len(got), len(items))
	}

	tests := []struct {
		index     int
		wantName  string
		wantLabel string
		wantPath  string
		wantErr   string
	}{
		{index: 0, wantName: "a.go", wantLabel: "o/r: pkg/a.go", wantPath: "/tmp/x/1-a.go"},
		{index: 1, wantName: "b.go", wantLabel: "o/s: b.go", wantErr: "boom"},
		{index: 2, wantName: "c.go", wantLabel: "o/r: c.go", wantPath: "/tmp/x/3-c.go"},
	}

	for _, tt := range tests {
		entry := got[tt.index]
		if entry.Name != tt.wantName {
			t.Errorf("entry %d Name = %q, want %q", tt.index, entry.Name, tt.wantName)
		}
		if entry.DisplayName != tt.wantLabel {
			t.Errorf("entry %d DisplayName = %q, want %q", tt.index, entry.DisplayName, tt.wantLabel)
		}
		if entry.SearchTerm != "foo bar" {
			t.Errorf("entry %d SearchTerm = %q, want %q", tt.index, entry.SearchTerm, "foo bar")
		}
		if entry.LocalPath != tt.wantPath {
			t.Errorf("entry %d LocalPath = %q, want %q", tt.index, entry.LocalPath, tt.wantPath)
		}
		if entry.Error != tt.wantErr {
			t.Errorf("entry %d Error = %q, want %q", tt.index, entry.Error, tt.wantErr)
		}
		if entry.OK() != (tt.wantErr == "") {
			t.Errorf("entry %d OK() = %v, want %v", tt.index, entry.OK(), tt.wantErr == "")
		}
	}

	if got[0].Score != 2 || got[0].SHA != "1" || got[0].URL != "u1" || got[0].Repository.FullName != "o/r" {
		t.Errorf("entry 0 metadata not copied: %+v", got[0])
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(query.SearchQuery{}, nil, nil)
	if len(got) != 0 {
		t.Errorf("Aggregate() returned %d entries, want 0", len(got))
	}
}

func TestAggregate_MisalignedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Aggregate() with misaligned outcomes did not panic")
		}
	}()

	Aggregate(query.SearchQuery{}, []github.SearchResult{{Name: "a"}}, nil)
}

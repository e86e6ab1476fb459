package util

import (
	"testing"

	"github.com/spf13/afero"
)

func TestAppendToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := AppendToFile(fs, "out/records.jsonl", "a", "b"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := AppendToFile(fs, "out/records.jsonl", "c"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	bs, err := afero.ReadFile(fs, "out/records.jsonl")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(bs) != "a\nb\nc\n" {
		t.Errorf("unexpected content %q", string(bs))
	}
}

func TestWriteToFileOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteToFile(fs, "cfg/comparison.json", "first"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := WriteToFile(fs, "cfg/comparison.json", "second", "line"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	bs, _ := afero.ReadFile(fs, "cfg/comparison.json")
	if string(bs) != "second\nline" {
		t.Errorf("unexpected content %q", string(bs))
	}
}

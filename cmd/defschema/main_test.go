package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEmit_WritesValidSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs", "effects.schema.json")

	if err := emit(path); err != nil {
		t.Fatalf("emit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var schema struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if schema.Title != "Alchemy Effect Definitions" {
		t.Errorf("unexpected title %q", schema.Title)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not survive a successful write")
	}
}

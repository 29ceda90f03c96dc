package manifest

import (
	"path/filepath"
	"testing"
)

const testdataDir = "testdata"

func testPath(name string) string {
	return filepath.Join(testdataDir, name)
}

func TestParseFile_AllFields(t *testing.T) {
	m, err := ParseFile(testPath("valid-skill.json"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if m.Name != "web_automation" {
		t.Errorf("Name = %q, want %q", m.Name, "web_automation")
	}
	if m.Version != "0.3.0" {
		t.Errorf("Version = %q, want %q", m.Version, "0.3.0")
	}
	if m.Entry != "main:run" {
		t.Errorf("Entry = %q, want %q", m.Entry, "main:run")
	}
	if v, ok := m.Capabilities["browser"].(bool); !ok || !v {
		t.Errorf("Capabilities[browser] = %v, want true", m.Capabilities["browser"])
	}
}

func TestParseFile_Defaults(t *testing.T) {
	m, err := ParseFile(testPath("minimal-skill.json"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if m.Version != "0.0.0" {
		t.Errorf("default Version = %q, want %q", m.Version, "0.0.0")
	}
	if m.Entry != DefaultEntry {
		t.Errorf("default Entry = %q, want %q", m.Entry, DefaultEntry)
	}
	if m.Capabilities == nil {
		t.Error("Capabilities should default to an empty map, got nil")
	}
}

func TestParseFile_FileNotFound(t *testing.T) {
	_, err := ParseFile(testPath("nonexistent.json"))
	if err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"), "inline")
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

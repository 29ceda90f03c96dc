package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/skillbox-labs/skillbox/internal/skill"
)

// runRunCapture executes runRun with isolated flag state and returns the
// captured stdout alongside the error.
func runRunCapture(t *testing.T, root, skillName, runID string) (string, error) {
	t.Helper()
	prevRoot, prevRunID := rootDir, runRunID
	rootDir, runRunID = root, runID
	t.Cleanup(func() { rootDir, runRunID = prevRoot, prevRunID })
	t.Setenv("SKILLBOX_RUN_ID", "")
	t.Setenv("SKILLBOX_AGENT_ID", "")
	t.Setenv("SKILLBOX_COORDINATOR", "")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	err := runRun(cmd, []string{skillName})
	return buf.String(), err
}

// A failing skill still yields exactly one JSON result object on stdout so
// scripts can parse the outcome; the returned error drives the exit status.
func TestRunRun_FailurePrintsErrorResult(t *testing.T) {
	root := t.TempDir()
	skillDir := filepath.Join(root, "skills", "doomed")
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	mf := `{"name": "doomed", "version": "1.0.0", "entry": "main:run"}`
	if err := os.WriteFile(filepath.Join(skillDir, "skill.json"), []byte(mf), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	skill.Register("doomed", "main", skill.Module{"run": func(ctx context.Context, rc *skill.RunContext) (map[string]any, error) {
		return nil, errors.New("upstream exploded")
	}})
	t.Cleanup(func() { skill.Unregister("doomed", "main") })

	out, err := runRunCapture(t, root, "doomed", "20260830T100000Z_cafe0002")
	if err == nil {
		t.Fatal("expected error from failing skill")
	}

	var res map[string]any
	if uerr := json.Unmarshal([]byte(out), &res); uerr != nil {
		t.Fatalf("stdout is not one JSON object: %v\n%s", uerr, out)
	}
	if res["status"] != "error" {
		t.Errorf("status = %v, want error", res["status"])
	}
	if msg, _ := res["error"].(string); !strings.Contains(msg, "upstream exploded") {
		t.Errorf("error field = %v", res["error"])
	}
	if res["run_id"] != "20260830T100000Z_cafe0002" {
		t.Errorf("run_id = %v", res["run_id"])
	}
}

func TestRunRun_UnknownSkillPrintsErrorResult(t *testing.T) {
	out, err := runRunCapture(t, t.TempDir(), "missing", "")
	if err == nil {
		t.Fatal("expected error for unknown skill")
	}
	var res map[string]any
	if uerr := json.Unmarshal([]byte(out), &res); uerr != nil {
		t.Fatalf("stdout is not one JSON object: %v\n%s", uerr, out)
	}
	if res["status"] != "error" {
		t.Errorf("status = %v, want error", res["status"])
	}
}

func TestParseSetFlags(t *testing.T) {
	got, err := parseSetFlags([]string{
		"query=golang testing",
		"maxResults=5",
		"headless=true",
		`session={"enabled": true}`,
		"loose={enabled:true,command:start}",
	})
	if err != nil {
		t.Fatalf("parseSetFlags error: %v", err)
	}

	if got["query"] != "golang testing" {
		t.Errorf("query = %v (%T)", got["query"], got["query"])
	}
	if got["maxResults"] != float64(5) {
		t.Errorf("maxResults = %v (%T), want JSON number", got["maxResults"], got["maxResults"])
	}
	if got["headless"] != true {
		t.Errorf("headless = %v (%T), want bool", got["headless"], got["headless"])
	}
	if want := map[string]any{"enabled": true}; !reflect.DeepEqual(got["session"], want) {
		t.Errorf("session = %#v, want %#v", got["session"], want)
	}
	if want := map[string]any{"enabled": true, "command": "start"}; !reflect.DeepEqual(got["loose"], want) {
		t.Errorf("loose = %#v, want %#v", got["loose"], want)
	}
}

func TestParseSetFlags_Invalid(t *testing.T) {
	for _, bad := range []string{"noequals", "=value", " =x"} {
		if _, err := parseSetFlags([]string{bad}); err == nil {
			t.Errorf("parseSetFlags(%q) should fail", bad)
		}
	}
}

func TestParseSetFlags_Empty(t *testing.T) {
	got, err := parseSetFlags(nil)
	if err != nil || got != nil {
		t.Errorf("parseSetFlags(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a very long description indeed", 10); len(got) != 12 || got[:9] != "a very lo" {
		t.Errorf("truncate = %q", got)
	}
}

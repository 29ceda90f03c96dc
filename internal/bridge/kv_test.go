package bridge

import (
	"reflect"
	"testing"
)

func TestParseLooseObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"typed values", "{enabled:true,command:status,port:38200}",
			map[string]any{"enabled": true, "command": "status", "port": 38200}},
		{"floats and strings", "{slowMo:1.5,host:'127.0.0.1'}",
			map[string]any{"slowMo": 1.5, "host": "127.0.0.1"}},
		{"quoted keys", `{"command":"start"}`,
			map[string]any{"command": "start"}},
		{"empty object", "{}", map[string]any{}},
		{"whitespace", "  { enabled : false } ", map[string]any{"enabled": false}},
		{"skips bad pairs", "{enabled:true,orphan,:novalue}", map[string]any{"enabled": true}},
		{"not braced", "enabled:true", nil},
		{"plain string", "start", nil},
		{"empty string", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLooseObject(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLooseObject(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{"true", true},
		{"YES", true},
		{"1", true},
		{" on ", true},
		{"0", false},
		{"no", false},
		{"random", false},
	}

	for _, tt := range tests {
		if got := CoerceBool(tt.in); got != tt.want {
			t.Errorf("CoerceBool(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExtractSessionSpec_NestedMap(t *testing.T) {
	payload := map[string]any{
		"query": "golang",
		"session": map[string]any{
			"enabled": true,
			"command": "START",
			"port":    38200,
		},
	}

	spec, found := ExtractSessionSpec(payload)
	if !found {
		t.Fatal("session config not found")
	}
	if !spec.Enabled || spec.Command != "start" || spec.Port != 38200 || spec.Host != "127.0.0.1" {
		t.Errorf("spec = %+v", spec)
	}
}

func TestExtractSessionSpec_LooseString(t *testing.T) {
	payload := map[string]any{"session": "{enabled:true,command:close}"}

	spec, found := ExtractSessionSpec(payload)
	if !found || spec.Command != "close" {
		t.Errorf("spec = %+v, found = %v", spec, found)
	}
	// The normalized map replaces the string form.
	if _, ok := payload["session"].(map[string]any); !ok {
		t.Errorf("payload session = %T, want normalized map", payload["session"])
	}
}

func TestExtractSessionSpec_FlattenedKeys(t *testing.T) {
	payload := map[string]any{
		"query":           "golang",
		"session.command": "status",
		"session.enabled": "true",
	}

	spec, found := ExtractSessionSpec(payload)
	if !found || !spec.Enabled || spec.Command != "status" {
		t.Errorf("spec = %+v, found = %v", spec, found)
	}
	// Flattened keys must not leak into action options.
	if _, ok := payload["session.command"]; ok {
		t.Error("flattened session keys should be removed from payload")
	}
	if _, ok := payload["session"].(map[string]any); !ok {
		t.Error("normalized session map should be written back")
	}
}

func TestExtractSessionSpec_Absent(t *testing.T) {
	payload := map[string]any{"query": "golang"}
	spec, found := ExtractSessionSpec(payload)
	if found {
		t.Error("found should be false with no session config")
	}
	if spec.Enabled || spec.Command != "call" {
		t.Errorf("zero spec = %+v", spec)
	}
}

func TestExtractSessionSpec_DisabledExplicitly(t *testing.T) {
	payload := map[string]any{"session": map[string]any{"enabled": false}}
	spec, found := ExtractSessionSpec(payload)
	if !found {
		t.Fatal("session config not found")
	}
	if spec.Enabled {
		t.Error("enabled:false must be honored")
	}
}

func TestIsSessionCommand(t *testing.T) {
	for _, cmd := range []string{"start", "open", "close", "stop", "shutdown", "status", "health"} {
		if !isSessionCommand(cmd) {
			t.Errorf("isSessionCommand(%q) = false, want true", cmd)
		}
	}
	for _, cmd := range []string{"call", "", "restart"} {
		if isSessionCommand(cmd) {
			t.Errorf("isSessionCommand(%q) = true, want false", cmd)
		}
	}
}

func TestActionOptions(t *testing.T) {
	payload := map[string]any{
		"query":                "golang",
		"headless":             true,
		"userDataDir":          "/tmp/profile",
		"session":              map[string]any{"enabled": true},
		"saveStorageStatePath": "/tmp/state.json",
		"maxResults":           5,
	}

	got := actionOptions(payload)
	want := map[string]any{"query": "golang", "maxResults": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("actionOptions = %#v, want %#v", got, want)
	}
}

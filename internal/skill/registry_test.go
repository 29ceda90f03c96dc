package skill

import (
	"context"
	"errors"
	"testing"
)

func stubHandler(ctx context.Context, rc *RunContext) (map[string]any, error) {
	return map[string]any{"status": "ok"}, nil
}

func TestLookup(t *testing.T) {
	Register("demo", "main", Module{"run": stubHandler})
	t.Cleanup(func() { Unregister("demo", "main") })

	h, err := Lookup("demo", "main", "run")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	res, err := h(context.Background(), nil)
	if err != nil || res["status"] != "ok" {
		t.Errorf("handler = (%v, %v)", res, err)
	}
}

func TestLookup_ModuleNotRegistered(t *testing.T) {
	_, err := Lookup("ghost", "main", "run")
	if !errors.Is(err, ErrModuleNotRegistered) {
		t.Errorf("Lookup error = %v, want ErrModuleNotRegistered", err)
	}
}

func TestLookup_MissingEntryPoint(t *testing.T) {
	Register("demo", "main", Module{"run": stubHandler})
	t.Cleanup(func() { Unregister("demo", "main") })

	_, err := Lookup("demo", "main", "launch")
	if !errors.Is(err, ErrMissingEntryPoint) {
		t.Errorf("Lookup error = %v, want ErrMissingEntryPoint", err)
	}
}

func TestRegister_Replaces(t *testing.T) {
	Register("demo", "main", Module{"run": stubHandler})
	Register("demo", "main", Module{
		"run": func(ctx context.Context, rc *RunContext) (map[string]any, error) {
			return map[string]any{"status": "replaced"}, nil
		},
	})
	t.Cleanup(func() { Unregister("demo", "main") })

	h, err := Lookup("demo", "main", "run")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	res, _ := h(context.Background(), nil)
	if res["status"] != "replaced" {
		t.Errorf("status = %v, want replaced", res["status"])
	}
}

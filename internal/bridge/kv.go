package bridge

import (
	"strconv"
	"strings"
)

// ParseLooseObject parses a loose single-level object format like
// {enabled:true,command:status,port:38200} into typed values.
//
// This exists only to make shell-unfriendly `--set session={...}` overrides
// usable without fragile quoting; it is deliberately not a general parser.
// Input that is not brace-wrapped returns nil.
func ParseLooseObject(text string) map[string]any {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "{") || !strings.HasSuffix(t, "}") {
		return nil
	}
	body := strings.TrimSpace(t[1 : len(t)-1])
	out := map[string]any{}
	if body == "" {
		return out
	}

	for _, part := range strings.Split(body, ",") {
		k, v, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		k = trimQuotes(strings.TrimSpace(k))
		v = trimQuotes(strings.TrimSpace(v))
		if k == "" {
			continue
		}
		out[k] = coerceScalar(v)
	}
	return out
}

func trimQuotes(s string) string {
	s = strings.Trim(s, `"`)
	return strings.Trim(s, `'`)
}

// coerceScalar maps a raw string to bool, int or float when it parses as
// one, else keeps the string.
func coerceScalar(v string) any {
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	if strings.Contains(v, ".") {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	} else if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return v
}

// CoerceBool interprets common truthy strings alongside real booleans.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	default:
		s := strings.ToLower(strings.TrimSpace(toString(v)))
		switch s {
		case "1", "true", "yes", "y", "on":
			return true
		}
		return false
	}
}

// SessionSpec is the session sub-configuration extracted from a payload.
type SessionSpec struct {
	Enabled       bool
	Command       string
	Host          string
	Port          int
	UserDataScope string
}

// sessionCommands that operate purely on the state machine, bypassing
// action-specific payload defaulting.
func isSessionCommand(cmd string) bool {
	switch cmd {
	case "start", "open", "close", "stop", "shutdown", "status", "health":
		return true
	}
	return false
}

// ExtractSessionSpec normalizes the session configuration out of a payload.
// It accepts a nested map, a loose-object string, and flattened
// "session.<key>" overrides (which are removed from the payload so they do
// not leak into action options). The normalized map is written back under
// "session". The second return reports whether any session config was found.
func ExtractSessionSpec(payload map[string]any) (SessionSpec, bool) {
	var raw map[string]any

	switch v := payload["session"].(type) {
	case map[string]any:
		raw = make(map[string]any, len(v))
		for k, val := range v {
			raw[k] = val
		}
	case string:
		raw = ParseLooseObject(v)
	}

	// Flattened overrides like session.command=start.
	for k := range payload {
		if !strings.HasPrefix(k, "session.") {
			continue
		}
		if raw == nil {
			raw = map[string]any{}
		}
		raw[strings.TrimPrefix(k, "session.")] = payload[k]
		delete(payload, k)
	}

	if raw == nil {
		return SessionSpec{Command: "call"}, false
	}
	payload["session"] = raw

	spec := SessionSpec{
		Enabled: true,
		Command: "call",
		Host:    "127.0.0.1",
	}
	if v, ok := raw["enabled"]; ok {
		spec.Enabled = CoerceBool(v)
	}
	if v, ok := raw["command"]; ok {
		if s := strings.ToLower(strings.TrimSpace(toString(v))); s != "" {
			spec.Command = s
		}
	}
	if v, ok := raw["host"]; ok {
		if s := strings.TrimSpace(toString(v)); s != "" {
			spec.Host = s
		}
	}
	if v, ok := raw["port"]; ok {
		spec.Port = toInt(v)
	}
	if v, ok := raw["userDataScope"]; ok {
		spec.UserDataScope = strings.ToLower(strings.TrimSpace(toString(v)))
	}
	return spec, true
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return strings.TrimSpace(strings.Trim(strings.TrimSpace(jsonScalar(v)), `"`))
	}
}

func jsonScalar(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i
		}
	}
	return 0
}

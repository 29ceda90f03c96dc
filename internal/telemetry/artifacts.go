package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// hashChunkSize bounds memory when hashing large externally-produced files.
const hashChunkSize = 1 << 20

// ArtifactRecord is one line in the artifact index. The index is append-only
// and never rewritten; a file may legitimately be indexed more than once
// (e.g. once on write, once when referenced from a worker trace).
type ArtifactRecord struct {
	Skill   string `json:"skill"`
	RunID   string `json:"run_id"`
	AgentID string `json:"agent_id"`
	Scope   string `json:"scope"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	SHA256  string `json:"sha256"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ArtifactStore writes artifacts into the agent-private or run-shared
// directory and maintains a per-agent append-only index.
type ArtifactStore struct {
	agentDir  string
	sharedDir string
	indexPath string
	meta      Meta
}

// NewArtifactStore creates the artifact directories and returns a store
// indexing into <agentDir>/index.jsonl.
func NewArtifactStore(agentDir, sharedDir string, meta Meta) (*ArtifactStore, error) {
	for _, dir := range []string{agentDir, sharedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating artifact directory %s: %w", dir, err)
		}
	}
	return &ArtifactStore{
		agentDir:  agentDir,
		sharedDir: sharedDir,
		indexPath: filepath.Join(agentDir, "index.jsonl"),
		meta:      meta,
	}, nil
}

// Path resolves a store-relative path within the given scope.
func (s *ArtifactStore) Path(rel string, scope Scope) string {
	base := s.agentDir
	if scope == ScopeShared {
		base = s.sharedDir
	}
	return filepath.Join(base, rel)
}

// WriteBytes writes data to a store-relative path and indexes it.
func (s *ArtifactStore) WriteBytes(rel string, data []byte, scope Scope) (string, error) {
	p := s.Path(rel, scope)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact %s: %w", p, err)
	}
	sum := sha256.Sum256(data)
	s.record(p, int64(len(data)), hex.EncodeToString(sum[:]), scope, "", nil)
	return p, nil
}

// WriteText writes text to a store-relative path and indexes it.
func (s *ArtifactStore) WriteText(rel, text string, scope Scope) (string, error) {
	return s.WriteBytes(rel, []byte(text), scope)
}

// WriteJSON marshals v with indentation, writes it and indexes it.
func (s *ArtifactStore) WriteJSON(rel string, v any, scope Scope) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling artifact %s: %w", rel, err)
	}
	return s.WriteBytes(rel, append(data, '\n'), scope)
}

// RecordPath indexes a file that was created outside the store (e.g. a
// worker's screenshot output). It never copies or moves the file. Indexing
// is best-effort: if the path does not exist or is not a regular file, nil
// is returned and nothing is raised, because indexing must never fail the
// run it describes.
func (s *ArtifactStore) RecordPath(path string, scope Scope, kind string, data any) *ArtifactRecord {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	sum, err := hashFile(path)
	if err != nil {
		return nil
	}
	return s.record(path, info.Size(), sum, scope, kind, data)
}

// record appends one index line. Index failures are swallowed: the artifact
// itself is already on disk and telemetry must not break the run.
func (s *ArtifactStore) record(path string, size int64, sha string, scope Scope, kind string, data any) *ArtifactRecord {
	rec := &ArtifactRecord{
		Skill:   s.meta.Skill,
		RunID:   s.meta.RunID,
		AgentID: s.meta.AgentID,
		Scope:   string(scope),
		Path:    path,
		Size:    size,
		SHA256:  sha,
		Kind:    kind,
		Data:    data,
	}
	_ = appendJSONL(s.indexPath, rec)
	return rec
}

// hashFile computes the SHA-256 digest of a file by fixed-size chunked
// streaming, bounding memory for large files.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

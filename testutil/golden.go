// Package testutil provides golden-snapshot helpers for comparing
// emitted IR snapshots and editor artifacts against checked-in fixtures.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens switches AssertSnapshot into write mode:
// UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// Meta records the platform a golden file was produced on, so a mismatch
// on another platform is explainable from the fixture itself.
type Meta struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Snapshot is the on-disk shape of one golden fixture.
type Snapshot struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// GoldenPath returns the conventional fixture location for a feature/name
// pair, relative to the calling package.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.json")
}

// WriteGolden writes actual as the fixture at path, creating parent
// directories as needed.
func WriteGolden(t *testing.T, path string, actual any) {
	t.Helper()
	data, err := json.MarshalIndent(Snapshot{
		Meta: Meta{GoVersion: runtime.Version(), OS: runtime.GOOS, Arch: runtime.GOARCH},
		Data: actual,
	}, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// AssertSnapshot compares actual against the fixture at path. In update
// mode it rewrites the fixture instead. Comparison goes through a JSON
// round trip on both sides, so struct-vs-map representation differences
// don't produce false mismatches.
func AssertSnapshot(t *testing.T, path string, actual any) {
	t.Helper()
	if UpdateGoldens {
		WriteGolden(t, path, actual)
		t.Logf("updated golden file: %s", path)
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", path)
		}
		t.Fatalf("read golden: %v", err)
	}
	var want Snapshot
	if err := json.Unmarshal(raw, &want); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}

	got, err := normalize(actual)
	if err != nil {
		t.Fatalf("normalize actual: %v", err)
	}
	if diff := cmp.Diff(want.Data, got); diff != "" {
		t.Errorf("golden mismatch for %s (-want +got):\n%s", path, diff)
	}
}

// normalize round-trips v through JSON so it compares cleanly against the
// generic values a fixture unmarshals to.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

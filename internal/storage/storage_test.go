package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tactyl/magsynth/internal/session"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	p := session.DefaultParams()
	p.Poses = []string{"open", "fist"}
	p.SamplesPerPose = 20
	p.TransitionSamples = 15
	p.Seed = 99
	s := session.NewGenerator(p).Generate()
	return &s
}

func TestEncodeJSONFieldNames(t *testing.T) {
	s := testSession(t)

	data, err := Encode(s, "json", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, key := range []string{"version", "timestamp", "samples", "labels", "metadata"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing top-level key %q", key)
		}
	}

	samples := doc["samples"].([]interface{})
	first := samples[0].(map[string]interface{})
	for _, key := range []string{
		"ax", "ay", "az", "gx", "gy", "gz", "mx", "my", "mz",
		"ax_g", "gy_dps", "mz_ut", "filtered_mx", "dt", "t", "isMoving", "_ground_truth",
	} {
		if _, ok := first[key]; !ok {
			t.Errorf("sample missing key %q", key)
		}
	}

	meta := doc["metadata"].(map[string]interface{})
	if meta["synthetic"] != true {
		t.Error("metadata should mark the session synthetic")
	}
	for _, key := range []string{"magnet_config", "earth_field", "sample_rate", "sensor_calibration"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("metadata missing key %q", key)
		}
	}

	labels := doc["labels"].([]interface{})
	firstLabel := labels[0].(map[string]interface{})
	for _, key := range []string{"start_sample", "end_sample", "labels"} {
		if _, ok := firstLabel[key]; !ok {
			t.Errorf("label segment missing key %q", key)
		}
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	s := testSession(t)

	data, err := Encode(s, "msgpack", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(data, "msgpack")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Timestamp != s.Timestamp {
		t.Errorf("timestamp changed: %q -> %q", s.Timestamp, decoded.Timestamp)
	}
	if len(decoded.Samples) != len(s.Samples) {
		t.Fatalf("sample count changed: %d -> %d", len(s.Samples), len(decoded.Samples))
	}
	if !reflect.DeepEqual(decoded.Samples[0], s.Samples[0]) {
		t.Error("first sample did not survive the msgpack round trip")
	}
	if !reflect.DeepEqual(decoded.Labels, s.Labels) {
		t.Error("labels did not survive the msgpack round trip")
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	if _, err := Encode(testSession(t), "csv", false); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "json", true)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	defer store.Close()

	s := testSession(t)
	if err := store.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(dir, "session_"+s.Timestamp+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading session file: %v", err)
	}

	decoded, err := Decode(data, "json")
	if err != nil {
		t.Fatalf("decoding session file: %v", err)
	}
	if len(decoded.Samples) != len(s.Samples) {
		t.Errorf("sample count changed on disk: %d -> %d", len(s.Samples), len(decoded.Samples))
	}
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer store.Close()

	s := testSession(t)
	if err := store.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 archived session, got %d", n)
	}

	loaded, err := store.Load(s.Timestamp)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Samples) != len(s.Samples) {
		t.Errorf("sample count changed in archive: %d -> %d", len(s.Samples), len(loaded.Samples))
	}
	if loaded.Metadata.Seed != s.Metadata.Seed {
		t.Errorf("seed changed in archive: %d -> %d", s.Metadata.Seed, loaded.Metadata.Seed)
	}

	// Saving the same session again replaces the row.
	if err := store.Save(s); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if n, _ := store.Count(); n != 1 {
		t.Errorf("re-saving should replace, not duplicate: got %d rows", n)
	}
}

func TestMultiStore(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	a, err := NewFileStore(dir1, "json", false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileStore(dir2, "msgpack", false)
	if err != nil {
		t.Fatal(err)
	}

	multi := MultiStore{a, b}
	defer multi.Close()

	s := testSession(t)
	if err := multi.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir1, "session_"+s.Timestamp+".json")); err != nil {
		t.Errorf("json sink missing file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir2, "session_"+s.Timestamp+".msgpack")); err != nil {
		t.Errorf("msgpack sink missing file: %v", err)
	}
}

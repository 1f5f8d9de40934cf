package survey

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/config"
)

// writeFixture writes content to dir/name and returns the path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// writeZip creates a zip archive at path holding the given entries in order.
func writeZip(t *testing.T, path string, entries [][2]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		if err != nil {
			t.Fatalf("adding %s: %v", e[0], err)
		}
		if _, err := w.Write([]byte(e[1])); err != nil {
			t.Fatalf("writing %s: %v", e[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
}

func assertRecord(t *testing.T, got RawRecord, want RawRecord) {
	t.Helper()

	if len(got) != len(want) {
		t.Errorf("record has %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if gv, ok := got[k]; !ok {
			t.Errorf("missing key %q", k)
		} else if gv != v {
			t.Errorf("%s = %q, want %q", k, gv, v)
		}
	}
}

const wigleSample = "# comment\n" +
	"MAC,SSID,CurrentLatitude,CurrentLongitude,RSSI,Channel,AuthMode\n" +
	"AA:BB:CC:DD:EE:FF,TestNet,37.1,-122.1,-60,6,WPA2\n"

func logConfig() config.LoggingConfig {
	return config.LoggingConfig{Level: "info", Format: "text"}
}

package survey

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func batchFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeFixture(t, dir, "wigle.csv", "MAC,SSID,AuthMode\n00:11:22:33:44:55,Lab,WPA2\n")
	writeFixture(t, dir, "drive.txt", "66:77:88:99:AA:BB 51.5 -0.12 -70 6\n")
	writeFixture(t, dir, "empty.txt", "hello world foo\n")
	writeFixture(t, dir, "notes.md", "00:11:22:33:44:55\n")
	writeFixture(t, dir, filepath.Join("sub", "inner.txt"), "AA:BB:CC:DD:EE:FF -50\n")
	return dir
}

func TestConvertFolder(t *testing.T) {
	dir := batchFixture(t)

	batch, err := newTestConverter().ConvertFolder(context.Background(), dir, BatchOptions{})
	if err != nil {
		t.Fatalf("ConvertFolder() error = %v", err)
	}

	if !batch.OK() {
		t.Error("OK() = false, want true")
	}
	if got, want := batch.Succeeded, []string{"drive.txt", "wigle.csv"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Succeeded = %v, want %v", got, want)
	}
	if got, want := batch.Failed, []string{"empty.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Failed = %v, want %v", got, want)
	}
	if len(batch.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(batch.Results))
	}

	outDir := filepath.Join(dir, DefaultOutputDirName)
	if batch.OutputDir != outDir {
		t.Errorf("OutputDir = %q, want %q", batch.OutputDir, outDir)
	}
	for _, name := range []string{"drive_converted.csv", "wigle_converted.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "empty_converted.csv")); !os.IsNotExist(err) {
		t.Error("failed file should not produce output")
	}
}

func TestConvertFolder_Merge(t *testing.T) {
	dir := batchFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	batch, err := newTestConverter().ConvertFolder(context.Background(), dir, BatchOptions{OutputDir: outDir, Merge: true})
	if err != nil {
		t.Fatalf("ConvertFolder() error = %v", err)
	}

	want := filepath.Join(outDir, MergedFileName)
	if batch.MergedOutput != want {
		t.Errorf("MergedOutput = %q, want %q", batch.MergedOutput, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading merged output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("merged output has %d lines, want header plus 2 records", len(lines))
	}
	if got, want := batch.Failed, []string{"empty.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Failed = %v, want %v", got, want)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir holds %d files, want only %s", len(entries), MergedFileName)
	}
}

func TestConvertFolder_RecursiveSkipsOutputDir(t *testing.T) {
	dir := batchFixture(t)
	writeFixture(t, dir, filepath.Join(DefaultOutputDirName, "stale.txt"), "00:11:22:33:44:55 -40\n")

	batch, err := newTestConverter().ConvertFolder(context.Background(), dir, BatchOptions{Recursive: true})
	if err != nil {
		t.Fatalf("ConvertFolder() error = %v", err)
	}

	var names []string
	for _, f := range batch.Files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"drive.txt", "empty.txt", "inner.txt", "wigle.csv"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Files = %v, want %v", names, want)
	}
}

func TestConvertFolder_Errors(t *testing.T) {
	file := writeFixture(t, t.TempDir(), "drive.txt", "x")
	emptyDir := t.TempDir()
	writeFixture(t, emptyDir, "readme.md", "nothing to convert")

	tests := []struct {
		name    string
		folder  string
		wantErr error
	}{
		{"missing folder", filepath.Join(emptyDir, "nope"), ErrNotDirectory},
		{"file instead of folder", file, ErrNotDirectory},
		{"no supported files", emptyDir, ErrNoSupportedFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestConverter().ConvertFolder(context.Background(), tt.folder, BatchOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ConvertFolder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvertFolder_AllFailed(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "hello world\n")
	writeFixture(t, dir, "b.kml", "<kml><Placemark>")

	batch, err := newTestConverter().ConvertFolder(context.Background(), dir, BatchOptions{})
	if err != nil {
		t.Fatalf("ConvertFolder() error = %v", err)
	}
	if batch.OK() {
		t.Error("OK() = true, want false when every file failed")
	}
	if len(batch.Failed) != 2 {
		t.Errorf("Failed = %v, want 2 entries", batch.Failed)
	}
}

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"a.kml", "a.KMZ", "a.csv", "a.xml", "a.netxml", "a.gpsxml", "a.txt", "a.ns1", "a.nss"} {
		if !isSupported(name) {
			t.Errorf("isSupported(%q) = false", name)
		}
	}
	for _, name := range []string{"a.md", "a.nettxt", "a.wsc", "a"} {
		if isSupported(name) {
			t.Errorf("isSupported(%q) = true", name)
		}
	}
}

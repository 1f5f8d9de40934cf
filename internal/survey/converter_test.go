package survey

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

// recordingSink remembers every result it is handed.
type recordingSink struct {
	mu      sync.Mutex
	results []*Result
	err     error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Handle(_ context.Context, res *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return s.err
}

func newTestConverter(sinks ...Sink) *Converter {
	return NewConverter(nil, logging.Discard(), Options{Sinks: sinks})
}

func hasWarning(res *Result, code string) bool {
	for _, w := range res.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestConverter_Convert(t *testing.T) {
	sink := &recordingSink{}
	conv := newTestConverter(sink)
	path := writeFixture(t, t.TempDir(), "export.csv", "MAC,SSID,AuthMode,Channel\n00:11:22:33:44:55,Lab,WPA2,6\n")

	res, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if res.Format != FormatWigleCSV {
		t.Errorf("Format = %q, want %q", res.Format, FormatWigleCSV)
	}
	if !res.Succeeded() {
		t.Errorf("Status = %q, want %q", res.Status, StatusSucceeded)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.Stats != (Stats{Attempted: 1, Succeeded: 1, Failed: 0}) {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Records) != 1 || res.Records[0].SSID != "Lab" {
		t.Errorf("Records = %+v", res.Records)
	}
	if len(sink.results) != 1 || sink.results[0] != res {
		t.Errorf("sink saw %d results, want the returned one", len(sink.results))
	}
}

func TestConverter_ConvertAs(t *testing.T) {
	sink := &recordingSink{}
	conv := newTestConverter(sink)
	path := writeFixture(t, t.TempDir(), "staged-1234.csv", "MAC,SSID,AuthMode,Channel\n00:11:22:33:44:55,Lab,WPA2,6\n")

	res, err := conv.ConvertAs(context.Background(), path, "drive.csv")
	if err != nil {
		t.Fatalf("ConvertAs() error = %v", err)
	}
	if res.Source != "drive.csv" {
		t.Errorf("Source = %q, want %q", res.Source, "drive.csv")
	}
	if len(sink.results) != 1 || sink.results[0].Source != "drive.csv" {
		t.Errorf("sink saw %+v, want source drive.csv", sink.results)
	}
}

func TestConverter_Convert_Failures(t *testing.T) {
	dir := t.TempDir()
	malformed := writeFixture(t, dir, "broken.kml", "<kml><Placemark>")
	noise := writeFixture(t, dir, "noise.txt", "hello world foo\n")

	tests := []struct {
		name         string
		path         string
		wantErr      error
		wantWarnings []string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.kml"), wantErr: ErrFileNotFound},
		{name: "directory", path: dir, wantErr: ErrFileNotFound},
		{name: "malformed document", path: malformed, wantErr: ErrNoRecords, wantWarnings: []string{WarnExtractFailed}},
		{name: "nothing recognized", path: noise, wantErr: ErrNoRecords, wantWarnings: []string{WarnUnitsSkipped}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			res, err := newTestConverter(sink).Convert(context.Background(), tt.path)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Convert() error = %v, want %v", err, tt.wantErr)
			}
			if res == nil || res.Succeeded() || res.Error == "" {
				t.Fatalf("Result = %+v, want a failed result", res)
			}
			for _, code := range tt.wantWarnings {
				if !hasWarning(res, code) {
					t.Errorf("missing warning %s in %+v", code, res.Warnings)
				}
			}
			if len(sink.results) != 1 {
				t.Errorf("sink saw %d results, want 1", len(sink.results))
			}
		})
	}
}

func TestConverter_Convert_FormatFallback(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "scan.nss", "00:11:22:33:44:55 -70 6\n")

	res, err := newTestConverter().Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Format != FormatNetStumblerSummary {
		t.Errorf("Format = %q, want %q", res.Format, FormatNetStumblerSummary)
	}
	if !hasWarning(res, WarnFormatFallback) {
		t.Errorf("expected %s warning, got %+v", WarnFormatFallback, res.Warnings)
	}
	if len(res.Records) != 1 || res.Records[0].Signal != "-70" {
		t.Errorf("Records = %+v", res.Records)
	}
}

func TestConverter_Convert_SinkFailureIsNotFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	path := writeFixture(t, t.TempDir(), "drive.txt", "00:11:22:33:44:55 -70\n")

	res, err := newTestConverter(sink).Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !hasWarning(res, WarnSinkFailed) {
		t.Errorf("expected %s warning, got %+v", WarnSinkFailed, res.Warnings)
	}
}

func TestConverter_Convert_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFixture(t, t.TempDir(), "drive.txt", "00:11:22:33:44:55 -70\n")
	_, err := newTestConverter().Convert(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

func TestConverter_ConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "drive.kml", kmlSample)

	res, err := newTestConverter().ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	want := filepath.Join(dir, "drive.csv")
	if res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want 3", len(lines))
	}
	if lines[0] != canonicalHeader+",capabilities,frequency_band" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestConverter_ConvertFile_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "drive.txt", "00:11:22:33:44:55 -70\n")
	out := filepath.Join(dir, "missing", "drive.csv")

	sink := &recordingSink{}
	res, err := newTestConverter(sink).ConvertFile(context.Background(), in, out)
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("ConvertFile() error = %v, want ErrWriteFailed", err)
	}
	if res.Succeeded() {
		t.Error("result should be marked failed")
	}
	if len(sink.results) != 1 || sink.results[0].Status != StatusFailed {
		t.Errorf("sink should see one failed result, saw %+v", sink.results)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"drive.kml", "drive.csv"},
		{filepath.Join("logs", "drive.netxml"), filepath.Join("logs", "drive.csv")},
		{"wigle.csv", "wigle_converted.csv"},
		{"WIGLE.CSV", "WIGLE_converted.csv"},
		{"noext", "noext.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DefaultOutputPath(tt.in); got != tt.want {
				t.Errorf("DefaultOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, f := range []Format{FormatKML, FormatKMZ, FormatWigleCSV, FormatKismetCSV, FormatKismetNetXML, FormatGenericText, FormatGenericGPSText} {
		if _, ok := r.Lookup(f); !ok {
			t.Errorf("Lookup(%q) found nothing", f)
		}
	}

	if _, dedicated := r.Resolve(FormatWiScan); dedicated {
		t.Error("Resolve(wiscan) should use the fallback")
	}

	called := false
	r.Register(FormatWiScan, ExtractorFunc(func(string) (*Extraction, error) {
		called = true
		return &Extraction{}, nil
	}))
	e, dedicated := r.Resolve(FormatWiScan)
	if !dedicated {
		t.Fatal("Resolve(wiscan) should be dedicated after Register")
	}
	if _, err := e.Extract("x"); err != nil || !called {
		t.Errorf("registered extractor not used (err=%v)", err)
	}

	if got := len(r.Formats()); got != 8 {
		t.Errorf("len(Formats()) = %d, want 8", got)
	}
}

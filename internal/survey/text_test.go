package survey

import (
	"testing"
)

func TestParseTextLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want RawRecord
	}{
		{
			name: "all fields",
			line: "00:11:22:33:44:55 37.5 -122.3 -70 11",
			want: RawRecord{
				FieldBSSID:     "00:11:22:33:44:55",
				FieldLatitude:  "37.5",
				FieldLongitude: "-122.3",
				FieldSignal:    "-70",
				FieldChannel:   "11",
			},
		},
		{
			name: "nothing recognized",
			line: "hello world foo",
			want: nil,
		},
		{
			// Both values fit the latitude range, so the first one wins it
			// even when the file is written lon-first.
			name: "lon first is read as lat first",
			line: "-73.98 40.75",
			want: RawRecord{FieldLatitude: "-73.98", FieldLongitude: "40.75"},
		},
		{
			name: "out of latitude range goes to longitude",
			line: "-122.3 37.5",
			want: RawRecord{FieldLongitude: "-122.3", FieldLatitude: "37.5"},
		},
		{
			name: "third decimal dropped",
			line: "1.0 2.0 3.0",
			want: RawRecord{FieldLatitude: "1.0", FieldLongitude: "2.0"},
		},
		{
			name: "out of every range dropped",
			line: "200.5",
			want: nil,
		},
		{
			name: "tab delimited, first channel only",
			line: "AA-BB-CC-DD-EE-FF\t6\t1",
			want: RawRecord{FieldBSSID: "AA-BB-CC-DD-EE-FF", FieldChannel: "6"},
		},
		{
			name: "comma delimited",
			line: "Office,-80,36",
			want: RawRecord{FieldSignal: "-80", FieldChannel: "36"},
		},
		{
			name: "quoted comma falls back to whitespace",
			line: `"Net, x" -80`,
			want: RawRecord{FieldSignal: "-80"},
		},
		{
			name: "zero and out of range integers dropped",
			line: "-0 0 200",
			want: nil,
		},
		{
			name: "last mac wins",
			line: "00:00:00:00:00:01 00:00:00:00:00:02",
			want: RawRecord{FieldBSSID: "00:00:00:00:00:02"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTextLine(tt.line)
			if tt.want == nil {
				if got != nil {
					t.Errorf("parseTextLine(%q) = %v, want no record", tt.line, got)
				}
				return
			}
			assertRecord(t, got, tt.want)
		})
	}
}

func TestTextExtractor(t *testing.T) {
	content := "# DStumbler export\n" +
		"\n" +
		"00:11:22:33:44:55 37.5 -122.3 -70 11\n" +
		"hello world foo\r\n" +
		"   \n" +
		"66:77:88:99:AA:BB\t-81\n"
	path := writeFixture(t, t.TempDir(), "drive.txt", content)

	ext, err := TextExtractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if ext.Units != 3 {
		t.Errorf("Units = %d, want 3", ext.Units)
	}
	if len(ext.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(ext.Records))
	}
	if ext.Records[0][FieldBSSID] != "00:11:22:33:44:55" {
		t.Errorf("first record bssid = %q", ext.Records[0][FieldBSSID])
	}
	assertRecord(t, ext.Records[1], RawRecord{FieldBSSID: "66:77:88:99:AA:BB", FieldSignal: "-81"})

	if s := ext.stats(); s != (Stats{Attempted: 3, Succeeded: 2, Failed: 1}) {
		t.Errorf("stats() = %+v", s)
	}
}

func TestTextExtractor_Latin1(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "drive.txt", "Caf\xe9 00:11:22:33:44:55 -60\n")

	ext, err := TextExtractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(ext.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(ext.Records))
	}
}

func TestTextExtractor_CarriageReturnLines(t *testing.T) {
	content := "00:11:22:33:44:55 37.5 -122.3 -70 11\r66:77:88:99:AA:BB 38.5 -121.3 -60 6\r"
	path := writeFixture(t, t.TempDir(), "macstumbler.txt", content)

	ext, err := TextExtractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(ext.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2: %v", len(ext.Records), ext.Records)
	}
	assertRecord(t, ext.Records[0], RawRecord{
		FieldBSSID:     "00:11:22:33:44:55",
		FieldLatitude:  "37.5",
		FieldLongitude: "-122.3",
		FieldSignal:    "-70",
		FieldChannel:   "11",
	})
	assertRecord(t, ext.Records[1], RawRecord{
		FieldBSSID:     "66:77:88:99:AA:BB",
		FieldLatitude:  "38.5",
		FieldLongitude: "-121.3",
		FieldSignal:    "-60",
		FieldChannel:   "6",
	})
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lf", in: "a\nb\n", want: "a\nb\n"},
		{name: "crlf", in: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "bare cr", in: "a\rb\r", want: "a\nb\n"},
		{name: "mixed", in: "a\r\r\nb\n\rc", want: "a\n\nb\n\nc"},
		{name: "bom", in: "\xef\xbb\xbfa\r", want: "a\n"},
		{name: "latin1 with cr", in: "caf\xe9\rb", want: "café\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeText([]byte(tt.in)); got != tt.want {
				t.Errorf("decodeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package survey

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		sample string
		want   Format
	}{
		// Rule 1: kmz wins unconditionally.
		{"kmz extension", "drive.kmz", "", FormatKMZ},
		{"kmz ignores content", "drive.KMZ", `<?xml version="1.0"?><detection-run>`, FormatKMZ},

		// Rule 2: kml by extension or content.
		{"kml extension", "drive.kml", "", FormatKML},
		{"kml content", "drive.dat", `<?xml version="1.0"?><kml xmlns="http://www.opengis.net/kml/2.2">`, FormatKML},
		{"kml content case insensitive", "drive.xml", `<KML>`, FormatKML},
		{"kml beats netxml content", "drive.kml", `<detection-run>`, FormatKML},

		// Rule 3: XML dialects.
		{"detection-run", "drive.xml", "<?xml version=\"1.0\"?>\n<detection-run kismet-version=\"2010\">", FormatKismetNetXML},
		{"kismet-run", "drive.netxml", `<?xml version="1.0"?><kismet-run>`, FormatKismetNetXML},
		{"gps-run", "drive.gpsxml", "<?xml version=\"1.0\"?>\n<gps-run gps-version=\"5\">", FormatKismetGPSXML},
		{"gps-run beats csv extension", "drive.csv", `<?xml version="1.0"?><gps-run>`, FormatKismetGPSXML},
		{"plist", "drive.xml", `<?xml version="1.0"?><plist version="1.0">`, FormatMacStumblerPlist},
		{"dict", "drive.data", `<dict><key>SSID</key>`, FormatMacStumblerPlist},
		{"other xml with xml extension", "drive.xml", `<?xml version="1.0"?><root/>`, FormatKismetXML},
		{"bracket within ten chars", "drive.log", "data <kismet-run>", FormatKismetNetXML},
		{"bracket after ten chars", "drive.log", "0123456789<detection-run>", FormatGenericText},
		{"other xml without xml extension", "drive.dat", `<root/>`, FormatGenericText},

		// Rule 4: csv header.
		{"wigle banner", "drive.csv", "WigleWifi-1.4,appRelease=2.26\nMAC,SSID", FormatWigleCSV},
		{"wigle columns", "drive.csv", "MAC,SSID,AuthMode,FirstSeen,Channel,RSSI", FormatWigleCSV},
		{"kismet bssid", "drive.csv", "BSSID,ESSID,Channel", FormatKismetCSV},
		{"kismet mac only", "drive.csv", "mac,power", FormatKismetCSV},
		{"kismet semicolon", "drive.csv", "Network;NetType;ESSID;BSSID", FormatKismetCSV},
		{"header on first line only", "drive.csv", "name,value\nbssid", FormatGenericCSV},
		{"generic csv", "drive.csv", "name,value", FormatGenericCSV},
		{"empty csv", "drive.csv", "", FormatGenericCSV},

		// Rule 5: NetStumbler.
		{"ns1", "drive.ns1", "NetS", FormatNetStumblerNS1},
		{"nss", "drive.nss", "", FormatNetStumblerSummary},
		{"netstumbler content", "drive.log", "# NetStumbler 0.4.0 summary", FormatNetStumblerSummary},
		{"netstumbler beats txt", "drive.txt", "# netstumbler lat lon", FormatNetStumblerSummary},

		// Rule 6: kismet_{ext}.
		{"netxml without prolog", "drive.netxml", "", FormatKismetNetXML},
		{"gpsxml without prolog", "drive.gpsxml", "", FormatKismetGPSXML},
		{"nettxt", "drive.nettxt", "Network 1: BSSID 00:11:22:33:44:55", FormatKismetNetTxt},
		{"gps", "drive.gps", "binary", FormatKismetGPS},

		// Rule 7: txt.
		{"gps text", "drive.txt", "Lat Lon SSID", FormatGenericGPSText},
		{"ssid text", "drive.txt", "SSID BSSID Signal", FormatGenericText},
		{"plain txt", "drive.txt", "00:11:22:33:44:55 -70", FormatGenericText},

		// Rules 8 and 9.
		{"kismac", "drive.kismac", "", FormatKisMACNative},
		{"wsc", "drive.wsc", "", FormatWiScan},
		{"wiscan content", "drive.log", "WiScan export", FormatWiScan},

		// Rule 10.
		{"unknown", "drive.dat", "random bytes", FormatGenericText},
		{"no extension", "drive", "", FormatGenericText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.path, []byte(tt.sample)); got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.path, tt.sample, got, tt.want)
			}
		})
	}
}

func TestClassify_OnlySampleIsInspected(t *testing.T) {
	inside := strings.Repeat("x", DefaultSampleSize-len("netstumbler")) + "netstumbler"
	if got := Classify("drive.dat", []byte(inside)); got != FormatNetStumblerSummary {
		t.Errorf("marker inside sample: got %q, want %q", got, FormatNetStumblerSummary)
	}

	outside := strings.Repeat("x", DefaultSampleSize) + "netstumbler"
	if got := Classify("drive.dat", []byte(outside)); got != FormatGenericText {
		t.Errorf("marker past sample: got %q, want %q", got, FormatGenericText)
	}
}

func TestClassify_Latin1Sample(t *testing.T) {
	sample := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<detection-run>caf\xe9"
	if got := Classify("drive.xml", []byte(sample)); got != FormatKismetNetXML {
		t.Errorf("Classify() = %q, want %q", got, FormatKismetNetXML)
	}
}

func TestDecodeSample(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("ssid"), "ssid"},
		{"utf8", []byte("café"), "café"},
		{"truncated rune", []byte("ab\xe2\x82"), "ab"},
		{"latin1", []byte("caf\xe9 x"), "café x"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeSample(tt.in); got != tt.want {
				t.Errorf("decodeSample(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetector_DetectFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDetector(0, logging.Discard())

	// Detection reads only the first line of a csv, so a leading comment
	// hides the WiGLE header.
	commented := writeFixture(t, dir, "wigle.csv", wigleSample)
	if got := d.DetectFile(commented); got != FormatGenericCSV {
		t.Errorf("DetectFile(commented) = %q, want %q", got, FormatGenericCSV)
	}

	banner := writeFixture(t, dir, "export.csv", "WigleWifi-1.4,appRelease=2.26\nMAC,SSID,AuthMode\n")
	if got := d.DetectFile(banner); got != FormatWigleCSV {
		t.Errorf("DetectFile(banner) = %q, want %q", got, FormatWigleCSV)
	}

	if got := d.DetectFile(filepath.Join(dir, "missing.kmz")); got != FormatUnknown {
		t.Errorf("DetectFile(missing) = %q, want %q", got, FormatUnknown)
	}
}

func TestDetector_SampleSize(t *testing.T) {
	d := NewDetector(16, logging.Discard())
	sample := []byte(strings.Repeat("x", 20) + "wiscan")

	if got := d.Classify("drive.dat", sample); got != FormatGenericText {
		t.Errorf("Classify() = %q, want %q with a 16-byte sample", got, FormatGenericText)
	}
}

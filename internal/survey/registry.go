package survey

import (
	"slices"
	"sync"
)

// Extraction is the output of one extractor run over one file.
type Extraction struct {
	Records []RawRecord

	// Units is how many placemarks, rows, networks or lines were examined.
	// Units without a record count as failed.
	Units int
}

func (e *Extraction) stats() Stats {
	s := Stats{Attempted: e.Units, Succeeded: len(e.Records)}
	if s.Attempted < s.Succeeded {
		s.Attempted = s.Succeeded
	}
	s.Failed = s.Attempted - s.Succeeded
	return s
}

// Extractor turns one survey file into raw records. An error means the
// file could not be read or parsed at all.
type Extractor interface {
	Extract(path string) (*Extraction, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (*Extraction, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(path string) (*Extraction, error) {
	return f(path)
}

// Registry dispatches formats to extractors. Formats without a dedicated
// extractor resolve to the fallback.
//
// Thread Safety: all methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	extractors map[Format]Extractor
	fallback   Extractor
}

// NewRegistry returns a registry with no dedicated extractors and the
// given fallback.
func NewRegistry(fallback Extractor) *Registry {
	return &Registry{
		extractors: make(map[Format]Extractor),
		fallback:   fallback,
	}
}

// DefaultRegistry wires every built-in extractor. Generic text is both the
// extractor for the text formats and the fallback.
func DefaultRegistry() *Registry {
	text := TextExtractor{}
	r := NewRegistry(text)
	r.Register(FormatKML, KMLExtractor{})
	r.Register(FormatKMZ, KMZExtractor{})
	r.Register(FormatWigleCSV, WigleCSVExtractor{})
	r.Register(FormatKismetCSV, KismetCSVExtractor{})
	r.Register(FormatKismetNetXML, NetXMLExtractor{})
	r.Register(FormatGenericText, text)
	r.Register(FormatGenericGPSText, text)
	return r
}

// Register sets the dedicated extractor for a format, replacing any
// previous one.
func (r *Registry) Register(format Format, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[format] = e
}

// Lookup returns the dedicated extractor for a format.
func (r *Registry) Lookup(format Format) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[format]
	return e, ok
}

// Resolve returns the extractor to use for a format and whether it is
// dedicated (false means the fallback was chosen).
func (r *Registry) Resolve(format Format) (Extractor, bool) {
	if e, ok := r.Lookup(format); ok {
		return e, true
	}
	return r.fallback, false
}

// Formats lists the formats with a dedicated extractor, sorted.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.extractors))
	for f := range r.extractors {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

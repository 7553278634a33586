package fontregistry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/typecascade/core/font"
)

// Registry is a type for holding loaded font binaries, keyed by their
// normalized file names and by their content fingerprints.
type Registry struct {
	sync.Mutex
	fonts  map[string]*font.ScalableFont // normalized name -> latest font
	hashes map[string]*font.ScalableFont // fingerprint -> font
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

func NewRegistry() *Registry {
	fr := &Registry{
		fonts:  make(map[string]*font.ScalableFont),
		hashes: make(map[string]*font.ScalableFont),
	}
	return fr
}

// StoreFont pushes a font into the registry and returns the font stored
// under its name.
//
// The font will be stored using the normalized file name as a key. If this
// key is already associated with a font of identical content, that font is
// kept and returned. A font with different content replaces it under the
// name; the replaced font stays reachable by its fingerprint. Fonts without a
// source URL get a content-addressed one.
func (fr *Registry) StoreFont(fileName string, f *font.ScalableFont) *font.ScalableFont {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return nil
	}
	key := font.NormalizeFontname(fileName)
	fp := f.Fingerprint()
	fr.Lock()
	defer fr.Unlock()
	if known, ok := fr.fonts[key]; ok {
		if known.Fingerprint() == fp {
			tracer().Debugf("registry already holds font %s", key)
			return known
		}
		tracer().Infof("registry replaces font %s by new content %s", key, fp)
	}
	if same, ok := fr.hashes[fp]; ok {
		f = same
	} else {
		if f.URL == "" {
			f.URL = fmt.Sprintf("fonts/%s.%s", fp, extension(f))
		}
		fr.hashes[fp] = f
	}
	tracer().Debugf("registry stores font %s as %s", f.Fontname, key)
	fr.fonts[key] = f
	return f
}

// Lookup finds a font by file name.
func (fr *Registry) Lookup(fileName string) (*font.ScalableFont, bool) {
	key := font.NormalizeFontname(fileName)
	fr.Lock()
	defer fr.Unlock()
	f, ok := fr.fonts[key]
	return f, ok
}

// LookupFingerprint finds a font by the fingerprint of its binary.
func (fr *Registry) LookupFingerprint(fp string) (*font.ScalableFont, bool) {
	fr.Lock()
	defer fr.Unlock()
	f, ok := fr.hashes[fp]
	return f, ok
}

// LookupBinary finds a font with identical content, regardless of its name.
func (fr *Registry) LookupBinary(b []byte) (*font.ScalableFont, bool) {
	return fr.LookupFingerprint(font.Fingerprint(b))
}

// Names returns the normalized names of all fonts in the registry, sorted.
func (fr *Registry) Names() []string {
	fr.Lock()
	defer fr.Unlock()
	names := make([]string, 0, len(fr.fonts))
	for k := range fr.fonts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LogFontList is a helper function to dump the list of known fonts
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for _, k := range fr.Names() {
		f, _ := fr.Lookup(k)
		tracer().Infof("font [%s] = %v (%s)", k, f.Fontname, f.Source())
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}

func extension(f *font.ScalableFont) string {
	if f.Format() == "opentype" {
		return "otf"
	}
	return "ttf"
}

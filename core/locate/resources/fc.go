package resources

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
)

// FontConfig finds installed fonts by family name, using the font list
// printed by the 'fc-list' binary of fontconfig
// (https://www.freedesktop.org/wiki/Software/fontconfig/).
//
// We call the binary instead of using the C library because of possible version
// issues. The output of fc-list is copied to the user's config directory once;
// later lookups read the cached list.
type FontConfig struct {
	binary string
	cache  string
	once   sync.Once
	fonts  []fcFont
}

type fcFont struct {
	path   string
	family string
	style  string
}

// NewFontConfig creates a lookup for the fc-list binary configured with key
// 'fontconfig'. It returns nil if fontconfig is not configured.
func NewFontConfig(conf schuko.Configuration) *FontConfig {
	fcpath := core.ConfigString(conf, core.KeyFontConfig, "")
	if fcpath == "" {
		tracer().Infof("fontconfig not configured: key '%s' should point to the 'fc-list' binary",
			core.KeyFontConfig)
		return nil
	}
	if !filepath.IsAbs(fcpath) {
		tracer().Errorf("fontconfig binary fc-list must be an absolute path: %s", fcpath)
		return nil
	}
	if fi, err := os.Stat(fcpath); err != nil || fi.Mode().Perm()&0100 == 0 {
		tracer().Errorf("fontconfig configuration points to an invalid binary: %s", fcpath)
		return nil
	}
	fc := &FontConfig{binary: fcpath}
	if dir, err := DataDirPath(conf, "fontconfig"); err == nil {
		fc.cache = filepath.Join(dir, "fontlist.txt")
	}
	return fc
}

// newFontConfigFromList creates a lookup for an already available font list.
func newFontConfigFromList(r io.Reader) *FontConfig {
	fc := &FontConfig{}
	fc.once.Do(func() {
		fc.fonts = readFontList(r)
	})
	return fc
}

// Find returns the path of the installed font for family. Regular styles are
// preferred.
func (fc *FontConfig) Find(family string) (string, bool) {
	if fc == nil {
		return "", false
	}
	fc.once.Do(fc.load)
	want := font.NormalizeFontname(family)
	var found string
	for _, f := range fc.fonts {
		if font.NormalizeFontname(f.family) != want {
			continue
		}
		if isRegular(f.style) {
			return f.path, true
		}
		if found == "" {
			found = f.path
		}
	}
	return found, found != ""
}

func isRegular(style string) bool {
	style = strings.ToLower(style)
	return strings.Contains(style, "regular") || strings.Contains(style, "book") ||
		strings.Contains(style, "text")
}

func (fc *FontConfig) load() {
	r, err := fc.list()
	if err != nil {
		tracer().Errorf("fontconfig font list not available: %v", err)
		return
	}
	defer r.Close()
	fc.fonts = readFontList(r)
	tracer().Infof("loaded fontconfig list with %d fonts", len(fc.fonts))
}

// list opens the cached font list, creating it if necessary.
func (fc *FontConfig) list() (io.ReadCloser, error) {
	if fc.cache != "" {
		if f, err := os.Open(fc.cache); err == nil {
			return f, nil
		}
	}
	out, err := exec.Command(fc.binary).Output()
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot run %s", fc.binary)
	}
	if fc.cache != "" {
		if err = os.WriteFile(fc.cache, out, 0o644); err != nil {
			tracer().Errorf("fontconfig output file cannot be created: %s", fc.cache)
		}
	}
	return io.NopCloser(strings.NewReader(string(out))), nil
}

// readFontList reads lines of the form "path: family[,alias]:style=Style".
// Font collections (.ttc) are skipped.
func readFontList(r io.Reader) []fcFont {
	var fonts []fcFont
	scanner := bufio.NewScanner(r)
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		var style string
		if len(fields) > 2 {
			style = strings.TrimPrefix(strings.TrimSpace(fields[2]), "style=")
		}
		for _, name := range strings.Split(fields[1], ",") {
			name = strings.TrimPrefix(strings.TrimSpace(name), ".")
			if name == "" {
				continue
			}
			fonts = append(fonts, fcFont{path: fontpath, family: name, style: style})
		}
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("encountered a problem during reading of fontconfig font list: %v", err)
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return fonts
}

package resources

import (
	"context"
	"errors"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/fontregistry"
)

// NotFound returns an application error for a missing font resource.
func NotFound(name string) error {
	return core.WrapError(errMissingResource, core.EMISSING, "font not found: %s", name)
}

var errMissingResource = errors.New("resource missing")

// --- Fonts -----------------------------------------------------------------

// FontPromise is returned by asynchronous font resolution. Await may be called
// more than once; every call reports the same outcome.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
	Await(ctx context.Context) (*font.ScalableFont, error)
}

type fontLoader struct {
	done chan struct{}
	font *font.ScalableFont
	err  error
}

func (loader *fontLoader) Font() (*font.ScalableFont, error) {
	return loader.Await(context.Background())
}

func (loader *fontLoader) Await(ctx context.Context) (*font.ScalableFont, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-loader.done:
		return loader.font, loader.err
	}
}

// ResolveSystemTypeface locates an installed font by (file) name and loads it.
// Fonts already present in registry reg are returned without touching the
// file system. Names which are not font file names are looked up as family
// names with fontconfig fc, which may be nil. The font binary of a system
// font passes through validator v like any upload. If reg is nil, the global
// registry is used.
func ResolveSystemTypeface(name string, v *Validator, reg *fontregistry.Registry, fc *FontConfig) FontPromise {
	if reg == nil {
		reg = fontregistry.GlobalRegistry()
	}
	loader := &fontLoader{done: make(chan struct{})}
	go func() {
		defer close(loader.done)
		loader.font, loader.err = locateSystemFont(name, v, reg, fc)
	}()
	return loader
}

func locateSystemFont(name string, v *Validator, reg *fontregistry.Registry, fc *FontConfig) (*font.ScalableFont, error) {
	if f, ok := reg.Lookup(name); ok {
		tracer().Debugf("font %s found in registry", name)
		return f, nil
	}
	fpath, err := findfont.Find(name)
	if err != nil || fpath == "" {
		var ok bool
		if fpath, ok = fc.Find(name); !ok {
			tracer().Infof("%s is not an installed font", name)
			return nil, NotFound(name)
		}
		tracer().Debugf("fontconfig knows family %s", name)
	}
	tracer().Debugf("%s is a system font at %s", name, fpath)
	f, err := font.LoadOpenTypeFont(fpath)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.Validate(context.Background(), f.Binary); err != nil {
			return nil, err
		}
	}
	return reg.StoreFont(fpath, f), nil
}

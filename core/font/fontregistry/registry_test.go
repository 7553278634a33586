package fontregistry

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

func TestStoreAndLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.font")
	defer teardown()
	//
	fr := NewRegistry()
	f, err := font.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	stored := fr.StoreFont("uploads/Go Regular.ttf", f)
	require.Same(t, f, stored)
	assert.True(t, strings.HasPrefix(f.URL, "fonts/"), "expected content-addressed URL, have %q", f.URL)
	assert.True(t, strings.HasSuffix(f.URL, ".ttf"))
	//
	g, ok := fr.Lookup("go_regular")
	require.True(t, ok)
	assert.Same(t, f, g)
	h, ok := fr.LookupBinary(goregular.TTF)
	require.True(t, ok)
	assert.Same(t, f, h)
	assert.Equal(t, []string{"go_regular"}, fr.Names())
	fr.LogFontList()
}

func TestStoreKeepsIdenticalContent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.font")
	defer teardown()
	//
	fr := NewRegistry()
	f1, _ := font.ParseOpenTypeFont(goregular.TTF)
	f2, _ := font.ParseOpenTypeFont(goregular.TTF)
	fr.StoreFont("Go.ttf", f1)
	assert.Same(t, f1, fr.StoreFont("go.TTF", f2))
	assert.Same(t, f1, fr.StoreFont("Other-Name.ttf", f2), "same content under another name")
	assert.Nil(t, fr.StoreFont("x.ttf", nil))
}

func TestStoreReplacesChangedContent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.font")
	defer teardown()
	//
	fr := NewRegistry()
	regular, _ := font.ParseOpenTypeFont(goregular.TTF)
	mono, _ := font.ParseOpenTypeFont(gomono.TTF)
	fr.StoreFont("Go.ttf", regular)
	stored := fr.StoreFont("go.TTF", mono)
	require.Same(t, mono, stored)
	g, ok := fr.Lookup("Go.ttf")
	require.True(t, ok)
	assert.Same(t, mono, g)
	// the replaced font is still known by its content
	old, ok := fr.LookupFingerprint(regular.Fingerprint())
	require.True(t, ok)
	assert.Same(t, regular, old)
	assert.NotEqual(t, regular.URL, mono.URL)
}

func TestFingerprintIsStable(t *testing.T) {
	assert.Equal(t, font.Fingerprint([]byte("abc")), font.Fingerprint([]byte("abc")))
	assert.NotEqual(t, font.Fingerprint([]byte("abc")), font.Fingerprint([]byte("abd")))
	assert.Len(t, font.Fingerprint(nil), 16)
}

package resources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font/fontregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const fcListOutput = `
/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf: DejaVu Sans:style=Book
/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc: Noto Sans CJK JP,Noto Sans CJK KR:style=Regular
/usr/share/fonts/truetype/noto/NotoNaskhArabic-Bold.ttf: Noto Naskh Arabic:style=Bold
/usr/share/fonts/X11/misc/.hidden.ttf: .Hidden Face:style=Regular
garbage line
`

func TestFontConfigList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.resources")
	defer teardown()
	//
	fc := newFontConfigFromList(strings.NewReader(fcListOutput))
	path, ok := fc.Find("DejaVu Sans")
	require.True(t, ok)
	assert.Equal(t, "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf", path, "regular style is preferred")
	path, ok = fc.Find("noto naskh arabic")
	require.True(t, ok, "bold is better than nothing")
	assert.Equal(t, "/usr/share/fonts/truetype/noto/NotoNaskhArabic-Bold.ttf", path)
	_, ok = fc.Find("Hidden Face")
	assert.True(t, ok)
	_, ok = fc.Find("Noto Sans CJK JP")
	assert.False(t, ok, "font collections are skipped")
	_, ok = (*FontConfig)(nil).Find("DejaVu Sans")
	assert.False(t, ok)
}

func TestFontConfigNeedsBinary(t *testing.T) {
	assert.Nil(t, NewFontConfig(nil))
	assert.Nil(t, NewFontConfig(testconfig.Conf{core.KeyFontConfig: "fc-list"}), "relative path")
	missing := filepath.Join(t.TempDir(), "fc-list")
	assert.Nil(t, NewFontConfig(testconfig.Conf{core.KeyFontConfig: missing}))
}

func TestResolveByFamilyName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.resources")
	defer teardown()
	//
	fontfile := filepath.Join(t.TempDir(), "GoRegular4711.ttf")
	require.NoError(t, os.WriteFile(fontfile, goregular.TTF, 0o644))
	fc := newFontConfigFromList(strings.NewReader(fontfile + ": Go Family 4711:style=Regular\n"))
	v := NewValidator(nil)
	defer v.Close()
	reg := fontregistry.NewRegistry()
	f, err := ResolveSystemTypeface("Go Family 4711", v, reg, fc).Font()
	require.NoError(t, err)
	assert.Equal(t, goregular.TTF, f.Binary)
	_, ok := reg.LookupBinary(goregular.TTF)
	assert.True(t, ok)
}

package coverage

import (
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/fonttest"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/stack"
	"github.com/npillmayer/typecascade/engine/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCharWalksStack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	primary := style.NewFontTypeface("Primary.ttf", fonttest.New("primary", "A"))
	fontX := style.NewFontTypeface("FontX.ttf", fonttest.New("x", "B"))
	fontY := style.NewFontTypeface("FontY.ttf", fonttest.New("y", "中"))
	stk := stack.Stack{
		{Family: "x", TypefaceID: fontX.ID, Typeface: fontX},
		{Family: "y", TypefaceID: fontY.ID, Typeface: fontY},
	}
	res := RenderChar('中', primary, stk)
	assert.Same(t, fontY, res.Typeface)
	assert.True(t, res.MissingFromPrimary)
	assert.True(t, res.Verified)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, res, RenderChar('中', primary, stk))
	//
	res = RenderChar('A', primary, stk)
	assert.Same(t, primary, res.Typeface)
	assert.False(t, res.MissingFromPrimary)
	assert.Equal(t, PrimaryIndex, res.Index)
}

func TestRenderCharAssumesSystemCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	primary := style.NewFontTypeface("Primary.ttf", fonttest.New("primary", "A"))
	named := style.NewSystemTypeface("Hiragino Sans")
	fontY := style.NewFontTypeface("FontY.ttf", fonttest.New("y", "中"))
	stk := stack.Stack{
		{Family: "named", TypefaceID: named.ID, Typeface: named},
		{Family: "y", TypefaceID: fontY.ID, Typeface: fontY},
	}
	res := RenderChar('中', primary, stk)
	assert.Same(t, named, res.Typeface)
	assert.False(t, res.Verified)
}

func TestRenderCharForcesLastEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	primary := style.NewFontTypeface("Primary.ttf", fonttest.New("primary", "A"))
	fontX := style.NewFontTypeface("FontX.ttf", fonttest.New("x", "B"))
	fontZ := style.NewFontTypeface("FontZ.ttf", fonttest.New("z", "C"))
	stk := stack.Stack{
		{Family: "x", TypefaceID: fontX.ID, Typeface: fontX},
		{Family: "z", TypefaceID: fontZ.ID, Typeface: fontZ},
	}
	res := RenderChar('ж', primary, stk)
	assert.Same(t, fontZ, res.Typeface)
	assert.False(t, res.Verified)
	assert.True(t, res.MissingFromPrimary)
	res = RenderChar('ж', primary, nil)
	assert.Same(t, primary, res.Typeface)
}

func TestLanguageCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	st := style.NewStyle("")
	require.True(t, st.AddTypeface(style.NewFontTypeface("Go-Regular.ttf", font.FallbackFont())))
	samples := DefaultSampleSets()
	rep, ok := LanguageCoverage(st, style.Lang("en"), samples)
	require.True(t, ok)
	assert.Equal(t, 52, rep.Checked)
	assert.Equal(t, 0, rep.Missing)
	assert.Equal(t, percent.Identity, rep.Percent.Unwrap())
	//
	rep, ok = LanguageCoverage(st, style.Lang("ja"), samples)
	require.True(t, ok)
	assert.True(t, rep.Representative)
	assert.True(t, rep.Known())
	assert.Equal(t, rep.Checked, rep.Missing)
	assert.Equal(t, percent.Percent(0), rep.Percent.Unwrap())
	//
	jp := style.NewFontTypeface("JP.otf", fonttest.New("jp", "日本語"))
	require.True(t, st.AddTypeface(jp))
	rep, _ = LanguageCoverage(st, style.Lang("ja"), samples)
	assert.Equal(t, rep.Checked-3, rep.Missing)
	assert.NotContains(t, rep.MissingChars, '日')
}

func TestCoverageUnknownWithoutParsedFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	st := style.NewStyle("")
	require.True(t, st.AddTypeface(style.NewSystemTypeface("Georgia")))
	rep := Check(st, style.Lang("fr"), []rune("é è\tà"))
	assert.Equal(t, 3, rep.Checked)
	assert.False(t, rep.Known())
	assert.Contains(t, rep.String(), "unknown")
}

func TestSampleSets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	samples := DefaultSampleSets()
	set, ok := samples.Lookup(style.Lang("fr-CA"))
	require.True(t, ok)
	assert.Equal(t, "French", set.Name)
	assert.False(t, set.Representative)
	_, ok = samples.Lookup(style.Lang("tlh"))
	assert.False(t, ok)
	assert.Contains(t, samples.Languages(), style.LanguageID("zh-Hant"))
	assert.Equal(t, []rune("ab"), SampleSet{Characters: "a b a"}.Runes())
}

func TestLoadSampleSetsFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.coverage")
	defer teardown()
	//
	ss, err := LoadSampleSets(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, ss.Languages())
	_, err = LoadSampleSets(testconfig.Conf{core.KeySampleSets: "/does/not/exist.yaml"})
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = ParseSampleSets([]byte("languages: [ {id: "))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/fontregistry"
	"github.com/npillmayer/typecascade/core/font/fonttest"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

func sampleStyle(t *testing.T) *style.Style {
	st := style.NewStyle("body")
	st.Scales.Fallback = percent.FromInt(80)
	st.FallbackLineHeight = option.Of(style.LineHeightOf(1.4))
	primary := style.NewFontTypeface("Inter.ttf", fonttest.New("inter", "abc").Variable(100, 400, 900))
	a := style.NewFontTypeface("NotoSansJP.otf", fonttest.New("jp", "中"))
	b := style.NewFontTypeface("NotoNaskh.ttf", fonttest.New("naskh", "ب"))
	b.Scale = option.Of(percent.FromInt(110))
	b.LineHeight = option.Of(style.AutoLineHeight)
	b.AscentOverride = option.Of(0.9)
	sys := style.NewSystemTypeface("Georgia")
	for _, tf := range []*style.Typeface{primary, a, b, sys} {
		require.True(t, st.AddTypeface(tf))
	}
	fr, err := st.CloneTypeface(primary.ID, style.Lang("fr"), true)
	require.NoError(t, err)
	fr.Scale = option.Of(percent.FromInt(120))
	require.NoError(t, st.SetPrimaryFontOverride(style.Lang("fr"), fr.ID))
	de, err := st.CloneTypeface(a.ID, style.Lang("de"), false)
	require.NoError(t, err)
	require.NoError(t, st.SetPartialFallbackOverride(style.Lang("de"), a.ID, de.ID))
	require.NoError(t, st.SetFallbackFontOverride(style.Lang("ar"), string(b.ID)))
	require.NoError(t, st.SetFallbackFontOverride(style.Lang("ko"), style.LegacyKeyword))
	st.SetLanguageScale(style.Lang("fr"), option.Of(percent.FromInt(95)))
	st.SetLanguageLineHeight(style.Lang("ar"), option.Of(style.LineHeightOf(1.8)))
	return st
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	st := sampleStyle(t)
	b, err := Serialize([]*style.Style{st})
	require.NoError(t, err)
	styles, warnings, err := Deserialize(b, fontregistry.NewRegistry())
	require.NoError(t, err)
	require.Len(t, styles, 1)
	// fake fonts are not in the registry
	assert.Len(t, warnings, 5)
	for _, w := range warnings {
		assert.Contains(t, w, "not loaded")
	}
	diff := cmp.Diff(st, styles[0], cmpopts.IgnoreFields(style.Typeface{}, "Handle"))
	assert.Empty(t, diff, "round trip changed the style")
	for _, tf := range styles[0].Typefaces {
		assert.Nil(t, tf.Handle)
	}
}

func TestSerializedDocumentIsVersioned(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	b, err := Serialize([]*style.Style{sampleStyle(t)})
	require.NoError(t, err)
	require.NoError(t, Validate(b))
	var doc Document
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, CurrentVersion, doc.Metadata.Version)
	assert.NotContains(t, string(b), "fonts/", "transient font sources must not be serialized")
	assert.Contains(t, string(b), `"ko": "legacy"`)
}

const legacyDoc = `{
  "styles": [{
    "id": "primary",
    "typefaces": [
      { "id": "p", "name": "Inter", "fileName": "Inter.ttf", "isLangSpecific": true, "lang": "en" },
      { "id": "k", "name": "Noto Sans JP", "isLangSpecific": true, "isClone": true,
        "isPrimaryOverride": true, "lang": "ja", "origin": "p", "scale": 120 },
      { "id": "c", "name": "Noto Serif", "isLangSpecific": true, "isClone": true, "lang": "de", "origin": "p" }
    ],
    "primaryOverrides": { "ja": "k", "fr": "gone" },
    "fallbackOverrides": { "de": { "missing": "c" }, "it": "vanished", "ko": "legacy" },
    "languageScales": { "ja": 90 }
  }]
}`

func TestLegacyDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	styles, warnings, err := Deserialize([]byte(legacyDoc), fontregistry.NewRegistry())
	require.NoError(t, err)
	require.Len(t, styles, 1)
	st := styles[0]
	require.Len(t, st.Typefaces, 3)
	assert.Equal(t, style.General, st.Typefaces[0].Provenance, "primary is never language-bound")
	assert.Equal(t, style.LanguageID(""), st.Typefaces[0].Lang)
	assert.Equal(t, style.PrimaryOverride, st.Typefaces[1].Provenance)
	assert.Equal(t, style.Clone, st.Typefaces[2].Provenance)
	assert.Equal(t, percent.FromInt(120), st.Typefaces[1].Scale.Unwrap())
	assert.Equal(t, style.TypefaceID("k"), st.PrimaryOverrides[style.Lang("ja")])
	assert.NotContains(t, st.PrimaryOverrides, style.Lang("fr"))
	assert.NotContains(t, st.FallbackOverrides, style.Lang("de"))
	assert.NotContains(t, st.FallbackOverrides, style.Lang("it"))
	assert.Equal(t, style.Legacy{}, st.FallbackOverrides[style.Lang("ko")])
	joined := strings.Join(warnings, "\n")
	assert.Contains(t, joined, "Inter.ttf")
	assert.Contains(t, joined, "gone")
	assert.Contains(t, joined, "vanished")
	assert.Contains(t, joined, "missing")
}

func TestSchemaRejectsMalformedDocuments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	docs := []string{
		`[]`,
		`not json`,
		`{"metadata":{"version":2},"data":{"styles":[{"typefaces":[]}]}}`,
		`{"metadata":{"version":2},"data":{"styles":[{"id":"x","typefaces":[{"id":"a","provenance":"alien"}]}]}}`,
		`{"metadata":{"version":2},"data":{"styles":[{"id":"x","typefaces":[],"fallbackOverrides":{"de":7}}]}}`,
	}
	for _, d := range docs {
		_, _, err := Deserialize([]byte(d), nil)
		if assert.Error(t, err, d) {
			assert.Equal(t, core.EINVALID, core.Code(err), d)
		}
	}
}

func TestNewerVersionIsRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	_, _, err := Deserialize([]byte(`{"metadata":{"version":99},"data":{"styles":[]}}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer")
}

func TestExportFileName(t *testing.T) {
	pm := time.Date(2026, time.October, 18, 21, 45, 0, 0, time.UTC)
	assert.Equal(t, "fonts-18oct2026-0945pm.json", ExportFileName("fonts", pm))
	am := time.Date(2026, time.March, 3, 7, 5, 0, 0, time.UTC)
	assert.Equal(t, "typecascade-03mar2026-0705am.json", ExportFileName("  ", am))
}

func TestExport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	dir := filepath.Join(t.TempDir(), "exports")
	at := time.Date(2026, time.October, 18, 9, 45, 0, 0, time.UTC)
	path, err := Export(dir, "body", []*style.Style{sampleStyle(t)}, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "body-18oct2026-0945am.json"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NoError(t, Validate(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	_, err := store.Load(ctx, "primary")
	require.Error(t, err)
	assert.Equal(t, core.EMISSING, core.Code(err))
	require.NoError(t, store.Save(ctx, "primary", []byte(`{"v":1}`)))
	require.NoError(t, store.Save(ctx, "primary", []byte(`{"v":2}`)))
	b, err := store.Load(ctx, "primary")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(b))
	require.NoError(t, store.Delete(ctx, "primary"))
	require.NoError(t, store.Delete(ctx, "primary"))
	_, err = store.Load(ctx, "primary")
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestDirStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	store, err := NewDirStore(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
	exerciseFontStore(t, store)
	err = store.Save(context.Background(), "../escape", []byte("{}"))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestSQLiteStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "db", "cascade.db")
	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	exerciseStore(t, store)
	exerciseFontStore(t, store)
	require.NoError(t, store.Save(context.Background(), "kept", []byte("{}")))
	require.NoError(t, store.Close())
	// reopening keeps documents and fonts
	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	b, err := store.Load(context.Background(), "kept")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	data, err := store.LoadFont(context.Background(), font.Fingerprint(goregular.TTF))
	require.NoError(t, err)
	assert.Equal(t, goregular.TTF, data)
}

func exerciseFontStore(t *testing.T, store FontStore) {
	ctx := context.Background()
	fp := font.Fingerprint(goregular.TTF)
	_, err := store.LoadFont(ctx, fp)
	assert.Equal(t, core.EMISSING, core.Code(err))
	require.NoError(t, store.SaveFont(ctx, fp, goregular.TTF))
	require.NoError(t, store.SaveFont(ctx, fp, goregular.TTF), "saving twice is a no-op")
	data, err := store.LoadFont(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, goregular.TTF, data)
	err = store.SaveFont(ctx, "../../etc/passwd", []byte("x"))
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = store.LoadFont(ctx, "ABCDEF0123456789")
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestFontsAreFoundByFingerprint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	regular, err := font.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	mono, err := font.ParseOpenTypeFont(gomono.TTF)
	require.NoError(t, err)
	st := style.NewStyle("body")
	require.True(t, st.AddTypeface(style.NewFontTypeface("Go.ttf", regular)))
	b, err := Serialize([]*style.Style{st})
	require.NoError(t, err)
	assert.Contains(t, string(b), regular.Fingerprint())
	refs, err := FontRefs(b)
	require.NoError(t, err)
	assert.Equal(t, []FontRef{{Fingerprint: regular.Fingerprint(), FileName: "Go.ttf"}}, refs)
	//
	// a different binary registered under the same file name is not picked up
	reg := fontregistry.NewRegistry()
	reg.StoreFont("Go.ttf", mono)
	styles, warnings, err := Deserialize(b, reg)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Nil(t, styles[0].Primary().Handle)
	reg.StoreFont("Go.ttf", regular)
	styles, warnings, err = Deserialize(b, reg)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Same(t, regular, styles[0].Primary().Handle)
}

func newAutosaver(t *testing.T, quiet string) (*Autosaver, *DirStore) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	conf := testconfig.Conf{core.KeyAutosaveQuiet: quiet}
	return NewAutosaver(store, "primary", conf), store
}

func TestAutosaveDebounces(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	saver, store := newAutosaver(t, "30")
	defer saver.Close()
	for i := 1; i <= 5; i++ {
		saver.Notify(Change{Reason: "edit", Doc: []byte{'0' + byte(i)}})
	}
	assert.Eventually(t, func() bool {
		n, _ := saver.Saves()
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	n, err := saver.Saves()
	assert.NoError(t, err)
	assert.Equal(t, 1, n, "changes within the quiet period are batched")
	b, err := store.Load(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, "5", string(b), "latest change wins")
}

func TestAutosaveSkippedDuringReset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	saver, store := newAutosaver(t, "20")
	defer saver.Close()
	saver.Notify(Change{Reason: "edit", Doc: []byte("before")})
	saver.BeginReset()
	assert.True(t, saver.Resetting())
	saver.Notify(Change{Reason: "reset", Doc: []byte("during")})
	require.NoError(t, saver.Flush(context.Background()))
	time.Sleep(60 * time.Millisecond)
	n, _ := saver.Saves()
	assert.Equal(t, 0, n)
	_, err := store.Load(context.Background(), "primary")
	assert.Equal(t, core.EMISSING, core.Code(err))
	saver.EndReset()
	saver.Notify(Change{Reason: "edit", Doc: []byte("after")})
	require.NoError(t, saver.Flush(context.Background()))
	b, err := store.Load(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, "after", string(b))
}

func TestAutosaveCloseFlushes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.persist")
	defer teardown()
	//
	saver, store := newAutosaver(t, "60000")
	saver.Notify(Change{Reason: "edit", Doc: []byte("last")})
	require.NoError(t, saver.Close())
	b, err := store.Load(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, "last", string(b))
	saver.Notify(Change{Reason: "late", Doc: []byte("ignored")})
	n, _ := saver.Saves()
	assert.Equal(t, 1, n)
}

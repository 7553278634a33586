package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core/font/fonttest"
	"github.com/npillmayer/typecascade/engine/coverage"
	"github.com/npillmayer/typecascade/engine/stack"
	"github.com/npillmayer/typecascade/engine/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestPreviewSpansFollowWalker(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.preview")
	defer teardown()
	//
	st := style.NewStyle("")
	primary := style.NewFontTypeface("Latin.ttf", fonttest.New("latin", "Ab"))
	cjk := style.NewFontTypeface("CJK.otf", fonttest.New("cjk", "中文"))
	require.True(t, st.AddTypeface(primary))
	require.True(t, st.AddTypeface(cjk))
	ja := style.Lang("ja")
	doc := Document(st, []Sample{{Lang: ja, Title: "Japanese", Text: "Ab 中文 ж"}})
	//
	assert.Equal(t, "Ab", RenderedBy(doc, primary.ID))
	assert.Equal(t, "中文", RenderedBy(doc, cjk.ID))
	assert.Equal(t, "ж", RenderedBy(doc, stack.SystemID))
	//
	missing, err := Find(doc, "span."+ClassMissing)
	require.NoError(t, err)
	assert.Len(t, missing, 3)
	unsure, err := Find(doc, "span."+ClassUnsure)
	require.NoError(t, err)
	assert.Len(t, unsure, 1)
	sections, err := Find(doc, `section[lang="ja"]`)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
	styles, err := Find(doc, "head style")
	require.NoError(t, err)
	require.Len(t, styles, 1)
	assert.Contains(t, styles[0].FirstChild.Data, "@font-face")
	//
	_, err = Find(doc, "span[")
	assert.Error(t, err)
}

func TestRenderProducesParseableHTML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.preview")
	defer teardown()
	//
	st := style.NewStyle("")
	require.True(t, st.AddTypeface(style.NewSystemTypeface("Georgia")))
	samples := SamplesFor(coverage.DefaultSampleSets(), style.Lang("de"), style.Lang("tlh"))
	require.Len(t, samples, 1)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, st, samples))
	assert.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE html>"))
	doc, err := html.Parse(&buf)
	require.NoError(t, err)
	spans, err := Find(doc, "section p span")
	require.NoError(t, err)
	assert.NotEmpty(t, spans)
	assert.Equal(t, "", RenderedBy(doc, stack.SystemID), "Georgia is assumed to cover German")
}

package style

import (
	"encoding/json"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font/fonttest"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RegistrySuite struct {
	suite.Suite
	teardown func()
	style    *Style
	primary  *Typeface
	a, b     *Typeface
}

func TestRegistry(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupSuite() {
	s.teardown = gotestingadapter.QuickConfig(s.T(), "cascade.style")
}

func (s *RegistrySuite) TearDownSuite() {
	s.teardown()
}

func (s *RegistrySuite) SetupTest() {
	s.style = NewStyle("")
	s.primary = NewFontTypeface("Inter-Regular.ttf", fonttest.New("inter", "Aa"))
	s.a = NewFontTypeface("NotoSansJP.otf", fonttest.New("jp", "中"))
	s.b = NewFontTypeface("NotoSansArabic.ttf", fonttest.New("ar", "ب"))
	s.Require().True(s.style.AddTypeface(s.primary))
	s.Require().True(s.style.AddTypeface(s.a))
	s.Require().True(s.style.AddTypeface(s.b))
}

func (s *RegistrySuite) TestRoles() {
	s.Equal(RolePrimary, s.style.RoleOf(s.primary.ID))
	s.Equal(RoleFallback, s.style.RoleOf(s.a.ID))
	s.Equal(s.primary, s.style.Primary())
}

func (s *RegistrySuite) TestNoSelfDuplication() {
	n := len(s.style.Typefaces)
	dup := NewFontTypeface("fonts/inter-regular.TTF", fonttest.New("inter2", "A"))
	s.False(s.style.AddTypeface(dup))
	s.Len(s.style.Typefaces, n)
	s.False(s.style.AddTypeface(NewFontTypeface("NotoSansJP.otf", fonttest.New("jp2", ""))))
	s.Len(s.style.Typefaces, n)
}

func (s *RegistrySuite) TestLanguageUploadOfSameFile() {
	tf := NewFontTypeface("NotoSansJP.otf", fonttest.New("jp", "中"))
	tf.Provenance, tf.Lang = LanguageSpecific, Lang("ja")
	s.True(s.style.AddTypeface(tf))
}

func (s *RegistrySuite) TestMove() {
	s.Require().NoError(s.style.MoveTypeface(s.b.ID, 1))
	s.Equal([]*Typeface{s.primary, s.b, s.a}, s.style.Typefaces)
	s.Equal(core.EINVALID, core.Code(s.style.MoveTypeface(s.b.ID, 0)))
	s.Equal(core.EINVALID, core.Code(s.style.MoveTypeface(s.primary.ID, 2)))
	s.Equal(core.EMISSING, core.Code(s.style.MoveTypeface("nope", 1)))
}

func (s *RegistrySuite) TestCloneAsPrimaryOverride() {
	fr := Lang("fr")
	c, err := s.style.CloneTypeface(s.a.ID, fr, true)
	s.Require().NoError(err)
	s.Equal(PrimaryOverride, c.Provenance)
	s.Equal(s.a.ID, c.Origin)
	s.Equal(c.ID, s.style.PrimaryOverrides[fr])
	s.Equal(RoleFallback, s.style.RoleOf(c.ID))
	s.Same(s.a.Handle, c.Handle)
}

func (s *RegistrySuite) TestCloneAsPartialSubstitute() {
	fr := Lang("fr")
	c, err := s.style.CloneTypeface(s.a.ID, fr, false)
	s.Require().NoError(err)
	p, ok := s.style.FallbackOverrides[fr].(*Partial)
	s.Require().True(ok)
	over, found := p.Get(s.a.ID)
	s.True(found)
	s.Equal(c.ID, over)
}

func (s *RegistrySuite) TestRemoveDropsClonesAndOverrides() {
	ja := Lang("ja")
	c, err := s.style.CloneTypeface(s.a.ID, ja, true)
	s.Require().NoError(err)
	s.Require().NoError(s.style.SetPartialFallbackOverride(Lang("fr"), s.a.ID, s.b.ID))
	s.Require().NoError(s.style.RemoveTypeface(s.a.ID))
	_, found := s.style.Lookup(c.ID)
	s.False(found)
	s.Empty(s.style.PrimaryOverrides)
	s.Empty(s.style.FallbackOverrides)
	s.Equal(core.EINVALID, core.Code(s.style.RemoveTypeface(s.primary.ID)))
}

func (s *RegistrySuite) TestReplacePrimaryPromotesDuplicate() {
	s.Require().NoError(s.style.ReplacePrimary(NewFontTypeface("NotoSansJP.otf", nil)))
	s.Equal(s.a, s.style.Primary())
	s.Len(s.style.Typefaces, 2)
}

func (s *RegistrySuite) TestFallbackOverrideOfSystemTypeface() {
	sys := NewSystemTypeface("Hiragino Sans")
	s.Require().True(s.style.AddTypeface(sys))
	ja := Lang("ja")
	s.Require().NoError(s.style.SetFallbackFontOverride(ja, string(sys.ID)))
	s.Equal(Legacy{}, s.style.FallbackOverrides[ja])
	s.Require().NoError(s.style.SetFallbackFontOverride(ja, string(s.a.ID)))
	s.Equal(Direct{ID: s.a.ID}, s.style.FallbackOverrides[ja])
	s.Equal(core.EMISSING, core.Code(s.style.SetFallbackFontOverride(ja, "unknown")))
}

func (s *RegistrySuite) TestRepairOrphans() {
	s.style.PrimaryOverrides[Lang("de")] = "gone"
	s.style.FallbackOverrides[Lang("fr")] = NewPartial().Set(s.a.ID, "gone").Set(s.b.ID, s.a.ID)
	s.style.FallbackOverrides[Lang("ja")] = Direct{ID: "gone"}
	warnings := s.style.RepairOrphans()
	s.Len(warnings, 3)
	s.Empty(s.style.PrimaryOverrides)
	p := s.style.FallbackOverrides[Lang("fr")].(*Partial)
	s.Equal([]TypefaceID{s.b.ID}, p.Originals())
	_, found := s.style.FallbackOverrides[Lang("ja")]
	s.False(found)
}

func (s *RegistrySuite) TestLanguageSettings() {
	ja := Lang("ja")
	s.style.SetLanguageScale(ja, option.Of(percent.Percent(90)))
	s.style.SetLanguageLineHeight(ja, option.Of(LineHeightOf(1.8)))
	s.Equal([]LanguageID{"ja"}, s.style.Languages())
	s.style.SetLanguageScale(ja, option.Empty[percent.Percent]())
	_, found := s.style.LanguageScales[ja]
	s.False(found)
}

func (s *RegistrySuite) TestLetterSpacing() {
	s.NoError(s.style.SetLetterSpacing("0.02EM"))
	s.Equal("0.02em", s.style.LetterSpacing)
	s.Error(s.style.SetLetterSpacing("wide"))
	s.Equal("0.02em", s.style.LetterSpacing)
	s.NoError(s.style.SetTypefaceLetterSpacing(s.a.ID, "1px"))
	s.Equal("1px", s.a.LetterSpacing.Unwrap())
	s.NoError(s.style.SetTypefaceLetterSpacing(s.a.ID, ""))
	s.True(s.a.LetterSpacing.IsNone())
	s.Error(s.style.SetTypefaceLetterSpacing("nope", "1px"))
}

// ---------------------------------------------------------------------------

func TestFamilyNames(t *testing.T) {
	st := NewStyle("Heading 1")
	p := NewSystemTypeface("Georgia")
	f := NewSystemTypeface("Georgia")
	f.ID = "f1"
	st.Typefaces = []*Typeface{p, f}
	assert.Equal(t, "_heading_32_1/primary", st.FamilyOf(p.ID))
	assert.Equal(t, "_heading_32_1/fb/f1", st.FamilyOf(f.ID))
	assert.NotEqual(t, FallbackFamily("a", "x"), FallbackFamily("b", "x"))
	assert.NotEqual(t, FallbackFamily("a", "b/fb/c"), FallbackFamily("a/fb/b", "c"))
}

func TestSlugIsInjective(t *testing.T) {
	ids := []string{"Heading", "heading", "head ing", "head.ing", "head_ing",
		"head__ing", "head_32_ing", "_heading", "日本", "-", ""}
	seen := make(map[string]string)
	for _, id := range ids {
		slug := Slug(id)
		if other, dup := seen[slug]; dup {
			t.Errorf("%q and %q share slug %q", id, other, slug)
		}
		seen[slug] = id
		assert.NotContains(t, slug, "/")
	}
	assert.Equal(t, "body-text2", Slug("body-text2"))
	assert.Equal(t, "_32_", Slug(" "))
}

func TestCloneIsIndependent(t *testing.T) {
	st := NewStyle("body")
	a := NewSystemTypeface("Georgia")
	b := NewSystemTypeface("Arial")
	st.AddTypeface(a)
	st.AddTypeface(b)
	st.FallbackOverrides["ja"] = NewPartial().Set(b.ID, a.ID)
	st.LanguageScales["ja"] = 90
	c := st.Clone()
	c.Typefaces[1].Name = "Verdana"
	c.LanguageScales["ja"] = 50
	c.FallbackOverrides["ja"].(*Partial).Set(b.ID, b.ID)
	assert.Equal(t, "Arial", b.Name)
	assert.EqualValues(t, 90, st.LanguageScales["ja"])
	over, _ := st.FallbackOverrides["ja"].(*Partial).Get(b.ID)
	assert.Equal(t, a.ID, over)
	assert.Nil(t, (*Style)(nil).Clone())
}

func TestLanguageIDs(t *testing.T) {
	assert.Equal(t, LanguageID("zh-Hant"), Lang(" zh-hant "))
	assert.Equal(t, LanguageID("fr"), Lang("FR"))
	assert.Equal(t, "French (français)", Lang("fr").DisplayName())
	assert.Equal(t, LanguageID("not a tag!"), Lang("Not a Tag!"))
}

func TestPartialKeepsOrder(t *testing.T) {
	p := NewPartial().Set("c", "c2").Set("a", "a2").Set("b", "b2")
	p.Set("a", "a3")
	assert.Equal(t, []TypefaceID{"c", "a", "b"}, p.Originals())
	assert.Equal(t, []TypefaceID{"c2", "a3", "b2"}, p.Overrides())
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"c":"c2","a":"a3","b":"b2"}`, string(b))
	q := NewPartial()
	require.NoError(t, json.Unmarshal(b, q))
	assert.True(t, p.Equal(q))
	assert.False(t, p.Equal(NewPartial().Set("a", "a3")))
}

func TestFallbackOverrideJSON(t *testing.T) {
	for _, o := range []FallbackOverride{Legacy{}, Direct{ID: "x"}, NewPartial().Set("a", "b")} {
		b, err := MarshalFallbackOverride(o)
		require.NoError(t, err)
		back, err := UnmarshalFallbackOverride(b)
		require.NoError(t, err)
		if p, ok := o.(*Partial); ok {
			assert.True(t, p.Equal(back.(*Partial)))
			continue
		}
		assert.Equal(t, o, back)
	}
	_, err := UnmarshalFallbackOverride([]byte(`42`))
	assert.Error(t, err)
}

func TestLineHeightJSON(t *testing.T) {
	var lh LineHeight
	require.NoError(t, json.Unmarshal([]byte(`"auto"`), &lh))
	assert.True(t, lh.Auto)
	require.NoError(t, json.Unmarshal([]byte(`1.5`), &lh))
	assert.Equal(t, LineHeightOf(1.5), lh)
	b, _ := json.Marshal(AutoLineHeight)
	assert.Equal(t, `"auto"`, string(b))
	assert.Equal(t, "normal", AutoLineHeight.String())
}

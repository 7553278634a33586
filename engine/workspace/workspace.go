package workspace

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
	"github.com/npillmayer/typecascade/core/font/fontregistry"
	"github.com/npillmayer/typecascade/core/locate/resources"
	"github.com/npillmayer/typecascade/engine/coverage"
	"github.com/npillmayer/typecascade/engine/persist"
	"github.com/npillmayer/typecascade/engine/preview"
	"github.com/npillmayer/typecascade/engine/resolve"
	"github.com/npillmayer/typecascade/engine/stack"
	"github.com/npillmayer/typecascade/engine/style"
	"github.com/npillmayer/typecascade/engine/stylesheet"
)

// Listener receives save-worthy changes. *persist.Autosaver is a Listener.
type Listener interface {
	Notify(persist.Change)
	BeginReset()
	EndReset()
}

// Workspace holds the styles of a session. It is safe for concurrent use.
// Styles and typefaces handed out by the workspace are snapshots; changing
// them does not change the workspace. Mutations go through Apply or one of
// the convenience methods.
type Workspace struct {
	mx        sync.Mutex
	styles    []*style.Style
	registry  *fontregistry.Registry
	validator *resources.Validator
	samples   *coverage.SampleSets
	listener  Listener
	fonts     persist.FontStore
	fc        *resources.FontConfig
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithRegistry sets the font registry. The default is a fresh registry.
func WithRegistry(reg *fontregistry.Registry) Option {
	return func(ws *Workspace) {
		if reg != nil {
			ws.registry = reg
		}
	}
}

// WithValidator sets the validator for font uploads.
func WithValidator(v *resources.Validator) Option {
	return func(ws *Workspace) {
		if v != nil {
			ws.validator = v
		}
	}
}

// WithListener sets the receiver of change events.
func WithListener(l Listener) Option {
	return func(ws *Workspace) {
		ws.listener = l
	}
}

// WithFontStore sets the store keeping uploaded font binaries. Without a
// font store, RestoreFrom uses the document store if it keeps fonts too.
func WithFontStore(fonts persist.FontStore) Option {
	return func(ws *Workspace) {
		ws.fonts = fonts
	}
}

// New creates a workspace holding one empty style, the primary style.
// Sample sets and the validation timeout are read from conf, which may be nil.
func New(conf schuko.Configuration, opts ...Option) (*Workspace, error) {
	samples, err := coverage.LoadSampleSets(conf)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{
		styles:  []*style.Style{style.NewStyle(style.PrimaryStyleID)},
		samples: samples,
	}
	for _, opt := range opts {
		opt(ws)
	}
	if ws.registry == nil {
		ws.registry = fontregistry.NewRegistry()
	}
	if ws.validator == nil {
		ws.validator = resources.NewValidator(conf)
	}
	ws.fc = resources.NewFontConfig(conf)
	return ws, nil
}

// Close stops the validation worker.
func (ws *Workspace) Close() {
	ws.validator.Close()
}

// Registry returns the font registry of the workspace.
func (ws *Workspace) Registry() *fontregistry.Registry {
	return ws.registry
}

// Samples returns the sample sets used for coverage and previews.
func (ws *Workspace) Samples() *coverage.SampleSets {
	return ws.samples
}

// Styles returns a snapshot of the styles of the workspace.
func (ws *Workspace) Styles() []*style.Style {
	ws.mx.Lock()
	defer ws.mx.Unlock()
	styles := make([]*style.Style, len(ws.styles))
	for i, st := range ws.styles {
		styles[i] = st.Clone()
	}
	return styles
}

// Style returns a snapshot of the style with the given id. An empty id
// selects the primary style.
func (ws *Workspace) Style(id string) (*style.Style, error) {
	ws.mx.Lock()
	defer ws.mx.Unlock()
	st, err := ws.find(id)
	if err != nil {
		return nil, err
	}
	return st.Clone(), nil
}

func (ws *Workspace) find(id string) (*style.Style, error) {
	if id == "" {
		id = style.PrimaryStyleID
	}
	for _, st := range ws.styles {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, core.Error(core.EMISSING, "no style %q", id)
}

// AddStyle creates a new empty style.
func (ws *Workspace) AddStyle(id string) (*style.Style, error) {
	id = strings.TrimSpace(id)
	ws.mx.Lock()
	defer ws.mx.Unlock()
	if id == "" {
		return nil, core.Error(core.EINVALID, "style needs a name")
	}
	if _, err := ws.find(id); err == nil {
		return nil, core.Error(core.EDUPLICATE, "style %q exists", id)
	}
	st := style.NewStyle(id)
	ws.styles = append(ws.styles, st)
	ws.changed("add style " + id)
	return st.Clone(), nil
}

// Apply runs mutate on style styleID. If mutate succeeds, a change with the
// given reason is reported.
func (ws *Workspace) Apply(styleID, reason string, mutate func(*style.Style) error) error {
	ws.mx.Lock()
	defer ws.mx.Unlock()
	st, err := ws.find(styleID)
	if err != nil {
		return err
	}
	if err = mutate(st); err != nil {
		tracer().Infof("%s failed: %v", reason, err)
		return err
	}
	ws.changed(reason)
	return nil
}

// changed serializes the current state and hands it to the listener.
// ws.mx must be held.
func (ws *Workspace) changed(reason string) {
	tracer().Debugf("change: %s", reason)
	if ws.listener == nil {
		return
	}
	doc, err := persist.Serialize(ws.styles)
	if err != nil {
		tracer().Errorf("cannot serialize state after %s: %v", reason, err)
		return
	}
	ws.listener.Notify(persist.Change{Reason: reason, Doc: doc})
}

// --- Typefaces -------------------------------------------------------------

// ingest validates and parses a font binary, registers it and keeps it in
// the font store. Binaries known to the registry are not validated again.
func (ws *Workspace) ingest(ctx context.Context, fileName string, data []byte) (*font.ScalableFont, error) {
	f, known := ws.registry.LookupBinary(data)
	if known {
		tracer().Debugf("font %s is known as %s", fileName, f.Fingerprint())
	} else {
		var err error
		if f, err = ws.validator.Ingest(ctx, fileName, data); err != nil {
			return nil, err
		}
	}
	f = ws.registry.StoreFont(fileName, f)
	if ws.fonts != nil {
		if err := ws.fonts.SaveFont(ctx, f.Fingerprint(), data); err != nil {
			tracer().Errorf("cannot keep font %s: %v", fileName, err)
			return nil, err
		}
	}
	return f, nil
}

// Upload validates a font binary, parses it and adds it to style styleID.
// With a non-empty lang, the typeface is bound to lang and becomes the only
// fallback of lang. Uploading a file the style already holds returns the
// existing typeface and reports no change.
func (ws *Workspace) Upload(ctx context.Context, styleID, fileName string, data []byte,
	lang style.LanguageID) (*style.Typeface, error) {
	//
	f, err := ws.ingest(ctx, fileName, data)
	if err != nil {
		return nil, err
	}
	tf := style.NewFontTypeface(fileName, f)
	if lang != "" {
		tf.Provenance, tf.Lang = style.LanguageSpecific, lang
	}
	ws.mx.Lock()
	defer ws.mx.Unlock()
	st, err := ws.find(styleID)
	if err != nil {
		return nil, err
	}
	if !st.AddTypeface(tf) {
		if dup := ws.existing(st, tf); dup != nil {
			return dup.Copy(), nil
		}
		return nil, core.Error(core.EDUPLICATE, "style %s already holds %s", st.ID, fileName)
	}
	if lang != "" && st.IndexOf(tf.ID) > 0 {
		if err = st.SetFallbackFontOverride(lang, string(tf.ID)); err != nil {
			return nil, err
		}
	}
	ws.changed("upload " + fileName)
	return tf.Copy(), nil
}

// existing finds the typeface of st that AddTypeface found tf to duplicate.
func (ws *Workspace) existing(st *style.Style, tf *style.Typeface) *style.Typeface {
	for _, other := range st.Typefaces {
		if other.Key() == tf.Key() && !other.Provenance.IsClone() {
			return other
		}
	}
	return nil
}

// ReplacePrimary validates a font binary and makes it the primary typeface
// of style styleID.
func (ws *Workspace) ReplacePrimary(ctx context.Context, styleID, fileName string, data []byte) (*style.Typeface, error) {
	f, err := ws.ingest(ctx, fileName, data)
	if err != nil {
		return nil, err
	}
	tf := style.NewFontTypeface(fileName, f)
	err = ws.Apply(styleID, "replace primary with "+fileName, func(st *style.Style) error {
		if err := st.ReplacePrimary(tf); err != nil {
			return err
		}
		tf = st.Primary().Copy()
		return nil
	})
	return tf, err
}

// AddSystemTypeface adds a typeface known by its family name only.
func (ws *Workspace) AddSystemTypeface(styleID, family string) (*style.Typeface, error) {
	if strings.TrimSpace(family) == "" {
		return nil, core.Error(core.EINVALID, "system typeface needs a family name")
	}
	tf := style.NewSystemTypeface(family)
	var added *style.Typeface
	err := ws.Apply(styleID, "add system typeface "+family, func(st *style.Style) error {
		if !st.AddTypeface(tf) {
			return core.Error(core.EDUPLICATE, "style %s already holds %s", st.ID, family)
		}
		added = tf.Copy()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// LoadSystemFont locates an installed font by file name or, with fontconfig
// configured, by family name and adds it like an upload.
func (ws *Workspace) LoadSystemFont(ctx context.Context, styleID, name string,
	lang style.LanguageID) (*style.Typeface, error) {
	//
	f, err := resources.ResolveSystemTypeface(name, ws.validator, ws.registry, ws.fc).Await(ctx)
	if err != nil {
		return nil, err
	}
	return ws.Upload(ctx, styleID, name, f.Binary, lang)
}

// --- Persistence -----------------------------------------------------------

// Document serializes all styles.
func (ws *Workspace) Document() ([]byte, error) {
	ws.mx.Lock()
	defer ws.mx.Unlock()
	return persist.Serialize(ws.styles)
}

// Restore replaces all styles by the styles of a document. Font handles are
// re-attached from the workspace's registry. Restoring is not reported as
// a change.
func (ws *Workspace) Restore(doc []byte) ([]string, error) {
	styles, warnings, err := persist.Deserialize(doc, ws.registry)
	if err != nil {
		return warnings, err
	}
	if len(styles) == 0 {
		styles = []*style.Style{style.NewStyle(style.PrimaryStyleID)}
	}
	ws.mx.Lock()
	ws.styles = styles
	ws.mx.Unlock()
	tracer().Infof("restored %d styles with %d warnings", len(styles), len(warnings))
	return warnings, nil
}

// RestoreFrom loads document key from store and restores it. Font binaries
// the document refers to are loaded from the font store, validated and
// registered before the styles are restored. A missing document leaves the
// workspace untouched.
func (ws *Workspace) RestoreFrom(ctx context.Context, store persist.Store, key string) ([]string, error) {
	doc, err := store.Load(ctx, key)
	if core.Code(err) == core.EMISSING {
		tracer().Infof("no saved state %s", key)
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	fonts := ws.fonts
	if fonts == nil {
		fonts, _ = store.(persist.FontStore)
	}
	if fonts != nil {
		if err = ws.reloadFonts(ctx, fonts, doc); err != nil {
			return nil, err
		}
	}
	return ws.Restore(doc)
}

// Import restores an exported document. Font binaries are taken from the
// workspace's font store, if any.
func (ws *Workspace) Import(ctx context.Context, doc []byte) ([]string, error) {
	if ws.fonts != nil {
		if err := ws.reloadFonts(ctx, ws.fonts, doc); err != nil {
			return nil, err
		}
	}
	return ws.Restore(doc)
}

// reloadFonts brings every font binary doc refers to into the registry.
// Fonts which cannot be loaded are left to Restore, which reports them.
func (ws *Workspace) reloadFonts(ctx context.Context, fonts persist.FontStore, doc []byte) error {
	refs, err := persist.FontRefs(doc)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if _, ok := ws.registry.LookupFingerprint(ref.Fingerprint); ok {
			continue
		}
		data, err := fonts.LoadFont(ctx, ref.Fingerprint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			tracer().Infof("font %s of %s not available: %v", ref.Fingerprint, ref.FileName, err)
			continue
		}
		if fp := font.Fingerprint(data); fp != ref.Fingerprint {
			tracer().Errorf("font store returned %s for font %s", fp, ref.Fingerprint)
			continue
		}
		f, err := ws.validator.Ingest(ctx, ref.FileName, data)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			tracer().Errorf("stored font %s rejected: %v", ref.FileName, err)
			continue
		}
		ws.registry.StoreFont(ref.FileName, f)
	}
	return nil
}

// Reset discards all styles. Persistence is suspended while the reset runs,
// then the empty state is reported as change "reset".
func (ws *Workspace) Reset() {
	if ws.listener != nil {
		ws.listener.BeginReset()
	}
	ws.mx.Lock()
	ws.styles = []*style.Style{style.NewStyle(style.PrimaryStyleID)}
	ws.mx.Unlock()
	if ws.listener != nil {
		ws.listener.EndReset()
	}
	ws.mx.Lock()
	ws.changed("reset")
	ws.mx.Unlock()
	tracer().Infof("workspace reset")
}

// --- Read functions --------------------------------------------------------

// Resolve returns the effective settings of a typeface for lang. An empty
// lang resolves without language overrides.
func (ws *Workspace) Resolve(styleID string, id style.TypefaceID, lang style.LanguageID) (resolve.Settings, error) {
	st, err := ws.Style(styleID)
	if err != nil {
		return resolve.Settings{}, err
	}
	var (
		s  resolve.Settings
		ok bool
	)
	if lang == "" {
		s, ok = resolve.Resolve(st, id)
	} else {
		s, ok = resolve.ResolveIn(st, id, lang)
	}
	if !ok {
		return s, core.Error(core.EMISSING, "no typeface %s in style %s", id, st.ID)
	}
	return s, nil
}

// Stack returns the primary typeface and the fallback stack for lang.
func (ws *Workspace) Stack(styleID string, lang style.LanguageID) (*style.Typeface, stack.Stack, error) {
	st, err := ws.Style(styleID)
	if err != nil {
		return nil, nil, err
	}
	return stack.PrimaryFor(st, lang), stack.Build(st, lang), nil
}

// Stylesheet emits the stylesheet of all styles.
func (ws *Workspace) Stylesheet() string {
	return stylesheet.Emit(ws.Styles())
}

// Coverage reports the coverage of lang's sample set by style styleID.
func (ws *Workspace) Coverage(styleID string, lang style.LanguageID) (coverage.Report, error) {
	st, err := ws.Style(styleID)
	if err != nil {
		return coverage.Report{}, err
	}
	rep, ok := coverage.LanguageCoverage(st, lang, ws.samples)
	if !ok {
		return rep, core.Error(core.EMISSING, "no sample characters for language %s", lang)
	}
	return rep, nil
}

// CoverageOf reports the coverage of arbitrary text.
func (ws *Workspace) CoverageOf(styleID string, lang style.LanguageID, text string) (coverage.Report, error) {
	st, err := ws.Style(styleID)
	if err != nil {
		return coverage.Report{}, err
	}
	return coverage.Check(st, lang, []rune(text)), nil
}

// Preview writes an HTML preview of style styleID for langs. Without langs,
// the languages the style has overrides for are previewed.
func (ws *Workspace) Preview(w io.Writer, styleID string, langs ...style.LanguageID) error {
	st, err := ws.Style(styleID)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		langs = st.Languages()
	}
	return preview.Render(w, st, preview.SamplesFor(ws.samples, langs...))
}

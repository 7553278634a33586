package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/locate/resources"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/npillmayer/typecascade/core/percent"
	"github.com/npillmayer/typecascade/engine/coverage"
	"github.com/npillmayer/typecascade/engine/persist"
	"github.com/npillmayer/typecascade/engine/style"
	"github.com/npillmayer/typecascade/engine/workspace"
	"github.com/pterm/pterm"
)

// tracer traces with key 'cascade.cli'
func tracer() tracing.Trace {
	return tracing.Select("cascade.cli")
}

// sessionKey is the document key of the autosaved session.
const sessionKey = "session"

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":         "go",
		"trace.cascade.cli":       "Info",
		"trace.cascade.persist":   "Error",
		core.KeyAppKey:            "typecascade",
		core.KeyAutosaveQuiet:     "1000",
		core.KeyValidationTimeout: "3000",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	dbpath := flag.String("db", "", "Session database (default in user config dir)")
	samples := flag.String("samples", "", "YAML file with sample characters")
	fresh := flag.Bool("fresh", false, "Do not restore the last session")
	fclist := flag.String("fc-list", "", "Absolute path of fontconfig's fc-list binary")
	flag.Parse()
	if *samples != "" {
		conf[core.KeySampleSets] = *samples
	}
	if *fclist != "" {
		conf[core.KeyFontConfig] = *fclist
	}
	tracer().SetTraceLevel(tracing.LevelError)
	pterm.Info.Println("Welcome to the typographic cascade CLI")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up session persistence
	store, err := openStore(conf, *dbpath)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	defer store.Close()
	saver := persist.NewAutosaver(store, sessionKey, conf)
	ws, err := workspace.New(conf, workspace.WithListener(saver), workspace.WithFontStore(store))
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	defer ws.Close()
	if !*fresh {
		warnings, err := ws.RestoreFrom(context.Background(), store, sessionKey)
		if err != nil {
			pterm.Error.Printfln("cannot restore last session: %v", err)
		}
		for _, w := range warnings {
			pterm.Warning.Println(w)
		}
	}
	//
	// set up REPL
	repl, err := readline.New("cascade > ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{repl: repl, ws: ws, saver: saver, style: style.PrimaryStyleID}
	pterm.Info.Println("Quit with <ctrl>D or 'quit', try 'help'")
	setTraceLevel(*tlevel)
	intp.REPL()
	if err := saver.Close(); err != nil {
		pterm.Error.Printfln("session not saved: %v", err)
	}
}

func setTraceLevel(l string) {
	switch strings.ToLower(l) {
	case "debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().SetTraceLevel(tracing.LevelInfo)
	}
}

func openStore(conf testconfig.Conf, path string) (*persist.SQLiteStore, error) {
	if path == "" {
		dir, err := resources.DataDirPath(conf, "state")
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "cascade.db")
	}
	return persist.OpenSQLiteStore(path)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl  *readline.Instance
	ws    *workspace.Workspace
	saver *persist.Autosaver
	style string // current style
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Command is a parsed input line.
type Command struct {
	op   string
	args []string
}

func (c Command) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

func parseCommand(line string) Command {
	fields := strings.Fields(line)
	tracer().Debugf("parse command = %v", fields)
	return Command{op: strings.ToLower(fields[0]), args: fields[1:]}
}

func (intp *Intp) execute(cmd Command) (bool, error) {
	ctx := context.Background()
	switch cmd.op {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		help(cmd.arg(0))
	case "style":
		return false, intp.selectStyle(cmd.arg(0))
	case "load":
		return false, intp.load(ctx, cmd.arg(0), cmd.arg(1))
	case "primary":
		return false, intp.replacePrimary(ctx, cmd.arg(0))
	case "find":
		tf, err := intp.ws.LoadSystemFont(ctx, intp.style, cmd.arg(0), langArg(cmd.arg(1)))
		if err == nil {
			pterm.Success.Printfln("loaded %s", tf)
		}
		return false, err
	case "system":
		tf, err := intp.ws.AddSystemTypeface(intp.style, strings.Join(cmd.args, " "))
		if err == nil {
			pterm.Success.Printfln("added %s", tf)
		}
		return false, err
	case "list":
		return false, intp.list()
	case "resolve":
		return false, intp.resolve(cmd.arg(0), cmd.arg(1))
	case "stack":
		return false, intp.stack(cmd.arg(0))
	case "render":
		return false, intp.render(cmd.arg(0), strings.Join(cmd.args[min(1, len(cmd.args)):], " "))
	case "coverage":
		return false, intp.coverage(cmd.args)
	case "css":
		pterm.Println(intp.ws.Stylesheet())
	case "preview":
		return false, intp.preview(cmd.arg(0), cmd.args[min(1, len(cmd.args)):])
	case "override":
		return false, intp.override(cmd.arg(0), cmd.arg(1))
	case "primary-override":
		return false, intp.primaryOverride(cmd.arg(0), cmd.arg(1))
	case "partial":
		return false, intp.partial(cmd.arg(0), cmd.arg(1), cmd.arg(2))
	case "clone":
		return false, intp.clone(cmd.arg(0), cmd.arg(1), cmd.arg(2) == "primary")
	case "scale":
		return false, intp.languageScale(cmd.arg(0), cmd.arg(1))
	case "lineheight":
		return false, intp.languageLineHeight(cmd.arg(0), cmd.arg(1))
	case "spacing":
		return false, intp.letterSpacing(cmd.arg(0), cmd.arg(1))
	case "move":
		return false, intp.move(cmd.arg(0), cmd.arg(1))
	case "remove":
		return false, intp.remove(cmd.arg(0))
	case "export":
		return false, intp.export(cmd.arg(0), cmd.arg(1))
	case "import":
		return false, intp.importFile(cmd.arg(0))
	case "save":
		return false, intp.saver.Flush(ctx)
	case "reset":
		intp.ws.Reset()
		intp.style = style.PrimaryStyleID
		pterm.Success.Println("all styles discarded")
	default:
		pterm.Error.Printfln("unknown command %q", cmd.op)
		help("")
	}
	return false, nil
}

// --- Commands --------------------------------------------------------------

func (intp *Intp) selectStyle(id string) error {
	if id == "" {
		pterm.Printfln("current style is %s", intp.style)
		return nil
	}
	if _, err := intp.ws.Style(id); err != nil {
		if _, err = intp.ws.AddStyle(id); err != nil {
			return err
		}
		pterm.Success.Printfln("created style %s", id)
	}
	intp.style = id
	return nil
}

func (intp *Intp) load(ctx context.Context, path, lang string) error {
	if path == "" {
		return core.Error(core.EINVALID, "usage: load <font file> [language]")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read %s", path)
	}
	tf, err := intp.ws.Upload(ctx, intp.style, filepath.Base(path), data, langArg(lang))
	if err != nil {
		return err
	}
	pterm.Success.Printfln("loaded %s", tf)
	return nil
}

func (intp *Intp) replacePrimary(ctx context.Context, path string) error {
	if path == "" {
		return core.Error(core.EINVALID, "usage: primary <font file>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read %s", path)
	}
	tf, err := intp.ws.ReplacePrimary(ctx, intp.style, filepath.Base(path), data)
	if err == nil {
		pterm.Success.Printfln("primary typeface is %s", tf)
	}
	return err
}

func (intp *Intp) list() error {
	st, err := intp.ws.Style(intp.style)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"#", "Name", "Role", "Provenance", "Language", "Family", "Binary"}}
	for i, tf := range st.Typefaces {
		data = append(data, []string{
			strconv.Itoa(i), tf.Name, st.RoleOf(tf.ID).String(), tf.Provenance.String(),
			string(tf.Lang), st.FamilyOf(tf.ID), strconv.FormatBool(tf.HasBinary()),
		})
	}
	if err = pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	for _, lang := range st.Languages() {
		pterm.Printfln("%-8s %s", lang, lang.DisplayName())
	}
	return nil
}

func (intp *Intp) resolve(ref, lang string) error {
	tf, err := intp.typeface(ref)
	if err != nil {
		return err
	}
	s, err := intp.ws.Resolve(intp.style, tf.ID, langArg(lang))
	if err != nil {
		return err
	}
	pterm.Printfln("%s: %s", tf.Name, s)
	return nil
}

func (intp *Intp) stack(lang string) error {
	primary, stk, err := intp.ws.Stack(intp.style, langArg(lang))
	if err != nil {
		return err
	}
	if primary == nil {
		return core.Error(core.EMISSING, "style %s has no typefaces", intp.style)
	}
	pterm.Printfln("primary  %s", primary)
	for i, e := range stk {
		pterm.Printfln("%2d %-30s %-8s %s", i+1, e.Family, e.Settings.FontSize(), e.Settings)
	}
	return nil
}

func (intp *Intp) render(lang, text string) error {
	if text == "" {
		return core.Error(core.EINVALID, "usage: render <lang> <text>")
	}
	st, err := intp.ws.Style(intp.style)
	if err != nil {
		return err
	}
	primary, stk, err := intp.ws.Stack(intp.style, langArg(lang))
	if err != nil {
		return err
	}
	data := pterm.TableData{{"Char", "Family", "Fallback", "Verified"}}
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		res := coverage.RenderChar(r, primary, stk)
		data = append(data, []string{string(r), res.Family(st, stk),
			strconv.FormatBool(res.MissingFromPrimary), strconv.FormatBool(res.Verified)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) coverage(langs []string) error {
	if len(langs) == 0 {
		for _, l := range intp.ws.Samples().Languages() {
			langs = append(langs, string(l))
		}
	}
	data := pterm.TableData{{"Language", "Coverage", "Missing", "Sample"}}
	for _, l := range langs {
		rep, err := intp.ws.Coverage(intp.style, style.Lang(l))
		if err != nil {
			pterm.Warning.Println(err.Error())
			continue
		}
		cov := "unknown"
		if p, ok := rep.Percent.Get(); ok {
			cov = p.String()
		}
		sample := "full"
		if rep.Representative {
			sample = "representative"
		}
		data = append(data, []string{rep.Lang.DisplayName(), cov, missing(rep.MissingChars), sample})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func missing(chars []rune) string {
	const max = 12
	if len(chars) > max {
		return string(chars[:max]) + "…"
	}
	return string(chars)
}

func (intp *Intp) preview(path string, langs []string) error {
	if path == "" {
		return core.Error(core.EINVALID, "usage: preview <html file> [languages…]")
	}
	f, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", path)
	}
	defer f.Close()
	ids := make([]style.LanguageID, len(langs))
	for i, l := range langs {
		ids[i] = style.Lang(l)
	}
	if err = intp.ws.Preview(f, intp.style, ids...); err != nil {
		return err
	}
	pterm.Success.Printfln("preview written to %s", path)
	return nil
}

func (intp *Intp) override(lang, ref string) error {
	if lang == "" || ref == "" {
		return core.Error(core.EINVALID, "usage: override <language> <typeface|legacy|clear>")
	}
	l := style.Lang(lang)
	return intp.ws.Apply(intp.style, "fallback override "+lang, func(st *style.Style) error {
		switch ref {
		case "clear":
			st.ClearFallbackOverride(l)
			return nil
		case style.LegacyKeyword:
			return st.SetFallbackFontOverride(l, style.LegacyKeyword)
		}
		tf, err := lookup(st, ref)
		if err != nil {
			return err
		}
		return st.SetFallbackFontOverride(l, string(tf.ID))
	})
}

func (intp *Intp) primaryOverride(lang, ref string) error {
	if lang == "" || ref == "" {
		return core.Error(core.EINVALID, "usage: primary-override <language> <typeface|clear>")
	}
	l := style.Lang(lang)
	return intp.ws.Apply(intp.style, "primary override "+lang, func(st *style.Style) error {
		if ref == "clear" {
			st.ClearPrimaryFontOverride(l)
			return nil
		}
		tf, err := lookup(st, ref)
		if err != nil {
			return err
		}
		return st.SetPrimaryFontOverride(l, tf.ID)
	})
}

func (intp *Intp) partial(lang, orig, over string) error {
	if lang == "" || orig == "" || over == "" {
		return core.Error(core.EINVALID, "usage: partial <language> <original> <substitute>")
	}
	return intp.ws.Apply(intp.style, "partial override "+lang, func(st *style.Style) error {
		o, err := lookup(st, orig)
		if err != nil {
			return err
		}
		s, err := lookup(st, over)
		if err != nil {
			return err
		}
		return st.SetPartialFallbackOverride(style.Lang(lang), o.ID, s.ID)
	})
}

func (intp *Intp) clone(ref, lang string, asPrimary bool) error {
	if ref == "" || lang == "" {
		return core.Error(core.EINVALID, "usage: clone <typeface> <language> [primary]")
	}
	return intp.ws.Apply(intp.style, "clone for "+lang, func(st *style.Style) error {
		tf, err := lookup(st, ref)
		if err != nil {
			return err
		}
		c, err := st.CloneTypeface(tf.ID, style.Lang(lang), asPrimary)
		if err == nil {
			pterm.Success.Printfln("cloned as %s", c)
		}
		return err
	})
}

func (intp *Intp) languageScale(lang, value string) error {
	if lang == "" || value == "" {
		return core.Error(core.EINVALID, "usage: scale <language> <percent|clear>")
	}
	p := option.Empty[percent.Percent]()
	if value != "clear" {
		v, err := percent.FromString(value)
		if err != nil {
			return core.WrapError(err, core.EINVALID, "illegal scale %q", value)
		}
		p = option.Of(v)
	}
	return intp.ws.Apply(intp.style, "scale for "+lang, func(st *style.Style) error {
		st.SetLanguageScale(style.Lang(lang), p)
		return nil
	})
}

func (intp *Intp) languageLineHeight(lang, value string) error {
	if lang == "" || value == "" {
		return core.Error(core.EINVALID, "usage: lineheight <language> <value|auto|clear>")
	}
	lh := option.Empty[style.LineHeight]()
	if value != "clear" {
		v, err := style.ParseLineHeight(value)
		if err != nil {
			return core.WrapError(err, core.EINVALID, "illegal line-height %q", value)
		}
		lh = option.Of(v)
	}
	return intp.ws.Apply(intp.style, "line-height for "+lang, func(st *style.Style) error {
		st.SetLanguageLineHeight(style.Lang(lang), lh)
		return nil
	})
}

func (intp *Intp) letterSpacing(ref, value string) error {
	if ref == "" {
		return core.Error(core.EINVALID, "usage: spacing <style|tf> [length|normal]")
	}
	return intp.ws.Apply(intp.style, "letter-spacing", func(st *style.Style) error {
		if ref == "style" {
			return st.SetLetterSpacing(value)
		}
		tf, err := lookup(st, ref)
		if err != nil {
			return err
		}
		return st.SetTypefaceLetterSpacing(tf.ID, value)
	})
}

func (intp *Intp) move(ref, to string) error {
	pos, err := strconv.Atoi(to)
	if err != nil {
		return core.Error(core.EINVALID, "usage: move <typeface> <position>")
	}
	return intp.ws.Apply(intp.style, "move", func(st *style.Style) error {
		tf, err := lookup(st, ref)
		if err != nil {
			return err
		}
		return st.MoveTypeface(tf.ID, pos)
	})
}

func (intp *Intp) remove(ref string) error {
	return intp.ws.Apply(intp.style, "remove", func(st *style.Style) error {
		tf, err := lookup(st, ref)
		if err != nil {
			return err
		}
		return st.RemoveTypeface(tf.ID)
	})
}

func (intp *Intp) export(dir, name string) error {
	if dir == "" {
		dir = "."
	}
	path, err := persist.Export(dir, name, intp.ws.Styles(), time.Now())
	if err != nil {
		return err
	}
	pterm.Success.Printfln("exported to %s", path)
	return nil
}

func (intp *Intp) importFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read %s", path)
	}
	warnings, err := intp.ws.Import(context.Background(), data)
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
	if err != nil {
		return err
	}
	intp.style = style.PrimaryStyleID
	return intp.saver.Flush(context.Background())
}

// --- Helpers ---------------------------------------------------------------

// typeface finds a typeface of the current style by position or id.
func (intp *Intp) typeface(ref string) (*style.Typeface, error) {
	st, err := intp.ws.Style(intp.style)
	if err != nil {
		return nil, err
	}
	return lookup(st, ref)
}

func lookup(st *style.Style, ref string) (*style.Typeface, error) {
	if i, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if i < 0 || i >= len(st.Typefaces) {
			return nil, core.Error(core.EMISSING, "no typeface at position %d", i)
		}
		return st.Typefaces[i], nil
	}
	if tf, ok := st.Lookup(style.TypefaceID(ref)); ok {
		return tf, nil
	}
	return nil, core.Error(core.EMISSING, "no typeface %q in style %s", ref, st.ID)
}

func langArg(l string) style.LanguageID {
	if l == "" {
		return ""
	}
	return style.Lang(l)
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	switch strings.ToLower(topic) {
	case "override", "overrides", "partial":
		pterm.Info.Println("Language overrides")
		pterm.Println(`
	override <lang> <typeface>    lang falls back to this typeface first
	override <lang> legacy        lang falls back to the system family only
	override <lang> clear         lang uses the general cascade
	partial <lang> <orig> <subst> substitute one general fallback for lang
	primary-override <lang> <tf>  tf replaces the primary typeface for lang
	clone <tf> <lang> [primary]   copy a typeface for lang, optionally as
	                              primary override
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	style [name]               select or create a style
	load <file> [lang]         upload a font file, optionally for a language
	primary <file>             replace the primary typeface
	find <name> [lang]         load an installed font by file or family name (Noto_Sans)
	system <family>            add a typeface known by family name only
	list                       list typefaces and languages
	resolve <tf> [lang]        show effective settings
	stack [lang]               show the fallback stack
	render <lang> <text>       show which typeface renders each character
	coverage [lang…]           check glyph coverage
	css                        print the stylesheet
	preview <file> [lang…]     write an HTML preview
	scale <lang> <pct|clear>   per-language scale
	lineheight <lang> <v|clear> per-language line-height
	spacing <style|tf> [len]   letter-spacing, e.g. 0.02em
	move <tf> <pos>, remove <tf>
	export [dir] [name], import <file>, save, reset, quit
	help overrides             language override commands

	Typefaces <tf> are given by list position or id.
	`)
	}
}

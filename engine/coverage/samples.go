package coverage

import (
	_ "embed"
	"os"
	"sort"
	"unicode"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/engine/style"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed samples.yaml
var embeddedSamples []byte

// SampleSet holds the characters checked for one language.
type SampleSet struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Text           string `yaml:"text"`           // preview sentence
	Characters     string `yaml:"characters"`     // characters to check
	Representative bool   `yaml:"representative"` // a sample of a large script
}

// Runes returns the distinct non-space characters of the set, in order.
func (s SampleSet) Runes() []rune {
	seen := make(map[rune]bool)
	var runes []rune
	for _, r := range s.Characters {
		if unicode.IsSpace(r) || seen[r] {
			continue
		}
		seen[r] = true
		runes = append(runes, r)
	}
	return runes
}

// SampleSets maps languages to their sample sets.
type SampleSets struct {
	sets map[style.LanguageID]SampleSet
}

type sampleFile struct {
	Version   int         `yaml:"version"`
	Languages []SampleSet `yaml:"languages"`
}

// ParseSampleSets reads sample sets from YAML.
func ParseSampleSets(data []byte) (*SampleSets, error) {
	var f sampleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "sample sets cannot be parsed")
	}
	ss := &SampleSets{sets: make(map[style.LanguageID]SampleSet, len(f.Languages))}
	for _, set := range f.Languages {
		if set.ID == "" {
			tracer().Infof("ignoring sample set without id (%q)", set.Name)
			continue
		}
		ss.sets[style.Lang(set.ID)] = set
	}
	tracer().Debugf("read %d sample sets, version %d", len(ss.sets), f.Version)
	return ss, nil
}

// DefaultSampleSets returns the built-in sample sets.
func DefaultSampleSets() *SampleSets {
	ss, err := ParseSampleSets(embeddedSamples)
	if err != nil {
		panic("embedded sample sets are broken") // this cannot happen
	}
	return ss
}

// LoadSampleSets reads the sample sets named by configuration key
// 'cascade.samplesets', or the built-in ones if the key is not set.
func LoadSampleSets(conf schuko.Configuration) (*SampleSets, error) {
	path := core.ConfigString(conf, core.KeySampleSets, "")
	if path == "" {
		return DefaultSampleSets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read sample sets %s", path)
	}
	return ParseSampleSets(data)
}

// Lookup finds the sample set of lang. A regional or script variant without
// a set of its own uses the set of its base language.
func (ss *SampleSets) Lookup(lang style.LanguageID) (SampleSet, bool) {
	if set, ok := ss.sets[lang]; ok {
		return set, true
	}
	base, conf := lang.Tag().Base()
	if conf == language.No {
		return SampleSet{}, false
	}
	set, ok := ss.sets[style.LanguageID(base.String())]
	return set, ok
}

// Languages returns all languages with a sample set, sorted.
func (ss *SampleSets) Languages() []style.LanguageID {
	langs := make([]style.LanguageID, 0, len(ss.sets))
	for l := range ss.sets {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

/*
Package coverage decides which typeface renders each character of a text
and measures how well a style supports a language.

A character is rendered by the primary typeface of a language if its
character map holds a glyph for it. Otherwise the fallback stack is walked;
the first entry with a glyph wins. Entries without a parsed font cannot be
checked and are assumed to render everything. If no entry qualifies, the
last entry of the stack is used.

Coverage of a language is measured against its sample set. Sample sets are
content data, read from YAML. For large scripts a sample set holds a
representative sample only and says so.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package coverage

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.coverage'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.coverage")
}

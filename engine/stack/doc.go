/*
Package stack builds the fallback stack of a style for a language.

A fallback stack is the ordered list of typefaces consulted for characters
the primary typeface cannot render. It always ends with the style's system
fallback family, which cannot be verified and is therefore the last resort.

Typefaces claimed by a language override (every id appearing in a fallback
override, and every primary override) are removed from the pool of general
candidates. A language's fallback override then shapes its stack:

    none      general candidates, system fallback
    Legacy    system fallback only
    Direct    the override typeface, general candidates, system fallback
    Partial   substitutes, general candidates without substituted slots,
              system fallback

Between general candidates, registry order decides.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package stack

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.stack'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.stack")
}

/*
Package style holds the data model of the typographic cascade: styles,
their typeface registries and their per-language override maps.

A Style is a named bundle of typographic defaults. Its registry is an
ordered list of typefaces; the typeface at position 0 is the primary
typeface, every other one is a fallback candidate. Registry order is
meaningful: it decides between fallback candidates of equal priority.

Typefaces carry a provenance:

    General           uploaded or named, eligible for every language
    LanguageSpecific  uploaded to serve exactly one language
    Clone             duplicated from another typeface for one language
    PrimaryOverride   a clone standing in for the primary for one language

Fallback overrides per language are one of

    Legacy    use the style's system fallback family only
    Direct    use this typeface first, then the general candidates
    *Partial  substitute single general candidates, keep the others

All mutations of a style go through methods of Style. Mutations referencing
unknown typefaces fail with core.EMISSING; adding a duplicate is a no-op.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package style

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.style'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.style")
}

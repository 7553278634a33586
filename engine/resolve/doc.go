/*
Package resolve computes the effective settings of a typeface within a
style.

Every setting is resolved independently, walking a fixed inheritance
order. For the primary typeface:

    scale                    100%
    line-height, spacing     style's global values
    weight                   style's global weight
    vertical metrics         typeface's own overrides only

For fallback typefaces (clones and primary overrides included):

    scale                    own value, else the style's fallback scale
    line-height, spacing     own value, else for primary overrides the
                             style's global values, for others the style's
                             fallback values, else the global values
    weight                   own value, else the style's global weight
    vertical metrics         typeface's own overrides only

A requested weight is clamped to the weight axis of variable fonts, or
replaced by the static weight of other fonts.

Resolution is a pure function of its arguments. Asking for a typeface not
in the registry yields no result rather than an error.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package resolve

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.resolve'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.resolve")
}

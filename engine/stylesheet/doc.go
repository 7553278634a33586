/*
Package stylesheet emits CSS reproducing the cascade of a set of styles.

For every typeface an @font-face rule is emitted, under a family name
synthesized from the style and the typeface. Family names never collide,
so the rendering engine cannot confuse two typefaces sharing a file name.
Descriptors are emitted only if they change something: size-adjust for
scales other than 100%, font-variation-settings for variable fonts, and the
vertical-metric overrides if set.

For every style a class rule lists the complete font stack, and for every
language with an override a :lang() rule lists the language's stack. The
rendering engine therefore never has to choose a fallback family by
itself.

We use douceur (https://github.com/aymerick/douceur) as the CSS model.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package stylesheet

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.css'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.css")
}

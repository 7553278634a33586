/*
Package option implements optional values.

Typeface settings are layered: a value set on a typeface wins over the
value inherited from its style. An unset value is expressed as None, a set
value as Some. Values are matched like this:

    w := tf.Weight.Match(option.Maybe[float64]{
         option.None: func(float64) float64 { return style.Weight },
         option.Some: func(x float64) float64 { return x },
    })

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package option

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.option'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.option")
}

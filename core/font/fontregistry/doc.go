/*
Package fontregistry manages a registry for loaded font binaries.

Typefaces are persisted without their binaries. When a configuration is
restored, typefaces re-derive their font handles by looking up the
registry with their file name.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'cascade.font'
func tracer() tracing.Trace {
	return tracing.Select("cascade.font")
}

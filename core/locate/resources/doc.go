/*
Package resources loads and validates font resources for the cascade engine.

Font binaries uploaded by users are untrusted. They are validated on a
worker goroutine with a bounded timeout before they are parsed a second
time by the caller and admitted to a style's registry. If a worker does
not answer in time, it is discarded and a fresh worker is created for the
next request.

As resource loading may be a time-consuming task, some functions in this
package will work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'cascade.resources'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.resources")
}

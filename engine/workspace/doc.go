/*
Package workspace holds the styles of an editing session.

A Workspace is the state-transition layer between a user interface and the
cascade engine. Every mutation of a style goes through the workspace, which
reports each save-worthy change to a listener, usually a persist.Autosaver.
Read functions (resolved settings, fallback stacks, stylesheets, coverage
reports and previews) are plain function calls on the current state.

A reset replaces all styles by a single empty style. While a reset runs, the
listener is told to suspend persistence.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package workspace

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.workspace'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.workspace")
}

/*
Package persist saves and restores styles.

Styles are serialized to a versioned JSON document

    { "metadata": { "version": 2 }, "data": { "styles": [ … ] } }

Font binaries and source URLs are never part of the document. On load,
typefaces re-derive their font handles by looking up a font registry with
their file names. Documents in the older, flat form (the data object without
the envelope, with provenance flags instead of a provenance name) are
normalized on load.

Overrides referencing a typeface missing from the restored registry are
dropped with a warning. This is never an error.

Stores persist documents under a key. There are stores for a directory of
JSON files and for an SQLite database. An Autosaver writes to a store after
a quiet period following save-worthy changes, and stays silent while an
application reset is running.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package persist

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cascade.persist'.
func tracer() tracing.Trace {
	return tracing.Select("cascade.persist")
}

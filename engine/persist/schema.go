package persist

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/npillmayer/typecascade/core"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func documentSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Validate checks a versioned document against the document schema.
func Validate(b []byte) error {
	sch, err := documentSchema()
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "document schema is broken")
	}
	result, err := sch.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return core.WrapError(err, core.EINVALID, "configuration is not valid JSON")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			tracer().Debugf("schema error: %s", e)
			msgs = append(msgs, e.String())
		}
		return core.Error(core.EINVALID, "configuration does not conform to schema: %s",
			strings.Join(msgs, "; "))
	}
	return nil
}

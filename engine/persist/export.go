package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/engine/style"
)

// ExportFileName names an export file like "name-18oct2026-0945pm.json".
func ExportFileName(name string, t time.Time) string {
	if name = strings.TrimSpace(name); name == "" {
		name = "typecascade"
	}
	return fmt.Sprintf("%s-%s.json", name, strings.ToLower(t.Format("02Jan2006-0304PM")))
}

// Export writes styles to a new file in directory dir and returns its path.
func Export(dir, name string, styles []*style.Style, t time.Time) (string, error) {
	b, err := Serialize(styles)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", core.WrapError(err, core.EINVALID, "cannot create export directory %s", dir)
	}
	path := filepath.Join(dir, ExportFileName(name, t))
	if err = writeFileAtomic(path, b); err != nil {
		return "", core.WrapError(err, core.EINVALID, "cannot write export %s", path)
	}
	tracer().Infof("exported %d styles to %s", len(styles), path)
	return path, nil
}

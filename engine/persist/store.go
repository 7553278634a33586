package persist

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/typecascade/core"
)

// Store persists documents under a key.
type Store interface {
	// Save stores doc under key, replacing an older document.
	Save(ctx context.Context, key string, doc []byte) error
	// Load returns the document stored under key, or a core.EMISSING error.
	Load(ctx context.Context, key string) ([]byte, error)
	// Delete removes the document stored under key, if any.
	Delete(ctx context.Context, key string) error
	Close() error
}

// FontStore keeps font binaries, keyed by their fingerprint
// (see font.Fingerprint). Documents refer to fonts by fingerprint only.
type FontStore interface {
	// SaveFont stores a font binary. Saving a known fingerprint is a no-op.
	SaveFont(ctx context.Context, fingerprint string, data []byte) error
	// LoadFont returns the font binary for fingerprint, or a core.EMISSING error.
	LoadFont(ctx context.Context, fingerprint string) ([]byte, error)
}

// checkFingerprint accepts the hex digests produced by font.Fingerprint.
func checkFingerprint(fp string) error {
	if len(fp) != 16 {
		return core.Error(core.EINVALID, "illegal font fingerprint %q", fp)
	}
	for _, c := range fp {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return core.Error(core.EINVALID, "illegal font fingerprint %q", fp)
		}
	}
	return nil
}

// DirStore is a Store keeping one JSON file per key in a directory. Font
// binaries live in sub-directory "fonts".
type DirStore struct {
	dir string
}

var _ Store = (*DirStore)(nil)
var _ FontStore = (*DirStore)(nil)

// NewDirStore creates a store in directory dir, creating it if necessary.
func NewDirStore(dir string) (*DirStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, core.Error(core.EINVALID, "store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create store directory %s", dir)
	}
	return &DirStore{dir: dir}, nil
}

func (ds *DirStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", core.Error(core.EINVALID, "illegal document key %q", key)
	}
	return filepath.Join(ds.dir, key+".json"), nil
}

func (ds *DirStore) Save(ctx context.Context, key string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := ds.path(key)
	if err != nil {
		return err
	}
	if err = writeFileAtomic(path, doc); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot save document %s", key)
	}
	tracer().Debugf("saved document %s (%d bytes)", key, len(doc))
	return nil
}

func (ds *DirStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := ds.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.WrapError(err, core.EMISSING, "no document %s", key)
	} else if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read document %s", key)
	}
	return b, nil
}

func (ds *DirStore) Delete(ctx context.Context, key string) error {
	path, err := ds.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return core.WrapError(err, core.EINVALID, "cannot delete document %s", key)
	}
	return nil
}

func (ds *DirStore) Close() error { return nil }

func (ds *DirStore) fontPath(fp string) (string, error) {
	if err := checkFingerprint(fp); err != nil {
		return "", err
	}
	return filepath.Join(ds.dir, "fonts", fp+".font"), nil
}

func (ds *DirStore) SaveFont(ctx context.Context, fp string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := ds.fontPath(fp)
	if err != nil {
		return err
	}
	if _, err = os.Stat(path); err == nil {
		return nil
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create font directory")
	}
	if err = writeFileAtomic(path, data); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot save font %s", fp)
	}
	tracer().Debugf("saved font %s (%d bytes)", fp, len(data))
	return nil
}

func (ds *DirStore) LoadFont(ctx context.Context, fp string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := ds.fontPath(fp)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.WrapError(err, core.EMISSING, "no font %s", fp)
	} else if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read font %s", fp)
	}
	return b, nil
}

// writeFileAtomic writes to a temporary file in the same directory, then
// renames it over the target.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	f, err := os.OpenFile(temp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(temp)
		return err
	}
	if err = os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
	}
	return err
}

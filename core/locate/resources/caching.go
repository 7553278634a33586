package resources

import (
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/typecascade/core"
)

// DataDirPath checks and possibly creates a folder in the user's config
// directory. The base directory is taken from `os.UserConfigDir()`, plus
// an application specific key, taken as `app-key` from the configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func DataDirPath(conf schuko.Configuration, subfolders ...string) (string, error) {
	appkey := core.ConfigString(conf, core.KeyAppKey, "")
	tracer().Debugf("config[%s] = %s", core.KeyAppKey, appkey)
	if appkey == "" {
		return "", core.Error(core.EINVALID, "application key is not set in configuration")
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", core.WrapError(err, core.EMISSING, "user configuration directory not set")
	}
	dir := filepath.Join(append([]string{base, appkey}, subfolders...)...)
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return "", core.WrapError(err, core.EINVALID,
				"user configuration path cannot be created: %s", dir)
		}
	}
	tracer().Infof("storing data in %s", dir)
	return dir, nil
}

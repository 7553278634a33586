package core

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/stretchr/testify/assert"
)

func TestConfigMillis(t *testing.T) {
	conf := testconfig.Conf{
		KeyValidationTimeout: "250",
		KeyAutosaveQuiet:     "soon",
	}
	assert.Equal(t, 250*time.Millisecond, ConfigMillis(conf, KeyValidationTimeout, DefaultValidationTimeout))
	assert.Equal(t, DefaultAutosaveQuiet, ConfigMillis(conf, KeyAutosaveQuiet, DefaultAutosaveQuiet))
	assert.Equal(t, DefaultValidationTimeout, ConfigMillis(nil, KeyValidationTimeout, DefaultValidationTimeout))
}

func TestConfigString(t *testing.T) {
	conf := testconfig.Conf{KeyAppKey: "cascade-test"}
	assert.Equal(t, "cascade-test", ConfigString(conf, KeyAppKey, "x"))
	assert.Equal(t, "x", ConfigString(conf, KeySampleSets, "x"))
}

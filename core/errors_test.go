package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	err := Error(ETIMEOUT, "validation of %s timed out", "x.ttf")
	assert.Equal(t, ETIMEOUT, Code(err))
	assert.Equal(t, "validation of x.ttf timed out", UserMessage(err))
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, "", UserMessage(nil))
}

func TestWrapKeepsChain(t *testing.T) {
	base := errors.New("bad magic")
	err := WrapError(base, EINVALID, "font file rejected")
	assert.True(t, errors.Is(err, base), "expected wrapped error to be found in chain")
	assert.Equal(t, EINVALID, Code(err))
	assert.Equal(t, EINTERNAL, Code(base))
	assert.Equal(t, "internal error", UserMessage(base))
}

func TestErrorWithCodeNil(t *testing.T) {
	err := ErrorWithCode(nil, EDUPLICATE)
	assert.Equal(t, EDUPLICATE, Code(err))
	assert.Equal(t, "duplicate", UserMessage(err))
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "[122] no style 'x'", Error(EMISSING, "no style '%s'", "x").Error())
	err := WrapError(errors.New("EOF"), EINVALID, "cannot parse document")
	assert.Equal(t, "[123] cannot parse document: EOF", err.Error())
	assert.Equal(t, "[125] boom", ErrorWithCode(errors.New("boom"), EINTERNAL).Error())
}

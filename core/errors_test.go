package core

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsSurviveWrapping(t *testing.T) {
	err := WrapError(fmt.Errorf("%w: glyph u1F600 in strike 3", ErrGlyphNotFoundInStrike),
		ECORRUPT, "font tree does not match glyph registry; %s", RegenerateHint)
	assert.True(t, errors.Is(err, ErrGlyphNotFoundInStrike))
	assert.False(t, errors.Is(err, ErrMissingBitmapStrikes))
	assert.Equal(t, ECORRUPT, Code(err))
	assert.Contains(t, UserMessage(err), "base-files")
}

func TestCodeOfPlainErrors(t *testing.T) {
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("boom")))
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "internal error", UserMessage(errors.New("boom")))
}

func TestErrorWithCodeWrapsNil(t *testing.T) {
	err := ErrorWithCode(nil, EMISSING)
	assert.Equal(t, EMISSING, Code(err))
	assert.Equal(t, "not found", UserMessage(err))
}

func TestFprintUserError(t *testing.T) {
	var buf bytes.Buffer
	FprintUserError(&buf, Error(EINVALID, "no assets in %s", "/tmp/x"))
	assert.Equal(t, "[123] no assets in /tmp/x\n", buf.String())
	buf.Reset()
	FprintUserError(&buf, errors.New("plain"))
	assert.Equal(t, "Error: plain\n", buf.String())
}

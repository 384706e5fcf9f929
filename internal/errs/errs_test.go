package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	cause := errors.New("boom")
	wrapped := New(Parse, "parse main.lua", cause)
	outer := fmt.Errorf("process file: %w", wrapped)

	assert.Equal(t, Parse, KindOf(outer))
	assert.Equal(t, Internal, KindOf(cause))
}

func TestError_Message(t *testing.T) {
	e := New(Schema, "validate export", errors.New("missing field"))
	assert.Equal(t, "schema: validate export: missing field", e.Error())

	bare := New(Internal, "", errors.New("oops"))
	assert.Equal(t, "internal: oops", bare.Error())
}

package apierr

import (
	"net/http"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind_Status(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected int
		name     string
	}{
		{kind: KindUnauthorized, expected: http.StatusUnauthorized, name: "Unauthorized"},
		{kind: KindBadRequest, expected: http.StatusBadRequest, name: "BadRequest"},
		{kind: KindInternal, expected: http.StatusInternalServerError, name: "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.Status())
			assert.Equal(t, tt.name, tt.kind.String())
		})
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("gocql: no hosts available in the pool")
	err := Internal(cause)

	assert.Equal(t, KindInternal, err.Kind)
	assert.Contains(t, err.Error(), "no hosts available in the pool")
	assert.True(t, errors.Is(err, cause))
}

func TestFrom(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
	})

	t.Run("traced_api_error", func(t *testing.T) {
		orig := BadRequest("both partnerId and courseId mandatory")
		err := errors.Trace(orig)

		got := From(err)
		assert.Same(t, orig, got)
		assert.Equal(t, KindBadRequest, KindOf(err))
	})

	t.Run("plain_error", func(t *testing.T) {
		got := From(errors.New("boom"))
		assert.Equal(t, KindInternal, got.Kind)
		assert.Contains(t, got.Error(), "boom")
	})
}

package mycontext

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFromHTTPRequest(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "courseshop")

	t.Run("With trace header", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodPost, "/api/checkout", nil)
		assert.NoError(t, err)
		r.Header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b12000100000/1;o=1")

		c := ContextFromHTTPRequest(r)
		assert.Equal(t, "projects/courseshop/traces/105445aa7843bc8bf206b12000100000", TraceFromContext(c))
	})

	t.Run("Without trace header", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodPost, "/api/checkout", nil)
		assert.NoError(t, err)

		assert.Equal(t, "", TraceFromContext(ContextFromHTTPRequest(r)))
	})

	t.Run("Plain context", func(t *testing.T) {
		assert.Equal(t, "", TraceFromContext(context.TODO()))
	})
}

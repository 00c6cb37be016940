package myhttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/mylog"
)

func TestWriter(t *testing.T) {
	c := context.TODO()
	writer := NewWriter(mylog.New("myhttp"))

	t.Run("Error body carries message without status decoration", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteError(c, response, 3, myerrors.NewInvalidInputError(fmt.Errorf("course ids missing")))

		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"code":3, "error":"course ids missing"}`, response.Body.String())
	})

	t.Run("Error with explicit status", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteErrorWithStatus(c, response, http.StatusBadRequest, 0, myerrors.NewNotFoundError(fmt.Errorf("courses not found")))

		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.JSONEq(t, `{"error":"courses not found"}`, response.Body.String())
	})

	t.Run("Text", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteText(c, response, http.StatusOK, "ok")

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "ok", response.Body.String())
	})
}

func TestOrigin(t *testing.T) {
	r, _ := http.NewRequest(http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, "http://localhost:5173", Origin(r, "http://localhost:5173"))

	r.Header.Set("Origin", "https://courses.example.com/")
	assert.Equal(t, "https://courses.example.com", Origin(r, "http://localhost:5173"))
}

func TestAllowAnyOrigin(t *testing.T) {
	response := httptest.NewRecorder()
	AllowAnyOrigin(response, "authorization", "content-type")

	assert.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, content-type", response.Header().Get("Access-Control-Allow-Headers"))
}

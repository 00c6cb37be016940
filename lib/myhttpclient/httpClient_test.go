package myhttpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@x.com"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u1"}`))
	}))
	defer server.Close()

	sender := New(time.Second)
	status, body, err := sender.Send(context.TODO(), http.MethodPost, server.URL+"/invite", map[string]string{
		"Authorization": "Bearer secret",
	}, []byte(`{"email":"a@x.com"}`))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":"u1"}`, string(body))
}

func TestSendUnreachable(t *testing.T) {
	sender := New(100 * time.Millisecond)
	_, _, err := sender.Send(context.TODO(), http.MethodGet, "http://127.0.0.1:1/nothing", nil, nil)
	assert.Error(t, err)
}

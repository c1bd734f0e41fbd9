package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedListener struct {
	ln  net.Listener
	err error
}

func (f fixedListener) Listen(_, _ string) (net.Listener, error) {
	return f.ln, f.err
}

func TestHTTPServer_Address(t *testing.T) {
	s := NewHTTPServer(http.NotFoundHandler(), ":8080")
	assert.Equal(t, ":8080", s.Address())
}

func TestHTTPServer_StartServesAndStops(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), ln.Addr().String())

	done := make(chan error, 1)
	go func() { done <- s.Start(fixedListener{ln: ln}) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-done)
}

func TestHTTPServer_StartListenError(t *testing.T) {
	s := NewHTTPServer(http.NotFoundHandler(), ":0")
	err := s.Start(fixedListener{err: errors.New("address in use")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

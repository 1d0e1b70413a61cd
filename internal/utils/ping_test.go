package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialAddress(t *testing.T) {
	for raw, want := range map[string]string{
		"https://auth.example.com":     "auth.example.com:443",
		"http://auth.example.com":      "auth.example.com:80",
		"http://localhost:8080/path":   "localhost:8080",
		"grpc://auth.example.com":      "auth.example.com:80",
		"https://[::1]:9443/authorize": "[::1]:9443",
	} {
		got, err := dialAddress(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := dialAddress("not a url")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	assert.NoError(t, Ping(context.Background(), "http://"+ln.Addr().String(), time.Second))

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	assert.Error(t, Ping(context.Background(), "http://"+addr, time.Second))
}

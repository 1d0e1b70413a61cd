package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// AuthorizerPingTimeout bounds a single Authorizer reachability probe
const AuthorizerPingTimeout = 1500 * time.Millisecond

var defaultPorts = map[string]string{"https": "443", "http": "80"}

// dialAddress resolves the host:port to probe for rawURL, filling in the scheme's default port
func dialAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", rawURL)
	}

	port := u.Port()
	if port == "" {
		if port = defaultPorts[u.Scheme]; port == "" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Ping opens and closes a TCP connection to the service behind rawURL
func Ping(ctx context.Context, rawURL string, timeout time.Duration) error {
	address, err := dialAddress(rawURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks that the Authorizer service accepts connections
func PingAuthorizer(ctx context.Context, authzURL string) error {
	return Ping(ctx, authzURL, AuthorizerPingTimeout)
}

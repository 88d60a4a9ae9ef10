package cache

import (
	"crypto/tls"
	"net"
)

func tlsConfigFor(address string) *tls.Config {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
}

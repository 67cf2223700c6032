package network

import (
	"crypto/tls"
	"net/http"
)

// newSecureTransport returns an http.Transport with a restricted TLS
// configuration. Callers reuse this instead of re-defining the TLS settings
// everywhere.
func newSecureTransport() *http.Transport {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS13,

		// CipherSuites applies only to TLS 1.0–1.2
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		},
	}

	return &http.Transport{
		TLSClientConfig:   tlsConfig,
		ForceAttemptHTTP2: true,
	}
}

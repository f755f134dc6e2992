package etcdregistry

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds TLS certificate configuration for mutual TLS with etcd.
type TLSConfig struct {
	// Enabled determines whether TLS is active. If false, all other fields are ignored.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// CertFile is the path to the client certificate file (PEM format)
	CertFile string `json:"cert_file" yaml:"cert_file"`

	// KeyFile is the path to the client private key file (PEM format)
	KeyFile string `json:"key_file" yaml:"key_file"`

	// CAFile is the path to the certificate authority file (PEM format)
	CAFile string `json:"ca_file" yaml:"ca_file"`
}

// clientTLSConfig builds a tls.Config from the certificate files. It returns nil
// when TLS is disabled.
func clientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if cfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file is required when TLS is enabled")
	}
	if cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file is required when TLS is enabled")
	}
	if cfg.CAFile == "" {
		return nil, fmt.Errorf("TLS CA file is required when TLS is enabled")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caData, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caData) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

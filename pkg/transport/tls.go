package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	// ALPNProtocol is negotiated on TLS connections carrying framed requests.
	ALPNProtocol = "wot-td/1"

	// DefaultPort is the default framed transport port.
	DefaultPort = 5683
)

// ErrALPNMismatch indicates the peer did not negotiate ALPNProtocol.
var ErrALPNMismatch = errors.New("ALPN protocol mismatch")

// ServerTLSConfig returns a TLS 1.3 server configuration presenting the given
// certificate and offering ALPNProtocol.
func ServerTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPNProtocol},
	}
}

// ClientTLSConfig returns a TLS 1.3 client configuration for serverName.
// With insecure set, the server certificate is not verified; this is meant
// for development devices with self-signed certificates.
func ClientTLSConfig(serverName string, insecure bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS13,
		ServerName:         serverName,
		NextProtos:         []string{ALPNProtocol},
		InsecureSkipVerify: insecure, //nolint:gosec
	}
}

// SelfSignedCertificate creates a P-256 certificate for host valid for one
// year. Development devices use it when no certificate is configured.
func SelfSignedCertificate(host string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return tls.Certificate{}, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: host},
		DNSNames:              []string{host},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, nil
}

// verifyConnection checks the negotiated TLS parameters.
func verifyConnection(state tls.ConnectionState) error {
	if state.Version != tls.VersionTLS13 {
		return fmt.Errorf("TLS 1.3 required, got version 0x%04x", state.Version)
	}
	if state.NegotiatedProtocol != ALPNProtocol {
		return fmt.Errorf("%w: expected %q, got %q", ErrALPNMismatch, ALPNProtocol, state.NegotiatedProtocol)
	}
	return nil
}

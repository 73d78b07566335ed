package transport

import (
	"bytes"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"
)

// TLSOptions selects how the box certificate is verified.
type TLSOptions struct {
	// CAFile is a PEM bundle with the vendor root certificates.
	CAFile string
	// CAPEM is an in-memory PEM bundle, appended to CAFile's content.
	CAPEM []byte
	// Fingerprint is the SHA-256 of the box leaf certificate.
	Fingerprint []byte
	// InsecureSkipVerify disables verification entirely.
	InsecureSkipVerify bool
	// ServerName overrides the name checked against the certificate.
	ServerName string
}

func buildTLSConfig(opts TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: opts.ServerName,
	}

	if opts.InsecureSkipVerify {
		cfg.InsecureSkipVerify = true
		return cfg, nil
	}

	if len(opts.Fingerprint) > 0 {
		if len(opts.Fingerprint) != sha256.Size {
			return nil, fmt.Errorf("certificate fingerprint must be %d bytes, got %d", sha256.Size, len(opts.Fingerprint))
		}
		want := append([]byte(nil), opts.Fingerprint...)
		// Chain verification is replaced by the pin.
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return fmt.Errorf("box presented no certificate")
			}
			got := sha256.Sum256(rawCerts[0])
			if !bytes.Equal(got[:], want) {
				return fmt.Errorf("certificate fingerprint mismatch: got %s", hex.EncodeToString(got[:]))
			}
			return nil
		}
		return cfg, nil
	}

	pemData := append([]byte(nil), opts.CAPEM...)
	if opts.CAFile != "" {
		fileData, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pemData = append(pemData, '\n')
		pemData = append(pemData, fileData...)
	}
	if len(bytes.TrimSpace(pemData)) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pemData) {
			return nil, fmt.Errorf("no certificate found in CA bundle")
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}

// Fingerprint returns the SHA-256 fingerprint of a DER certificate.
func Fingerprint(der []byte) []byte {
	sum := sha256.Sum256(der)
	return sum[:]
}

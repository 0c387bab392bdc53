// Package crypto derives the TLS certificates used for mutually
// authenticated connections. With a shared key, both ends derive the
// same CA deterministically and verify each other against it, so no
// certificate material ever has to be exchanged beforehand.
package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// GenerateCertificates derives a CA pool and a fresh leaf certificate
// from seed. An empty seed yields a random, single-use identity.
func GenerateCertificates(seed string) (*x509.CertPool, tls.Certificate, error) {
	var caCert *x509.CertPool
	var cert tls.Certificate
	var err error

	// if seed is unspecified we use a random one
	if seed == "" {
		seed, err = GenerateRandomString(32)
		if err != nil {
			return caCert, cert, fmt.Errorf("GenerateRandomString(32): %s", err)
		}
	}

	caKeyPEM, caCertPEM, err := generateKeyPair(seed)
	if err != nil {
		return caCert, cert, fmt.Errorf("generateKeyPair(seed): %s", err)
	}

	caCert = x509.NewCertPool()
	caCert.AppendCertsFromPEM(caCertPEM)

	cert, err = generateCertificate(caCertPEM, caKeyPEM)
	if err != nil {
		return caCert, cert, fmt.Errorf("generateCertificate(cert, key): %s", err)
	}

	return caCert, cert, nil
}

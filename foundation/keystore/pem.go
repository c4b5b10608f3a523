package keystore

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// toPublicPEM derives the public key PEM block from a PKCS1 or PKCS8
// encoded RSA private key.
func toPublicPEM(privatePEM string) (string, error) {
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return "", errors.New("no pem block found")
	}

	var privateKey *rsa.PrivateKey

	switch block.Type {
	case "RSA PRIVATE KEY":
		pk, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("parsing pkcs1 private key: %w", err)
		}
		privateKey = pk

	case "PRIVATE KEY":
		pk, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("parsing pkcs8 private key: %w", err)
		}

		rsaKey, ok := pk.(*rsa.PrivateKey)
		if !ok {
			return "", errors.New("private key is not rsa")
		}
		privateKey = rsaKey

	default:
		return "", fmt.Errorf("unsupported pem block type %q", block.Type)
	}

	asn1Bytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return "", fmt.Errorf("marshaling public key: %w", err)
	}

	publicBlock := pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: asn1Bytes,
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, &publicBlock); err != nil {
		return "", fmt.Errorf("encoding public pem: %w", err)
	}

	return buf.String(), nil
}

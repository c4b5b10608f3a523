// Package keystore implements the auth.KeyLookup interface. This implements
// an in-memory keystore for JWT support.
package keystore

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// key represents the PEM encoded private and public key pair for a kid.
type key struct {
	privatePEM string
	publicPEM  string
}

// KeyStore represents an in memory store implementation of the
// KeyLookup interface for use with the auth package.
type KeyStore struct {
	mu    sync.RWMutex
	store map[string]key
}

// New constructs an empty KeyStore ready for use.
func New() *KeyStore {
	return &KeyStore{
		store: make(map[string]key),
	}
}

// PrivateKey searches the key store for a given kid and returns the private
// key in PEM format.
func (ks *KeyStore) PrivateKey(kid string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	k, found := ks.store[kid]
	if !found {
		return "", fmt.Errorf("kid %q lookup failed", kid)
	}

	return k.privatePEM, nil
}

// PublicKey searches the key store for a given kid and returns the public
// key in PEM format.
func (ks *KeyStore) PublicKey(kid string) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	k, found := ks.store[kid]
	if !found {
		return "", fmt.Errorf("kid %q lookup failed", kid)
	}

	return k.publicPEM, nil
}

// LoadByFileSystem loads a set of private key pem files into the store. The
// kid is the file name without the extension and the public side is derived
// for lookups. It returns the kids that were loaded.
func (ks *KeyStore) LoadByFileSystem(fsys fs.FS) ([]string, error) {
	var kids []string

	fn := func(fileName string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if dirEntry.IsDir() {
			return nil
		}

		if path.Ext(fileName) != ".pem" {
			return nil
		}

		file, err := fsys.Open(fileName)
		if err != nil {
			return fmt.Errorf("opening key file: %w", err)
		}
		defer file.Close()

		pem, err := io.ReadAll(io.LimitReader(file, 1024*1024))
		if err != nil {
			return fmt.Errorf("reading pem file: %w", err)
		}

		kid := strings.TrimSuffix(path.Base(fileName), ".pem")

		if err := ks.addPEM(kid, string(pem)); err != nil {
			return fmt.Errorf("adding kid %q: %w", kid, err)
		}

		kids = append(kids, kid)

		return nil
	}

	if err := fs.WalkDir(fsys, ".", fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return kids, nil
}

func (ks *KeyStore) addPEM(kid string, privatePEM string) error {
	publicPEM, err := toPublicPEM(privatePEM)
	if err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.store[kid] = key{
		privatePEM: privatePEM,
		publicPEM:  publicPEM,
	}

	return nil
}

// Package keystore stores API keys encrypted at rest.
package keystore

import (
	"os"
	"path/filepath"
)

// Keystore is the storage contract the CLI programs against. The file-backed
// implementation below is the only one shipped; tests substitute their own.
type Keystore interface {
	// Set stores a value under a name, overwriting any previous value.
	Set(name, value string) error
	// Get returns the value stored under a name.
	Get(name string) (string, error)
	// Delete removes the value stored under a name.
	Delete(name string) error
	// List returns the stored names, never the values.
	List() ([]string, error)
}

// ErrKeyNotFound reports a Get or Delete against a name with no stored value.
type ErrKeyNotFound struct {
	Name string
}

func (e *ErrKeyNotFound) Error() string {
	return "key not found: " + e.Name
}

// DefaultKeystorePath is ~/.tessera/keys.enc, falling back to the working
// directory when no home directory can be determined.
func DefaultKeystorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "keys.enc"
	}
	return filepath.Join(home, ".tessera", "keys.enc")
}

// NewKeystore opens the encrypted file-backed keystore at the default path.
func NewKeystore() (Keystore, error) {
	return NewFileKeystore(DefaultKeystorePath())
}

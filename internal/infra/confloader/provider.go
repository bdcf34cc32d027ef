// Package confloader provides configuration loading mechanism.
package confloader

import "errors"

// ErrReadBytesNotSupported is returned when a byte read is requested
// from the in-memory provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form, use Read")

// mapProvider feeds an in-memory map of dotted koanf paths (for
// example "target.base_url") into the loader. CLI flag overrides are
// merged through it, on top of file and environment sources.
type mapProvider map[string]any

// ReadBytes is unsupported; the provider has no serialized form.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map as loaded.
func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

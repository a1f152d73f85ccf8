//go:build !linux

package mmio

import "errors"

// Open is not available on non-Linux platforms.
func Open(path string, base, span uintptr) (*Mapping, error) {
	return nil, &MappingError{Op: "open", Path: path, Base: base, Span: span, Err: errors.ErrUnsupported}
}

//go:build linux

package mmio

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps span bytes of physical memory starting at base through the
// memory device at path (normally DefaultDevice).
//
// base need not be page aligned: the enclosing pages are mapped and the
// window starts at base. Failures are returned as *MappingError.
func Open(path string, base, span uintptr) (*Mapping, error) {
	if span == 0 {
		return nil, &MappingError{Op: "mmap", Path: path, Base: base, Span: span, Err: ErrInvalidSpan}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, &MappingError{Op: "open", Path: path, Base: base, Span: span, Err: err}
	}

	page := uintptr(os.Getpagesize())
	pageOff := base % page
	region, err := unix.Mmap(
		int(f.Fd()),
		int64(base-pageOff),
		int(span+pageOff),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		f.Close()
		return nil, &MappingError{Op: "mmap", Path: path, Base: base, Span: span, Err: err}
	}

	return &Mapping{
		base:   base,
		span:   span,
		window: region[pageOff : pageOff+span],
		release: func() error {
			var errs []error
			if err := unix.Munmap(region); err != nil {
				errs = append(errs, fmt.Errorf("munmap: %w", err))
			}
			if err := f.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close: %w", err))
			}
			if len(errs) > 0 {
				return &MappingError{Op: "close", Path: path, Base: base, Span: span, Err: errors.Join(errs...)}
			}
			return nil
		},
	}, nil
}

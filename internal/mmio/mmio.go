// Package mmio maps a range of physical memory into the process and exposes
// typed, offset-based access to it.
//
// Offsets are validated once when a handle is created (At, Register32).
// Reads and writes through a handle are unchecked and must not happen after
// the owning Mapping is closed.
package mmio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// DefaultDevice is the character device exposing physical memory on Linux.
const DefaultDevice = "/dev/mem"

var (
	// ErrClosed is returned when a handle is requested from a closed Mapping.
	ErrClosed = errors.New("mmio: mapping closed")

	// ErrInvalidSpan is returned when a zero-length window is requested.
	ErrInvalidSpan = errors.New("mmio: span must be greater than zero")

	// ErrOutOfRange is returned when an access would fall outside [0, span).
	ErrOutOfRange = errors.New("mmio: access out of range")

	// ErrMisaligned is returned when an offset is not aligned to the access size.
	ErrMisaligned = errors.New("mmio: misaligned access")
)

// MappingError reports a failure to establish or release a physical mapping.
// Mapping failures are fatal: the device cannot be used without one.
type MappingError struct {
	Op   string // "open", "mmap", "munmap", "close"
	Path string
	Base uintptr
	Span uintptr
	Err  error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mmio: %s %s [%#x, +%#x): %v", e.Op, e.Path, e.Base, e.Span, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// Mapping is an exclusive window of span bytes aliasing physical memory
// starting at base.
type Mapping struct {
	base   uintptr
	span   uintptr
	window []byte

	// release undoes the mapping. It is nil once the mapping has been closed.
	release func() error
}

// NewMemory returns a heap-backed Mapping with the same access rules as a
// physical one. The window is word aligned.
func NewMemory(base, span uintptr) *Mapping {
	words := make([]uint64, (span+7)/8)
	var window []byte
	if len(words) > 0 {
		window = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), span)
	}
	return &Mapping{
		base:    base,
		span:    span,
		window:  window,
		release: func() error { return nil },
	}
}

// Base returns the physical base address of the window.
func (m *Mapping) Base() uintptr { return m.base }

// Span returns the length of the window in bytes.
func (m *Mapping) Span() uintptr { return m.span }

// Closed reports whether Close has been called.
func (m *Mapping) Closed() bool { return m.release == nil }

// Close releases the mapping. Only the first call does any work; later
// calls return nil.
func (m *Mapping) Close() error {
	if m.release == nil {
		return nil
	}
	release := m.release
	m.release = nil
	m.window = nil
	return release()
}

// With opens a mapping, passes it to fn and closes it on every return path.
// fn's error takes precedence over the close error.
func With(path string, base, span uintptr, fn func(*Mapping) error) (err error) {
	m, err := Open(path, base, span)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(m)
}

// Word is the set of integral types a register may be read as.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// At returns a pointer to the T stored at offset within the window.
// It fails if offset+sizeof(T) exceeds the span, if offset is not aligned
// to sizeof(T), or if the mapping is closed.
func At[T Word](m *Mapping, offset uintptr) (*T, error) {
	if m.Closed() {
		return nil, ErrClosed
	}
	var zero T
	size := unsafe.Sizeof(zero)
	if offset > m.span || size > m.span-offset {
		return nil, fmt.Errorf("%w: offset %#x size %d span %#x", ErrOutOfRange, offset, size, m.span)
	}
	if offset%size != 0 {
		return nil, fmt.Errorf("%w: offset %#x size %d", ErrMisaligned, offset, size)
	}
	return (*T)(unsafe.Pointer(&m.window[offset])), nil
}

// Reg32 is a validated handle to a 32-bit register.
// Every Load and Store is a real memory access.
type Reg32 struct {
	offset uintptr
	p      *uint32
}

// Register32 returns a handle to the 32-bit register at offset.
func (m *Mapping) Register32(offset uintptr) (Reg32, error) {
	p, err := At[uint32](m, offset)
	if err != nil {
		return Reg32{}, err
	}
	return Reg32{offset: offset, p: p}, nil
}

// Offset returns the register's byte offset within its window.
func (r Reg32) Offset() uintptr { return r.offset }

// Load reads the register.
func (r Reg32) Load() uint32 { return atomic.LoadUint32(r.p) }

// Store writes v to the register.
func (r Reg32) Store(v uint32) { atomic.StoreUint32(r.p, v) }

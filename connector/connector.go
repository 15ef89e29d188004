// Package connector adapts the lime dump reader to the generic physical
// memory contract a memory-introspection framework consumes: open a target,
// read physical ranges, query the top of the address space, close.
//
// The adapter performs no logic of its own; every resolver error passes
// through unchanged so the host can report exactly which physical address
// was unreadable.
package connector

import (
	"go.uber.org/zap"

	"limeconn/lime"
)

// Handle is the provider side of the host framework's physical-memory
// contract. Implementations must support concurrent Read calls.
type Handle interface {
	// Read fills p with physical memory starting at addr.
	Read(addr uint64, p []byte) error
	// MaxAddress returns the highest mapped physical address.
	MaxAddress() uint64
	// Close releases the underlying dump.
	Close() error
}

// Provider opens dump targets on behalf of the host framework.
type Provider interface {
	Open(path string) (Handle, error)
}

// Lime is the LiME dump provider.
type Lime struct {
	Log *zap.Logger // optional; nil disables logging
}

// Open implements Provider.
func (l Lime) Open(path string) (Handle, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	d, err := lime.Open(path, lime.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &limeHandle{dump: d}, nil
}

type limeHandle struct {
	dump *lime.Dump
}

func (h *limeHandle) Read(addr uint64, p []byte) error {
	return h.dump.Read(addr, p)
}

func (h *limeHandle) MaxAddress() uint64 {
	return h.dump.MaxAddr()
}

func (h *limeHandle) Close() error {
	return h.dump.Close()
}

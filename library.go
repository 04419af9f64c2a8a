// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"github.com/db47h/muxbits/decoder"
	"github.com/pkg/errors"
)

// MuxID identifies a multiplexer graph in a Library.
//
type MuxID int

type muxKey struct {
	model string
	size  int
}

type mux struct {
	model *Model
	size  int
	graph *Graph
}

// A Library maps (circuit model, datapath size) pairs to multiplexer graphs.
// Multiplexers sharing a model and size share a single graph.
//
// A Library is built once with Add, then treated as read-only: concurrent
// lookups are safe as long as no Add runs concurrently.
//
type Library struct {
	muxes  []mux
	lookup map[muxKey]MuxID
}

// NewLibrary returns an empty Library.
//
func NewLibrary() *Library {
	return &Library{lookup: make(map[muxKey]MuxID)}
}

// Add returns the MuxID of the multiplexer implementing a datapath of the given
// size with model m, building its graph if it is not yet in the library.
//
func (l *Library) Add(m *Model, size int) (MuxID, error) {
	if m == nil {
		return -1, errors.New("nil circuit model")
	}
	k := muxKey{m.Name, size}
	if id, ok := l.lookup[k]; ok {
		if l.muxes[id].model != m {
			return -1, errors.Errorf("circuit model name %q used by two different models", m.Name)
		}
		return id, nil
	}
	g, err := NewGraph(m, size)
	if err != nil {
		return -1, errors.Wrapf(err, "build %d-input multiplexer", size)
	}
	id := MuxID(len(l.muxes))
	l.muxes = append(l.muxes, mux{model: m, size: size, graph: g})
	l.lookup[k] = id
	return id, nil
}

// Lookup returns the MuxID for model m and datapath size. A miss means the
// library does not match the device and wraps ErrNotFound. A graph registered
// under the same name by a different *Model wraps ErrModelMismatch.
//
func (l *Library) Lookup(m *Model, size int) (MuxID, error) {
	if id, ok := l.lookup[muxKey{m.Name, size}]; ok {
		if l.muxes[id].model != m {
			return -1, errors.Wrapf(ErrModelMismatch, "circuit model %q, size %d", m.Name, size)
		}
		return id, nil
	}
	return -1, errors.Wrapf(ErrNotFound, "circuit model %q, size %d", m.Name, size)
}

// Graph returns the graph of multiplexer id.
//
func (l *Library) Graph(id MuxID) *Graph { return l.muxes[id].graph }

// Model returns the circuit model of multiplexer id.
//
func (l *Library) Model(id MuxID) *Model { return l.muxes[id].model }

// Size returns the datapath size of multiplexer id.
//
func (l *Library) Size(id MuxID) int { return l.muxes[id].size }

// Len returns the number of distinct multiplexers in the library.
//
func (l *Library) Len() int { return len(l.muxes) }

// Muxes returns all multiplexer IDs in insertion order.
//
func (l *Library) Muxes() []MuxID {
	ids := make([]MuxID, len(l.muxes))
	for i := range ids {
		ids[i] = MuxID(i)
	}
	return ids
}

// MaxSize returns the largest datapath size instantiated for model m, or 0 if
// m is not used.
//
func (l *Library) MaxSize(m *Model) int {
	sz := 0
	for _, mx := range l.muxes {
		if mx.model.Name == m.Name && mx.size > sz {
			sz = mx.size
		}
	}
	return sz
}

// Decoders returns the local decoders needed by the multiplexers of l that use
// a local encoder: one per distinct level size greater than one.
//
func (l *Library) Decoders() *decoder.Library {
	dl := decoder.NewLibrary()
	for _, mx := range l.muxes {
		if !mx.model.LocalEncoder {
			continue
		}
		for lvl := 0; lvl < mx.graph.NumLevels(); lvl++ {
			if n := len(mx.graph.MemoriesAtLevel(lvl)); n > 1 {
				dl.Add(decoder.AddrSize(n), n, true)
			}
		}
	}
	return dl
}

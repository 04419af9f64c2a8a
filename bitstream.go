// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"github.com/db47h/muxbits/decoder"
	"github.com/pkg/errors"
)

// DecodeMemoryBits returns the memory values routing input in to output out,
// indexed by MemID. Every edge reached from the input is made conducting: its
// memory is set, or cleared if the edge uses the inverted memory. All other
// memories are cleared.
//
func (g *Graph) DecodeMemoryBits(in InputID, out OutputID) ([]bool, error) {
	if !g.validInput(in) {
		return nil, errors.Errorf("invalid input %d for a %d-input graph", in, len(g.inputs))
	}
	if !g.validOutput(out) {
		return nil, errors.Errorf("invalid output %d for a %d-output graph", out, len(g.outputs))
	}
	bits := make([]bool, len(g.memLevel))
	visited := make([]bool, len(g.nodes))
	dst := g.outputs[out]
	src := g.inputs[in]
	queue := []NodeID{src}
	visited[src] = true
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == dst {
			return bits, nil
		}
		for _, e := range g.outEdges[n] {
			ed := &g.edges[e]
			bits[ed.mem] = !ed.inv
			if !visited[ed.dst] {
				visited[ed.dst] = true
				queue = append(queue, ed.dst)
			}
		}
	}
	return nil, errors.Errorf("output %d not reachable from input %d", out, in)
}

// Decode returns the raw bitstream routing input to the single output of g.
//
func Decode(g *Graph, input InputID) ([]bool, error) {
	if len(g.outputs) != 1 {
		return nil, errors.Wrapf(ErrOutputs, "graph has %d outputs", len(g.outputs))
	}
	return g.DecodeMemoryBits(input, 0)
}

// EncodeLocal re-expresses a raw bitstream for multiplexers using local
// decoders. Levels are encoded in order: a level with a single memory keeps its
// raw bit, any other level is replaced by the binary address, MSB first, of its
// only set memory (address 0 if none is set).
//
func EncodeLocal(g *Graph, raw []bool) ([]bool, error) {
	if len(raw) != len(g.memLevel) {
		return nil, errors.Wrapf(ErrBitstreamSize, "got %d bits for %d memories", len(raw), len(g.memLevel))
	}
	var out []bool
	for l, mems := range g.levels {
		if len(mems) == 1 {
			out = append(out, raw[mems[0]])
			continue
		}
		addr := -1
		for i, m := range mems {
			if !raw[m] {
				continue
			}
			if addr >= 0 {
				return nil, errors.Wrapf(ErrLevelConflict, "level %d: memories %d and %d", l, mems[addr], m)
			}
			addr = i
		}
		if addr < 0 {
			addr = 0
		}
		code, err := decoder.ToBinary(addr, decoder.AddrSize(len(mems)))
		if err != nil {
			return nil, errors.Wrapf(err, "level %d", l)
		}
		out = append(out, code...)
	}
	return out, nil
}

// DecodeLocal is the inverse of EncodeLocal: it expands the per-level addresses
// of an encoded bitstream into one-hot memory values.
//
func DecodeLocal(g *Graph, encoded []bool) ([]bool, error) {
	raw := make([]bool, len(g.memLevel))
	pos := 0
	for l, mems := range g.levels {
		if len(mems) == 1 {
			if pos >= len(encoded) {
				return nil, errors.Wrapf(ErrBitstreamSize, "level %d: bitstream too short", l)
			}
			raw[mems[0]] = encoded[pos]
			pos++
			continue
		}
		d := decoder.New(len(mems), false)
		if pos+d.AddrSize > len(encoded) {
			return nil, errors.Wrapf(ErrBitstreamSize, "level %d: bitstream too short", l)
		}
		data, err := d.Decode(encoded[pos : pos+d.AddrSize])
		if err != nil {
			return nil, errors.Wrapf(err, "level %d", l)
		}
		for i, m := range mems {
			raw[m] = data[i]
		}
		pos += d.AddrSize
	}
	if pos != len(encoded) {
		return nil, errors.Wrapf(ErrBitstreamSize, "%d trailing bits", len(encoded)-pos)
	}
	return raw, nil
}

// ConfigBits returns the number of configuration bits Build returns for a
// multiplexer of model m implemented by g.
//
func ConfigBits(m *Model, g *Graph) int {
	if !m.LocalEncoder {
		return len(g.memLevel)
	}
	n := 0
	for _, mems := range g.levels {
		if len(mems) == 1 {
			n++
		} else {
			n += decoder.AddrSize(len(mems))
		}
	}
	return n
}

// Build returns the configuration bits of a multiplexer of model m and datapath
// size routing path p, using the graph registered in lib.
//
// Only CMOS multiplexers are supported; other technologies return a *TechError.
//
func Build(m *Model, lib *Library, size int, p PathID) ([]bool, error) {
	if m == nil {
		return nil, errors.New("nil circuit model")
	}
	if lib == nil {
		return nil, errors.New("nil multiplexer library")
	}
	switch m.Tech {
	case CMOS:
		return buildCMOS(m, lib, size, p)
	case ReRAM:
		return nil, &TechError{Model: m.Name, Tech: m.Tech, Unsupported: true}
	}
	return nil, &TechError{Model: m.Name, Tech: m.Tech}
}

func buildCMOS(m *Model, lib *Library, size int, p PathID) ([]bool, error) {
	// graphs are indexed by datapath size, but implement ImplementedSize inputs.
	id, err := lib.Lookup(m, size)
	if err != nil {
		return nil, err
	}
	g := lib.Graph(id)

	in, err := ResolvePath(m, size, p)
	if err != nil {
		return nil, err
	}
	if int(in) >= g.NumInputs() {
		return nil, errors.Wrapf(ErrPathRange, "input %d for a %d-input graph", in, g.NumInputs())
	}

	raw, err := Decode(g, in)
	if err != nil {
		return nil, err
	}
	if !m.LocalEncoder {
		return raw, nil
	}
	return EncodeLocal(g, raw)
}

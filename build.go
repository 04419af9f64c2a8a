// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"github.com/db47h/muxbits/decoder"
	"github.com/pkg/errors"
)

// NewGraph builds the switch graph of a multiplexer with the given datapath
// size, implemented according to model m.
//
// Inputs are grouped bottom-up: at each level, the nodes left to route are
// split in consecutive branches of the model's branch size. A trailing single
// node is forwarded to the next level as is, so that the last inputs of a
// multiplexer may bypass the first levels. When the model has a constant
// input, it is the last input of the graph.
//
func NewGraph(m *Model, size int) (*Graph, error) {
	n := ImplementedSize(m, size)
	if n < 2 {
		return nil, errors.Errorf("circuit model %q: multiplexer needs at least 2 implemented inputs, got %d", m.Name, n)
	}
	switch m.Structure {
	case Tree:
		return buildMultiLevel(n, 2)
	case OneLevel:
		return buildMultiLevel(n, n)
	case MultiLevel:
		if m.Levels < 1 {
			return nil, errors.Errorf("circuit model %q: invalid number of levels %d", m.Name, m.Levels)
		}
		return buildMultiLevel(n, branchSize(n, m.Levels))
	}
	return nil, errors.Errorf("circuit model %q: invalid structure %v", m.Name, m.Structure)
}

// MustGraph is like NewGraph but panics on error. It simplifies the
// initialization of static graphs.
//
func MustGraph(m *Model, size int) *Graph {
	g, err := NewGraph(m, size)
	if err != nil {
		panic(err)
	}
	return g
}

func ceilLog2(n int) int {
	if n < 2 {
		return 0
	}
	return decoder.AddrSize(n)
}

// branchSize returns the smallest branch size b such that levels of b:1
// branches can route n inputs. levels is clamped to the depth of a binary
// tree.
//
func branchSize(n, levels int) int {
	if depth := ceilLog2(n); levels > depth {
		levels = depth
	}
	if levels <= 1 {
		return n
	}
	b := 2
	for {
		p := 1
		for i := 0; i < levels && p < n; i++ {
			p *= b
		}
		if p >= n {
			return b
		}
		b++
	}
}

// levelMemories creates the memories of a level whose widest branch has width
// inputs. A 2-input level needs a single memory, wider levels are one-hot.
//
func levelMemories(b *GraphBuilder, level, width int) []MemID {
	if width == 2 {
		return []MemID{b.AddMemory(level)}
	}
	mems := make([]MemID, width)
	for i := range mems {
		mems[i] = b.AddMemory(level)
	}
	return mems
}

// addBranch connects srcs to dst. With a single memory, the first source
// conducts when the memory is set and the second when it is cleared.
//
func addBranch(b *GraphBuilder, srcs []NodeID, dst NodeID, mems []MemID) {
	if len(mems) == 1 {
		b.AddEdge(srcs[0], dst, mems[0], false)
		b.AddEdge(srcs[1], dst, mems[0], true)
		return
	}
	for i, s := range srcs {
		b.AddEdge(s, dst, mems[i], false)
	}
}

func buildMultiLevel(n, bsize int) (*Graph, error) {
	b := NewGraphBuilder()
	cur := b.AddInputs(n)
	for level := 0; len(cur) > 1; level++ {
		width := bsize
		if len(cur) < width {
			width = len(cur)
		}
		mems := levelMemories(b, level, width)
		last := len(cur) <= bsize
		next := make([]NodeID, 0, (len(cur)+bsize-1)/bsize)
		for i := 0; i < len(cur); i += bsize {
			end := i + bsize
			if end > len(cur) {
				end = len(cur)
			}
			if end-i == 1 {
				next = append(next, cur[i])
				continue
			}
			var dst NodeID
			if last {
				dst = b.AddOutput()
			} else {
				dst = b.AddNode()
			}
			addBranch(b, cur[i:end], dst, mems)
			next = append(next, dst)
		}
		cur = next
	}
	return b.Build()
}

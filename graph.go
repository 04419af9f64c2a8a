// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"sort"

	"github.com/pkg/errors"
)

// Identifiers of graph elements. They are plain indices into the graph's
// tables and are only meaningful for the graph that issued them.
//
type (
	NodeID   int
	EdgeID   int
	MemID    int
	InputID  int
	OutputID int
)

// NodeKind tells whether a node is a multiplexer input, output, or an internal
// node between two switch levels.
//
type NodeKind int

// Node kinds.
//
const (
	KindInput NodeKind = iota
	KindInternal
	KindOutput
)

type node struct {
	kind  NodeKind
	index int // InputID or OutputID, -1 for internal nodes
	level int
}

type edge struct {
	src, dst NodeID
	mem      MemID
	inv      bool
}

type nodePair struct {
	src, dst NodeID
}

// A Graph is the leveled switch graph of a multiplexer: inputs reach the
// output through edges (pass gates), each controlled by one configuration
// memory. Memories are partitioned into levels, level 0 being the stage fed by
// the datapath inputs.
//
// A Graph is immutable and safe for concurrent use.
//
type Graph struct {
	nodes    []node
	edges    []edge
	outEdges [][]EdgeID
	inEdges  [][]EdgeID
	inputs   []NodeID
	outputs  []NodeID
	memLevel []int
	levels   [][]MemID
	pairs    map[nodePair]EdgeID
}

// NumNodes returns the node count, including inputs and outputs.
//
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count.
//
func (g *Graph) NumEdges() int { return len(g.edges) }

// NumInputs returns the number of implemented inputs.
//
func (g *Graph) NumInputs() int { return len(g.inputs) }

// NumOutputs returns the number of outputs.
//
func (g *Graph) NumOutputs() int { return len(g.outputs) }

// NumMemories returns the number of configuration memories.
//
func (g *Graph) NumMemories() int { return len(g.memLevel) }

// NumLevels returns the number of switch levels.
//
func (g *Graph) NumLevels() int { return len(g.levels) }

// Input returns the node of input i.
//
func (g *Graph) Input(i InputID) NodeID { return g.inputs[i] }

// Output returns the node of output o.
//
func (g *Graph) Output(o OutputID) NodeID { return g.outputs[o] }

func (g *Graph) validInput(i InputID) bool   { return i >= 0 && int(i) < len(g.inputs) }
func (g *Graph) validOutput(o OutputID) bool { return o >= 0 && int(o) < len(g.outputs) }

// Kind returns the kind of node n.
//
func (g *Graph) Kind(n NodeID) NodeKind { return g.nodes[n].kind }

// Level returns the level of node n: the level of the memory controlling its
// out-edge, or NumLevels() for outputs.
//
func (g *Graph) Level(n NodeID) int { return g.nodes[n].level }

// OutEdges returns the edges leaving node n. The returned slice must not be
// modified.
//
func (g *Graph) OutEdges(n NodeID) []EdgeID { return g.outEdges[n] }

// InEdges returns the edges entering node n. The returned slice must not be
// modified.
//
func (g *Graph) InEdges(n NodeID) []EdgeID { return g.inEdges[n] }

// EdgeSource returns the source node of edge e.
//
func (g *Graph) EdgeSource(e EdgeID) NodeID { return g.edges[e].src }

// EdgeSink returns the sink node of edge e.
//
func (g *Graph) EdgeSink(e EdgeID) NodeID { return g.edges[e].dst }

// EdgeMem returns the memory controlling edge e.
//
func (g *Graph) EdgeMem(e EdgeID) MemID { return g.edges[e].mem }

// EdgeInvMem returns true if edge e conducts when its memory is cleared.
//
func (g *Graph) EdgeInvMem(e EdgeID) bool { return g.edges[e].inv }

// FindEdges returns the edges from src to dst. Graphs never have more than one.
//
func (g *Graph) FindEdges(src, dst NodeID) []EdgeID {
	if e, ok := g.pairs[nodePair{src, dst}]; ok {
		return []EdgeID{e}
	}
	return nil
}

// MemoryLevel returns the level of memory m.
//
func (g *Graph) MemoryLevel(m MemID) int { return g.memLevel[m] }

// MemoriesAtLevel returns the memories of level l, in branch position order.
// The returned slice must not be modified.
//
func (g *Graph) MemoriesAtLevel(l int) []MemID { return g.levels[l] }

// BranchSizes returns the distinct fan-in sizes of the graph's branches in
// increasing order.
//
func (g *Graph) BranchSizes() []int {
	seen := make(map[int]bool)
	var sizes []int
	for n := range g.nodes {
		k := len(g.inEdges[n])
		if k == 0 || seen[k] {
			continue
		}
		seen[k] = true
		sizes = append(sizes, k)
	}
	sort.Ints(sizes)
	return sizes
}

// BranchGraphs returns a one-level graph for each distinct branch size. These
// are the basis cells a multiplexer is assembled from.
//
func (g *Graph) BranchGraphs() []*Graph {
	var gs []*Graph
	for _, k := range g.BranchSizes() {
		b := NewGraphBuilder()
		out := b.AddOutput()
		addBranch(b, b.AddInputs(k), out, levelMemories(b, 0, k))
		bg, err := b.Build()
		if err != nil {
			// a single branch always satisfies graph invariants
			panic(err)
		}
		gs = append(gs, bg)
	}
	return gs
}

// A GraphBuilder assembles a Graph and checks its invariants.
//
// Nodes and memories are numbered in creation order, inputs and outputs
// separately in their own creation order.
//
type GraphBuilder struct {
	nodes    []node
	edges    []edge
	inputs   []NodeID
	outputs  []NodeID
	memLevel []int
	err      error
}

// NewGraphBuilder returns an empty GraphBuilder.
//
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

func (b *GraphBuilder) addNode(k NodeKind, index int) NodeID {
	b.nodes = append(b.nodes, node{kind: k, index: index})
	return NodeID(len(b.nodes) - 1)
}

// AddInput adds a new input node.
//
func (b *GraphBuilder) AddInput() NodeID {
	n := b.addNode(KindInput, len(b.inputs))
	b.inputs = append(b.inputs, n)
	return n
}

// AddInputs adds count input nodes and returns them in order.
//
func (b *GraphBuilder) AddInputs(count int) []NodeID {
	ns := make([]NodeID, count)
	for i := range ns {
		ns[i] = b.AddInput()
	}
	return ns
}

// AddNode adds an internal node.
//
func (b *GraphBuilder) AddNode() NodeID {
	return b.addNode(KindInternal, -1)
}

// AddOutput adds an output node.
//
func (b *GraphBuilder) AddOutput() NodeID {
	n := b.addNode(KindOutput, len(b.outputs))
	b.outputs = append(b.outputs, n)
	return n
}

// AddMemory adds a memory at the given level.
//
func (b *GraphBuilder) AddMemory(level int) MemID {
	if level < 0 && b.err == nil {
		b.err = errors.Errorf("negative memory level %d", level)
	}
	b.memLevel = append(b.memLevel, level)
	return MemID(len(b.memLevel) - 1)
}

// AddEdge connects src to dst through a pass gate controlled by mem. If inv is
// true, the gate conducts when mem is cleared.
//
func (b *GraphBuilder) AddEdge(src, dst NodeID, mem MemID, inv bool) EdgeID {
	b.edges = append(b.edges, edge{src: src, dst: dst, mem: mem, inv: inv})
	return EdgeID(len(b.edges) - 1)
}

// Build checks the graph invariants and returns the Graph. The builder must not
// be used afterwards.
//
func (b *GraphBuilder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.inputs) == 0 {
		return nil, errors.New("graph has no input")
	}
	if len(b.outputs) == 0 {
		return nil, errors.New("graph has no output")
	}

	g := &Graph{
		nodes:    b.nodes,
		edges:    b.edges,
		outEdges: make([][]EdgeID, len(b.nodes)),
		inEdges:  make([][]EdgeID, len(b.nodes)),
		inputs:   b.inputs,
		outputs:  b.outputs,
		memLevel: b.memLevel,
		pairs:    make(map[nodePair]EdgeID, len(b.edges)),
	}

	// levels
	nLevels := 0
	for _, l := range g.memLevel {
		if l+1 > nLevels {
			nLevels = l + 1
		}
	}
	g.levels = make([][]MemID, nLevels)
	for m, l := range g.memLevel {
		g.levels[l] = append(g.levels[l], MemID(m))
	}
	for l, ms := range g.levels {
		if len(ms) == 0 {
			return nil, errors.Errorf("level %d has no memory", l)
		}
	}

	// edges
	used := make([]bool, len(g.memLevel))
	for i, e := range g.edges {
		if e.src < 0 || int(e.src) >= len(g.nodes) || e.dst < 0 || int(e.dst) >= len(g.nodes) {
			return nil, errors.Errorf("edge %d connects unknown nodes %d and %d", i, e.src, e.dst)
		}
		if e.mem < 0 || int(e.mem) >= len(g.memLevel) {
			return nil, errors.Errorf("edge %d references unknown memory %d", i, e.mem)
		}
		if g.nodes[e.src].kind == KindOutput {
			return nil, errors.Errorf("edge %d leaves output node %d", i, e.src)
		}
		if g.nodes[e.dst].kind == KindInput {
			return nil, errors.Errorf("edge %d enters input node %d", i, e.dst)
		}
		p := nodePair{e.src, e.dst}
		if _, ok := g.pairs[p]; ok {
			return nil, errors.Errorf("more than one edge between node %d and node %d", e.src, e.dst)
		}
		g.pairs[p] = EdgeID(i)
		used[e.mem] = true
		g.outEdges[e.src] = append(g.outEdges[e.src], EdgeID(i))
		g.inEdges[e.dst] = append(g.inEdges[e.dst], EdgeID(i))
	}
	for m, ok := range used {
		if !ok {
			return nil, errors.Errorf("memory %d does not control any edge", m)
		}
	}

	// node levels and tree shape
	for n := range g.nodes {
		nd := &g.nodes[n]
		if nd.kind == KindOutput {
			nd.level = nLevels
			continue
		}
		if k := len(g.outEdges[n]); k != 1 {
			return nil, errors.Errorf("node %d has %d out-edges, expected 1", n, k)
		}
		if nd.kind == KindInternal && len(g.inEdges[n]) == 0 {
			return nil, errors.Errorf("internal node %d is not driven by any edge", n)
		}
		nd.level = g.memLevel[g.edges[g.outEdges[n][0]].mem]
	}
	// strictly increasing levels along every edge rule out cycles.
	for i, e := range g.edges {
		if sl, dl := g.nodes[e.src].level, g.nodes[e.dst].level; sl >= dl {
			return nil, errors.Errorf("edge %d goes from level %d down to level %d", i, sl, dl)
		}
	}
	return g, nil
}

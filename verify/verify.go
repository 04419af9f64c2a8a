// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package verify checks multiplexer bitstreams against the pass-gate
// conductance of their switch graph.
//
// A graph is compiled into a combinational circuit with one input per
// configuration memory. Each edge conducts when its memory is set (or cleared
// for inverted edges) and a node conducts when one of its out-edges conducts
// into a conducting node. Output nodes always conduct.
//
package verify

import (
	"fmt"

	mb "github.com/db47h/muxbits"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// A Circuit is the conductance circuit of a multiplexer graph. It is
// read-only once compiled.
//
type Circuit struct {
	g      *mb.Graph
	c      *logic.C
	mems   []z.Lit
	inputs []z.Lit
}

// Compile returns the conductance circuit of g.
//
func Compile(g *mb.Graph) *Circuit {
	c := logic.NewCCap(2 * (g.NumMemories() + g.NumEdges() + g.NumNodes()))
	ci := &Circuit{
		g:      g,
		c:      c,
		mems:   make([]z.Lit, g.NumMemories()),
		inputs: make([]z.Lit, g.NumInputs()),
	}
	for i := range ci.mems {
		ci.mems[i] = c.Lit()
	}
	memo := make([]z.Lit, g.NumNodes())
	for i := range ci.inputs {
		ci.inputs[i] = ci.conduct(memo, g.Input(mb.InputID(i)))
	}
	return ci
}

func (ci *Circuit) edge(e mb.EdgeID) z.Lit {
	m := ci.mems[ci.g.EdgeMem(e)]
	if ci.g.EdgeInvMem(e) {
		return m.Not()
	}
	return m
}

// conduct returns the literal for "n is connected to an output". Edges always
// go up one or more levels, so the recursion depth is bounded by the number
// of levels.
func (ci *Circuit) conduct(memo []z.Lit, n mb.NodeID) z.Lit {
	if memo[n] != z.LitNull {
		return memo[n]
	}
	var l z.Lit
	if ci.g.Kind(n) == mb.KindOutput {
		l = ci.c.T
	} else {
		oes := ci.g.OutEdges(n)
		ms := make([]z.Lit, 0, len(oes))
		for _, e := range oes {
			ms = append(ms, ci.c.And(ci.edge(e), ci.conduct(memo, ci.g.EdgeSink(e))))
		}
		l = ci.c.Ors(ms...)
	}
	memo[n] = l
	return l
}

// Graph returns the graph ci was compiled from.
//
func (ci *Circuit) Graph() *mb.Graph { return ci.g }

func (ci *Circuit) eval(raw []bool) ([]bool, error) {
	if len(raw) != len(ci.mems) {
		return nil, errors.Wrapf(mb.ErrBitstreamSize, "got %d bits for %d memories", len(raw), len(ci.mems))
	}
	vs := make([]bool, ci.c.Len())
	for i, m := range ci.mems {
		vs[m.Var()] = raw[i]
	}
	ci.c.Eval(vs)
	return vs, nil
}

func value(vs []bool, m z.Lit) bool {
	v := vs[m.Var()]
	if !m.IsPos() {
		return !v
	}
	return v
}

// Conducting returns the inputs connected to an output when the memories are
// set to raw, in increasing order.
//
func (ci *Circuit) Conducting(raw []bool) ([]int, error) {
	vs, err := ci.eval(raw)
	if err != nil {
		return nil, err
	}
	var ins []int
	for i, m := range ci.inputs {
		if value(vs, m) {
			ins = append(ins, i)
		}
	}
	return ins, nil
}

// CheckRoute returns an error unless input is the only input connected to an
// output when the memories are set to raw.
//
func (ci *Circuit) CheckRoute(raw []bool, input mb.InputID) error {
	ins, err := ci.Conducting(raw)
	if err != nil {
		return err
	}
	switch {
	case len(ins) == 0:
		return errors.Errorf("input %d is not routed: no input conducts", input)
	case len(ins) > 1:
		return errors.Errorf("input %d is not routed exclusively: inputs %v conduct", input, ins)
	case ins[0] != int(input):
		return errors.Errorf("input %d is not routed: input %d conducts", input, ins[0])
	}
	return nil
}

// A ConflictError reports two inputs that can conduct at the same time under a
// valid memory assignment.
//
type ConflictError struct {
	A, B int
	// Witness is a memory assignment, indexed by MemID, connecting both
	// inputs.
	Witness []bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("inputs %d and %d can conduct at the same time", e.A, e.B)
}

// CheckExclusive proves that every input can be routed to an output and that
// no assignment routes two inputs at once. Memories of a level with more than
// one memory are one-hot: at most one of them may be set.
//
// A *ConflictError is returned if two inputs can conduct together.
//
func (ci *Circuit) CheckExclusive() error {
	c := ci.c.Copy()
	others := make([]z.Lit, len(ci.inputs))
	for i := range ci.inputs {
		ms := make([]z.Lit, 0, len(ci.inputs)-1)
		for j, m := range ci.inputs {
			if j != i {
				ms = append(ms, m)
			}
		}
		others[i] = c.Ors(ms...)
	}

	s := gini.New()
	c.ToCnf(s)
	declare(s, ci.mems)
	for l := 0; l < ci.g.NumLevels(); l++ {
		mems := ci.g.MemoriesAtLevel(l)
		if len(mems) < 2 {
			continue
		}
		for i := range mems {
			for j := i + 1; j < len(mems); j++ {
				s.Add(ci.mems[mems[i]].Not())
				s.Add(ci.mems[mems[j]].Not())
				s.Add(0)
			}
		}
	}

	for i, in := range ci.inputs {
		s.Assume(in)
		switch s.Solve() {
		case 1:
		case -1:
			return errors.Errorf("input %d cannot be routed to any output", i)
		default:
			return errors.Errorf("input %d: solver interrupted", i)
		}
		s.Assume(in, others[i])
		switch s.Solve() {
		case -1:
			continue
		case 1:
		default:
			return errors.Errorf("input %d: solver interrupted", i)
		}
		e := &ConflictError{A: i, B: -1, Witness: make([]bool, len(ci.mems))}
		for k, m := range ci.mems {
			e.Witness[k] = s.Value(m)
		}
		for j, m := range ci.inputs {
			if j != i && s.Value(m) {
				e.B = j
				break
			}
		}
		return e
	}
	return nil
}

// declare adds the clause (m OR NOT m) for every memory m. gini sizes its
// model only from literals passed to Add, and Value indexes that model
// directly: a memory that ends up in no gate clause, such as the single
// memory of a 2-input mux, would otherwise be read out of range when
// extracting a witness.
func declare(s *gini.Gini, mems []z.Lit) {
	for _, m := range mems {
		s.Add(m)
		s.Add(m.Not())
		s.Add(0)
	}
}

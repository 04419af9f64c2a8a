// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits_test

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	mb "github.com/db47h/muxbits"
	"github.com/db47h/muxbits/decoder"
	"github.com/pkg/errors"
)

const (
	lo = false
	hi = true
)

func buildOne(m *mb.Model, size int, p mb.PathID) ([]bool, error) {
	lib := mb.NewLibrary()
	if _, err := lib.Add(m, size); err != nil {
		return nil, err
	}
	return mb.Build(m, lib, size, p)
}

func TestBuild(t *testing.T) {
	oneLevel := &mb.Model{Name: "one_level", Structure: mb.OneLevel}
	oneLevelEnc := &mb.Model{Name: "one_level_enc", Structure: mb.OneLevel, LocalEncoder: true}
	oneLevelCst := &mb.Model{Name: "one_level_cst", Structure: mb.OneLevel, ConstInput: true}
	tree := &mb.Model{Name: "tree", Structure: mb.Tree}
	multi := &mb.Model{Name: "multi", Structure: mb.MultiLevel, Levels: 2}
	multiEnc := &mb.Model{Name: "multi_enc", Structure: mb.MultiLevel, Levels: 2, LocalEncoder: true}

	data := []struct {
		name  string
		model *mb.Model
		size  int
		path  mb.PathID
		bits  []bool
	}{
		{"one_hot", oneLevel, 4, 2, []bool{lo, lo, hi, lo}},
		{"local_encoder", oneLevelEnc, 4, 2, []bool{hi, lo}},
		{"const_default", oneLevelCst, 3, mb.DefaultPath, []bool{lo, lo, lo, hi}},
		{"plain_default", oneLevel, 4, mb.DefaultPath, []bool{hi, lo, lo, lo}},
		{"tree8_0", tree, 8, 0, []bool{hi, hi, hi}},
		{"tree8_3", tree, 8, 3, []bool{lo, lo, hi}},
		{"tree8_5", tree, 8, 5, []bool{lo, hi, lo}},
		{"tree4_3", tree, 4, 3, []bool{lo, lo}},
		{"tree3_0", tree, 3, 0, []bool{hi, hi}},
		{"tree3_1", tree, 3, 1, []bool{lo, hi}},
		{"tree3_2", tree, 3, 2, []bool{lo, lo}},
		{"tree5_2", tree, 5, 2, []bool{hi, lo, hi}},
		{"tree5_4", tree, 5, 4, []bool{lo, lo, lo}},
		{"multi9_5", multi, 9, 5, []bool{lo, lo, hi, lo, hi, lo}},
		{"multi9_5_enc", multiEnc, 9, 5, []bool{hi, lo, lo, hi}},
		{"multi5_4", multi, 5, 4, []bool{lo, hi, lo, lo}},
		{"multi5_4_enc", multiEnc, 5, 4, []bool{lo, hi, lo}},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			bits, err := buildOne(d.model, d.size, d.path)
			if err != nil {
				trace(t, err)
				t.Fatal(err)
			}
			if !reflect.DeepEqual(bits, d.bits) {
				t.Errorf("Got %v, expected %v", bits, d.bits)
			}
		})
	}
}

func TestBuild_errors(t *testing.T) {
	cmos := &mb.Model{Name: "cmos", Structure: mb.OneLevel}
	lib := mb.NewLibrary()
	if _, err := lib.Add(cmos, 4); err != nil {
		t.Fatal(err)
	}

	if bits, err := mb.Build(cmos, lib, 4, 5); errors.Cause(err) != mb.ErrPathRange || bits != nil {
		t.Errorf("path 5 on a 4-input mux: got %v, %v; expected %v", bits, err, mb.ErrPathRange)
	}
	if _, err := mb.Build(cmos, lib, 5, 0); errors.Cause(err) != mb.ErrNotFound {
		t.Errorf("Got error %v, expected %v", err, mb.ErrNotFound)
	}
	for _, m := range []*mb.Model{
		{Name: "cmos", Structure: mb.OneLevel, LocalEncoder: true},
		{Name: "cmos", Structure: mb.Tree},
		{Name: "cmos", Structure: mb.OneLevel},
	} {
		if bits, err := mb.Build(m, lib, 4, 2); errors.Cause(err) != mb.ErrModelMismatch || bits != nil {
			t.Errorf("%+v: got %v, %v; expected %v", *m, bits, err, mb.ErrModelMismatch)
		}
	}
	if _, err := mb.Build(nil, lib, 4, 0); err == nil {
		t.Error("Got no error for a nil model")
	}
	if _, err := mb.Build(cmos, nil, 4, 0); err == nil {
		t.Error("Got no error for a nil library")
	}

	rram := &mb.Model{Name: "rram", Tech: mb.ReRAM, Structure: mb.OneLevel}
	_, err := mb.Build(rram, lib, 4, 0)
	if te, ok := err.(*mb.TechError); !ok || !te.Unsupported || te.Model != "rram" {
		t.Errorf("Got error %#v, expected an unsupported *TechError", err)
	}
	if !mb.IsUnsupported(err) {
		t.Errorf("IsUnsupported(%v) = false", err)
	}
	bad := &mb.Model{Name: "bad", Tech: 7, Structure: mb.OneLevel}
	_, err = mb.Build(bad, lib, 4, 0)
	if te, ok := err.(*mb.TechError); !ok || te.Unsupported {
		t.Errorf("Got error %#v, expected an invalid technology *TechError", err)
	}
	if exp := `invalid design technology Tech(7) for circuit model "bad"`; err.Error() != exp {
		t.Errorf("Got error %q, expected %q", err, exp)
	}
}

// Every input of every graph must route to the output with exactly the
// memories on its path conducting.
func TestDecode_routes(t *testing.T) {
	models := []*mb.Model{
		{Name: "tree", Structure: mb.Tree},
		{Name: "one_level", Structure: mb.OneLevel},
		{Name: "multi2", Structure: mb.MultiLevel, Levels: 2},
		{Name: "multi3", Structure: mb.MultiLevel, Levels: 3},
	}
	for _, m := range models {
		for size := 2; size <= 33; size++ {
			g := mb.MustGraph(m, size)
			for in := 0; in < g.NumInputs(); in++ {
				raw, err := mb.Decode(g, mb.InputID(in))
				if err != nil {
					t.Fatalf("%s/%d: input %d: %v", m.Name, size, in, err)
				}
				n := g.Input(mb.InputID(in))
				for g.Kind(n) != mb.KindOutput {
					e := g.OutEdges(n)[0]
					if raw[g.EdgeMem(e)] == g.EdgeInvMem(e) {
						t.Fatalf("%s/%d: input %d: edge %d not conducting", m.Name, size, in, e)
					}
					n = g.EdgeSink(e)
				}
				// pure function
				again, _ := mb.Decode(g, mb.InputID(in))
				if !reflect.DeepEqual(raw, again) {
					t.Fatalf("%s/%d: input %d: got %v then %v", m.Name, size, in, raw, again)
				}
			}
		}
	}
}

// Decoding an input must not leave any other input with a conducting path.
func TestDecode_exclusive(t *testing.T) {
	for _, m := range []*mb.Model{
		{Name: "tree", Structure: mb.Tree},
		{Name: "one_level", Structure: mb.OneLevel},
		{Name: "multi2", Structure: mb.MultiLevel, Levels: 2},
	} {
		for size := 2; size <= 17; size++ {
			g := mb.MustGraph(m, size)
			for in := 0; in < g.NumInputs(); in++ {
				raw, _ := mb.Decode(g, mb.InputID(in))
				for other := 0; other < g.NumInputs(); other++ {
					if other == in {
						continue
					}
					if conducts(g, raw, mb.InputID(other)) {
						t.Errorf("%s/%d: routing input %d also routes input %d", m.Name, size, in, other)
					}
				}
			}
		}
	}
}

func conducts(g *mb.Graph, raw []bool, in mb.InputID) bool {
	n := g.Input(in)
	for g.Kind(n) != mb.KindOutput {
		e := g.OutEdges(n)[0]
		if raw[g.EdgeMem(e)] == g.EdgeInvMem(e) {
			return false
		}
		n = g.EdgeSink(e)
	}
	return true
}

func TestDecode_errors(t *testing.T) {
	g := mb.MustGraph(&mb.Model{Structure: mb.Tree}, 4)
	if _, err := mb.Decode(g, 4); err == nil {
		t.Error("Got no error for input 4 of a 4-input graph")
	}
	if _, err := g.DecodeMemoryBits(0, 1); err == nil {
		t.Error("Got no error for output 1 of a single output graph")
	}

	b := mb.NewGraphBuilder()
	in, o0, o1 := b.AddInputs(2), b.AddOutput(), b.AddOutput()
	m := b.AddMemory(0)
	b.AddEdge(in[0], o0, m, false)
	b.AddEdge(in[1], o1, m, true)
	g2, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, err = mb.Decode(g2, 0); errors.Cause(err) != mb.ErrOutputs {
		t.Errorf("Got error %v, expected %v", err, mb.ErrOutputs)
	}
	// the per-output form still works
	if bits, err := g2.DecodeMemoryBits(1, 1); err != nil || !reflect.DeepEqual(bits, []bool{false}) {
		t.Errorf("Got %v, %v, expected [false]", bits, err)
	}
	if _, err := g2.DecodeMemoryBits(0, 1); err == nil {
		t.Error("Got no error for an unreachable output")
	}
}

func TestEncodeLocal(t *testing.T) {
	g := mb.MustGraph(&mb.Model{Structure: mb.MultiLevel, Levels: 2}, 9)
	data := []struct {
		name string
		raw  []bool
		enc  []bool
		err  error
	}{
		{"input5", []bool{lo, lo, hi, lo, hi, lo}, []bool{hi, lo, lo, hi}, nil},
		{"none_set", []bool{lo, lo, lo, lo, lo, lo}, []bool{lo, lo, lo, lo}, nil},
		{"conflict", []bool{hi, lo, hi, lo, hi, lo}, nil, mb.ErrLevelConflict},
		{"short", []bool{hi}, nil, mb.ErrBitstreamSize},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			enc, err := mb.EncodeLocal(g, d.raw)
			if errors.Cause(err) != d.err {
				t.Fatalf("Got error %v, expected %v", err, d.err)
			}
			if !reflect.DeepEqual(enc, d.enc) {
				t.Errorf("Got %v, expected %v", enc, d.enc)
			}
		})
	}
}

func TestDecodeLocal_errors(t *testing.T) {
	g := mb.MustGraph(&mb.Model{Structure: mb.OneLevel}, 3)
	for _, enc := range [][]bool{
		{hi},         // too short
		{lo, hi, hi}, // trailing bit
		{hi, hi},     // address 3 of a 3-input level
		{},
	} {
		if raw, err := mb.DecodeLocal(g, enc); err == nil {
			t.Errorf("DecodeLocal(%v): got %v, expected an error", enc, raw)
		}
	}
}

func TestLocalEncoding_roundTrip(t *testing.T) {
	graphs := []*mb.Graph{
		mb.MustGraph(&mb.Model{Structure: mb.Tree}, 13),
		mb.MustGraph(&mb.Model{Structure: mb.OneLevel}, 11),
		mb.MustGraph(&mb.Model{Structure: mb.MultiLevel, Levels: 2}, 29),
		mb.MustGraph(&mb.Model{Structure: mb.MultiLevel, Levels: 3}, 50),
	}
	for i, g := range graphs {
		g := g
		fn := func(seed int64) bool {
			in := mb.InputID(rand.New(rand.NewSource(seed)).Intn(g.NumInputs()))
			raw, err := mb.Decode(g, in)
			if err != nil {
				return false
			}
			enc, err := mb.EncodeLocal(g, raw)
			if err != nil {
				return false
			}
			back, err := mb.DecodeLocal(g, enc)
			if err != nil {
				return false
			}
			// a path sets at most one memory per level; levels with none
			// set decode to address 0.
			for l := 0; l < g.NumLevels(); l++ {
				mems := g.MemoriesAtLevel(l)
				set := 0
				for _, m := range mems {
					if raw[m] {
						set++
					}
				}
				for _, m := range mems {
					if set > 0 && back[m] != raw[m] {
						return false
					}
				}
			}
			return true
		}
		if err := quick.Check(fn, nil); err != nil {
			t.Errorf("graph %d: %v", i, err)
		}
	}
}

func TestToBinary_quick(t *testing.T) {
	fn := func(v uint16) bool {
		w := decoder.AddrSize(int(v) + 1)
		bits, err := decoder.ToBinary(int(v), w)
		return err == nil && len(bits) == w && decoder.FromBinary(bits) == int(v)
	}
	if err := quick.Check(fn, nil); err != nil {
		t.Error(err)
	}
}

func TestConfigBits(t *testing.T) {
	data := []struct {
		model mb.Model
		size  int
		bits  int
	}{
		{mb.Model{Structure: mb.OneLevel}, 4, 4},
		{mb.Model{Structure: mb.OneLevel, LocalEncoder: true}, 4, 2},
		{mb.Model{Structure: mb.OneLevel, LocalEncoder: true}, 2, 1},
		{mb.Model{Structure: mb.Tree, LocalEncoder: true}, 8, 3},
		{mb.Model{Structure: mb.MultiLevel, Levels: 2}, 9, 6},
		{mb.Model{Structure: mb.MultiLevel, Levels: 2, LocalEncoder: true}, 9, 4},
		{mb.Model{Structure: mb.MultiLevel, Levels: 2, LocalEncoder: true}, 5, 3},
	}
	for _, d := range data {
		m := d.model
		m.Name = "m"
		g := mb.MustGraph(&m, d.size)
		if n := mb.ConfigBits(&m, g); n != d.bits {
			t.Errorf("%v/%d: got %d config bits, expected %d", m.Structure, d.size, n, d.bits)
		}
		bits, err := buildOne(&m, d.size, mb.DefaultPath)
		if err != nil {
			t.Fatal(err)
		}
		if len(bits) != d.bits {
			t.Errorf("%v/%d: Build returned %d bits, expected %d", m.Structure, d.size, len(bits), d.bits)
		}
	}
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package arch reads device architecture descriptions: the multiplexer
// circuit models of a device and its multiplexer instances.
//
// Descriptions are YAML documents:
//
//	circuit_models:
//	  - name: mux_tree
//	    design_technology: cmos
//	    structure: tree
//	    add_const_input: true
//	  - name: mux_2level
//	    design_technology: cmos
//	    structure: multi_level
//	    num_levels: 2
//	    local_encoder: true
//	muxes:
//	  - name: sb_0
//	    model: mux_tree
//	    size: 8
//	    path: 3
//	  - name: cb_0
//	    model: mux_2level
//	    size: 9
//	    path: default
//
// The path of a mux defaults to "default" when omitted.
//
package arch

import (
	"bytes"
	"io"
	"os"

	mb "github.com/db47h/muxbits"
	"github.com/db47h/muxbits/fabric"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Path is a multiplexer path id in YAML: a non-negative integer or the
// "default" keyword.
//
type Path mb.PathID

// UnmarshalYAML implements yaml.Unmarshaler.
//
func (p *Path) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: path must be a scalar", node.Line)
	}
	id, err := mb.ParsePathID(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*p = Path(id)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
//
func (p Path) MarshalYAML() (interface{}, error) {
	if mb.PathID(p) == mb.DefaultPath {
		return "default", nil
	}
	return int(p), nil
}

// CircuitModel is the description of a multiplexer circuit model.
//
type CircuitModel struct {
	Name         string `yaml:"name"`
	Technology   string `yaml:"design_technology"`
	Structure    string `yaml:"structure"`
	Levels       int    `yaml:"num_levels,omitempty"`
	ConstInput   bool   `yaml:"add_const_input,omitempty"`
	LocalEncoder bool   `yaml:"local_encoder,omitempty"`
}

// Mux is the description of a multiplexer instance.
//
type Mux struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
	Size  int    `yaml:"size"`
	Path  *Path  `yaml:"path,omitempty"`
}

type file struct {
	CircuitModels []CircuitModel `yaml:"circuit_models"`
	Muxes         []Mux          `yaml:"muxes"`
}

// An Arch is a validated architecture description.
//
type Arch struct {
	Models []*mb.Model
	Muxes  []Mux

	models map[string]*mb.Model
}

// Parse parses and validates an architecture description.
//
func Parse(data []byte) (*Arch, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads the architecture description in the named file.
//
func Load(name string) (*Arch, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "load architecture")
	}
	defer f.Close()
	a, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return a, nil
}

// Decode reads an architecture description from r. Unknown fields are errors.
//
func Decode(r io.Reader) (*Arch, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode architecture")
	}
	return newArch(&f)
}

func newArch(f *file) (*Arch, error) {
	a := &Arch{models: make(map[string]*mb.Model, len(f.CircuitModels))}
	for i := range f.CircuitModels {
		cm := &f.CircuitModels[i]
		if cm.Name == "" {
			return nil, errors.Errorf("circuit model %d has no name", i)
		}
		if _, ok := a.models[cm.Name]; ok {
			return nil, errors.Errorf("duplicate circuit model %q", cm.Name)
		}
		m, err := cm.model()
		if err != nil {
			return nil, errors.Wrapf(err, "circuit model %q", cm.Name)
		}
		a.models[cm.Name] = m
		a.Models = append(a.Models, m)
	}

	names := make(map[string]struct{}, len(f.Muxes))
	for i := range f.Muxes {
		mx := f.Muxes[i]
		if mx.Name == "" {
			return nil, errors.Errorf("mux %d has no name", i)
		}
		if _, ok := names[mx.Name]; ok {
			return nil, errors.Errorf("duplicate mux %q", mx.Name)
		}
		names[mx.Name] = struct{}{}
		if _, ok := a.models[mx.Model]; !ok {
			return nil, errors.Errorf("mux %q: unknown circuit model %q", mx.Name, mx.Model)
		}
		if mx.Size < 1 {
			return nil, errors.Errorf("mux %q: invalid size %d", mx.Name, mx.Size)
		}
		if mx.Path == nil {
			p := Path(mb.DefaultPath)
			mx.Path = &p
		}
		a.Muxes = append(a.Muxes, mx)
	}
	return a, nil
}

func (cm *CircuitModel) model() (*mb.Model, error) {
	tech, err := mb.ParseTech(cm.Technology)
	if err != nil {
		return nil, err
	}
	st, err := mb.ParseStructure(cm.Structure)
	if err != nil {
		return nil, err
	}
	if st == mb.MultiLevel && cm.Levels < 1 {
		return nil, errors.Errorf("multi_level structure needs num_levels >= 1, got %d", cm.Levels)
	}
	return &mb.Model{
		Name:         cm.Name,
		Tech:         tech,
		Structure:    st,
		Levels:       cm.Levels,
		ConstInput:   cm.ConstInput,
		LocalEncoder: cm.LocalEncoder,
	}, nil
}

// Model returns the named circuit model.
//
func (a *Arch) Model(name string) (*mb.Model, bool) {
	m, ok := a.models[name]
	return m, ok
}

// Library returns a multiplexer library holding the graph of every
// (circuit model, size) pair instantiated by a.
//
func (a *Arch) Library() (*mb.Library, error) {
	lib := mb.NewLibrary()
	for _, mx := range a.Muxes {
		if _, err := lib.Add(a.models[mx.Model], mx.Size); err != nil {
			return nil, errors.Wrapf(err, "mux %q", mx.Name)
		}
	}
	return lib, nil
}

// Instances returns the multiplexer instances of a in description order.
//
func (a *Arch) Instances() []fabric.Instance {
	insts := make([]fabric.Instance, len(a.Muxes))
	for i, mx := range a.Muxes {
		insts[i] = fabric.Instance{
			Name:  mx.Name,
			Model: a.models[mx.Model],
			Size:  mx.Size,
			Path:  mb.PathID(*mx.Path),
		}
	}
	return insts
}

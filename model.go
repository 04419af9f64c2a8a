// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tech is the design technology of a multiplexer circuit model.
//
type Tech int

// Supported design technologies. Only CMOS multiplexers can be encoded.
//
const (
	CMOS Tech = iota
	ReRAM
)

func (t Tech) String() string {
	switch t {
	case CMOS:
		return "cmos"
	case ReRAM:
		return "rram"
	}
	return "Tech(" + strconv.Itoa(int(t)) + ")"
}

// ParseTech returns the Tech for the given name. Names are case insensitive.
//
func ParseTech(s string) (Tech, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cmos":
		return CMOS, nil
	case "rram", "reram":
		return ReRAM, nil
	}
	return -1, errors.Errorf("unknown design technology %q", s)
}

// Structure is the internal switch topology of a multiplexer.
//
type Structure int

// Multiplexer structures.
//
//	Tree:       2:1 branches, ceil(log2(n)) levels.
//	OneLevel:   a single n:1 branch.
//	MultiLevel: Model.Levels levels of equally sized branches.
//
const (
	Tree Structure = iota
	OneLevel
	MultiLevel
)

func (s Structure) String() string {
	switch s {
	case Tree:
		return "tree"
	case OneLevel:
		return "one_level"
	case MultiLevel:
		return "multi_level"
	}
	return "Structure(" + strconv.Itoa(int(s)) + ")"
}

// ParseStructure returns the Structure for the given name.
//
func ParseStructure(s string) (Structure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tree":
		return Tree, nil
	case "one_level", "onelevel":
		return OneLevel, nil
	case "multi_level", "multilevel":
		return MultiLevel, nil
	}
	return -1, errors.Errorf("unknown multiplexer structure %q", s)
}

// A Model describes the electrical and structural properties of a
// multiplexer circuit. Models are identified by name and must not be modified
// once a Library references them.
//
type Model struct {
	Name      string
	Tech      Tech
	Structure Structure
	// Levels is the number of switch levels for MultiLevel structures. It is
	// ignored for other structures.
	Levels int
	// ConstInput adds a constant input as the last implemented input.
	ConstInput bool
	// LocalEncoder replaces each level's one-hot memories with a binary
	// address driving a local decoder.
	LocalEncoder bool
}

// ImplementedSize returns the number of inputs of the implemented multiplexer
// for a datapath of the given size.
//
func ImplementedSize(m *Model, size int) int {
	if m.ConstInput {
		return size + 1
	}
	return size
}

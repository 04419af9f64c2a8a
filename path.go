// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A PathID selects the datapath input routed to a multiplexer's output.
// DefaultPath lets the circuit model choose.
//
type PathID int

// DefaultPath is the sentinel path id for unused multiplexers.
//
const DefaultPath PathID = -1

func (p PathID) String() string {
	if p == DefaultPath {
		return "default"
	}
	return strconv.Itoa(int(p))
}

// ParsePathID parses a decimal path id or the "default" keyword.
//
func ParsePathID(s string) (PathID, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "default") {
		return DefaultPath, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return DefaultPath, errors.Errorf("invalid path id %q", s)
	}
	return PathID(v), nil
}

// firstInput is the default path of multiplexers without a constant input.
const firstInput = 0

// DefaultPathIndex returns the input selected by DefaultPath for a
// multiplexer with implSize implemented inputs. The constant input, when
// present, is the last one; otherwise the first input is used.
//
func DefaultPathIndex(m *Model, implSize int) int {
	if m.ConstInput {
		return implSize - 1
	}
	return firstInput
}

// ResolvePath returns the graph input selected by path p for a multiplexer of
// the given datapath size. Explicit path ids must be in [0, size).
//
func ResolvePath(m *Model, size int, p PathID) (InputID, error) {
	if p == DefaultPath {
		return InputID(DefaultPathIndex(m, ImplementedSize(m, size))), nil
	}
	if p < 0 || int(p) >= size {
		return -1, errors.Wrapf(ErrPathRange, "path %d for a %d-input multiplexer", int(p), size)
	}
	return InputID(p), nil
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package muxtest provides utility functions for testing multiplexer
// bitstreams.
//
package muxtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	mb "github.com/db47h/muxbits"
	"github.com/db47h/muxbits/verify"
	"github.com/pkg/errors"
)

func bitString(bits []bool) string {
	var b strings.Builder
	for _, v := range bits {
		if v {
			b.WriteRune('1')
		} else {
			b.WriteRune('0')
		}
	}
	return b.String()
}

// CheckPaths builds the bitstream of every explicit path id and of the
// default path of the multiplexer (m, size) registered in lib, and checks
// that each bitstream routes the expected input, and only that input, to the
// output.
//
func CheckPaths(t *testing.T, lib *mb.Library, m *mb.Model, size int) {
	t.Helper()

	id, err := lib.Lookup(m, size)
	if err != nil {
		t.Fatal(err)
	}
	g := lib.Graph(id)
	ci := verify.Compile(g)
	nbits := mb.ConfigBits(m, g)

	errString := func(p mb.PathID, in mb.InputID, bits []bool, err error) string {
		return fmt.Sprintf("\n%s/%d path %v => input %d\nGot %s: %v", m.Name, size, p, in, bitString(bits), err)
	}

	start := time.Now()
	paths := make([]mb.PathID, 0, size+1)
	for p := 0; p < size; p++ {
		paths = append(paths, mb.PathID(p))
	}
	paths = append(paths, mb.DefaultPath)

	for _, p := range paths {
		in, err := mb.ResolvePath(m, size, p)
		if err != nil {
			t.Fatal(err)
		}
		bits, err := mb.Build(m, lib, size, p)
		if err != nil {
			t.Fatal(errString(p, in, nil, err))
		}
		if len(bits) != nbits {
			t.Fatal(errString(p, in, bits, errors.Errorf("got %d bits, expected %d", len(bits), nbits)))
		}
		raw := bits
		if m.LocalEncoder {
			if raw, err = mb.DecodeLocal(g, bits); err != nil {
				t.Fatal(errString(p, in, bits, err))
			}
		}
		if err = ci.CheckRoute(raw, in); err != nil {
			t.Fatal(errString(p, in, bits, err))
		}
	}
	t.Logf("%s/%d: %d paths, %d memories, %d config bits in %v", m.Name, size, len(paths), g.NumMemories(), nbits, time.Since(start))
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits_test

import (
	"testing"

	mb "github.com/db47h/muxbits"
	"github.com/db47h/muxbits/decoder"
	"github.com/pkg/errors"
)

func TestLibrary(t *testing.T) {
	tree := &mb.Model{Name: "tree", Structure: mb.Tree}
	enc := &mb.Model{Name: "enc", Structure: mb.MultiLevel, Levels: 2, LocalEncoder: true}
	lib := mb.NewLibrary()

	id0, err := lib.Add(tree, 8)
	if err != nil {
		t.Fatal(err)
	}
	id1, err := lib.Add(tree, 8)
	if err != nil {
		t.Fatal(err)
	}
	if id0 != id1 {
		t.Errorf("Got ids %d and %d for the same multiplexer", id0, id1)
	}
	for _, sz := range []int{4, 9, 5} {
		if _, err = lib.Add(enc, sz); err != nil {
			t.Fatal(err)
		}
	}
	if lib.Len() != 4 {
		t.Errorf("Got %d multiplexers, expected 4", lib.Len())
	}
	if sz := lib.MaxSize(enc); sz != 9 {
		t.Errorf("Got max size %d, expected 9", sz)
	}
	if sz := lib.MaxSize(&mb.Model{Name: "unused"}); sz != 0 {
		t.Errorf("Got max size %d for an unused model, expected 0", sz)
	}

	id, err := lib.Lookup(enc, 9)
	if err != nil {
		t.Fatal(err)
	}
	if lib.Model(id) != enc || lib.Size(id) != 9 || lib.Graph(id).NumMemories() != 6 {
		t.Errorf("Lookup(enc, 9) returned the wrong multiplexer %d", id)
	}
	if _, err = lib.Lookup(tree, 3); errors.Cause(err) != mb.ErrNotFound {
		t.Errorf("Got error %v, expected %v", err, mb.ErrNotFound)
	}
	clone := *enc
	if _, err = lib.Lookup(&clone, 9); errors.Cause(err) != mb.ErrModelMismatch {
		t.Errorf("Got error %v, expected %v", err, mb.ErrModelMismatch)
	}
	if ids := lib.Muxes(); len(ids) != 4 || ids[0] != id0 {
		t.Errorf("Got muxes %v", ids)
	}

	// enc/4 is a 2x2 tree: single memory levels need no decoder.
	// enc/9 has two 3-memory levels, enc/5 a 3-memory level.
	dl := lib.Decoders()
	if dl.Len() != 1 {
		t.Fatalf("Got %d decoders, expected 1", dl.Len())
	}
	if d := dl.Decoder(0); d != (decoder.Decoder{AddrSize: 2, DataSize: 3, DataInv: true}) {
		t.Errorf("Got decoder %+v", d)
	}
}

func TestLibrary_errors(t *testing.T) {
	lib := mb.NewLibrary()
	if _, err := lib.Add(nil, 4); err == nil {
		t.Error("Got no error for a nil model")
	}
	if _, err := lib.Add(&mb.Model{Name: "a", Structure: mb.Tree}, 4); err != nil {
		t.Fatal(err)
	}
	_, err := lib.Add(&mb.Model{Name: "a", Structure: mb.OneLevel}, 4)
	if exp := `circuit model name "a" used by two different models`; err == nil || err.Error() != exp {
		t.Errorf("Got error %q, expected %q", err, exp)
	}
	_, err = lib.Add(&mb.Model{Name: "b", Structure: mb.Tree}, 1)
	if exp := `build 1-input multiplexer: circuit model "b": multiplexer needs at least 2 implemented inputs, got 1`; err == nil || err.Error() != exp {
		t.Errorf("Got error %q, expected %q", err, exp)
	}
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package decoder models the local decoders driving multiplexer levels whose
// one-hot memories are replaced by a binary address.
//
// Addresses are written most significant bit first.
//
package decoder

import (
	"math/bits"

	"github.com/pkg/errors"
)

// AddrSize returns the address width of a decoder with dataSize outputs. A
// single output decoder still needs one address bit.
//
func AddrSize(dataSize int) int {
	if dataSize <= 1 {
		return 1
	}
	return bits.Len(uint(dataSize - 1))
}

// ToBinary returns the width bits binary representation of v, most
// significant bit first.
//
func ToBinary(v, width int) ([]bool, error) {
	if v < 0 || width < 0 || (width < 63 && v >= 1<<uint(width)) {
		return nil, errors.Errorf("value %d does not fit in %d bits", v, width)
	}
	code := make([]bool, width)
	for i := width - 1; i >= 0 && v != 0; i-- {
		code[i] = v&1 != 0
		v >>= 1
	}
	return code, nil
}

// FromBinary returns the unsigned integer represented by bits, most
// significant bit first.
//
func FromBinary(bits []bool) int {
	v := 0
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

// A Decoder converts an address of AddrSize bits into DataSize one-hot outputs.
// If DataInv is set, the decoder also provides inverted outputs.
//
type Decoder struct {
	AddrSize int
	DataSize int
	DataInv  bool
}

// New returns a Decoder for dataSize outputs with the matching address size.
//
func New(dataSize int, dataInv bool) Decoder {
	return Decoder{AddrSize: AddrSize(dataSize), DataSize: dataSize, DataInv: dataInv}
}

// Decode returns the outputs of d for the given address.
//
func (d Decoder) Decode(addr []bool) ([]bool, error) {
	if len(addr) != d.AddrSize {
		return nil, errors.Errorf("decoder expects %d address bits, got %d", d.AddrSize, len(addr))
	}
	a := FromBinary(addr)
	if a >= d.DataSize {
		return nil, errors.Errorf("address %d out of range for a %d outputs decoder", a, d.DataSize)
	}
	data := make([]bool, d.DataSize)
	data[a] = true
	return data, nil
}

// DecodeInv returns the inverted outputs of d for the given address. It fails
// if d has no inverted outputs.
//
func (d Decoder) DecodeInv(addr []bool) ([]bool, error) {
	if !d.DataInv {
		return nil, errors.New("decoder has no inverted outputs")
	}
	data, err := d.Decode(addr)
	if err != nil {
		return nil, err
	}
	for i := range data {
		data[i] = !data[i]
	}
	return data, nil
}

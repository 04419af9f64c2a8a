// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fabric

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// A Bitstream is the packed configuration of all multiplexer instances of a
// device.
//
type Bitstream struct {
	bits    *bitset.BitSet
	n       int
	regions []Region
	index   map[string]int

	// Failed lists the instances that could not be encoded when the
	// generator runs with KeepGoing.
	Failed []*InstanceError
}

func newBitstream(n int, regions []Region) *Bitstream {
	bs := &Bitstream{
		bits:    bitset.New(uint(n)),
		n:       n,
		regions: regions,
		index:   make(map[string]int, len(regions)),
	}
	for i, r := range regions {
		bs.index[r.Instance] = i
	}
	return bs
}

// Len returns the number of bits in bs.
//
func (bs *Bitstream) Len() int { return bs.n }

// Bit returns the value of bit i.
//
func (bs *Bitstream) Bit(i int) bool {
	if i < 0 || i >= bs.n {
		panic("bit index out of range")
	}
	return bs.bits.Test(uint(i))
}

// Regions returns the regions of all instances in bitstream order.
//
func (bs *Bitstream) Regions() []Region { return bs.regions }

// Region returns the region of the named instance.
//
func (bs *Bitstream) Region(name string) (Region, bool) {
	i, ok := bs.index[name]
	if !ok {
		return Region{}, false
	}
	return bs.regions[i], true
}

// Slice returns the bits of region r.
//
func (bs *Bitstream) Slice(r Region) []bool {
	out := make([]bool, r.Len)
	for i := range out {
		out[i] = bs.bits.Test(uint(r.Offset + i))
	}
	return out
}

// WriteTo writes bs to w, one line per instance: its name, offset and bits.
// Bits are written as '0' and '1' characters in bitstream order.
//
func (bs *Bitstream) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	var sb strings.Builder
	for _, r := range bs.regions {
		sb.Reset()
		sb.WriteString(r.Instance)
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(r.Offset))
		sb.WriteByte(' ')
		for i := 0; i < r.Len; i++ {
			if bs.bits.Test(uint(r.Offset + i)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
		k, err := bw.WriteString(sb.String())
		n += int64(k)
		if err != nil {
			return n, errors.Wrap(err, "write bitstream")
		}
	}
	return n, errors.Wrap(bw.Flush(), "write bitstream")
}

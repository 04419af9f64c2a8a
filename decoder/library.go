// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package decoder

// ID identifies a decoder in a Library.
//
type ID int

// A Library holds the distinct decoders used in a device.
//
type Library struct {
	decoders []Decoder
	lookup   map[Decoder]ID
}

// NewLibrary returns an empty library.
//
func NewLibrary() *Library {
	return &Library{lookup: make(map[Decoder]ID)}
}

// Add returns the ID of the decoder with the given characteristics, adding it
// to the library if needed.
//
func (l *Library) Add(addrSize, dataSize int, dataInv bool) ID {
	d := Decoder{AddrSize: addrSize, DataSize: dataSize, DataInv: dataInv}
	if id, ok := l.lookup[d]; ok {
		return id
	}
	id := ID(len(l.decoders))
	l.decoders = append(l.decoders, d)
	l.lookup[d] = id
	return id
}

// Find returns the ID of a decoder. ok is false if no such decoder exists.
//
func (l *Library) Find(addrSize, dataSize int, dataInv bool) (id ID, ok bool) {
	id, ok = l.lookup[Decoder{AddrSize: addrSize, DataSize: dataSize, DataInv: dataInv}]
	return id, ok
}

// Decoder returns the decoder with the given ID.
//
func (l *Library) Decoder(id ID) Decoder { return l.decoders[id] }

// Decoders returns all decoder IDs in insertion order.
//
func (l *Library) Decoders() []ID {
	ids := make([]ID, len(l.decoders))
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Len returns the number of decoders in l.
//
func (l *Library) Len() int { return len(l.decoders) }

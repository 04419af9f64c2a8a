/*
Package muxbits computes the configuration bits of FPGA routing multiplexers.

A multiplexer is described by a circuit Model (technology, structure, constant
input and local encoder options) and implemented as a leveled switch Graph:
inputs reach the single output through pass gates, each controlled by a
configuration memory. Graphs are registered in a Library, keyed by model and
datapath size, and shared by every multiplexer instance of a device.

Build resolves a path id (or DefaultPath) to an implemented input, decodes the
memory values routing that input to the output and, for models using local
decoders, re-encodes each level as a binary address:

	lib := muxbits.NewLibrary()
	m := &muxbits.Model{Name: "mux_tree", Tech: muxbits.CMOS, Structure: muxbits.Tree}
	if _, err := lib.Add(m, 8); err != nil {
		// handle error
	}
	bits, err := muxbits.Build(m, lib, 8, 3)

Graphs and libraries are read-only once built, so Build may be called
concurrently for different multiplexer instances.
*/
package muxbits

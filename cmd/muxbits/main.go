// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command muxbits computes the configuration bits of FPGA routing
// multiplexers described in a YAML architecture file.
//
// Usage:
//
//	muxbits encode ARCH --model M --size N [--path P|default]
//	muxbits fabric ARCH [--workers N] [--keep-going] [--out FILE]
//	muxbits lib ARCH
//	muxbits verify ARCH
//
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

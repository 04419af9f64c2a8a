// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package muxbits

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors returned by the encoder. They are always wrapped with context; use
// errors.Cause to compare.
//
var (
	ErrPathRange     = errors.New("path id out of range")
	ErrOutputs       = errors.New("multiplexer graph must have exactly one output")
	ErrLevelConflict = errors.New("more than one memory set within a level")
	ErrNotFound      = errors.New("multiplexer not found in library")
	ErrBitstreamSize = errors.New("bitstream size does not match multiplexer graph")
	ErrModelMismatch = errors.New("multiplexer graph built for another circuit model")
)

// A TechError is returned when a circuit model's design technology cannot be
// encoded. Unsupported is true for known technologies without an encoder
// (ReRAM) and false for invalid technology values.
//
type TechError struct {
	Model       string
	Tech        Tech
	Unsupported bool
}

func (e *TechError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("design technology %v of circuit model %q is not supported", e.Tech, e.Model)
	}
	return fmt.Sprintf("invalid design technology %v for circuit model %q", e.Tech, e.Model)
}

// IsUnsupported returns true if err is or wraps a *TechError.
//
func IsUnsupported(err error) bool {
	_, ok := errors.Cause(err).(*TechError)
	return ok
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package fabric generates the configuration bitstream of all the routing
// multiplexers of a device.
//
// Each multiplexer instance gets a region of the device bitstream, in
// instance order. Instances are encoded concurrently; identical requests
// (same circuit model, size and path) are encoded once.
//
package fabric

import (
	"context"
	"fmt"
	"runtime"

	mb "github.com/db47h/muxbits"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// An Instance is a multiplexer of a device, routing path Path.
//
type Instance struct {
	Name  string
	Model *mb.Model
	Size  int
	Path  mb.PathID
}

func (i *Instance) fields() logrus.Fields {
	return logrus.Fields{
		"instance": i.Name,
		"model":    i.Model.Name,
		"size":     i.Size,
		"path":     i.Path,
	}
}

// A Region is the slice of the device bitstream configuring an instance.
//
type Region struct {
	Instance string
	Offset   int
	Len      int
}

// An InstanceError is the error returned when an instance cannot be encoded.
//
type InstanceError struct {
	Instance string
	Err      error
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("instance %q: %v", e.Instance, e.Err)
}

// Cause returns the underlying error.
//
func (e *InstanceError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
//
func (e *InstanceError) Unwrap() error { return e.Err }

type cacheKey struct {
	model *mb.Model
	size  int
	path  mb.PathID
}

// A Generator encodes multiplexer instances using the graphs of a Library.
//
type Generator struct {
	lib       *mb.Library
	workers   int
	log       logrus.FieldLogger
	keepGoing bool
	cacheSize int
	cache     *lru.Cache[cacheKey, []bool]
}

// An Option configures a Generator.
//
type Option func(*Generator)

// Workers sets the maximum number of instances encoded concurrently. If n <= 0,
// the value of GOMAXPROCS is used.
//
func Workers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// Logger sets the logger of the generator. The default is the logrus standard
// logger.
//
func Logger(l logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = l }
}

// KeepGoing makes Generate encode all instances even if some fail. Failed
// instances are reported in Bitstream.Failed and their region is left zeroed.
//
func KeepGoing(keep bool) Option {
	return func(g *Generator) { g.keepGoing = keep }
}

// CacheSize sets the number of encoded bitstreams kept for reuse. A size of 0
// disables the cache.
//
func CacheSize(n int) Option {
	return func(g *Generator) { g.cacheSize = n }
}

// DefaultCacheSize is the default number of cached bitstreams.
//
const DefaultCacheSize = 4096

// NewGenerator returns a new Generator for the multiplexers of lib.
//
func NewGenerator(lib *mb.Library, opts ...Option) (*Generator, error) {
	if lib == nil {
		return nil, errors.New("nil multiplexer library")
	}
	g := &Generator{lib: lib, cacheSize: DefaultCacheSize}
	for _, o := range opts {
		o(g)
	}
	if g.workers <= 0 {
		g.workers = runtime.GOMAXPROCS(-1)
	}
	if g.workers <= 0 {
		g.workers = 1
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	if g.cacheSize < 0 {
		return nil, errors.Errorf("invalid cache size %d", g.cacheSize)
	}
	if g.cacheSize > 0 {
		c, err := lru.New[cacheKey, []bool](g.cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create bitstream cache")
		}
		g.cache = c
	}
	return g, nil
}

// Layout returns the region of each instance and the total bitstream length.
// Regions are allocated in instance order.
//
func (g *Generator) Layout(insts []Instance) ([]Region, int, error) {
	regions, total, _, err := g.layout(insts, false)
	return regions, total, err
}

// layout allocates regions. If lenient is set, instances missing from the
// library get an empty region and are returned as failed.
func (g *Generator) layout(insts []Instance, lenient bool) ([]Region, int, []*InstanceError, error) {
	regions := make([]Region, len(insts))
	failed := make([]*InstanceError, len(insts))
	names := make(map[string]struct{}, len(insts))
	off := 0
	for i := range insts {
		in := &insts[i]
		if in.Model == nil {
			return nil, 0, nil, errors.Errorf("instance %q: nil circuit model", in.Name)
		}
		if _, ok := names[in.Name]; ok {
			return nil, 0, nil, errors.Errorf("duplicate instance name %q", in.Name)
		}
		names[in.Name] = struct{}{}
		regions[i] = Region{Instance: in.Name, Offset: off}
		id, err := g.lib.Lookup(in.Model, in.Size)
		if err != nil {
			ie := &InstanceError{Instance: in.Name, Err: err}
			if !lenient {
				return nil, 0, nil, ie
			}
			failed[i] = ie
			continue
		}
		n := mb.ConfigBits(in.Model, g.lib.Graph(id))
		regions[i].Len = n
		off += n
	}
	return regions, off, failed, nil
}

func (g *Generator) encode(in *Instance) ([]bool, error) {
	k := cacheKey{in.Model, in.Size, in.Path}
	if g.cache != nil {
		if bits, ok := g.cache.Get(k); ok {
			return bits, nil
		}
	}
	bits, err := mb.Build(in.Model, g.lib, in.Size, in.Path)
	if err != nil {
		return nil, err
	}
	if g.cache != nil {
		g.cache.Add(k, bits)
	}
	return bits, nil
}

// Generate encodes all instances and packs their bits into a device
// bitstream.
//
// Unless the generator was created with KeepGoing, Generate stops at the first
// instance that fails and returns an *InstanceError. An instance whose bits do
// not fill its region fails with ErrBitstreamSize. Cancelling ctx stops the
// generation.
//
func (g *Generator) Generate(ctx context.Context, insts []Instance) (*Bitstream, error) {
	regions, total, failed, err := g.layout(insts, g.keepGoing)
	if err != nil {
		return nil, err
	}
	g.log.WithFields(logrus.Fields{"instances": len(insts), "bits": total, "workers": g.workers}).
		Info("generating fabric bitstream")

	results := make([][]bool, len(insts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range insts {
		if failed[i] != nil {
			g.log.WithFields(insts[i].fields()).WithError(failed[i].Err).Warn("instance skipped")
			continue
		}
		n := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := &insts[n]
			bits, err := g.encode(in)
			if err == nil && len(bits) != regions[n].Len {
				err = errors.Wrapf(mb.ErrBitstreamSize, "got %d bits, expected %d", len(bits), regions[n].Len)
			}
			if err != nil {
				ie := &InstanceError{Instance: in.Name, Err: err}
				if !g.keepGoing {
					return ie
				}
				g.log.WithFields(in.fields()).WithError(err).Warn("instance skipped")
				failed[n] = ie
				return nil
			}
			g.log.WithFields(in.fields()).Debug("instance encoded")
			results[n] = bits
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	bs := newBitstream(total, regions)
	for i, bits := range results {
		off := uint(regions[i].Offset)
		for j, b := range bits {
			if b {
				bs.bits.Set(off + uint(j))
			}
		}
	}
	for _, ie := range failed {
		if ie != nil {
			bs.Failed = append(bs.Failed, ie)
		}
	}
	g.log.WithFields(logrus.Fields{"set": bs.bits.Count(), "failed": len(bs.Failed)}).Info("fabric bitstream done")
	return bs, nil
}

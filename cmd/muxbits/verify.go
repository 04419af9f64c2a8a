// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"

	mb "github.com/db47h/muxbits"
	"github.com/db47h/muxbits/verify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify arch_file",
		Short: "Check multiplexer graphs and instance bitstreams.",
		Long: `Prove that no two inputs of a multiplexer graph can be routed at the same
time, then check that the bitstream of every CMOS multiplexer instance routes
its path, and only its path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, lib, err := loadArch(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			circuits := make([]*verify.Circuit, lib.Len())
			for _, id := range lib.Muxes() {
				m, size := lib.Model(id), lib.Size(id)
				ci := verify.Compile(lib.Graph(id))
				if err = ci.CheckExclusive(); err != nil {
					return errors.Wrapf(err, "circuit model %q, size %d", m.Name, size)
				}
				circuits[id] = ci
				fmt.Fprintf(out, "graph %s/%d: ok\n", m.Name, size)
			}

			for _, in := range a.Instances() {
				if in.Model.Tech != mb.CMOS {
					log.WithField("instance", in.Name).Debugf("skipping %v multiplexer", in.Model.Tech)
					continue
				}
				id, err := lib.Lookup(in.Model, in.Size)
				if err != nil {
					return err
				}
				bits, err := mb.Build(in.Model, lib, in.Size, in.Path)
				if err != nil {
					return errors.Wrapf(err, "mux %q", in.Name)
				}
				raw := bits
				if in.Model.LocalEncoder {
					if raw, err = mb.DecodeLocal(lib.Graph(id), bits); err != nil {
						return errors.Wrapf(err, "mux %q", in.Name)
					}
				}
				sel, err := mb.ResolvePath(in.Model, in.Size, in.Path)
				if err != nil {
					return errors.Wrapf(err, "mux %q", in.Name)
				}
				if err = circuits[id].CheckRoute(raw, sel); err != nil {
					return errors.Wrapf(err, "mux %q", in.Name)
				}
				fmt.Fprintf(out, "mux %s: ok\n", in.Name)
			}
			return nil
		},
	}
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/db47h/muxbits/fabric"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newFabricCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fabric [flags] arch_file",
		Short: "Generate the bitstream of all multiplexers of a device.",
		Long: `Encode every multiplexer instance of the architecture file and write the
device bitstream, one line per instance: name, offset and bits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, lib, err := loadArch(args[0])
			if err != nil {
				return err
			}
			g, err := fabric.NewGenerator(lib,
				fabric.Workers(getInt(cmd, "workers")),
				fabric.CacheSize(getInt(cmd, "cache")),
				fabric.KeepGoing(getFlag(cmd, "keep-going")),
				fabric.Logger(log.StandardLogger()))
			if err != nil {
				return err
			}
			bs, err := g.Generate(cmd.Context(), a.Instances())
			if err != nil {
				return err
			}
			for _, ie := range bs.Failed {
				log.Error(ie)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out := getString(cmd, "out"); out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrap(err, "create output file")
				}
				defer f.Close()
				w = f
			}
			if _, err = bs.WriteTo(w); err != nil {
				return err
			}
			if len(bs.Failed) > 0 {
				return errors.Errorf("%d multiplexers could not be encoded", len(bs.Failed))
			}
			return nil
		},
	}
	cmd.Flags().Int("workers", 0, "number of concurrent encoders (0 for GOMAXPROCS)")
	cmd.Flags().Int("cache", fabric.DefaultCacheSize, "number of cached bitstreams (0 to disable)")
	cmd.Flags().Bool("keep-going", false, "encode all multiplexers even if some fail")
	cmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	return cmd
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"

	mb "github.com/db47h/muxbits"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [flags] arch_file",
		Short: "Encode a single multiplexer.",
		Long: `Print the configuration bits of a multiplexer of the given circuit model
and size routing the given path. The model must be instantiated with that
size in the architecture file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, lib, err := loadArch(args[0])
			if err != nil {
				return err
			}
			name := getString(cmd, "model")
			m, ok := a.Model(name)
			if !ok {
				return errors.Errorf("unknown circuit model %q", name)
			}
			p, err := mb.ParsePathID(getString(cmd, "path"))
			if err != nil {
				return err
			}
			size := getInt(cmd, "size")
			bits, err := mb.Build(m, lib, size, p)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"model": name, "size": size, "path": p}).
				Debugf("%d configuration bits", len(bits))
			fmt.Fprintln(cmd.OutOrStdout(), bitString(bits))
			return nil
		},
	}
	cmd.Flags().String("model", "", "circuit model name")
	cmd.Flags().Int("size", 0, "multiplexer datapath size")
	cmd.Flags().String("path", "default", "path id or \"default\"")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

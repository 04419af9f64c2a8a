// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"runtime/debug"

	mb "github.com/db47h/muxbits"
	"github.com/db47h/muxbits/arch"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at link time by release builds.
var Version string

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown version)"
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "muxbits",
		Short:         "Routing multiplexer bitstream generator.",
		Long:          "Compute the configuration bits of FPGA routing multiplexers from a YAML architecture description.",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if getFlag(cmd, "verbose") {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if getFlag(cmd, "version") {
				fmt.Fprintf(cmd.OutOrStdout(), "muxbits %s\n", version())
				return nil
			}
			return cmd.Help()
		},
	}
	root.Flags().Bool("version", false, "report version of this executable")
	root.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")

	root.AddCommand(newEncodeCmd(), newFabricCmd(), newLibCmd(), newVerifyCmd())
	return root
}

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		panic(err)
	}
	return r
}

func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		panic(err)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		panic(err)
	}
	return r
}

// loadArch loads an architecture file and builds its multiplexer library.
func loadArch(name string) (*arch.Arch, *mb.Library, error) {
	a, err := arch.Load(name)
	if err != nil {
		return nil, nil, err
	}
	lib, err := a.Library()
	if err != nil {
		return nil, nil, errors.Wrap(err, name)
	}
	log.WithFields(log.Fields{"models": len(a.Models), "muxes": len(a.Muxes), "graphs": lib.Len()}).
		Debugf("loaded %s", name)
	return a, lib, nil
}

func bitString(bits []bool) string {
	b := make([]byte, len(bits))
	for i, v := range bits {
		if v {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"

	mb "github.com/db47h/muxbits"
	"github.com/spf13/cobra"
)

func newLibCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lib arch_file",
		Short: "List the multiplexer graphs and local decoders of a device.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, lib, err := loadArch(args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODEL\tTECH\tSTRUCTURE\tSIZE\tINPUTS\tLEVELS\tMEMORIES\tBITS")
			for _, id := range lib.Muxes() {
				m, g := lib.Model(id), lib.Graph(id)
				fmt.Fprintf(tw, "%d\t%s\t%v\t%v\t%d\t%d\t%d\t%d\t%d\n",
					id, m.Name, m.Tech, m.Structure, lib.Size(id),
					g.NumInputs(), g.NumLevels(), g.NumMemories(), mb.ConfigBits(m, g))
			}
			if err = tw.Flush(); err != nil {
				return err
			}

			dl := lib.Decoders()
			if dl.Len() == 0 {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(tw, "DECODER\tADDR\tDATA\tINV")
			for _, id := range dl.Decoders() {
				d := dl.Decoder(id)
				fmt.Fprintf(tw, "%d\t%d\t%d\t%v\n", id, d.AddrSize, d.DataSize, d.DataInv)
			}
			return tw.Flush()
		},
	}
}

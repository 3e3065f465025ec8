package main

import (
	"github.com/spf13/cobra"

	micromeasure "github.com/menta2k/microscope-measure"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("micromeasure %s\n", micromeasure.Version)
		},
	}
}

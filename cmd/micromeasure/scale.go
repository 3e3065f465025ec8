package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewScaleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Show or set the persisted scale factor",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the scale factor currently in effect",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tool, err := newTool(cfg)
			if err != nil {
				return err
			}

			if rec := tool.Store().Load(); rec != nil {
				fmt.Printf("%.6f µm/px (%s", rec.UmPerPx, rec.Source)
				if rec.Timestamp != "" {
					fmt.Printf(", %s", rec.Timestamp)
				}
				fmt.Println(")")
				return nil
			}

			fmt.Printf("%.6f µm/px (default, not calibrated)\n", tool.CurrentScale())
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [um-per-px]",
		Short: "Persist a manually entered scale factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			umPerPx, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid scale factor %q: %w", args[0], err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tool, err := newTool(cfg)
			if err != nil {
				return err
			}

			if err := tool.SetScale(umPerPx); err != nil {
				return err
			}
			logrus.Infof("saved scale %.6f µm/px to %s", umPerPx, tool.Store().Path())
			return nil
		},
	}

	// Bare "scale" behaves like "scale show".
	cmd.RunE = showCmd.RunE

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

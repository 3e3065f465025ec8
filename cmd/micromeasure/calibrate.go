package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewCalibrateCommand() *cobra.Command {
	var (
		shapesPath string
		knownUm    float64
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Derive the scale factor from a line of known physical length",
		Long: `Derive the scale factor from a line of known physical length.

Draw a line over a feature whose real length is known (a stage micrometer or
the printed scale bar), then pass the drawing here with --known-um. The
resulting µm/px factor is printed, and with --save it persists as the scale
for future measurements.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tool, err := newTool(cfg)
			if err != nil {
				return err
			}

			objects, err := loadDrawing(shapesPath)
			if err != nil {
				return err
			}

			umPerPx, line, err := tool.CalibrateFromDrawing(objects, knownUm)
			if err != nil {
				return err
			}

			fmt.Printf("%.1f px over %.1f µm -> %.6f µm/px\n", line.Length(), knownUm, umPerPx)

			if save {
				if err := tool.SaveCalibration(umPerPx, knownUm, line.Length()); err != nil {
					return err
				}
				logrus.Infof("saved scale to %s", tool.Store().Path())
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&shapesPath, "shapes", "s", "", "canvas JSON file with the calibration line")
	flags.Float64Var(&knownUm, "known-um", 400, "known physical length of the drawn line in micrometers")
	flags.BoolVar(&save, "save", false, "persist the calibrated scale")

	_ = cmd.MarkFlagRequired("shapes")

	return cmd
}

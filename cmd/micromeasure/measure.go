package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/microscope-measure/internal/utils"
	"github.com/menta2k/microscope-measure/pkg/geometry"
	"github.com/menta2k/microscope-measure/pkg/measure"
)

func NewMeasureCommand() *cobra.Command {
	var (
		imagePath   string
		shapesPath  string
		mode        string
		scaleFlag   float64
		outputPath  string
		csvPath     string
		canvasWidth int
	)

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure a drawn shape on a microscope image",
		Long: `Measure a drawn shape on a microscope image.

Reads the drawing from canvas JSON, converts the most recently drawn shape
to micrometers using the persisted scale (or --scale), and optionally writes
an annotated image and a CSV row.

When the drawing was made on a downsized canvas, pass --canvas-width so the
shape can be mapped back to source pixels before measuring.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tool, err := newTool(cfg)
			if err != nil {
				return err
			}

			img, err := tool.LoadImage(imagePath)
			if err != nil {
				return err
			}

			objects, err := loadDrawing(shapesPath)
			if err != nil {
				return err
			}

			shape, err := geometry.Extract(objects, geometry.Mode(mode))
			if err != nil {
				return err
			}

			// Map display coordinates back to source pixels when the
			// drawing surface was narrower than the image.
			if canvasWidth > 0 && img.Bounds().Dx() > canvasWidth {
				f := float64(img.Bounds().Dx()) / float64(canvasWidth)
				shape = geometry.ScaleShape(shape, f, f)
			}

			umPerPx := scaleFlag
			if umPerPx <= 0 {
				umPerPx = tool.CurrentScale()
			}
			result, err := measure.Measure(shape, umPerPx)
			if err != nil {
				return err
			}

			fmt.Println(result.Label)

			if outputPath == "" {
				outputPath = utils.GenerateOutputFilename(imagePath, "", "_annotated", "")
			}
			annotated, err := tool.AnnotateMeasurement(img, shape, result)
			if err != nil {
				return err
			}
			if err := tool.SaveImage(annotated, outputPath); err != nil {
				return err
			}
			logrus.Infof("wrote %s", outputPath)

			if csvPath != "" {
				data, err := tool.ExportCSV(result)
				if err != nil {
					return err
				}
				if err := os.WriteFile(csvPath, data, 0o644); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
				logrus.Infof("wrote %s", csvPath)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&imagePath, "image", "i", "", "input image path or URL (jpg/png/webp)")
	flags.StringVarP(&shapesPath, "shapes", "s", "", "canvas JSON file with the drawn objects")
	flags.StringVarP(&mode, "mode", "m", "line", "measurement mode: line or circle")
	flags.Float64Var(&scaleFlag, "scale", 0, "scale factor in µm/px (default: persisted or built-in)")
	flags.StringVarP(&outputPath, "output", "o", "", "annotated image path (default: <image>_annotated.<ext>)")
	flags.StringVar(&csvPath, "csv", "", "also write the measurement as CSV to this path")
	flags.IntVar(&canvasWidth, "canvas-width", 0, "width of the drawing surface the shapes were drawn on")

	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("shapes")

	return cmd
}

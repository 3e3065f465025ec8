package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/microscope-measure/pkg/client"
	"github.com/menta2k/microscope-measure/pkg/llamacpp"
	"github.com/menta2k/microscope-measure/pkg/measure"
	"github.com/menta2k/microscope-measure/pkg/ollama"
	"github.com/menta2k/microscope-measure/pkg/processing"
	"github.com/menta2k/microscope-measure/pkg/scalebar"
)

func NewDetectCommand() *cobra.Command {
	var (
		imagePath string
		backend   string
		model     string
		url       string
		knownUm   float64
		save      bool
		sendFmt   string
		sendSize  int
		sendQ     int
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Locate the scale bar and suggest a calibration",
		Long: `Locate the scale bar and suggest a calibration.

With a vision model backend (ollama or llamacpp) the model is asked where
the printed scale bar is and what its annotation says. The heuristic backend
instead scans the lower part of the image for a high-contrast horizontal
bar; it cannot read the annotation, so --known-um supplies the bar's
physical length.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tool, err := newTool(cfg)
			if err != nil {
				return err
			}

			if backend == "" {
				backend = cfg.Detection.Backend
			}
			if model == "" {
				model = cfg.Detection.Model
			}
			if url == "" {
				url = cfg.Detection.URL
			}
			if knownUm <= 0 {
				knownUm = cfg.Scale.KnownLengthUm
			}

			img, err := tool.LoadImage(imagePath)
			if err != nil {
				return err
			}
			b := img.Bounds()
			processor := processing.NewProcessor()

			var umPerPx float64

			switch backend {
			case "heuristic":
				bar, err := scalebar.NewFinder().FindBar(img)
				if err != nil {
					return err
				}
				line := scalebar.LineInImage(bar, b.Dx(), b.Dy())
				logrus.Infof("found %.1f px bar at y=%.0f (confidence %.2f)", line.Length(), line.P1.Y, bar.Confidence)

				umPerPx, err = measure.Calibrate(line, knownUm)
				if err != nil {
					return err
				}
			case "ollama", "llamacpp":
				var visionClient client.VisionClient
				switch backend {
				case "ollama":
					if url == "" {
						url = "http://localhost:11434"
					}
					visionClient, err = ollama.NewClient(url)
				default:
					visionClient, err = llamacpp.NewClient(url)
				}
				if err != nil {
					return fmt.Errorf("failed to create %s client: %w", backend, err)
				}

				imgB64, err := processor.PrepareImageForModel(img, sendFmt, sendSize, sendQ)
				if err != nil {
					return err
				}

				detector := scalebar.NewDetector(visionClient)
				bar, err := detector.Locate(context.Background(), model, imgB64)
				if err != nil {
					return err
				}
				if bar.Text != "" {
					logrus.Infof("bar annotation: %q (confidence %.2f)", bar.Text, bar.Confidence)
				}

				umPerPx, err = scalebar.SuggestScale(bar, b.Dx(), b.Dy(), knownUm)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown backend: %s (use ollama, llamacpp or heuristic)", backend)
			}

			fmt.Printf("suggested scale: %.6f µm/px\n", umPerPx)

			if save {
				if err := tool.SetScale(umPerPx); err != nil {
					return err
				}
				logrus.Infof("saved scale to %s", tool.Store().Path())
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&imagePath, "image", "i", "", "input image path or URL (jpg/png/webp)")
	flags.StringVar(&backend, "backend", "", "detection backend: ollama, llamacpp or heuristic (default from config)")
	flags.StringVar(&model, "model", "", "vision model name (default from config)")
	flags.StringVar(&url, "url", "", "backend server URL")
	flags.Float64Var(&knownUm, "known-um", 0, "bar length in micrometers when the annotation is unreadable")
	flags.BoolVar(&save, "save", false, "persist the suggested scale")
	flags.StringVar(&sendFmt, "sendfmt", "jpg", "format sent to the model: jpg|png")
	flags.IntVar(&sendSize, "sendsize", 1536, "max long side sent to the model (px), 0=original")
	flags.IntVar(&sendQ, "sendq", 85, "JPEG quality for the image sent to the model (1-100)")

	_ = cmd.MarkFlagRequired("image")

	return cmd
}

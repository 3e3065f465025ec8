package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/menta2k/microscope-measure/pkg/annotate"
	"github.com/menta2k/microscope-measure/pkg/types"

	micromeasure "github.com/menta2k/microscope-measure"
	"github.com/menta2k/microscope-measure/internal/config"
)

// loadDrawing reads canvas JSON, either a {"objects": [...]} document or a
// bare object array.
func loadDrawing(path string) ([]types.CanvasObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read drawing file: %w", err)
	}

	var drawing types.Drawing
	if err := json.Unmarshal(data, &drawing); err == nil && drawing.Objects != nil {
		return drawing.Objects, nil
	}

	var objects []types.CanvasObject
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse drawing file: %w", err)
	}
	return objects, nil
}

// newTool builds the measurement tool from the merged configuration.
func newTool(cfg *config.Config) (*micromeasure.Tool, error) {
	strokeColor, err := config.ParseHexColor(cfg.Annotation.Color)
	if err != nil {
		return nil, err
	}

	return micromeasure.NewWithOptions(micromeasure.Options{
		DefaultUmPerPx:  cfg.Scale.DefaultUmPerPx,
		KnownLengthUm:   cfg.Scale.KnownLengthUm,
		SettingsPath:    cfg.Scale.SettingsPath,
		MaxDisplayWidth: cfg.Display.MaxWidth,
		Annotation: annotate.Config{
			StrokeWidth: cfg.Annotation.StrokeWidth,
			Color:       strokeColor,
			FontSize:    cfg.Annotation.FontSize,
		},
	}), nil
}

package scalebar

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/microscope-measure/pkg/types"
)

// ParseResult turns a raw vision model response into a ScaleBarResult. Model
// output is unreliable, so junk never becomes an error: anything that cannot
// be parsed comes back as a not-found result and the caller decides what to
// do with it.
func ParseResult(raw string) *types.ScaleBarResult {
	raw = sanitizeModelJSON(raw)

	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return &types.ScaleBarResult{Found: false, Text: "non-json response"}
	}

	var result types.ScaleBarResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return &types.ScaleBarResult{Found: false, Text: "no json found"}
		}
		if err2 := json.Unmarshal([]byte(raw[start:end+1]), &result); err2 != nil {
			return &types.ScaleBarResult{Found: false, Text: "parse error"}
		}
	}

	result.X1 = clamp01(result.X1)
	result.Y1 = clamp01(result.Y1)
	result.X2 = clamp01(result.X2)
	result.Y2 = clamp01(result.Y2)

	// A bar with coincident endpoints cannot calibrate anything.
	if result.Found && result.X1 == result.X2 && result.Y1 == result.Y2 {
		result.Found = false
	}
	return &result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sanitizeModelJSON removes code fences, comments, and trailing commas from
// a model response before unmarshalling.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	// Remove /* ... */ block comments
	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	// Remove // line/inline comments
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")
	reInline := regexp.MustCompile(`(?m)//.*$`)
	raw = reInline.ReplaceAllString(raw, "")

	// Remove trailing commas before } or ]
	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

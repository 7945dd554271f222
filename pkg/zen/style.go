package zen

import (
	"fmt"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

const (
	unfinishedSegmentColor = "rgba(0, 0, 0, 0.6)"
	barMarkerColor         = "#999999"
	zoneBackgroundColor    = "rgba(33, 150, 243, 0.12)"
	zoneBorderColor        = "rgba(33, 150, 243, 0.5)"
)

// line styles of the host
const (
	lineStyleSolid  = 0
	lineStyleDotted = 1
)

func finishedSegmentOptions(s types.Segment) chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape:            chart.ShapeTrendLine,
		Lock:             true,
		DisableSelection: true,
		Overrides: map[string]interface{}{
			"linewidth": 1,
			"linecolor": s.Direction.Color(),
		},
	}
}

func unfinishedSegmentOptions(types.Segment) chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape:            chart.ShapeTrendLine,
		Lock:             true,
		DisableSelection: true,
		Overrides: map[string]interface{}{
			"linewidth": 2,
			"linestyle": lineStyleSolid,
			"linecolor": unfinishedSegmentColor,
		},
	}
}

func zoneOptions() chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape:            chart.ShapeRectangle,
		Lock:             true,
		DisableSelection: true,
		ZOrder:           chart.ZOrderBottom,
		Overrides: map[string]interface{}{
			"backgroundColor": zoneBackgroundColor,
			"color":           zoneBorderColor,
			"fillBackground":  true,
			"linewidth":       1,
		},
	}
}

func divergenceArrowOptions(d types.Divergence, owner chart.StudyID) chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape:        chart.ShapeArrow,
		Lock:         true,
		OwnerStudyID: owner,
		ZOrder:       chart.ZOrderTop,
		Overrides: map[string]interface{}{
			"linewidth": 2,
			"linecolor": d.Direction.Color(),
		},
	}
}

func signalArrowOptions(d types.Divergence) chart.ShapeOptions {
	kind := chart.ShapeArrowUp
	if d.Kind.IsSell() {
		kind = chart.ShapeArrowDown
	}

	return chart.ShapeOptions{
		Shape:            kind,
		Text:             string(d.Kind),
		Lock:             true,
		DisableSelection: true,
		ZOrder:           chart.ZOrderTop,
		Overrides: map[string]interface{}{
			"color": d.Direction.Color(),
		},
	}
}

func barMarkerOptions(owner chart.StudyID) chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape:        chart.ShapeRay,
		OwnerStudyID: owner,
		ZOrder:       chart.ZOrderBottom,
		Overrides: map[string]interface{}{
			"linestyle": lineStyleDotted,
			"linewidth": 2,
			"linecolor": barMarkerColor,
			"showTime":  false,
		},
	}
}

func boundaryLineOptions(d types.Divergence) chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape: chart.ShapeVerticalLine,
		Overrides: map[string]interface{}{
			"linestyle": lineStyleDotted,
			"linewidth": 2,
			"linecolor": d.Direction.Color(),
			"showTime":  false,
		},
	}
}

func noteOptions(d types.Divergence) chart.ShapeOptions {
	return chart.ShapeOptions{
		Shape: chart.ShapeNote,
		Text:  noteText(d),
	}
}

func noteText(d types.Divergence) string {
	return fmt.Sprintf("macd_area | %.2f | %.2f", d.MarkerA.Value, d.MarkerB.Value)
}

// macdStudyOptions returns the study drawing the oscillator of an indicator config.
func macdStudyOptions(c types.IndicatorConfig) chart.StudyOptions {
	name := "MACD-XD"
	overrides := map[string]interface{}{
		"showLabelsOnPriceScale": false,
		"showLegendValues":       true,
	}

	if c.SourceOrDefault() == types.PriceSourceVolume {
		name = "MACD"
		overrides["palettes.palette_0.colors.0.color"] = "rgba(0, 0, 0, 0.65)"
		overrides["palettes.palette_0.colors.1.color"] = "rgba(0, 0, 0, 0.3)"
		overrides["palettes.palette_0.colors.2.color"] = "rgba(152, 6, 101, 0.3)"
		overrides["palettes.palette_0.colors.3.color"] = "rgba(152, 6, 101, 0.7)"
	}

	return chart.StudyOptions{
		Name: name,
		Inputs: map[string]interface{}{
			"in_0": c.Fast,
			"in_1": c.Slow,
			"in_2": c.Signal,
			"in_3": string(c.SourceOrDefault()),
		},
		Overrides: overrides,
	}
}

var movingAveragePeriodInputs = []string{
	"firstPeriods", "secondPeriods", "thirdPeriods", "fourthPeriods", "fifthPeriods", "sixthPeriods",
}

func movingAverageStudyOptions(periods []int) chart.StudyOptions {
	inputs := map[string]interface{}{"method": "Simple"}
	for i, p := range periods {
		if i >= len(movingAveragePeriodInputs) {
			break
		}
		inputs[movingAveragePeriodInputs[i]] = p
	}

	return chart.StudyOptions{
		Name:   "Moving Average Multiple",
		Inputs: inputs,
		Overrides: map[string]interface{}{
			"showLabelsOnPriceScale": false,
			"showLegendValues":       true,
		},
	}
}

func volumeStudyOptions() chart.StudyOptions {
	return chart.StudyOptions{Name: "Volume", Overlay: true}
}

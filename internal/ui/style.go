package ui

import (
	"strconv"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold       = color.New(color.Bold).SprintFunc()
	Dim        = color.New(color.Faint).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	Red        = color.New(color.FgRed).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	Magenta    = color.New(color.FgMagenta).SprintFunc()
	BoldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen  = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldWhite  = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// scenarioColors is a palette of distinct bold colors for differentiating
// batch scenarios in interleaved output.
var scenarioColors = []func(a ...interface{}) string{
	color.New(color.Bold, color.FgMagenta).SprintFunc(),
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// scenarioColorIndex hashes a scenario name to a palette index.
func scenarioColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(scenarioColors)))
}

// ScenarioPrefix returns a colored [name] prefix string. The color is
// picked from the palette by a hash of the name, so the same name always
// gets the same color and different names can share one.
func ScenarioPrefix(name string) string {
	c := scenarioColors[scenarioColorIndex(name)]
	return Dim("[") + c(name) + Dim("]")
}

// DelayIcon returns a compact status glyph for a signed delay.
func DelayIcon(delayMinutes int) string {
	switch {
	case delayMinutes > 0:
		return Yellow("▸")
	case delayMinutes < 0:
		return Green("◂")
	default:
		return Dim("·")
	}
}

// DelayLabel renders a signed delay in minutes, colored by direction.
func DelayLabel(delayMinutes int) string {
	switch {
	case delayMinutes > 0:
		return Yellow(plusMinutes(delayMinutes))
	case delayMinutes < 0:
		return Green(plusMinutes(delayMinutes))
	default:
		return Dim("±0m")
	}
}

func plusMinutes(m int) string {
	if m > 0 {
		return "+" + strconv.Itoa(m) + "m"
	}
	return strconv.Itoa(m) + "m"
}

// OutcomeIcon returns a colored glyph for a batch scenario outcome.
func OutcomeIcon(ok bool) string {
	if ok {
		return Green("✓")
	}
	return Red("✗")
}

package top

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coral-mesh/pprofd/internal/inspect"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().Bold(true)

	hotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// hotPct marks rows that dominate the profile.
const hotPct = 20.0

// render writes a pprof-style top table. Function names are truncated to
// fit width when styled output is enabled.
func render(w io.Writer, sum *inspect.Summary, styled bool, width int) error {
	var b strings.Builder

	title := fmt.Sprintf("Showing top %d functions by %s (total %s)",
		len(sum.Functions), sum.SampleType, formatValue(sum.Total, sum.Unit))
	header := fmt.Sprintf("%12s %7s %12s  %s", "flat", "flat%", "cum", "function")
	if styled {
		title = titleStyle.Render(title)
		header = headerStyle.Render(header)
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n")

	nameWidth := width - 36
	for _, f := range sum.Functions {
		name := f.Function
		if styled && nameWidth > 8 && lipgloss.Width(name) > nameWidth {
			name = "…" + name[len(name)-nameWidth+1:]
		}

		row := fmt.Sprintf("%12s %6.2f%% %12s  %s",
			formatValue(f.Flat, sum.Unit), f.Pct, formatValue(f.Cum, sum.Unit), name)
		if styled {
			switch {
			case f.Pct >= hotPct:
				row = hotStyle.Render(row)
			case f.Flat == 0:
				row = dimStyle.Render(row)
			}
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatValue renders a value in its unit the way pprof prints them.
func formatValue(v int64, unit string) string {
	switch unit {
	case "bytes":
		return formatBytes(v)
	case "nanoseconds":
		return formatNanos(v)
	default:
		return fmt.Sprintf("%d", v)
	}
}

func formatBytes(v int64) string {
	const unit = 1024
	if v < unit && v > -unit {
		return fmt.Sprintf("%dB", v)
	}
	f := float64(v)
	for _, suffix := range []string{"kB", "MB", "GB", "TB"} {
		f /= unit
		if f < unit && f > -unit {
			return fmt.Sprintf("%.2f%s", f, suffix)
		}
	}
	return fmt.Sprintf("%.2fPB", f/unit)
}

func formatNanos(v int64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fs", float64(v)/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fms", float64(v)/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fus", float64(v)/1e3)
	default:
		return fmt.Sprintf("%dns", v)
	}
}

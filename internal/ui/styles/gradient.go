package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ApplyGradient renders text with a horizontal color gradient.
func ApplyGradient(text string, from, to lipgloss.Color) string {
	return applyGradient(graphemes(text), false, from, to)
}

// ApplyBoldGradient renders bold text with a horizontal color gradient.
func ApplyBoldGradient(text string, from, to lipgloss.Color) string {
	return applyGradient(graphemes(text), true, from, to)
}

// GradientFill renders n copies of glyph colored as the first n cells of a
// gradient spanning total cells. Bars drawn this way keep their colors
// anchored while they grow.
func GradientFill(glyph string, n, total int, from, to lipgloss.Color) string {
	if n <= 0 || total <= 0 {
		return ""
	}
	n = min(n, total)
	colors := blendColors(total, from, to)

	var b strings.Builder
	for i := range n {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i])))
		b.WriteString(style.Render(glyph))
	}
	return b.String()
}

// graphemes splits text into grapheme clusters so multi-rune characters get
// a single color.
func graphemes(text string) []string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	return clusters
}

func applyGradient(clusters []string, bold bool, from, to lipgloss.Color) string {
	if len(clusters) == 0 {
		return ""
	}

	if len(clusters) == 1 {
		style := lipgloss.NewStyle().Foreground(from)
		if bold {
			style = style.Bold(true)
		}
		return style.Render(clusters[0])
	}

	colors := blendColors(len(clusters), from, to)

	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i])))
		if bold {
			style = style.Bold(true)
		}
		b.WriteString(style.Render(cluster))
	}

	return b.String()
}

// blendColors returns size colors blended from from to to in HCL space.
func blendColors(size int, from, to lipgloss.Color) []color.Color {
	c1, _ := colorful.MakeColor(lipglossToColor(from))
	if size < 2 {
		return []color.Color{c1}
	}
	c2, _ := colorful.MakeColor(lipglossToColor(to))

	colors := make([]color.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = c1.BlendHcl(c2, t).Clamped()
	}

	return colors
}

// lipglossToColor converts a "#rrggbb" lipgloss.Color to a color.Color.
func lipglossToColor(c lipgloss.Color) color.Color {
	hex := string(c)
	if len(hex) == 7 && hex[0] == '#' {
		col, err := colorful.Hex(hex)
		if err == nil {
			return col
		}
	}
	// ANSI palette colors have no RGB value here
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

func colorToHex(c color.Color) string {
	if cf, ok := c.(colorful.Color); ok {
		return cf.Hex()
	}
	r, g, b, _ := c.RGBA()
	return colorful.Color{
		R: float64(r) / 65535.0,
		G: float64(g) / 65535.0,
		B: float64(b) / 65535.0,
	}.Hex()
}

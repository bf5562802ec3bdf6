package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func grid(width, height int, fill string) string {
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(fill, width)
	}
	return strings.Join(lines, "\n")
}

func TestPlace(t *testing.T) {
	out := Place(grid(6, 3, "."), "ab\ncd", 2, 1, 6)

	assert.Equal(t, "......\n..ab..\n..cd..", out)
}

func TestPlace_ClipsAtRightEdge(t *testing.T) {
	out := Place(grid(4, 1, "."), "abcd", 2, 0, 4)

	assert.Equal(t, "..ab", out)
}

func TestPlace_ExtendsShortBase(t *testing.T) {
	out := Place("..", "x", 1, 2, 3)

	assert.Equal(t, "..\n\n x ", out)
}

func TestPlace_KeepsStyledBase(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("abcdef")

	out := Place(styled, "XY", 2, 0, 6)

	assert.Equal(t, "abXYef", ansi.Strip(out))
}

func TestCenter(t *testing.T) {
	out := Center(grid(8, 5, "."), "ab\ncd\nef", 8, 5)

	assert.Equal(t, strings.Join([]string{
		"........",
		"...ab...",
		"...cd...",
		"...ef...",
		"........",
	}, "\n"), out)
}

func TestCenter_BoxLargerThanView(t *testing.T) {
	out := Center(grid(3, 1, "."), "abcdef", 3, 1)

	assert.Equal(t, "abc", out)
}

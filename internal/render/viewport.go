package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"aviary/internal/scape"
)

// Headings for eight compass sectors, counter-clockwise from "up".
var birdGlyphs = [8]rune{'↑', '↖', '←', '↙', '↓', '↘', '→', '↗'}

const foodGlyph = '•'

var (
	foodStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	birdStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Draw paints the world above a one-line status bar. The world's +Y axis
// points up the screen.
func Draw(screen tcell.Screen, view scape.WorldView, status string) {
	screen.Clear()
	width, height := screen.Size()
	fieldHeight := height - 1
	if width <= 0 || fieldHeight <= 0 || view.Size <= 0 {
		drawText(screen, 0, height-1, width, status, statusStyle)
		screen.Show()
		return
	}

	for _, food := range view.Foods {
		x, y := project(food.X, food.Y, view.Size, width, fieldHeight)
		screen.SetContent(x, y, foodGlyph, nil, foodStyle)
	}
	for _, animal := range view.Animals {
		x, y := project(animal.X, animal.Y, view.Size, width, fieldHeight)
		screen.SetContent(x, y, BirdGlyph(animal.Rotation), nil, birdStyle)
	}

	drawText(screen, 0, height-1, width, status, statusStyle)
	screen.Show()
}

// BirdGlyph picks the arrow closest to a heading in radians.
func BirdGlyph(rotation float64) rune {
	sector := int(math.Round(rotation/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return birdGlyphs[sector]
}

func project(x, y, size float64, width, height int) (int, int) {
	col := int(x / size * float64(width))
	row := int((1 - y/size) * float64(height))
	return clampInt(col, 0, width-1), clampInt(row, 0, height-1)
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if y < 0 {
		return
	}
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

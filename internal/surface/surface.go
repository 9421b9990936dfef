// Package surface implements the drawable cell grid the engine renders into.
//
// A Surface is a terminal-sized grid of cells. Each cell holds one rune and
// one foreground colour. Pixel drawing uses braille patterns, giving every
// cell a 2x4 sub-pixel grid, so the pixel space of a w x h surface is
// (2w) x (4h).
package surface

import (
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tinytelemetry/nucleus/internal/model"
)

const brailleBase = 0x2800

// Braille dot offsets, indexed [subY][subX]:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

var grainGlyphs = []rune{'░', '▒', '·', '˙', '∙'}

// Cell is one character position of the surface.
type Cell struct {
	Ch rune
	Fg model.Color
}

func (c Cell) empty() bool { return c.Ch == 0 || c.Ch == ' ' || c.Ch == brailleBase }

func (c Cell) braille() bool { return c.Ch >= brailleBase && c.Ch <= brailleBase+0xff }

// Surface is a colour cell grid. It is owned by the engine; renderers receive
// it per call and must not retain it.
type Surface struct {
	width, height int
	cells         []Cell
	background    model.Color
}

// New returns a cleared surface of w x h cells. Negative sizes are clamped to zero.
func New(w, h int) *Surface {
	s := &Surface{background: colorful.Color{}}
	s.Resize(w, h)
	return s
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Background is the colour fades blend toward.
func (s *Surface) Background() model.Color { return s.background }

func (s *Surface) SetBackground(c model.Color) { s.background = c }

// Resize reallocates the grid. Content is cleared.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.width, s.height = w, h
	s.cells = make([]Cell, w*h)
}

// Clear blanks every cell.
func (s *Surface) Clear() {
	for i := range s.cells {
		s.cells[i] = Cell{}
	}
}

func (s *Surface) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

// At returns the cell at (x, y); out of range positions return an empty cell.
func (s *Surface) At(x, y int) Cell {
	if !s.inBounds(x, y) {
		return Cell{}
	}
	return s.cells[y*s.width+x]
}

// SetCell writes one rune. Out of range writes are dropped.
func (s *Surface) SetCell(x, y int, r rune, c model.Color) {
	if !s.inBounds(x, y) {
		return
	}
	s.cells[y*s.width+x] = Cell{Ch: r, Fg: c}
}

// Text writes str starting at (x, y) and returns the number of cells used.
func (s *Surface) Text(x, y int, str string, c model.Color) int {
	n := 0
	for _, r := range str {
		s.SetCell(x+n, y, r, c)
		n++
	}
	return n
}

// TextCentered writes str horizontally centred on row y.
func (s *Surface) TextCentered(y int, str string, c model.Color) {
	n := utf8.RuneCountInString(str)
	s.Text((s.width-n)/2, y, str, c)
}

// TextRight writes str so that it ends at column x (exclusive).
func (s *Surface) TextRight(x, y int, str string, c model.Color) {
	s.Text(x-utf8.RuneCountInString(str), y, str, c)
}

// Blit copies pre-rendered multi-line output (for example a chart) onto the
// surface in a single colour. ANSI styling in text is discarded.
func (s *Surface) Blit(x, y int, text string, c model.Color) {
	for i, line := range strings.Split(ansi.Strip(text), "\n") {
		col := 0
		for _, r := range line {
			if r != ' ' {
				s.SetCell(x+col, y+i, r, c)
			}
			col++
		}
	}
}

// Pixel sets one braille sub-pixel. Pixel space is (2*Width) x (4*Height).
func (s *Surface) Pixel(px, py int, c model.Color) {
	if px < 0 || py < 0 {
		return
	}
	col, row := px/2, py/4
	if !s.inBounds(col, row) {
		return
	}
	idx := row*s.width + col
	cell := s.cells[idx]
	if !cell.braille() {
		cell.Ch = brailleBase
	}
	cell.Ch |= pixelMap[py%4][px%2]
	cell.Fg = c
	s.cells[idx] = cell
}

// Line draws a sub-pixel line using Bresenham's algorithm. The segment is
// clipped to the pixel grid first, so the walk never leaves the surface.
func (s *Surface) Line(x0, y0, x1, y1 int, c model.Color) {
	if !s.pixelInBounds(x0, y0) || !s.pixelInBounds(x1, y1) {
		var ok bool
		x0, y0, x1, y1, ok = s.clipLine(x0, y0, x1, y1)
		if !ok {
			return
		}
	}
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		s.Pixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (s *Surface) pixelInBounds(px, py int) bool {
	return px >= 0 && py >= 0 && px < s.width*2 && py < s.height*4
}

// clipLine trims the segment to the pixel grid (Liang-Barsky). ok is false
// when nothing of the segment is visible.
func (s *Surface) clipLine(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	if s.width <= 0 || s.height <= 0 {
		return 0, 0, 0, 0, false
	}
	fx0, fy0 := float64(x0), float64(y0)
	dx, dy := float64(x1)-fx0, float64(y1)-fy0
	maxX, maxY := float64(s.width*2-1), float64(s.height*4-1)

	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, fx0},
		{dx, maxX - fx0},
		{-dy, fy0},
		{dy, maxY - fy0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}

	at := func(t float64) (int, int) {
		px := math.Round(fx0 + t*dx)
		py := math.Round(fy0 + t*dy)
		return int(math.Max(0, math.Min(maxX, px))), int(math.Max(0, math.Min(maxY, py)))
	}
	ax, ay := at(t0)
	bx, by := at(t1)
	return ax, ay, bx, by, true
}

// HLine repeats r for n cells from (x, y).
func (s *Surface) HLine(x, y, n int, r rune, c model.Color) {
	if x < 0 {
		n += x
		x = 0
	}
	n = min(n, s.width-x)
	for i := 0; i < n; i++ {
		s.SetCell(x+i, y, r, c)
	}
}

// Box draws a rounded border around the w x h rectangle at (x, y).
func (s *Surface) Box(x, y, w, h int, c model.Color) {
	if w < 2 || h < 2 {
		return
	}
	s.HLine(x+1, y, w-2, '─', c)
	s.HLine(x+1, y+h-1, w-2, '─', c)
	for i := 1; i < h-1; i++ {
		s.SetCell(x, y+i, '│', c)
		s.SetCell(x+w-1, y+i, '│', c)
	}
	s.SetCell(x, y, '╭', c)
	s.SetCell(x+w-1, y, '╮', c)
	s.SetCell(x, y+h-1, '╰', c)
	s.SetCell(x+w-1, y+h-1, '╯', c)
}

var vBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var hBlocks = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// VBar draws a vertical bar growing upward from row base (inclusive) with a
// height given in cells; fractional heights use eighth blocks.
func (s *Surface) VBar(x, base int, cells float64, c model.Color) {
	if !(cells > 0) || base < 0 {
		return
	}
	cells = math.Min(cells, float64(base+1))
	eighths := int(cells*8 + 0.5)
	for row := 0; eighths > 0; row++ {
		step := min(eighths, 8)
		s.SetCell(x, base-row, vBlocks[step], c)
		eighths -= step
	}
}

// HBar draws a horizontal bar of width cells filled to frac (0..1).
func (s *Surface) HBar(x, y, width int, frac float64, c model.Color) {
	if width <= 0 {
		return
	}
	frac = clamp01(frac)
	eighths := int(frac*float64(width)*8 + 0.5)
	for col := 0; col < width && eighths > 0; col++ {
		step := min(eighths, 8)
		s.SetCell(x+col, y, hBlocks[step], c)
		eighths -= step
	}
}

// Fade blends every cell colour toward the background. alpha 1 keeps the
// original colour, alpha 0 makes the cell indistinguishable from the background.
func (s *Surface) Fade(alpha float64) {
	alpha = clamp01(alpha)
	if alpha == 1 {
		return
	}
	for i := range s.cells {
		if s.cells[i].empty() {
			continue
		}
		s.cells[i].Fg = s.background.BlendRgb(s.cells[i].Fg, alpha).Clamped()
	}
}

// Grain scatters noise glyphs over roughly density (0..1) of the cells.
func (s *Surface) Grain(rng *rand.Rand, density float64, c model.Color) {
	density = clamp01(density)
	if density == 0 || rng == nil {
		return
	}
	for i := range s.cells {
		if rng.Float64() < density {
			s.cells[i] = Cell{Ch: grainGlyphs[rng.IntN(len(grainGlyphs))], Fg: c}
		}
	}
}

// Scanline paints row y: blank cells get a rule, drawn cells take colour c.
func (s *Surface) Scanline(y int, c model.Color) {
	if y < 0 || y >= s.height {
		return
	}
	for x := 0; x < s.width; x++ {
		idx := y*s.width + x
		if s.cells[idx].empty() {
			s.cells[idx] = Cell{Ch: '─', Fg: c}
			continue
		}
		s.cells[idx].Fg = c
	}
}

// String renders the surface with lipgloss, one style per run of equal colour.
func (s *Surface) String() string {
	var b strings.Builder
	for y := 0; y < s.height; y++ {
		var run strings.Builder
		var runColor model.Color
		runStyled := false

		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyled {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor.Hex())).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}

		for x := 0; x < s.width; x++ {
			cell := s.cells[y*s.width+x]
			styled := !cell.empty()
			if styled != runStyled || (styled && cell.Fg != runColor) {
				flush()
				runStyled = styled
				runColor = cell.Fg
			}
			if cell.empty() {
				run.WriteRune(' ')
			} else {
				run.WriteRune(cell.Ch)
			}
		}
		flush()
		if y < s.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Plain renders the surface without colour; blank cells become spaces.
func (s *Surface) Plain() string {
	var b strings.Builder
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			cell := s.cells[y*s.width+x]
			if cell.empty() {
				b.WriteRune(' ')
			} else {
				b.WriteRune(cell.Ch)
			}
		}
		if y < s.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

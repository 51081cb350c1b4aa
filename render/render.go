// Package render draws landscape snapshots as ANSI-colored grids on a
// terminal. It consumes only the read-only reporting surface.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm-cable/scape/world"
)

// colorMap maps resource levels to background colors. Levels above the
// ramp are clamped to the last entry.
var colorMap = []string{
	"\033[30;100m",
	"\033[30;106m",
	"\033[30;46m",
	"\033[30;104m",
	"\033[30;44m",
	"\033[30;45m",
	"\033[30;105m",
	"\033[30;101m",
	"\033[30;41m",
	"\033[30;40m",
}

const (
	reset        = "\033[0m"
	agentColor   = "\033[30;43m"
	clearScreen  = "\033[2J"
	cursorToHome = "\033[H"
	headerStyle  = "\033[97;1m"
)

// Renderer writes snapshot frames to a terminal.
type Renderer struct {
	w io.Writer
}

// New creates a renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Frame clears the terminal and draws the snapshot: header with tick
// progress, color key, the grid, and the live population count.
func (r *Renderer) Frame(snap world.Snapshot) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(cursorToHome)

	rule := strings.Repeat("=", snap.Height*2)
	progress := ""
	if snap.TotalTicks > 0 {
		progress = fmt.Sprintf(" %d/%d", snap.Tick, snap.TotalTicks)
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%sLandscape Map%s:%s\n", headerStyle, progress, reset)
	b.WriteString(rule + "\n")

	b.WriteString("Key:\n")
	for i, color := range colorMap {
		sep := "; "
		if (i+1)%4 == 0 {
			sep = "\n"
		}
		fmt.Fprintf(&b, "%d = %s  %s%s", i, color, reset, sep)
	}
	fmt.Fprintf(&b, "Agent = %s  %s\n", agentColor, reset)
	b.WriteString(rule + "\n")

	for x := 0; x < snap.Width; x++ {
		for y := 0; y < snap.Height; y++ {
			cell := snap.At(x, y)
			if cell.Occupied {
				b.WriteString(agentColor + "  " + reset)
				continue
			}
			level := int(cell.Resource)
			if level < 0 {
				level = 0
			}
			if level >= len(colorMap) {
				level = len(colorMap) - 1
			}
			b.WriteString(colorMap[level] + "  " + reset)
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Agents: %d\n", snap.Alive)
	b.WriteString(rule + "\n")

	io.WriteString(r.w, b.String())
}

package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Bar renders a single-line progress bar. A nil or disabled Bar is a no-op,
// so callers never need to check whether output is a terminal.
type Bar struct {
	total      int64
	current    int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	lastDir    string
	enabled    bool
	lastUpdate time.Time
}

func New(total int64, w io.Writer, enabled bool) *Bar {
	return &Bar{
		total:      total,
		width:      40,
		writer:     w,
		enabled:    enabled && w != nil,
		lastUpdate: time.Now(),
	}
}

func (b *Bar) SetDirectory(dir string) {
	if b == nil || !b.enabled {
		return
	}
	b.mu.Lock()
	b.lastDir = filepath.Base(dir)
	b.mu.Unlock()
}

func (b *Bar) Increment() {
	if b == nil || !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++

	// Redraw at most every 100ms.
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// render must be called with mu held.
func (b *Bar) render() {
	if b.total == 0 {
		return
	}

	filled := int(float64(b.width) * float64(b.current) / float64(b.total))
	if filled > b.width {
		filled = b.width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.width-filled)
	percent := int(float64(b.current) / float64(b.total) * 100)

	var dir string
	if b.lastDir != "" {
		dir = " | " + b.lastDir
	}
	fmt.Fprintf(b.writer, "\r\033[K[%s] %3d%% (%d/%d)%s", bar, percent, b.current, b.total, dir)
}

func (b *Bar) Finish() {
	if b == nil || !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = b.total
	b.render()
	fmt.Fprint(b.writer, "\n")
}

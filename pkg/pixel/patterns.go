package pixel

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// HeartPattern is the fixed heart glyph used for interoperability testing.
var HeartPattern = [PayloadSize]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x1C, 0x00, 0x00, 0x1C, 0x00, 0x00, 0x00,
	0xE0, 0xFC, 0xFC, 0xFC, 0xFC, 0xFC, 0x00, 0x00,
	0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0x00, 0x00,
	0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0x00, 0x00,
	0x00, 0xE0, 0xE0, 0xE0, 0xE0, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x03, 0x03, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// Solid returns a grid with every pixel set to c.
func Solid(c byte) *Grid {
	return new(Grid).Fill(c)
}

// Checkerboard alternates White and Black by the parity of row+col,
// starting with White at (0, 0).
func Checkerboard() *Grid {
	var g Grid
	for i := range g {
		for j := range g[i] {
			if (i+j)%2 == 0 {
				g[i][j] = White
			}
		}
	}
	return &g
}

// Gradient ramps red down the rows and green across the columns.
// Row 0 carries no red and column 0 no green.
func Gradient() *Grid {
	var g Grid
	for i := range g {
		for j := range g[i] {
			var r, gr int
			if i > 0 {
				r = minInt(i*int(RedMask)/(Size-1), int(RedMask))
			}
			if j > 0 {
				// Already in the green field. The legacy firmware test shifted
				// this left by 3 more, spilling green into the red bits.
				gr = minInt(j*int(GreenMask)/(Size-1), int(GreenMask))
			}
			g[i][j] = byte(r) | byte(gr)
		}
	}
	return &g
}

// Heart returns the heart glyph.
func Heart() *Grid {
	return FromPayload(HeartPattern)
}

// Random fills a grid with uniformly random bytes from src.
func Random(src *rand.Rand) *Grid {
	var g Grid
	for i := range g {
		for j := range g[i] {
			g[i][j] = byte(src.Intn(256))
		}
	}
	return &g
}

// Pattern generates a fresh grid for each transfer attempt.
type Pattern interface {
	Grid() *Grid
}

// PatternFunc is the func form of Pattern.
type PatternFunc func() *Grid

// Grid implements Pattern.
func (f PatternFunc) Grid() *Grid {
	return f()
}

// Fixed is a Pattern backed by a constant payload table.
type Fixed [PayloadSize]byte

// Grid implements Pattern.
func (f Fixed) Grid() *Grid {
	return FromPayload(f)
}

// Registry maps pattern names to generators.
type Registry struct {
	lock     sync.RWMutex
	patterns map[string]Pattern
}

// NewRegistry creates a Registry with the builtin patterns.
func NewRegistry() *Registry {
	r := &Registry{patterns: make(map[string]Pattern)}
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	var srcLock sync.Mutex
	r.Register("white", PatternFunc(func() *Grid { return Solid(White) }))
	r.Register("black", PatternFunc(func() *Grid { return Solid(Black) }))
	r.Register("checkerboard", PatternFunc(Checkerboard))
	r.Register("gradient", PatternFunc(Gradient))
	r.Register("heart", Fixed(HeartPattern))
	r.Register("random", PatternFunc(func() *Grid {
		srcLock.Lock()
		defer srcLock.Unlock()
		return Random(src)
	}))
	return r
}

// Register adds or replaces a named pattern.
func (r *Registry) Register(name string, p Pattern) {
	r.lock.Lock()
	r.patterns[name] = p
	r.lock.Unlock()
}

// RegisterTable adds a fixed pattern from a row-major table.
func (r *Registry) RegisterTable(name string, table []byte) error {
	if len(table) != PayloadSize {
		return fmt.Errorf("pattern %q: need %d bytes, got %d", name, PayloadSize, len(table))
	}
	var f Fixed
	copy(f[:], table)
	r.Register(name, f)
	return nil
}

// Lookup finds a pattern by name.
func (r *Registry) Lookup(name string) (Pattern, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	p, ok := r.patterns[name]
	return p, ok
}

// Names lists registered pattern names in sorted order.
func (r *Registry) Names() []string {
	r.lock.RLock()
	names := make([]string, 0, len(r.patterns))
	for name := range r.patterns {
		names = append(names, name)
	}
	r.lock.RUnlock()
	sort.Strings(names)
	return names
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

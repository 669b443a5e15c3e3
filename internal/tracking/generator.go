// Package tracking issues the human-readable ids citizens use to follow a report.
//
// Ids have the form PTH-<year>-<nnnn>. The numeric suffix is random, so
// uniqueness is best effort: the generator avoids repeating ids it already
// knows about, and the issue store remains the authoritative guard.
package tracking

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"sync"
	"time"
)

const (
	// Prefix starts every tracking id.
	Prefix = "PTH"

	minSuffix = 1000
	maxSuffix = 9999
	// suffixSpace is the number of distinct suffixes available per year.
	suffixSpace = maxSuffix - minSuffix + 1
)

var idPattern = regexp.MustCompile(`^PTH-\d{4}-\d{4}$`)

// Valid reports whether id has the tracking id format.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Generator produces tracking ids. It is safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	rnd  *rand.Rand
	seen map[int]map[int]struct{} // year -> used suffixes
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the time source used for the year component.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithSeed makes the suffix sequence deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewGenerator creates a Generator seeded from the runtime's random source.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rnd:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		seen: make(map[int]map[int]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a new tracking id for the current year.
// Suffixes already issued or reserved for that year are skipped until the
// year's space is exhausted; after that any suffix may be returned.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	year := g.now().Year()
	used := g.seen[year]
	if used == nil {
		used = make(map[int]struct{})
		g.seen[year] = used
	}

	suffix := minSuffix + g.rnd.IntN(suffixSpace)
	if len(used) < suffixSpace {
		for {
			if _, taken := used[suffix]; !taken {
				break
			}
			suffix = minSuffix + g.rnd.IntN(suffixSpace)
		}
	}
	used[suffix] = struct{}{}

	return format(year, suffix)
}

// Reserve marks existing ids as taken so Next does not hand them out again.
// Ids that do not have the tracking format or a suffix Next could produce
// are ignored.
func (g *Generator) Reserve(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range ids {
		year, suffix, ok := parse(id)
		if !ok || suffix < minSuffix || suffix > maxSuffix {
			continue
		}
		used := g.seen[year]
		if used == nil {
			used = make(map[int]struct{})
			g.seen[year] = used
		}
		used[suffix] = struct{}{}
	}
}

func format(year, suffix int) string {
	return fmt.Sprintf("%s-%04d-%04d", Prefix, year, suffix)
}

func parse(id string) (year, suffix int, ok bool) {
	if !Valid(id) {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(id[4:8])
	suffix, _ = strconv.Atoi(id[9:13])
	return year, suffix, true
}

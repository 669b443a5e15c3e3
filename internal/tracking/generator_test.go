package tracking_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/panchayat/internal/tracking"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestNext_Format(t *testing.T) {
	g := tracking.NewGenerator(tracking.WithClock(fixedClock(2026)))

	id := g.Next()
	assert.Regexp(t, `^PTH-2026-\d{4}$`, id)
	assert.True(t, tracking.Valid(id))

	var suffix int
	_, err := fmt.Sscanf(id, "PTH-2026-%d", &suffix)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, suffix, 1000)
	assert.LessOrEqual(t, suffix, 9999)
}

func TestNext_DeterministicWithSeed(t *testing.T) {
	a := tracking.NewGenerator(tracking.WithClock(fixedClock(2026)), tracking.WithSeed(42))
	b := tracking.NewGenerator(tracking.WithClock(fixedClock(2026)), tracking.WithSeed(42))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestNext_NoCollisionsWithinYear(t *testing.T) {
	g := tracking.NewGenerator(tracking.WithClock(fixedClock(2026)), tracking.WithSeed(7))

	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := g.Next()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s after %d draws", id, i)
		seen[id] = struct{}{}
	}
}

func TestNext_ExhaustedYearStillReturnsIDs(t *testing.T) {
	g := tracking.NewGenerator(tracking.WithClock(fixedClock(2026)), tracking.WithSeed(1))

	for i := 1000; i <= 9999; i++ {
		g.Reserve(fmt.Sprintf("PTH-2026-%04d", i))
	}
	assert.True(t, tracking.Valid(g.Next()))
}

func TestReserve_SkipsKnownIDs(t *testing.T) {
	g := tracking.NewGenerator(tracking.WithClock(fixedClock(2026)), tracking.WithSeed(3))

	// Reserve all but one suffix; the next draw must land on the free one.
	for i := 1000; i <= 9999; i++ {
		if i == 5555 {
			continue
		}
		g.Reserve(fmt.Sprintf("PTH-2026-%04d", i))
	}
	g.Reserve("not-an-id", "PTH-26-1", "PTH-2026-0042")

	assert.Equal(t, "PTH-2026-5555", g.Next())
}

func TestReserve_OtherYearDoesNotInterfere(t *testing.T) {
	g := tracking.NewGenerator(tracking.WithClock(fixedClock(2027)), tracking.WithSeed(9))
	for i := 1000; i <= 9999; i++ {
		g.Reserve(fmt.Sprintf("PTH-2026-%04d", i))
	}
	assert.Regexp(t, `^PTH-2027-\d{4}$`, g.Next())
}

func TestValid(t *testing.T) {
	tests := map[string]bool{
		"PTH-2026-1234":  true,
		"PTH-9999-0000":  true,
		"pth-2026-1234":  false,
		"PTH-2026-123":   false,
		"PTH-2026-12345": false,
		"PTH-2026-12a4":  false,
		"":               false,
	}
	for id, want := range tests {
		assert.Equal(t, want, tracking.Valid(id), id)
	}
}

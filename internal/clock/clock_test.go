package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type steppingClock struct {
	times []time.Time
	i     int
}

func (s *steppingClock) Now() time.Time {
	t := s.times[s.i]
	if s.i < len(s.times)-1 {
		s.i++
	}
	return t
}

func TestMonotonicNeverGoesBackwards(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	base := &steppingClock{times: []time.Time{t0, t0.Add(-time.Minute), t0.Add(time.Second)}}
	m := NewMonotonic(base)

	assert.Equal(t, t0, m.Now())
	assert.Equal(t, t0, m.Now())
	assert.Equal(t, t0.Add(time.Second), m.Now())
}

func TestFixedIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	c := NewFixed(time.Date(2025, 1, 1, 15, 0, 0, 0, loc))

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.Equal(t, 10, c.Now().Hour())
}

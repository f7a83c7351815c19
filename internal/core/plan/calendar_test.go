package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"date only", "2026-03-02", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2026-03-02T10:30:00Z", time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), true},
		{"datetime without zone", "2026-03-02T00:00:00", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "next tuesday", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if !tt.ok {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unparseable date")
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2026, 3, 2, 15, 42, 7, 99, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Day(in))
}

func TestIsWeekend(t *testing.T) {
	assert.False(t, IsWeekend(monday))
	assert.True(t, IsWeekend(saturday))
	assert.True(t, IsWeekend(saturday.AddDate(0, 0, 1)))
	assert.False(t, IsWeekend(saturday.AddDate(0, 0, 2)))
}

func TestSpan(t *testing.T) {
	start, end := Span(monday, 9.5, 2.25)
	assert.Equal(t, at(monday, 9.5), start)
	assert.Equal(t, at(monday, 11.75), end)
}

func TestHoursValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Hours)
		ok     bool
	}{
		{"defaults", func(*Hours) {}, true},
		{"inverted window", func(h *Hours) { h.Start = 18; h.End = 9 }, false},
		{"break before open", func(h *Hours) { h.BreakStart = 7 }, false},
		{"break after close", func(h *Hours) { h.BreakEnd = 20 }, false},
		{"zero capacity", func(h *Hours) { h.MaxDaily = 0 }, false},
		{"capacity exceeds window", func(h *Hours) { h.MaxDaily = 9 }, false},
		{"no break", func(h *Hours) { h.BreakStart = 12; h.BreakEnd = 12 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := DefaultHours()
			tt.mutate(&h)
			err := h.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestClockHour(t *testing.T) {
	h := DefaultHours()

	tests := []struct {
		allocated float64
		want      float64
	}{
		{0, 9},
		{1.5, 10.5},
		{3, 13}, // packing reached the break, resume after it
		{4, 14},
		{7, 17},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, h.clockHour(tt.allocated), 1e-9, "clockHour(%v)", tt.allocated)
	}
}

func TestCloneTasks(t *testing.T) {
	in := singleTask(tuesday, Todo{ID: "a", StartDate: monday, EstimatedHours: 2})
	out := CloneTasks(in)

	out[0].Todos[0].EstimatedHours = 99
	out[0].Todos = append(out[0].Todos, Todo{ID: "x"})

	assert.InDelta(t, 2, in[0].Todos[0].EstimatedHours, 1e-9)
	assert.Len(t, in[0].Todos, 1)
}

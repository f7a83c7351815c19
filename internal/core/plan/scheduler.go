package plan

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// hourEpsilon bounds float drift when hours are consumed in fractions.
const hourEpsilon = 1e-9

var continuationPattern = regexp.MustCompile(`\.c\d+$`)

// Scheduler assigns calendar placements to the todos of a task collection.
//
// A run is a pure in-memory computation: input is deep-copied, todos are
// processed in due-date order, and each todo's hours are packed into a
// per-day capacity ledger. Hours that cross the lunch break or overflow a
// day's capacity are split off onto continuation todos appended to the
// owning task. Two runs over identical input produce identical output.
type Scheduler struct {
	hours Hours
	now   func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source used to clamp past start dates.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a scheduler for the given business-hours window.
func NewScheduler(hours Hours, opts ...Option) *Scheduler {
	s := &Scheduler{hours: hours, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// segment is one contiguous allocation on a single day.
type segment struct {
	day       time.Time
	startHour float64
	hours     float64
}

// placement is the full set of segments computed for one todo. The first
// segment stays on the original todo; the rest become continuations.
type placement struct {
	taskIdx  int
	todoIdx  int
	segments []segment
}

// pending identifies a not-yet-placed todo by position in the task list.
type pending struct {
	taskIdx int
	todoIdx int
}

// Schedule returns a copy of tasks with every non-completed todo placed on
// the calendar. Continuation todos are appended to their owning task, one
// per extra fragment. The input collection is never mutated.
func (s *Scheduler) Schedule(tasks []Task) ([]Task, error) {
	if err := s.hours.Validate(); err != nil {
		return nil, fmt.Errorf("business hours: %w", err)
	}

	out := CloneTasks(tasks)
	s.normalize(out)

	if err := validateTasks(out); err != nil {
		return nil, err
	}

	pendings := flatten(out)

	// Due-date-driven ordering: earlier deadlines are placed first across
	// the whole collection. The sort is stable so todos sharing a due date
	// keep task/insertion order. Tasks without a due date go last.
	slices.SortStableFunc(pendings, func(a, b pending) int {
		da, db := out[a.taskIdx].DueDate, out[b.taskIdx].DueDate
		switch {
		case da.IsZero() && db.IsZero():
			return 0
		case da.IsZero():
			return 1
		case db.IsZero():
			return -1
		default:
			return da.Compare(db)
		}
	})

	today := Day(s.now())
	ledger := map[string]float64{}

	placements := make([]placement, 0, len(pendings))
	for _, p := range pendings {
		td := out[p.taskIdx].Todos[p.todoIdx]
		placements = append(placements, placement{
			taskIdx:  p.taskIdx,
			todoIdx:  p.todoIdx,
			segments: s.place(td, today, ledger),
		})
	}

	apply(out, placements)
	return out, nil
}

// place packs a todo's hours into the ledger and returns its segments.
// The ledger is updated as a side effect; placements of later todos see
// earlier allocations.
func (s *Scheduler) place(td Todo, today time.Time, ledger map[string]float64) []segment {
	cur := td.StartDate
	if cur.Before(today) {
		// Elapsed start dates are rescheduled from today; nothing is ever
		// placed in the past.
		cur = today
	}

	remaining := td.EstimatedHours
	var segs []segment

	for remaining > hourEpsilon {
		if IsWeekend(cur) {
			cur = cur.AddDate(0, 0, 1)
			continue
		}

		used := ledger[dayKey(cur)]
		available := s.hours.MaxDaily - used
		if available <= hourEpsilon {
			cur = cur.AddDate(0, 0, 1)
			continue
		}

		alloc := math.Min(available, remaining)
		start := s.hours.clockHour(used)

		breakStart := float64(s.hours.BreakStart)
		if start < breakStart && start+alloc > breakStart+hourEpsilon {
			// The allocation crosses the lunch break: cap the first
			// fragment at the break and resume the leftover at BreakEnd.
			pre := breakStart - start
			segs = append(segs,
				segment{day: cur, startHour: start, hours: pre},
				segment{day: cur, startHour: float64(s.hours.BreakEnd), hours: alloc - pre},
			)
		} else {
			segs = append(segs, segment{day: cur, startHour: start, hours: alloc})
		}

		ledger[dayKey(cur)] = used + alloc
		remaining -= alloc

		if remaining > hourEpsilon {
			cur = cur.AddDate(0, 0, 1)
		}
	}

	return segs
}

// apply writes computed placements back onto the task collection. The
// original todo keeps the first fragment; every further fragment becomes a
// continuation todo appended to the owning task. Insertions happen here,
// after all placement decisions, never while the loop is iterating.
func apply(tasks []Task, placements []placement) {
	taken := make([]map[string]struct{}, len(tasks))

	for _, pl := range placements {
		if len(pl.segments) == 0 {
			continue
		}

		task := &tasks[pl.taskIdx]
		td := &task.Todos[pl.todoIdx]

		first := pl.segments[0]
		td.EstimatedHours = first.hours
		td.CalendarStart, td.CalendarEnd = Span(first.day, first.startHour, first.hours)

		if len(pl.segments) > 1 && taken[pl.taskIdx] == nil {
			taken[pl.taskIdx] = todoIDSet(task.Todos)
		}

		suffix := 0
		for _, seg := range pl.segments[1:] {
			cont := Todo{
				ID:             nextContinuationID(td.ID, &suffix, taken[pl.taskIdx]),
				Text:           td.Text,
				StartDate:      Day(seg.day),
				EstimatedHours: seg.hours,
			}
			cont.CalendarStart, cont.CalendarEnd = Span(seg.day, seg.startHour, seg.hours)
			task.Todos = append(task.Todos, cont)
		}
	}
}

func todoIDSet(todos []Todo) map[string]struct{} {
	ids := make(map[string]struct{}, len(todos))
	for _, td := range todos {
		ids[td.ID] = struct{}{}
	}
	return ids
}

// nextContinuationID derives the next free ".cN" id for a parent todo.
// Ids minted by earlier runs survive as regular todo rows, so suffixes
// that already exist in the owning task are skipped to keep ids unique
// within the task.
func nextContinuationID(parent string, suffix *int, taken map[string]struct{}) string {
	for {
		*suffix++
		id := parent + ".c" + strconv.Itoa(*suffix)
		if _, exists := taken[id]; !exists {
			taken[id] = struct{}{}
			return id
		}
	}
}

// normalize truncates date fields to day granularity and clears stale
// placements on non-completed todos so a re-run starts from a clean slate.
func (s *Scheduler) normalize(tasks []Task) {
	for ti := range tasks {
		task := &tasks[ti]
		if !task.DueDate.IsZero() {
			task.DueDate = Day(task.DueDate)
		}
		for i := range task.Todos {
			td := &task.Todos[i]
			if !td.StartDate.IsZero() {
				td.StartDate = Day(td.StartDate)
			}
			if !td.Completed {
				td.CalendarStart = time.Time{}
				td.CalendarEnd = time.Time{}
			}
		}
	}
}

// validateTasks enforces the scheduler's input preconditions for every
// non-completed todo.
func validateTasks(tasks []Task) error {
	for _, task := range tasks {
		for _, td := range task.Todos {
			if td.Completed {
				continue
			}
			// Anything at or below the epsilon would fall through the
			// placement loop without ever being placed.
			if td.EstimatedHours <= hourEpsilon || math.IsNaN(td.EstimatedHours) || math.IsInf(td.EstimatedHours, 0) {
				return &ValidationError{
					TodoID: td.ID,
					Field:  "estimated_hours",
					Value:  strconv.FormatFloat(td.EstimatedHours, 'g', -1, 64),
				}
			}
			if td.StartDate.IsZero() {
				return &ValidationError{TodoID: td.ID, Field: "start_date", Value: ""}
			}
		}
	}
	return nil
}

// flatten builds the processing list of non-completed todos.
func flatten(tasks []Task) []pending {
	var out []pending
	for ti := range tasks {
		for i := range tasks[ti].Todos {
			if tasks[ti].Todos[i].Completed {
				continue
			}
			out = append(out, pending{taskIdx: ti, todoIdx: i})
		}
	}
	return out
}

// Package calview renders scheduled placements as a terminal week view
// and as a markdown report.
package calview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/styles"
)

// Fragment is one placed todo interval, flattened out of its task for
// rendering.
type Fragment struct {
	Start        time.Time
	End          time.Time
	TaskTitle    string
	TodoID       string
	Text         string
	Hours        float64
	Continuation bool
}

// Collect flattens placed, uncompleted todos into fragments sorted by
// calendar start.
func Collect(tasks []plan.Task) []Fragment {
	var frags []Fragment

	for _, task := range tasks {
		for _, td := range task.Todos {
			if td.Completed || td.CalendarStart.IsZero() {
				continue
			}
			frags = append(frags, Fragment{
				Start:        td.CalendarStart,
				End:          td.CalendarEnd,
				TaskTitle:    task.Title,
				TodoID:       td.ID,
				Text:         td.Text,
				Hours:        td.EstimatedHours,
				Continuation: td.IsContinuation(),
			})
		}
	}

	sort.Slice(frags, func(i, j int) bool {
		if !frags[i].Start.Equal(frags[j].Start) {
			return frags[i].Start.Before(frags[j].Start)
		}
		return frags[i].TodoID < frags[j].TodoID
	})

	return frags
}

// byDay groups fragments by calendar day, preserving fragment order.
// Returned day keys are sorted.
func byDay(frags []Fragment) ([]time.Time, map[string][]Fragment) {
	groups := make(map[string][]Fragment)
	var days []time.Time

	for _, f := range frags {
		key := plan.Day(f.Start).Format(time.DateOnly)
		if _, seen := groups[key]; !seen {
			days = append(days, plan.Day(f.Start))
		}
		groups[key] = append(groups[key], f)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, groups
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := plan.Day(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// FilterWeek returns copies of the tasks keeping only todos placed in the
// week containing the given day.
func FilterWeek(tasks []plan.Task, day time.Time) []plan.Task {
	from := WeekStart(day)
	to := from.AddDate(0, 0, 7)

	out := make([]plan.Task, 0, len(tasks))
	for _, task := range tasks {
		kept := task.Clone()
		kept.Todos = kept.Todos[:0]
		for _, td := range task.Todos {
			if td.CalendarStart.IsZero() || td.CalendarStart.Before(from) || !td.CalendarStart.Before(to) {
				continue
			}
			kept.Todos = append(kept.Todos, td)
		}
		out = append(out, kept)
	}

	return out
}

// Render draws a day-by-day view of the given tasks' placements, fitted
// to width columns.
func Render(tasks []plan.Task, width int) string {
	frags := Collect(tasks)
	if len(frags) == 0 {
		return styles.MutedStyle.Render("nothing scheduled") + "\n"
	}

	if width <= 0 || width > 100 {
		width = 100
	}

	days, groups := byDay(frags)

	var b strings.Builder
	for _, day := range days {
		var lines []string
		lines = append(lines, styles.DayHeaderStyle.Render(day.Format("Monday 02 Jan 2006")))

		for _, f := range groups[day.Format(time.DateOnly)] {
			line := fmt.Sprintf("%s-%s  %4.1fh  %s",
				f.Start.Format("15:04"),
				f.End.Format("15:04"),
				f.Hours,
				f.Text,
			)
			style := styles.SlotStyle
			if f.Continuation {
				style = styles.ContinuationStyle
				line += " (cont.)"
			}
			lines = append(lines,
				style.Render(line)+styles.MutedStyle.Render("  "+f.TaskTitle))
		}

		block := styles.BlockStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
		b.WriteString(block)
		b.WriteString("\n")
	}

	return b.String()
}

// Report builds a markdown schedule report suitable for glamour
// rendering or plain-text export.
func Report(tasks []plan.Task, generatedAt time.Time) string {
	frags := Collect(tasks)

	var b strings.Builder
	b.WriteString("# Schedule Report\n\n")
	b.WriteString(fmt.Sprintf("Generated %s.\n\n", generatedAt.Format("2006-01-02 15:04")))

	if len(frags) == 0 {
		b.WriteString("Nothing scheduled.\n")
		return b.String()
	}

	var total float64
	continuations := 0
	for _, f := range frags {
		total += f.Hours
		if f.Continuation {
			continuations++
		}
	}
	b.WriteString(fmt.Sprintf("%d placements, %.1f hours total, %d continuation(s).\n\n",
		len(frags), total, continuations))

	days, groups := byDay(frags)
	for _, day := range days {
		b.WriteString(fmt.Sprintf("## %s\n\n", day.Format("Monday 02 Jan 2006")))
		b.WriteString("| From | To | Hours | Todo | Task |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, f := range groups[day.Format(time.DateOnly)] {
			text := f.Text
			if f.Continuation {
				text += " (cont.)"
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %.1f | %s | %s |\n",
				f.Start.Format("15:04"),
				f.End.Format("15:04"),
				f.Hours,
				text,
				f.TaskTitle,
			))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Plain renders without any styling, used when stdout is not a terminal.
func Plain(tasks []plan.Task) string {
	frags := Collect(tasks)
	if len(frags) == 0 {
		return "nothing scheduled\n"
	}

	days, groups := byDay(frags)

	var b strings.Builder
	for _, day := range days {
		b.WriteString(day.Format("Monday 02 Jan 2006"))
		b.WriteString("\n")
		for _, f := range groups[day.Format(time.DateOnly)] {
			cont := ""
			if f.Continuation {
				cont = " (cont.)"
			}
			b.WriteString(fmt.Sprintf("  %s-%s  %4.1fh  %s%s  [%s]\n",
				f.Start.Format("15:04"), f.End.Format("15:04"), f.Hours, f.Text, cont, f.TaskTitle))
		}
	}

	return b.String()
}

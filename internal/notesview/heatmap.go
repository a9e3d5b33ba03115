package notesview

import (
	"time"

	"echomemo/internal/client"
)

// HeatmapDays is the window shown: today plus the 90 days before it.
const HeatmapDays = 91

type Day struct {
	Date      string
	Count     int
	Intensity int
}

type HeatmapData struct {
	Days      []Day
	Total     int
	ThisMonth int
}

// Intensity buckets a day's note count into 0-3.
func Intensity(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	default:
		return 3
	}
}

// Heatmap counts notes per creation day over the last HeatmapDays days
// ending at today, oldest first.
func Heatmap(notes []client.Note, today time.Time, loc *time.Location) HeatmapData {
	if loc == nil {
		loc = time.UTC
	}
	today = today.In(loc)

	counts := make(map[string]int, len(notes))
	month := today.Format("2006-01")
	var out HeatmapData
	for _, n := range notes {
		created := n.CreateTime.In(loc)
		counts[created.Format(DateLayout)]++
		out.Total++
		if created.Format("2006-01") == month {
			out.ThisMonth++
		}
	}

	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(HeatmapDays - 1))
	out.Days = make([]Day, 0, HeatmapDays)
	for i := 0; i < HeatmapDays; i++ {
		date := start.AddDate(0, 0, i).Format(DateLayout)
		c := counts[date]
		out.Days = append(out.Days, Day{Date: date, Count: c, Intensity: Intensity(c)})
	}
	return out
}

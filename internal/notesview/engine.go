// Package notesview decides which notes are on screen: the base list, a
// keyword search result, or a single-day filter over either of them.
package notesview

import (
	"time"

	"echomemo/internal/client"
)

const DateLayout = "2006-01-02"

// Engine holds the filter state. It is not safe for concurrent use;
// Controller serializes access.
//
// Displayed is always dateFiltered ?? searchResults ?? base.
type Engine struct {
	loc *time.Location

	base []client.Note

	searchActive  bool
	searchResults []client.Note

	selectedDate string
	dateActive   bool
	dateFiltered []client.Note
}

// NewEngine evaluates calendar dates in loc. Normalized notes already
// carry the display offset, so UTC is the usual choice.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

func (e *Engine) Displayed() []client.Note {
	switch {
	case e.dateActive:
		return e.dateFiltered
	case e.searchActive:
		return e.searchResults
	default:
		return e.base
	}
}

func (e *Engine) SetBase(notes []client.Note) { e.base = notes }

func (e *Engine) Base() []client.Note { return e.base }

func (e *Engine) SearchResults() ([]client.Note, bool) { return e.searchResults, e.searchActive }

func (e *Engine) DateFiltered() ([]client.Note, bool) { return e.dateFiltered, e.dateActive }

// SelectedDate is "" when no date filter is applied.
func (e *Engine) SelectedDate() string { return e.selectedDate }

// OnSearch applies a search outcome. nil results mean the keyword was
// cleared; an empty non-nil slice is a search with no matches.
func (e *Engine) OnSearch(results []client.Note) {
	if results == nil {
		e.searchActive = false
		e.searchResults = nil
		if e.selectedDate != "" {
			e.applyDate(e.base)
		} else {
			e.clearDate()
		}
		return
	}

	e.searchActive = true
	e.searchResults = results
	if e.selectedDate != "" {
		e.applyDate(results)
	} else {
		e.clearDate()
	}
}

// OnDateSelect filters the search results, or notesInScope when no search
// is active, down to one calendar day. An empty date removes the filter and
// leaves the search alone.
func (e *Engine) OnDateSelect(date string, notesInScope []client.Note) {
	if date == "" {
		e.selectedDate = ""
		e.clearDate()
		return
	}

	e.selectedDate = date
	if e.searchActive {
		e.applyDate(e.searchResults)
	} else {
		e.applyDate(notesInScope)
	}
}

// Reset drops search and date state.
func (e *Engine) Reset() {
	e.searchActive = false
	e.searchResults = nil
	e.selectedDate = ""
	e.clearDate()
}

func (e *Engine) applyDate(src []client.Note) {
	e.dateActive = true
	e.dateFiltered = FilterByDate(src, e.selectedDate, e.loc)
}

func (e *Engine) clearDate() {
	e.dateActive = false
	e.dateFiltered = nil
}

// OnDate reports whether n was created on the calendar day date in loc.
func OnDate(n client.Note, date string, loc *time.Location) bool {
	return n.CreateTime.In(loc).Format(DateLayout) == date
}

// FilterByDate never returns nil.
func FilterByDate(notes []client.Note, date string, loc *time.Location) []client.Note {
	out := make([]client.Note, 0, len(notes))
	for _, n := range notes {
		if OnDate(n, date, loc) {
			out = append(out, n)
		}
	}
	return out
}

package ui

import (
	"sync"

	"github.com/tartampluch/go-directory/internal/engine"
)

// Browser owns the search state behind the directory window: the loaded records, the
// current criteria snapshot and the visibility of the result area. It has no widget
// dependencies, so the search rules can be tested without a display.
type Browser struct {
	mu       sync.RWMutex
	people   []engine.Person
	criteria engine.Criteria
	filter   *engine.FilterEngine
	renderer engine.Renderer

	// showAll lists every record regardless of criteria until the next edit.
	showAll bool
	// hidden suppresses results until the next edit.
	hidden bool
}

// NewBrowser creates an empty browser.
func NewBrowser(filter *engine.FilterEngine, renderer engine.Renderer) *Browser {
	return &Browser{filter: filter, renderer: renderer}
}

// SetPeople replaces the dataset. Criteria and visibility are kept.
func (b *Browser) SetPeople(people []engine.Person) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.people = people
}

// Len returns the number of loaded records.
func (b *Browser) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.people)
}

// SetPresentation swaps the filter engine and renderer, e.g. after a language change.
func (b *Browser) SetPresentation(filter *engine.FilterEngine, renderer engine.Renderer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = filter
	b.renderer = renderer
}

// Criteria returns the current snapshot.
func (b *Browser) Criteria() engine.Criteria {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.criteria
}

// Update replaces the criteria with fn's result. Any edit ends "show all" and
// "clear results".
func (b *Browser) Update(fn func(engine.Criteria) engine.Criteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = fn(b.criteria)
	b.showAll = false
	b.hidden = false
}

// ClearFilters resets every criterion, which hides the results again.
func (b *Browser) ClearFilters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = engine.Criteria{}
	b.showAll = false
	b.hidden = false
}

// ShowAll lists every record, sorted, ignoring the criteria.
func (b *Browser) ShowAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showAll = true
	b.hidden = false
}

// ClearResults empties the result area but keeps the criteria.
func (b *Browser) ClearResults() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showAll = false
	b.hidden = true
}

// Results returns the records currently on display.
func (b *Browser) Results() []engine.Person {
	b.mu.RLock()
	defer b.mu.RUnlock()
	results, _ := b.results()
	return results
}

// View renders the result area. Nothing is shown while no filter is active.
func (b *Browser) View() engine.View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	results, active := b.results()
	return b.renderer.Render(results, active)
}

// results must be called with the lock held.
func (b *Browser) results() ([]engine.Person, bool) {
	switch {
	case b.hidden:
		return nil, false
	case b.showAll:
		return b.filter.Apply(b.people, engine.Criteria{}), true
	case !b.criteria.Active():
		return nil, false
	default:
		return b.filter.Apply(b.people, b.criteria), true
	}
}

// MonthCounts counts the whole dataset, independent of criteria.
func (b *Browser) MonthCounts() engine.MonthCounts {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return engine.CountMonths(b.people)
}

// Families lists the distinct family tags of the dataset.
func (b *Browser) Families() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.Families(b.people)
}

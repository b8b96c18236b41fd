package theme

import "sync"

type ID string

const (
	None     ID = "none"
	Diet     ID = "diet"
	Exercise ID = "exercise"
	Combined ID = "combined"
)

// Select maps the two preference toggles to a theme.
func Select(includeDiet, includeExercise bool) ID {
	switch {
	case includeDiet && includeExercise:
		return Combined
	case includeDiet:
		return Diet
	case includeExercise:
		return Exercise
	default:
		return None
	}
}

// Class is the presentation class applied for the theme. None has no class.
func (id ID) Class() string {
	switch id {
	case Diet:
		return "theme-diet"
	case Exercise:
		return "theme-exercise"
	case Combined:
		return "theme-combined"
	default:
		return ""
	}
}

// Document holds the page-wide presentation class. The zero value is the
// default presentation with no class set.
type Document struct {
	mu    sync.RWMutex
	class string
}

func NewDocument() *Document {
	return &Document{}
}

func (d *Document) Class() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.class
}

func (d *Document) setClass(class string) {
	d.mu.Lock()
	d.class = class
	d.mu.Unlock()
}

package canvas

import (
	"strings"
	"sync"
)

// Document holds the canvases of one host page, in insertion order.
type Document struct {
	mu       sync.RWMutex
	canvases []*Canvas
}

func NewDocument() *Document { return &Document{} }

// Add appends c. A canvas with the same non-empty id replaces the old one in
// place.
func (d *Document) Add(c *Canvas) {
	if c == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.ID != "" {
		for i, old := range d.canvases {
			if old.ID == c.ID {
				d.canvases[i] = c
				return
			}
		}
	}
	d.canvases = append(d.canvases, c)
}

// Remove drops the canvas with id.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.canvases {
		if c.ID == id {
			d.canvases = append(d.canvases[:i], d.canvases[i+1:]...)
			return
		}
	}
}

// GetCanvas looks a canvas up by id. A leading '#' is accepted. When no
// canvas has that id, the generic selector matches and the first canvas is
// returned; an empty document returns nil.
func (d *Document) GetCanvas(id string) *Canvas {
	id = strings.TrimPrefix(id, "#")

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.canvases {
		if id != "" && c.ID == id {
			return c
		}
	}
	if len(d.canvases) > 0 {
		return d.canvases[0]
	}
	return nil
}

// Len returns the number of canvases.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.canvases)
}

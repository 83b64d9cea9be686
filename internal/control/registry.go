package control

import "sort"

// Registry holds the controllers of all configured washers.
type Registry struct {
	byID map[string]*Controller
	ids  []string
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Controller)}
}

// Add registers c under its entry id. A second controller with the same id
// replaces the first.
func (r *Registry) Add(c *Controller) {
	id := c.Entry().ID
	if _, exists := r.byID[id]; !exists {
		r.ids = append(r.ids, id)
		sort.Strings(r.ids)
	}
	r.byID[id] = c
}

func (r *Registry) Get(id string) (*Controller, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// List returns the controllers ordered by device id.
func (r *Registry) List() []*Controller {
	out := make([]*Controller, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

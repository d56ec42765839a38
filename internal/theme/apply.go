package theme

import (
	"fmt"
	"strings"
	"sync"
)

// StyleTarget is the global style scope the applicator publishes into.
type StyleTarget interface {
	SetProperty(name, value string)
	RemoveProperty(name string)
}

// BatchTarget is a StyleTarget that can apply several changes as one write. Readers of
// a BatchTarget never see a palette mixed from two base colors.
type BatchTarget interface {
	StyleTarget
	UpdateProperties(set []Var, remove []string)
}

// Apply publishes the palette derived from baseHex into target. An empty color clears
// every variable instead.
func Apply(target StyleTarget, baseHex string) {
	if target == nil {
		return
	}

	empty := strings.TrimSpace(baseHex) == ""
	if batch, ok := target.(BatchTarget); ok {
		if empty {
			batch.UpdateProperties(nil, StyleVars)
		} else {
			batch.UpdateProperties(Derive(baseHex).Vars(), nil)
		}
		return
	}

	if empty {
		for _, name := range StyleVars {
			target.RemoveProperty(name)
		}
		return
	}
	for _, v := range Derive(baseHex).Vars() {
		target.SetProperty(v.Name, v.Value)
	}
}

// CSSVars is an in-memory style scope that renders as a CSS rule of custom properties.
// It is safe for concurrent use.
type CSSVars struct {
	mu     sync.RWMutex
	order  []string
	values map[string]string
}

// NewCSSVars creates an empty style scope.
func NewCSSVars() *CSSVars {
	return &CSSVars{values: make(map[string]string)}
}

// SetProperty implements StyleTarget.
func (c *CSSVars) SetProperty(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(name, value)
}

// RemoveProperty implements StyleTarget.
func (c *CSSVars) RemoveProperty(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(name)
}

// UpdateProperties implements BatchTarget.
func (c *CSSVars) UpdateProperties(set []Var, remove []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range remove {
		c.removeLocked(name)
	}
	for _, v := range set {
		c.setLocked(v.Name, v.Value)
	}
}

func (c *CSSVars) setLocked(name, value string) {
	if _, exists := c.values[name]; !exists {
		c.order = append(c.order, name)
	}
	c.values[name] = value
}

func (c *CSSVars) removeLocked(name string) {
	if _, exists := c.values[name]; !exists {
		return
	}
	delete(c.values, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Get returns a property value.
func (c *CSSVars) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[name]
	return v, ok
}

// Len returns the number of set properties.
func (c *CSSVars) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Snapshot copies the current properties.
func (c *CSSVars) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Render writes the properties as a rule for selector (":root" when empty).
func (c *CSSVars) Render(selector string) string {
	if selector == "" {
		selector = ":root"
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, name := range c.order {
		fmt.Fprintf(&b, "  %s: %s;\n", name, c.values[name])
	}
	b.WriteString("}\n")
	return b.String()
}

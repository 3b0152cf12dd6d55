// Package catalog is the read-only lookup of permitted traffic methods.
// The set is loaded once at startup; there is no runtime mutation path.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Method is one permitted traffic profile, referenced by name from run
// requests. Names are unique case-insensitively.
type Method struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog answers case-insensitive exact-match lookups over the loaded set.
type Catalog struct {
	byName  map[string]Method
	ordered []Method
}

// New builds a Catalog from the given methods. Duplicate names (ignoring
// case) and empty names are rejected.
func New(methods []Method) (*Catalog, error) {
	c := &Catalog{
		byName:  make(map[string]Method, len(methods)),
		ordered: make([]Method, 0, len(methods)),
	}
	for _, m := range methods {
		if m.Name == "" {
			return nil, fmt.Errorf("method with empty name")
		}
		key := strings.ToLower(m.Name)
		if _, exists := c.byName[key]; exists {
			return nil, fmt.Errorf("duplicate method name %q", m.Name)
		}
		c.byName[key] = m
		c.ordered = append(c.ordered, m)
	}
	return c, nil
}

// Resolve returns the method with the given name, matched exactly but
// ignoring case. The returned method carries the canonical name.
func (c *Catalog) Resolve(name string) (Method, bool) {
	m, ok := c.byName[strings.ToLower(name)]
	return m, ok
}

// All returns the methods in load order.
func (c *Catalog) All() []Method {
	out := make([]Method, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of loaded methods.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// LoadFile reads a JSON method list. A missing file returns the default set
// so startup never fails on a fresh deployment.
func LoadFile(path string) ([]Method, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read method file: %w", err)
	}

	var methods []Method
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("decode method file: %w", err)
	}
	return methods, nil
}

// Default returns the built-in traffic profiles used when no method file is
// configured.
func Default() []Method {
	return []Method{
		{Name: "GET", Description: "Sustained HTTP GET request load"},
		{Name: "POST", Description: "HTTP POST request load with generated payloads"},
		{Name: "TCP", Description: "TCP connection churn load"},
		{Name: "UDP", Description: "UDP datagram throughput load"},
		{Name: "TLS", Description: "TLS handshake negotiation load"},
		{Name: "BROWSER", Description: "Headless browser page-load traffic"},
	}
}

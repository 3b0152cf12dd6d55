package goLoad

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/goLoad/catalog"
)

// Methods returns the loaded traffic method catalog in load order.
func (e *Engine) Methods() []catalog.Method {
	if e == nil || e.catalog == nil {
		return nil
	}
	return e.catalog.All()
}

// ResolveMethod looks up a method by name, ignoring case. The error carries
// the valid names so callers can self-correct.
func (e *Engine) ResolveMethod(name string) (catalog.Method, error) {
	if e == nil || e.catalog == nil {
		return catalog.Method{}, ErrEngineNotReady
	}
	m, ok := e.catalog.Resolve(name)
	if !ok {
		return catalog.Method{}, fmt.Errorf("%w: %q is not one of: %s",
			ErrMethodNotFound, name, strings.Join(e.methodNames(), ", "))
	}
	return m, nil
}

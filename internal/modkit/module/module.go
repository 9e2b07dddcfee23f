// Package module is the module contract plus the process wide port registry
// it sits apart from modkit so port packages can import it without a cycle
package module

import (
	"reflect"
	"sync"

	phttp "potluck/internal/platform/net/http"
)

// Module is anything api.Mount or a binary can compose
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// PortsOf finds T in m.Ports(): the value itself or an exported field of a Ports struct
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf that panics naming the module
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	panic("module: port " + reflect.TypeFor[T]().String() + " not found on " + m.Name())
}

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes a module's ports under its name, replacing any earlier set
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// Lookup returns the ports registered under name when they are a T
func Lookup[T any](name string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := reg[name].(T)
	return v, ok
}

// MustLookup is Lookup that panics when name is missing or of another type
func MustLookup[T any](name string) T {
	if v, ok := Lookup[T](name); ok {
		return v
	}
	panic("module: no " + reflect.TypeFor[T]().String() + " registered as " + name)
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}

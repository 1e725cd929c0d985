package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
)

// Collection is a client-side cache of one remote collection.
//
// Fetch is the only method that talks to the backend. Add, Update,
// UpdateAttribute and Delete change the local copy only; persisting a
// change is the caller's job (see usecase.AddressPersister). The backend
// stays authoritative and the cache is never refreshed on its own.
type Collection[T port.Record] struct {
	mu        sync.RWMutex
	name      string
	path      string
	items     []T
	populated bool
	watchers  map[int]func([]T)
	nextWatch int

	remote port.RemoteAPI
	logger logger.Logger
}

// NewCollection creates an empty cache for the collection served at path
func NewCollection[T port.Record](name, path string, remote port.RemoteAPI, logger logger.Logger) *Collection[T] {
	return &Collection[T]{
		name:     name,
		path:     path,
		items:    make([]T, 0),
		watchers: make(map[int]func([]T)),
		remote:   remote,
		logger:   logger.WithComponent("store." + name),
	}
}

// Name identifies the collection in logs.
func (c *Collection[T]) Name() string { return c.name }

// Path is the collection URL relative to the API root.
func (c *Collection[T]) Path() string { return c.path }

// Fetch replaces the local items with the server's collection, in server
// order. On error the previous items are kept. Concurrent fetches are not
// ordered: whichever response arrives last wins.
func (c *Collection[T]) Fetch(ctx context.Context) error {
	var items []T
	if err := c.remote.Get(ctx, c.path, &items); err != nil {
		c.logger.LogError(ctx, "Failed to fetch collection", err, "path", c.path)
		return fmt.Errorf("fetch %s: %w", c.name, err)
	}
	if items == nil {
		items = make([]T, 0)
	}

	c.mu.Lock()
	c.items = items
	c.populated = true
	snapshot, watchers := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.LogInfo(ctx, "Collection fetched", "path", c.path, "count", len(items))
	notify(watchers, snapshot)
	return nil
}

// All returns a copy of the cached items.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of cached items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Populated reports whether the cache has been fetched or changed at least once.
func (c *Collection[T]) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// GetByID returns the cached item with the given ID.
func (c *Collection[T]) GetByID(id entity.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Add appends item to the local cache.
func (c *Collection[T]) Add(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.populated = true
	snapshot, watchers := c.snapshotLocked()
	c.mu.Unlock()

	notify(watchers, snapshot)
}

// Update replaces the cached item with the same ID. It reports whether an
// item was replaced; a miss leaves the cache untouched.
func (c *Collection[T]) Update(item T) bool {
	c.mu.Lock()
	i := c.indexLocked(item.RecordID())
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.items[i] = item
	c.populated = true
	snapshot, watchers := c.snapshotLocked()
	c.mu.Unlock()

	notify(watchers, snapshot)
	return true
}

// UpdateAttribute sets one field, named by its JSON key, on the cached
// item with the given ID. The value is assigned directly when its type
// matches the field and converted through JSON otherwise, so "5" can
// set an ID and 1.5 a decimal. A miss returns false and no error; an
// unknown property or an unusable value returns an error and changes
// nothing.
func (c *Collection[T]) UpdateAttribute(id entity.ID, property string, value any) (bool, error) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return false, nil
	}

	if err := setField(&c.items[i], property, value); err != nil {
		c.mu.Unlock()
		return false, fmt.Errorf("%s %s: %w", c.name, id, err)
	}
	c.populated = true
	snapshot, watchers := c.snapshotLocked()
	c.mu.Unlock()

	notify(watchers, snapshot)
	return true, nil
}

// Delete removes the first cached item with the given ID and reports
// whether one was found.
func (c *Collection[T]) Delete(id entity.ID) bool {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	items := make([]T, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	c.items = items
	c.populated = true
	snapshot, watchers := c.snapshotLocked()
	c.mu.Unlock()

	notify(watchers, snapshot)
	return true
}

// Watch registers fn to be called with a fresh snapshot after every
// successful fetch or local change. The returned func unregisters it.
// Listeners run on the goroutine that made the change, outside the lock.
func (c *Collection[T]) Watch(fn func([]T)) (cancel func()) {
	c.mu.Lock()
	key := c.nextWatch
	c.nextWatch++
	c.watchers[key] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.watchers, key)
		c.mu.Unlock()
	}
}

func (c *Collection[T]) indexLocked(id entity.ID) int {
	for i := range c.items {
		if c.items[i].RecordID().Equal(id) {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) snapshotLocked() ([]T, []func([]T)) {
	if len(c.watchers) == 0 {
		return nil, nil
	}
	snapshot := make([]T, len(c.items))
	copy(snapshot, c.items)
	watchers := make([]func([]T), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	return snapshot, watchers
}

func notify[T any](watchers []func([]T), snapshot []T) {
	for _, fn := range watchers {
		fn(snapshot)
	}
}

// setField assigns value to the field of *target whose JSON key is property.
func setField(target any, property string, value any) error {
	rv := reflect.ValueOf(target).Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s on %s", entity.ErrUnknownAttribute, property, rv.Type())
	}

	field, ok := fieldByJSONName(rv, property)
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrUnknownAttribute, property)
	}

	newValue, err := coerce(value, field.Type())
	if err != nil {
		return fmt.Errorf("cannot set %s: %w", property, err)
	}
	field.Set(newValue)
	return nil
}

func fieldByJSONName(rv reflect.Value, property string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if name == property {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func coerce(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(typ), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(typ)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

package principal

import (
	"context"
	"sync"
)

// Directory is the in-memory principal authority. Mutations build a new
// record set and swap it in whole, then invoke the store's save hook outside
// the lock; readers always observe a complete set.
type Directory struct {
	store Store

	mu  sync.RWMutex
	set Set
}

// NewDirectory creates an empty Directory backed by the given store. A nil
// store keeps the directory memory-only; mutations then persist nothing and
// report no persistence errors.
func NewDirectory(store Store) *Directory {
	return &Directory{
		store: store,
		set:   make(Set),
	}
}

// Load replaces the directory contents from the store. With a nil store it
// is a no-op. On error the current contents are left untouched.
func (d *Directory) Load(ctx context.Context) error {
	if d.store == nil {
		return nil
	}

	set, err := d.store.Load(ctx)
	if err != nil {
		return err
	}
	if set == nil {
		set = make(Set)
	}

	d.mu.Lock()
	d.set = set
	d.mu.Unlock()
	return nil
}

// Lookup returns the record for the identity, if one exists.
func (d *Directory) Lookup(identity string) (Record, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.set[identity]
	return rec, ok
}

// Upsert inserts or fully replaces the identity's record (last writer wins)
// and saves the new set. The mutation is visible to subsequent lookups even
// when the save fails; the save error is returned so callers can surface the
// degraded persistence.
func (d *Directory) Upsert(ctx context.Context, identity string, rec Record) error {
	d.mu.Lock()
	next := d.set.Clone()
	next[identity] = rec
	d.set = next
	d.mu.Unlock()

	return d.save(ctx, next)
}

// Remove deletes the identity's record and saves the new set. The bool
// reports whether a record existed. As with Upsert, the in-memory removal
// sticks even when the save fails.
func (d *Directory) Remove(ctx context.Context, identity string) (bool, error) {
	d.mu.Lock()
	if _, ok := d.set[identity]; !ok {
		d.mu.Unlock()
		return false, nil
	}
	next := d.set.Clone()
	delete(next, identity)
	d.set = next
	d.mu.Unlock()

	return true, d.save(ctx, next)
}

// All returns an independent copy of the full record set.
func (d *Directory) All() Set {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.set.Clone()
}

// Len returns the number of records.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.set)
}

func (d *Directory) save(ctx context.Context, set Set) error {
	if d.store == nil {
		return nil
	}
	return d.store.Save(ctx, set.Clone())
}

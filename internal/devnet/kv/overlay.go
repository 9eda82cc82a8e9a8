package kv

import (
	"sort"
)

// Overlay buffers writes on top of a Reader until Commit.
// Discarding an Overlay drops its writes.
type Overlay struct {
	parent  Reader
	writes  map[string][]byte
	deleted map[string]struct{}
}

var (
	_ Reader = (*Overlay)(nil)
	_ Writer = (*Overlay)(nil)
)

func NewOverlay(parent Reader) *Overlay {
	return &Overlay{
		parent:  parent,
		writes:  make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	k := string(key)
	if _, ok := o.deleted[k]; ok {
		return nil, ErrNotFound
	}
	if v, ok := o.writes[k]; ok {
		return clone(v), nil
	}
	return o.parent.Get(key)
}

func (o *Overlay) Has(key []byte) (bool, error) {
	k := string(key)
	if _, ok := o.deleted[k]; ok {
		return false, nil
	}
	if _, ok := o.writes[k]; ok {
		return true, nil
	}
	return o.parent.Has(key)
}

func (o *Overlay) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	err := o.parent.Iterate(prefix, func(key, value []byte) error {
		merged[string(key)] = value
		return nil
	})
	if err != nil {
		return err
	}
	for k := range o.deleted {
		delete(merged, k)
	}
	for k, v := range o.writes {
		if hasPrefix([]byte(k), prefix) {
			merged[k] = clone(v)
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

func (o *Overlay) Set(key, value []byte) error {
	k := string(key)
	delete(o.deleted, k)
	o.writes[k] = clone(value)
	return nil
}

func (o *Overlay) Delete(key []byte) error {
	k := string(key)
	delete(o.writes, k)
	o.deleted[k] = struct{}{}
	return nil
}

// Len returns the number of buffered writes and deletes
func (o *Overlay) Len() int {
	return len(o.writes) + len(o.deleted)
}

// Commit applies the buffered changes to w in key order
func (o *Overlay) Commit(w Writer) error {
	var err error
	o.each(func(key string, value []byte, deleted bool) {
		if err != nil {
			return
		}
		if deleted {
			err = w.Delete([]byte(key))
		} else {
			err = w.Set([]byte(key), value)
		}
	})
	return err
}

func (o *Overlay) each(fn func(key string, value []byte, deleted bool)) {
	keys := make([]string, 0, o.Len())
	for k := range o.writes {
		keys = append(keys, k)
	}
	for k := range o.deleted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := o.writes[k]; ok {
			fn(k, v, false)
		} else {
			fn(k, nil, true)
		}
	}
}

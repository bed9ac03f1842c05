// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

// Key is a list element. Any value is allowed, including the zero value.
type Key interface {
	storage.Key
	comparable
}

type link[K Key] struct {
	Prev    K
	Next    K
	HasPrev bool
	HasNext bool
}

type ends[K Key] struct {
	Head  K
	Tail  K
	Count uint64
}

// LinkedList is an insertion ordered set persisted in state.
type LinkedList[K Key] struct {
	ends  *storage.Raw[*ends[K]]
	links *storage.Mapping[K, *link[K]]
}

// New creates a list whose bookkeeping lives under the given slot.
func New[K Key](sctx *storage.Context, pos tangle.Bytes32) *LinkedList[K] {
	return &LinkedList[K]{
		ends:  storage.NewRaw[*ends[K]](sctx, pos),
		links: storage.NewMapping[K, *link[K]](sctx, tangle.Blake2b(pos.Bytes(), []byte("links"))),
	}
}

// Contains returns whether key is in the list.
func (l *LinkedList[K]) Contains(key K) (bool, error) {
	return l.links.Exists(key)
}

// Add appends key to the end of the list. Adding a present key is a noop.
func (l *LinkedList[K]) Add(key K) error {
	exists, err := l.links.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	e, err := l.ends.Get()
	if err != nil {
		return err
	}

	if e == nil || e.Count == 0 {
		// the list is currently empty, set this entry to head & tail
		if err := l.links.Set(key, &link[K]{}); err != nil {
			return err
		}
		return l.ends.Upsert(&ends[K]{Head: key, Tail: key, Count: 1})
	}

	oldTail, err := l.links.Get(e.Tail)
	if err != nil {
		return err
	}
	if oldTail == nil {
		return errors.New("linked list tail is missing")
	}
	oldTail.Next, oldTail.HasNext = key, true
	if err := l.links.Set(e.Tail, oldTail); err != nil {
		return err
	}
	if err := l.links.Set(key, &link[K]{Prev: e.Tail, HasPrev: true}); err != nil {
		return err
	}

	e.Tail = key
	e.Count++
	return l.ends.Upsert(e)
}

// Remove extracts key from anywhere in the list, reconnecting adjacent nodes.
func (l *LinkedList[K]) Remove(key K) error {
	node, err := l.links.Get(key)
	if err != nil {
		return err
	}
	if node == nil {
		return nil // not in list
	}
	e, err := l.ends.Get()
	if err != nil {
		return err
	}
	if e == nil {
		return errors.New("linked list ends are missing")
	}

	if node.HasPrev {
		prev, err := l.links.Get(node.Prev)
		if err != nil {
			return err
		}
		prev.Next, prev.HasNext = node.Next, node.HasNext
		if err := l.links.Set(node.Prev, prev); err != nil {
			return err
		}
	} else {
		e.Head = node.Next
	}

	if node.HasNext {
		next, err := l.links.Get(node.Next)
		if err != nil {
			return err
		}
		next.Prev, next.HasPrev = node.Prev, node.HasPrev
		if err := l.links.Set(node.Next, next); err != nil {
			return err
		}
	} else {
		e.Tail = node.Prev
	}

	l.links.Delete(key)

	e.Count--
	if e.Count == 0 {
		l.ends.Delete()
		return nil
	}
	return l.ends.Upsert(e)
}

// Len returns the number of keys in the list.
func (l *LinkedList[K]) Len() (uint64, error) {
	e, err := l.ends.Get()
	if err != nil || e == nil {
		return 0, err
	}
	return e.Count, nil
}

// Iter traverses the list in insertion order until completion or error.
func (l *LinkedList[K]) Iter(callback func(K) error) error {
	e, err := l.ends.Get()
	if err != nil {
		return err
	}
	if e == nil || e.Count == 0 {
		return nil
	}

	ptr := e.Head
	for {
		// read the successor first so the callback may remove ptr
		node, err := l.links.Get(ptr)
		if err != nil {
			return err
		}
		if node == nil {
			return errors.New("linked list node is missing")
		}
		if err := callback(ptr); err != nil {
			return err
		}
		if !node.HasNext {
			return nil
		}
		ptr = node.Next
	}
}

// Keys returns every key in insertion order.
func (l *LinkedList[K]) Keys() ([]K, error) {
	var keys []K
	err := l.Iter(func(k K) error {
		keys = append(keys, k)
		return nil
	})
	return keys, err
}

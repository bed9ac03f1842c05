// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/tangle-network/lst/kv"
)

// Stage abstracts changes that can be committed to a store.
type Stage struct {
	changes map[storageKey][]byte
	order   []storageKey
}

// Len returns the number of changed entries.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes the changes into the bulk and flushes it.
func (s *Stage) Commit(bulk kv.Bulk) error {
	for _, key := range s.order {
		val := s.changes[key]
		var err error
		if len(val) == 0 {
			err = bulk.Delete(key.bytes())
		} else {
			err = bulk.Put(key.bytes(), val)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/tangle-network/lst/tangle"
)

// Roles are the administrative accounts of a pool. The depositor never changes.
// A pool without root can no longer change its roles.
type Roles struct {
	Depositor tangle.Address
	Root      *tangle.Address `rlp:"nil"`
	Nominator *tangle.Address `rlp:"nil"`
	Bouncer   *tangle.Address `rlp:"nil"`
}

func is(role *tangle.Address, who tangle.Address) bool {
	return role != nil && *role == who
}

type OpKind uint8

const (
	OpNoop OpKind = iota
	OpSet
	OpRemove
)

// ConfigOp is an update of an optional value.
type ConfigOp[T any] struct {
	Kind  OpKind
	Value T
}

func Noop[T any]() ConfigOp[T] {
	return ConfigOp[T]{}
}

func Set[T any](v T) ConfigOp[T] {
	return ConfigOp[T]{Kind: OpSet, Value: v}
}

func Remove[T any]() ConfigOp[T] {
	return ConfigOp[T]{Kind: OpRemove}
}

// Apply updates the optional value pointed by dst.
func (o ConfigOp[T]) Apply(dst **T) {
	switch o.Kind {
	case OpSet:
		v := o.Value
		*dst = &v
	case OpRemove:
		*dst = nil
	}
}

func (o ConfigOp[T]) IsNoop() bool {
	return o.Kind == OpNoop
}

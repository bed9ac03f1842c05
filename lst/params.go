// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/tangle"
)

// Params are the global parameters set through SetConfigs.
type Params struct {
	MinJoinBond         *uint256.Int
	MinCreateBond       *uint256.Int
	MaxPools            *uint32
	GlobalMaxCommission *tangle.Perbill
}

type paramsRLP struct {
	MinJoinBond            *uint256.Int
	MinCreateBond          *uint256.Int
	MaxPools               uint32
	HasMaxPools            bool
	GlobalMaxCommission    uint32
	HasGlobalMaxCommission bool
}

func (p *Params) EncodeRLP(w io.Writer) error {
	enc := paramsRLP{
		MinJoinBond:   orZero(p.MinJoinBond),
		MinCreateBond: orZero(p.MinCreateBond),
	}
	if p.MaxPools != nil {
		enc.MaxPools, enc.HasMaxPools = *p.MaxPools, true
	}
	if p.GlobalMaxCommission != nil {
		enc.GlobalMaxCommission, enc.HasGlobalMaxCommission = p.GlobalMaxCommission.Parts(), true
	}
	return rlp.Encode(w, &enc)
}

func (p *Params) DecodeRLP(s *rlp.Stream) error {
	var dec paramsRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	*p = Params{MinJoinBond: orZero(dec.MinJoinBond), MinCreateBond: orZero(dec.MinCreateBond)}
	if dec.HasMaxPools {
		v := dec.MaxPools
		p.MaxPools = &v
	}
	if dec.HasGlobalMaxCommission {
		v := tangle.PerbillFromParts(dec.GlobalMaxCommission)
		p.GlobalMaxCommission = &v
	}
	return nil
}

// ParamsUpdate changes the global parameters. Removing a bond minimum sets it to zero.
type ParamsUpdate struct {
	MinJoinBond         pool.ConfigOp[uint256.Int]
	MinCreateBond       pool.ConfigOp[uint256.Int]
	MaxPools            pool.ConfigOp[uint32]
	GlobalMaxCommission pool.ConfigOp[tangle.Perbill]
}

func (u *ParamsUpdate) apply(p *Params) {
	u.MinJoinBond.Apply(&p.MinJoinBond)
	u.MinCreateBond.Apply(&p.MinCreateBond)
	u.MaxPools.Apply(&p.MaxPools)
	u.GlobalMaxCommission.Apply(&p.GlobalMaxCommission)
	p.MinJoinBond = orZero(p.MinJoinBond)
	p.MinCreateBond = orZero(p.MinCreateBond)
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var slotEraPayout = tangle.BytesToBytes32([]byte("era-payout-info"))

// Service persists the era payout info.
type Service struct {
	info *storage.Raw[*EraPayout]
}

func NewService(sctx *storage.Context) *Service {
	return &Service{info: storage.NewRaw[*EraPayout](sctx, slotEraPayout)}
}

// EraPayout returns the stored info, or the default one.
func (s *Service) EraPayout() (*EraPayout, error) {
	info, err := s.info.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get era payout info")
	}
	if info == nil {
		info = DefaultEraPayout()
	}
	return info, nil
}

func (s *Service) SetEraPayout(info *EraPayout) error {
	if err := s.info.Upsert(info); err != nil {
		return errors.Wrap(err, "failed to set era payout info")
	}
	return nil
}

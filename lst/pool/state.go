// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a pool.
type State uint8

const (
	// Open pools accept new members.
	Open State = iota
	// Blocked pools accept no new members and their bouncer may kick members.
	Blocked
	// Destroying pools let anyone unbond their members. The state is terminal.
	Destroying
)

func (s State) String() string {
	switch s {
	case Open:
		return "Open"
	case Blocked:
		return "Blocked"
	case Destroying:
		return "Destroying"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState parses a state name, case-insensitively.
func ParseState(s string) (State, error) {
	switch strings.ToLower(s) {
	case "open":
		return Open, nil
	case "blocked":
		return Blocked, nil
	case "destroying":
		return Destroying, nil
	}
	return 0, fmt.Errorf("unknown pool state %q", s)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	blockNumber INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	poolID INTEGER NOT NULL,
	name TEXT NOT NULL,
	data BLOB,
	PRIMARY KEY (blockNumber, eventIndex)
);

CREATE INDEX IF NOT EXISTS eventBlockTimeIndex ON event(blockTime);
CREATE INDEX IF NOT EXISTS eventPoolIndex ON event(poolID);
CREATE INDEX IF NOT EXISTS eventNameIndex ON event(name);
`

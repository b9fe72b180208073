// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for event
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	blockID blob(32),
	eventIndex integer,
	blockNumber integer,
	blockTime integer,
	callID blob(32),
	callOrigin blob(20),
	address blob(20),
	topic0 blob(32),
	topic1 blob(32),
	topic2 blob(32),
	topic3 blob(32),
	topic4 blob(32),
	data blob,
	PRIMARY KEY (blockNumber, eventIndex)
);

CREATE INDEX IF NOT EXISTS eventAddressIndex ON event(address);
CREATE INDEX IF NOT EXISTS eventTopic0Index ON event(topic0);
CREATE INDEX IF NOT EXISTS eventTopic1Index ON event(topic1);
CREATE INDEX IF NOT EXISTS eventTopic2Index ON event(topic2);
CREATE INDEX IF NOT EXISTS eventTopic3Index ON event(topic3);
CREATE INDEX IF NOT EXISTS eventTopic4Index ON event(topic4);
`

// the id of the latest written block
const configTableSchema = `
CREATE TABLE IF NOT EXISTS config (
	key text PRIMARY KEY,
	value blob
);
`

const newestBlockIDKey = "newestBlockID"

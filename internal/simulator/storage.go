// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"github.com/dotandev/erst/internal/host"
)

// populateStorage loads a decoded snapshot into the host's storage view and
// returns how many entries were loaded. The snapshot is authoritative for the
// run: no merging happens, and keys absent from it stay not-found reads.
func populateStorage(h host.Host, snapshot Snapshot) (int, error) {
	for _, pair := range snapshot {
		if err := h.PutLedgerEntry(pair.Key, pair.Entry); err != nil {
			return 0, err
		}
	}
	return len(snapshot), nil
}

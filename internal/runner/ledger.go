// Package runner executes queries against queryable targets, writing CSV
// result files and suppressing re-execution through an on-disk hash ledger.
package runner

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// ledgerFile records executed (query hash, graph hash) pairs inside a
// results directory. Append-only; concurrent processes appending to the same
// ledger can race, which is an accepted limitation of the format.
const ledgerFile = ".hashes.csv"

var ledgerHeader = []string{"query_hash", "model_hash"}

// Ledger is the write-avoidance record for one results directory.
type Ledger struct {
	path string
}

// OpenLedger returns the ledger for a results directory. The backing file is
// created lazily on the first Record call.
func OpenLedger(dir string) *Ledger {
	return &Ledger{path: filepath.Join(dir, ledgerFile)}
}

// Seen reports whether the (query hash, graph hash) pair was already
// recorded. A missing ledger file means nothing was recorded yet.
func (l *Ledger) Seen(queryHash, graphHash string) (bool, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening hash ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return false, fmt.Errorf("reading hash ledger: %w", err)
	}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header
		}
		if row[0] == queryHash && row[1] == graphHash {
			return true, nil
		}
	}
	return false, nil
}

// Record appends the pair, writing the header first when the file is new.
func (l *Ledger) Record(queryHash, graphHash string) error {
	_, statErr := os.Stat(l.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening hash ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(ledgerHeader); err != nil {
			return fmt.Errorf("writing ledger header: %w", err)
		}
	}
	if err := w.Write([]string{queryHash, graphHash}); err != nil {
		return fmt.Errorf("writing ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing hash ledger: %w", err)
	}
	return nil
}

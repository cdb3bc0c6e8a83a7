package table

import (
	"time"

	"github.com/agentfelt/agentfelt/internal/engine"
)

// maxHistory bounds the per-table hand history; older records roll off.
const maxHistory = 128

// HandRecord is one completed hand in a table's history.
type HandRecord struct {
	HandID     string
	Seed       int64
	StartedAt  time.Time
	EndedAt    time.Time
	Winners    []string
	// ChipDeltas maps agent id to net chips won or lost in the hand.
	ChipDeltas map[string]int
	Events     []engine.Event
}

// history is a bounded append-only record of completed hands.
type history struct {
	records []HandRecord
}

func (h *history) append(rec HandRecord) {
	h.records = append(h.records, rec)
	if len(h.records) > maxHistory {
		h.records = h.records[len(h.records)-maxHistory:]
	}
}

// Records returns a copy of the retained hand records, oldest first.
func (h *history) Records() []HandRecord {
	out := make([]HandRecord, len(h.records))
	copy(out, h.records)
	return out
}

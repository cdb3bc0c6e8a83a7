package table

import "github.com/agentfelt/agentfelt/internal/engine"

// Auditor consumes each completed hand's event stream plus the seed that
// produced its shuffle, so an external verifier can rebuild the hand and
// check a tamper-evident log. Implementations must not block; the actor
// invokes them fire-and-forget.
type Auditor interface {
	HandCompleted(tableID, handID string, seed int64, events []engine.Event)
}

// Ledger moves chips between accounts. Transfer must be idempotent on ref:
// the actor keys each movement by (handID, player) so a redelivered
// notification has no additional effect.
type Ledger interface {
	Transfer(ref, from, to string, amount int, reason string) error
}

// NopAuditor discards every notification.
type NopAuditor struct{}

func (NopAuditor) HandCompleted(string, string, int64, []engine.Event) {}

// NopLedger accepts every transfer.
type NopLedger struct{}

func (NopLedger) Transfer(string, string, string, int, string) error { return nil }

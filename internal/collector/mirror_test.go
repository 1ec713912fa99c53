package collector

import (
	"context"
	"sync"
	"testing"

	"quotecollector/internal/quote"
)

// memoryMirror keeps the most recent snapshot in memory.
type memoryMirror struct {
	mu      sync.Mutex
	cycleID string
	records []quote.Record
	cycles  int
}

func newMemoryMirror() *memoryMirror {
	return &memoryMirror{
		records: make([]quote.Record, 0),
	}
}

func (m *memoryMirror) ReplaceSnapshot(_ context.Context, cycleID string, batch []quote.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cycleID = cycleID
	m.records = append(m.records[:0], batch...)
	m.cycles++
	return nil
}

func (m *memoryMirror) snapshot() (string, []quote.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to avoid race
	out := make([]quote.Record, len(m.records))
	copy(out, m.records)
	return m.cycleID, out
}

// go test -v --run TestMemoryMirrorReplaces
func TestMemoryMirrorReplaces(t *testing.T) {
	mirror := newMemoryMirror()

	batch := []quote.Record{{Symbol: "AAPL", Timestamp: 1700000000, Close: 189.5, Volume: 1000}}
	if err := mirror.ReplaceSnapshot(context.Background(), "c1", batch); err != nil {
		t.Fatal(err)
	}
	batch[0].Symbol = "MUTATED"

	cycleID, records := mirror.snapshot()
	if cycleID != "c1" || len(records) != 1 || records[0].Symbol != "AAPL" {
		t.Fatalf("unexpected snapshot %s %v", cycleID, records)
	}

	if err := mirror.ReplaceSnapshot(context.Background(), "c2", nil); err != nil {
		t.Fatal(err)
	}
	cycleID, records = mirror.snapshot()
	if cycleID != "c2" || len(records) != 0 || mirror.cycles != 2 {
		t.Errorf("expected empty snapshot of c2, got %s %v", cycleID, records)
	}
}

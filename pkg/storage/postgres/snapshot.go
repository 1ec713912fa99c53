package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"quotecollector/internal/quote"

	"gorm.io/gorm"
)

// ErrVolumeOutOfRange is returned for a volume that does not fit a bigint column.
var ErrVolumeOutOfRange = errors.New("volume exceeds bigint range")

// ReplaceSnapshot swaps the table contents for batch in one transaction.
func (p *PostgresClient) ReplaceSnapshot(ctx context.Context, cycleID string, batch []quote.Record) error {
	rows := make([]QuoteSnapshotRecord, 0, len(batch))
	for i, r := range batch {
		row, err := ToQuoteSnapshotRecord(cycleID, i, r)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&QuoteSnapshotRecord{}).Error; err != nil {
			return fmt.Errorf("clear quote snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert quote snapshot: %w", err)
		}
		return nil
	})
}

// GetSnapshot returns the stored snapshot in batch order.
func (p *PostgresClient) GetSnapshot(ctx context.Context) ([]QuoteSnapshotRecord, error) {
	var rows []QuoteSnapshotRecord
	err := p.DB.WithContext(ctx).Order("position").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ToQuoteSnapshotRecord converts a Record at position pos of a cycle batch
// into a row for DB insertion.
func ToQuoteSnapshotRecord(cycleID string, pos int, r quote.Record) (QuoteSnapshotRecord, error) {
	if r.Volume > math.MaxInt64 {
		return QuoteSnapshotRecord{}, fmt.Errorf("%s: %w: %d", r.Symbol, ErrVolumeOutOfRange, r.Volume)
	}

	return QuoteSnapshotRecord{
		CycleID:   cycleID,
		Position:  pos,
		Name:      r.Symbol,
		Timestamp: r.Timestamp,
		Open:      r.Open,
		Close:     r.Close,
		AdjClose:  r.AdjClose,
		High:      r.High,
		Low:       r.Low,
		Volume:    int64(r.Volume),
	}, nil
}

// Record converts a stored row back into a quote.Record.
func (q QuoteSnapshotRecord) Record() quote.Record {
	return quote.Record{
		Symbol:    q.Name,
		Timestamp: q.Timestamp,
		Open:      q.Open,
		Close:     q.Close,
		AdjClose:  q.AdjClose,
		High:      q.High,
		Low:       q.Low,
		Volume:    uint64(q.Volume),
	}
}

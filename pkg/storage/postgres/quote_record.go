package postgres

import "time"

// QuoteSnapshotRecord is one row of the latest cycle's snapshot. The table
// only ever holds a single cycle.
type QuoteSnapshotRecord struct {
	ID uint `gorm:"primaryKey"`

	CycleID  string `gorm:"type:varchar(36);not null;index:idx_quote_snapshot_cycle"`
	Position int    `gorm:"not null"` // row order within the cycle batch

	Name      string `gorm:"type:text;not null"`
	Timestamp int64  `gorm:"not null"`

	Open     float64 `gorm:"type:double precision;not null"`
	Close    float64 `gorm:"type:double precision;not null"`
	AdjClose float64 `gorm:"type:double precision;not null"`
	High     float64 `gorm:"type:double precision;not null"`
	Low      float64 `gorm:"type:double precision;not null"`

	Volume int64 `gorm:"type:bigint;not null"` // bigint is signed, see ErrVolumeOutOfRange

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (QuoteSnapshotRecord) TableName() string {
	return "quote_snapshot"
}

package models

import "time"

// QuoteSnapshot is one observed best quote for a collection side.
type QuoteSnapshot struct {
	BaseModel
	Collection string    `gorm:"index:idx_quote_lookup;not null;type:varchar(64)"`
	Side       string    `gorm:"index:idx_quote_lookup;not null;type:varchar(4)"`
	PoolID     uint64    `gorm:"not null"`
	QuotePrice string    `gorm:"type:numeric(40,0);not null"`
	Depth      int       `gorm:"default:0"`
	ObservedAt time.Time `gorm:"index;not null"`
}

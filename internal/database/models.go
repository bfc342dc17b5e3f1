package database

import (
	"time"
)

// Export is one stored month image.
type Export struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1..12
	Workers   []string  `json:"workers"`
	Filename  string    `json:"filename"`
	PNG       []byte    `json:"-"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Batch is the metadata of one export request.
type Batch struct {
	ID      string   `json:"id"`
	Exports []Export `json:"exports"`
}

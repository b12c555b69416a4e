// Package models defines the GORM models backing the optional run-history
// store.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Run records one transform application over a single source document.
type Run struct {
	ID string `gorm:"primaryKey;type:varchar(20)"`

	// What was applied to what
	TransformsFile string `gorm:"type:varchar(255);not null"`
	Source         string `gorm:"type:varchar(255);not null;index"`
	Reverse        bool   `gorm:"default:false"`
	RuleCount      int
	RootCount      int

	// Checksums of the serialized documents
	InputDigest  string `gorm:"type:varchar(64)"`
	OutputDigest string `gorm:"type:varchar(64)"`

	// CLI options in effect, for reproducing the run
	Options datatypes.JSON

	// Outcome
	DurationMs int64
	Status     string `gorm:"type:varchar(20);default:'ok'"`
	Error      string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName uses a plural table name
func (Run) TableName() string {
	return "runs"
}

// RunStatus values for Run.Status.
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects which document the composer builds.
type Mode string

const (
	ModeSchedule Mode = "schedule"
	ModeServices Mode = "services"
	ModeTeam     Mode = "team"
	ModeFull     Mode = "full"
)

// Valid reports whether m is a known document mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeSchedule, ModeServices, ModeTeam, ModeFull:
		return true
	}
	return false
}

// ExportRecord is one row of the export history: a document that was
// composed, rendered, and written out.
type ExportRecord struct {
	ID        uuid.UUID
	Mode      Mode
	Title     string
	Filename  string
	Format    string // "pdf", "xlsx" or "json"
	ByteSize  int64
	CreatedAt time.Time
}

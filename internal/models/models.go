package models

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RunRunning = "running"
	RunDone    = "done"
	RunFailed  = "failed"
)

// Run is one exhaustive search over a ciphertext. Runs are history only; a
// new search never resumes an old one.
type Run struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Width         int        `gorm:"not null" json:"width"`
	InitialHex    string     `gorm:"not null" json:"initial"`
	CiphertextHex string     `gorm:"not null" json:"ciphertext"`
	Fingerprint   string     `gorm:"index;size:64;not null" json:"fingerprint"`
	Workers       int        `gorm:"not null" json:"workers"`
	Chunks        JSONB      `gorm:"type:jsonb" json:"chunks"`
	Checked       string     `json:"checked"` // decimal; may exceed int64
	Hits          int64      `json:"hits"`
	Status        string     `gorm:"not null;default:running" json:"status"`
	Error         *string    `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Found         []Hit      `gorm:"foreignKey:RunID" json:"found,omitempty"`
}

func (r *Run) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Hit is a tap configuration accepted during a run. Accepted plaintexts may
// contain NUL, which Postgres text columns reject, so they are stored as hex.
type Hit struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string    `gorm:"size:36;index;not null" json:"run_id"`
	TapsHex      string    `gorm:"not null" json:"taps"`
	PlaintextHex string    `gorm:"not null" json:"plaintext_hex"`
	Worker       int       `json:"worker"`
	CreatedAt    time.Time `json:"created_at"`
}

// EncodePlaintext is the stored form of an accepted plaintext.
func EncodePlaintext(p string) string { return hex.EncodeToString([]byte(p)) }

// Plaintext decodes PlaintextHex.
func (h Hit) Plaintext() (string, error) {
	b, err := hex.DecodeString(h.PlaintextHex)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

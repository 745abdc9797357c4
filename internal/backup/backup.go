// Package backup exports and imports full ledger snapshots, optionally
// sealed with a passphrase.
package backup

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/amqp"
	"github.com/Arpanmondalz/zen-spend/internal/core"
	"github.com/Arpanmondalz/zen-spend/internal/storage"
)

// ErrInvalidFormat is returned when the imported payload is neither a
// plaintext document nor a decryptable one.
var ErrInvalidFormat = errors.New("unrecognized backup format")

// Document is the wire form of a full ledger snapshot.
type Document struct {
	Expenses   []core.Expense    `json:"expenses"`
	Parking    []core.ParkedItem `json:"parking"`
	Settings   []storage.Setting `json:"settings"`
	ExportDate time.Time         `json:"exportDate"`
}

// Service reads and writes whole-ledger snapshots against the store.
type Service struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
	now     func() time.Time
}

func NewService(storage *storage.SQLiteRepository, events *amqp.Client) *Service {
	return &Service{
		storage: storage,
		events:  events,
		now:     time.Now,
	}
}

// WithClock overrides the export timestamp clock. Tests use this.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Export snapshots the whole ledger as JSON. With a passphrase the
// document is encrypted and base64-encoded, so the output is still text
// but never starts with a brace.
func (s *Service) Export(ctx context.Context, passphrase string) ([]byte, error) {
	expenses, parking, settings, err := s.storage.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot ledger: %w", err)
	}

	doc := Document{
		Expenses:   expenses,
		Parking:    parking,
		Settings:   settings,
		ExportDate: s.now(),
	}
	plaintext, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}

	if passphrase == "" {
		return plaintext, nil
	}

	sealed, err := encrypt(passphrase, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt backup: %w", err)
	}
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(encoded, sealed)
	return encoded, nil
}

// Import replaces the whole ledger with the given snapshot. A payload
// starting with "{" is treated as plaintext JSON, anything else as an
// encrypted document. The store is only touched after the document
// parses, so a bad passphrase or corrupt file leaves the ledger intact.
func (s *Service) Import(ctx context.Context, data []byte, passphrase string) error {
	doc, err := decode(data, passphrase)
	if err != nil {
		return err
	}

	if err := s.storage.ReplaceAll(ctx, doc.Expenses, doc.Parking, doc.Settings); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishEvent(ctx, amqp.EventBackupRestored, 0, 0); err != nil {
			slog.ErrorContext(ctx, "Failed to publish restore event", "error", err)
		}
	}
	return nil
}

func decode(data []byte, passphrase string) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, ErrInvalidFormat
	}

	if trimmed[0] != '{' {
		raw := make([]byte, base64.StdEncoding.DecodedLen(len(trimmed)))
		n, err := base64.StdEncoding.Decode(raw, trimmed)
		if err != nil {
			return Document{}, ErrInvalidFormat
		}
		plaintext, err := decrypt(passphrase, raw[:n])
		if err != nil {
			return Document{}, err
		}
		trimmed = bytes.TrimSpace(plaintext)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return Document{}, ErrInvalidFormat
		}
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return doc, nil
}

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/backup"
	"github.com/Arpanmondalz/zen-spend/internal/log"
)

// passphraseHeader carries the optional backup passphrase. Keeping it
// out of the URL keeps it out of access logs.
const passphraseHeader = "X-Backup-Passphrase"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	passphrase := r.Header.Get(passphraseHeader)

	data, err := s.backups.Export(r.Context(), passphrase)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Backup export failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	filename := fmt.Sprintf("zen-spend-backup-%s.json", time.Now().Format("2006-01-02"))
	contentType := "application/json; charset=utf-8"
	if passphrase != "" {
		filename = fmt.Sprintf("zen-spend-backup-%s.zsb", time.Now().Format("2006-01-02"))
		contentType = "text/plain; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "failed to read backup payload")
		return
	}

	err = s.backups.Import(r.Context(), body, r.Header.Get(passphraseHeader))
	switch {
	case errors.Is(err, backup.ErrDecryptFailed):
		errorJSON(w, http.StatusBadRequest, "decryption failed, check the passphrase")
		return
	case errors.Is(err, backup.ErrInvalidFormat):
		errorJSON(w, http.StatusUnprocessableEntity, "unrecognized backup format")
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Backup import failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to import backup")
		return
	}

	s.invalidateOverview()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearAll(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Clear ledger failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to clear ledger")
		return
	}
	s.invalidateOverview()
	w.WriteHeader(http.StatusNoContent)
}

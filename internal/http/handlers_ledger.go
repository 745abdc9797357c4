package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/core"
	"github.com/Arpanmondalz/zen-spend/internal/log"
	"github.com/Arpanmondalz/zen-spend/internal/services"
)

type expenseRequest struct {
	Amount      core.Money    `json:"amount"`
	Category    core.Category `json:"category"`
	Description string        `json:"description"`
	IsWant      bool          `json:"isWant"`
	Confirmed   bool          `json:"confirmed"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	key := core.MonthKey(time.Now())
	if overview, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, overview)
		return
	}

	overview, err := s.ledger.CurrentOverview(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Overview failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to compute overview")
		return
	}

	s.overviewCache.Set(key, overview)
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.Expenses(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List expenses failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := readJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	draft := core.ExpenseDraft{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		IsWant:      req.IsWant,
	}

	id, err := s.ledger.AddExpense(r.Context(), draft, req.Confirmed)
	if errors.Is(err, services.ErrConfirmationRequired) {
		// The client shows the tax (and, for large fun purchases, a
		// cost-per-use prompt) and resubmits with confirmed=true.
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":              err.Error(),
			"impulseTax":         core.ImpulseTax(draft.Amount),
			"requiresReflection": core.RequiresReflection(draft),
		})
		return
	}
	if err != nil {
		respondDraftError(w, err)
		return
	}

	s.invalidateOverview()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         id,
		"impulseTax": core.ImpulseTax(draft.Amount),
		"guiltAlert": core.TriggersGuiltAlert(draft),
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete expense failed", log.FieldExpenseID, id, log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	s.invalidateOverview()
	w.WriteHeader(http.StatusNoContent)
}

// parkedItemView decorates a parked item with its countdown state.
type parkedItemView struct {
	core.ParkedItem
	DaysLeft int  `json:"daysLeft"`
	Expired  bool `json:"expired"`
}

func (s *Server) handleListParked(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ParkedItems(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List parked items failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to list parked items")
		return
	}

	now := time.Now()
	views := make([]parkedItemView, 0, len(items))
	for _, item := range items {
		views = append(views, parkedItemView{
			ParkedItem: item,
			DaysLeft:   item.DaysLeft(now),
			Expired:    item.Expired(now),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleParkItem(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := readJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}

	id, err := s.ledger.ParkItem(r.Context(), req.Amount, req.Category, req.Description)
	if err != nil {
		respondDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleDeleteParked(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.DeleteParkedItem(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete parked item failed", log.FieldParkedID, id, log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete parked item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConvertParked(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	expenseID, err := s.ledger.ConvertParkedToExpense(r.Context(), id)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Convert parked item failed", log.FieldParkedID, id, log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to convert parked item")
		return
	}
	if expenseID == 0 {
		errorJSON(w, http.StatusNotFound, "parked item not found")
		return
	}

	s.invalidateOverview()
	writeJSON(w, http.StatusOK, map[string]any{"expenseId": expenseID})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.ledger.Budget(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Read budget failed", log.FieldError, err)
		errorJSON(w, http.StatusInternalServerError, "failed to read budget")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budget": budget})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount core.Money `json:"amount"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}
	if err := s.ledger.SetBudget(r.Context(), req.Amount); err != nil {
		respondDraftError(w, err)
		return
	}
	s.invalidateOverview()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCostPerUse(w http.ResponseWriter, r *http.Request) {
	cents, err := core.ParseDecimalToCents(r.URL.Query().Get("amount"))
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	uses, err := strconv.Atoi(r.URL.Query().Get("uses"))
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid uses")
		return
	}

	amount := core.Money{Cents: cents}
	writeJSON(w, http.StatusOK, map[string]any{
		"amount":     amount,
		"uses":       uses,
		"costPerUse": core.CostPerUse(amount, uses),
	})
}

// respondBodyError maps a malformed request body to 400; an invalid
// amount inside the body is a domain failure and keeps its 422.
func respondBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidAmount) {
		errorJSON(w, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error())
		return
	}
	errorJSON(w, http.StatusBadRequest, "invalid request body")
}

// respondDraftError maps domain validation failures to 422 and hides
// everything else behind a 500.
func respondDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrDescriptionTooLong):
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
	default:
		errorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

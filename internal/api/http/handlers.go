package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/logger"

	"github.com/gorilla/mux"
)

type issueRequest struct {
	AccessionNo    string             `json:"accession_no"`
	Borrower       domain.BorrowerRef `json:"borrower"`
	RequestedDueAt *time.Time         `json:"requested_due_at,omitempty"`
}

func (h *Handler) IssueLoan(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.circSvc.Issue(r.Context(), req.AccessionNo, req.Borrower, req.RequestedDueAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type renewRequest struct {
	NewDueAt time.Time `json:"new_due_at"`
}

func (h *Handler) RenewLoan(w http.ResponseWriter, r *http.Request) {
	loanRef := mux.Vars(r)["ref"]
	var req renewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewDueAt.IsZero() {
		writeError(w, http.StatusBadRequest, "new_due_at is required")
		return
	}
	result, err := h.circSvc.Renew(r.Context(), loanRef, req.NewDueAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type returnRequest struct {
	AccessionNo string             `json:"accession_no"`
	Borrower    domain.BorrowerRef `json:"borrower"`
	ReturnedAt  *time.Time         `json:"returned_at,omitempty"`
}

func (h *Handler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loan, item, err := h.circSvc.Return(r.Context(), req.AccessionNo, req.Borrower, req.ReturnedAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"loan": loan, "item": item})
}

type lostRequest struct {
	AccessionNo     string             `json:"accession_no"`
	Borrower        domain.BorrowerRef `json:"borrower"`
	Reason          string             `json:"reason"`
	ReplacementCost int32              `json:"replacement_cost"`
}

func (h *Handler) ReportLost(w http.ResponseWriter, r *http.Request) {
	var req lostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loan, err := h.circSvc.ReportLost(r.Context(), req.AccessionNo, req.Borrower, req.Reason, req.ReplacementCost)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) ConfirmFinePayment(w http.ResponseWriter, r *http.Request) {
	loanRef := mux.Vars(r)["ref"]
	loan, err := h.circSvc.ConfirmFinePayment(r.Context(), loanRef)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) ListActiveLoans(w http.ResponseWriter, r *http.Request) {
	btype, ok := borrowerTypeFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "borrower type must be STUDENT or STAFF")
		return
	}
	loans, err := h.reportSvc.ActiveLoansByBorrower(r.Context(), btype, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"loans": loans})
}

func (h *Handler) ListOverdueLoans(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		parsed, err := time.Parse(time.RFC3339, asOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be RFC3339")
			return
		}
		now = parsed
	}
	loans, err := h.reportSvc.OverdueLoans(r.Context(), now)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"loans": loans})
}

func (h *Handler) BorrowCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reportSvc.BorrowCounts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.catalogSvc.AddItem(r.Context(), &item); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalogSvc.GetItem(r.Context(), mux.Vars(r)["accession_no"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.AccessionNo = mux.Vars(r)["accession_no"]
	if err := h.catalogSvc.UpdateItem(r.Context(), &item); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	items, total, err := h.catalogSvc.ListItems(r.Context(), page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *Handler) RegisterBorrower(w http.ResponseWriter, r *http.Request) {
	var b domain.Borrower
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.borrowerSvc.Register(r.Context(), &b); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBorrower(w http.ResponseWriter, r *http.Request) {
	btype, ok := borrowerTypeFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "borrower type must be STUDENT or STAFF")
		return
	}
	b, err := h.borrowerSvc.Get(r.Context(), btype, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateBorrower(w http.ResponseWriter, r *http.Request) {
	btype, ok := borrowerTypeFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "borrower type must be STUDENT or STAFF")
		return
	}
	var b domain.Borrower
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b.Type = btype
	b.BorrowerID = mux.Vars(r)["id"]
	if err := h.borrowerSvc.UpdateProfile(r.Context(), &b); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	btype, ok := borrowerTypeFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "borrower type must be STUDENT or STAFF")
		return
	}
	page, pageSize := pagination(r)
	borrowers, total, err := h.borrowerSvc.List(r.Context(), btype, page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"borrowers": borrowers, "total": total})
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	btype, ok := borrowerTypeFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "borrower type must be STUDENT or STAFF")
		return
	}
	page, pageSize := pagination(r)
	ref := domain.BorrowerRef{Type: btype, BorrowerID: mux.Vars(r)["id"]}
	notes, total, err := h.noteSvc.GetNotifications(r.Context(), ref, page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notes, "total": total})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	btype, ok := borrowerTypeFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "borrower type must be STUDENT or STAFF")
		return
	}
	noteID, err := strconv.ParseInt(mux.Vars(r)["note_id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	ref := domain.BorrowerRef{Type: btype, BorrowerID: mux.Vars(r)["id"]}
	if err := h.noteSvc.MarkAsRead(r.Context(), ref, int32(noteID)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func borrowerTypeFromPath(r *http.Request) (domain.BorrowerType, bool) {
	btype := domain.BorrowerType(mux.Vars(r)["type"])
	if btype != domain.BorrowerTypeStudent && btype != domain.BorrowerTypeStaff {
		return "", false
	}
	return btype, true
}

func pagination(r *http.Request) (int32, int32) {
	page := int32(1)
	pageSize := int32(20)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 {
		pageSize = int32(v)
	}
	return page, pageSize
}

// writeDomainError maps circulation sentinels to HTTP statuses so every
// failure kind stays distinguishable at the boundary.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrBorrowerNotFound),
		errors.Is(err, domain.ErrLoanNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrDuplicateActiveLoan),
		errors.Is(err, domain.ErrLoanNotOpen),
		errors.Is(err, domain.ErrRenewalBlockedByFine),
		errors.Is(err, domain.ErrNoActiveLoan),
		errors.Is(err, domain.ErrNoFineDue):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		// Retries are exhausted at this point; the caller may try again.
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled error in HTTP handler", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

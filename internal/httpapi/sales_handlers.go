package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parsePositiveLimit(q.Get("limit"), 200, 500)

	resp, err := a.service.ListInvoices(r.Context(), q.Get("date"), parseOptionalBool(q.Get("voided")), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	invoice, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"invoice": invoice})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	invoice, err := a.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": invoice})
}

// handleVoidSale is open to cashiers but needs the manager PIN.
func (a *API) handleVoidSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleVoidRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !a.pinLimiter.Allow("pin:void:" + clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many manager pin attempts"))
		return
	}
	if !a.auth.ValidateManagerPIN(req.ManagerPIN) {
		writeError(w, http.StatusForbidden, errors.New("invalid manager pin"))
		return
	}

	invoice, err := a.service.VoidSale(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": invoice})
}

func (a *API) handleReactivateSale(w http.ResponseWriter, r *http.Request) {
	invoice, err := a.service.ReactivateSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": invoice})
}

func (a *API) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	resp, err := a.service.ListPurchases(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	purchase, err := a.service.CreatePurchase(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"purchase": purchase})
}

func (a *API) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := a.service.GetPurchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchase": purchase})
}

func (a *API) handleModifyPurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseModifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	purchase, err := a.service.ModifyPurchase(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchase": purchase})
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 200, 1000)
	logs, err := a.service.ListAuditLogs(r.Context(), r.URL.Query().Get("date"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (a *API) handleListCashiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cashiers": a.auth.ListCashiers(r.Context())})
}

func (a *API) handleCreateCashier(w http.ResponseWriter, r *http.Request) {
	var req domain.CashierCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cashier, err := a.auth.CreateCashier(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"cashier": cashier})
}

package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	products, err := a.service.ListProducts(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 20, 100)

	products, err := a.service.SearchProducts(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		threshold = parsed
	}

	products, err := a.service.LowStockProducts(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListTaxRates(w http.ResponseWriter, r *http.Request) {
	rates, err := a.service.ListTaxRates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tax_rates": rates})
}

func (a *API) handleCreateTaxRate(w http.ResponseWriter, r *http.Request) {
	var req domain.TaxRateCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rate, err := a.service.CreateTaxRate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"tax_rate": rate})
}

func (a *API) handleUpdateTaxRate(w http.ResponseWriter, r *http.Request) {
	var req domain.TaxRateUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rate, err := a.service.UpdateTaxRate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tax_rate": rate})
}

func (a *API) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := a.service.ListPaymentMethods(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment_methods": methods})
}

func (a *API) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentMethodCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	method, err := a.service.CreatePaymentMethod(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"payment_method": method})
}

func (a *API) handleUpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentMethodUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	method, err := a.service.UpdatePaymentMethod(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment_method": method})
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	customer, err := a.service.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := a.service.ListEmployees(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

func (a *API) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req domain.EmployeeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	employee, err := a.service.CreateEmployee(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"employee": employee})
}

func (a *API) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req domain.EmployeeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	employee, err := a.service.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": employee})
}

func (a *API) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := a.service.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (a *API) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	supplier, err := a.service.CreateSupplier(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"supplier": supplier})
}

func (a *API) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	supplier, err := a.service.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"supplier": supplier})
}

func (a *API) handleGetInvoiceConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.service.GetInvoiceConfig(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice_config": cfg})
}

func (a *API) handleUpdateInvoiceConfig(w http.ResponseWriter, r *http.Request) {
	var req domain.InvoiceConfigUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg, err := a.service.UpdateInvoiceConfig(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice_config": cfg})
}

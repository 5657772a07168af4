package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type Product struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LowStock reports whether the product is at or below its own reorder point.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

type ProductCreateRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	InitialStock  int             `json:"initial_stock"`
	MinStock      int             `json:"min_stock"`
}

// ProductUpdateRequest lists the mutable product fields. Stock is absent on
// purpose: it only moves through sales, voids and purchases.
type ProductUpdateRequest struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	MinStock      *int             `json:"min_stock,omitempty"`
	Active        *bool            `json:"active,omitempty"`
}

type TaxRate struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Percent   decimal.Decimal `json:"percent"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

type TaxRateCreateRequest struct {
	Name    string          `json:"name"`
	Percent decimal.Decimal `json:"percent"`
}

// TaxRateUpdateRequest cannot change the percentage; invoices reference it.
type TaxRateUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type PaymentMethod struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentMethodCreateRequest struct {
	Name string `json:"name"`
}

type PaymentMethodUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CustomerUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Email  *string `json:"email,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type Employee struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type EmployeeCreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type EmployeeUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type SupplierCreateRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

type SupplierUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Email   *string `json:"email,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

type InvoiceConfig struct {
	ID        string    `json:"id"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceConfigUpdateRequest struct {
	Prefix string `json:"prefix"`
}

// LineItem is one cart entry handed to the sale orchestrator.
type LineItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type Invoice struct {
	ID              string          `json:"id"`
	ConfigID        string          `json:"config_id"`
	IssueDate       string          `json:"issue_date"`
	IssuedAt        time.Time       `json:"issued_at"`
	EmployeeID      string          `json:"employee_id"`
	CustomerID      string          `json:"customer_id,omitempty"`
	TaxRateID       string          `json:"tax_rate_id"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	PaymentMethodID string          `json:"payment_method_id"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxBase         decimal.Decimal `json:"tax_base"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Tip             decimal.Decimal `json:"tip"`
	Total           decimal.Decimal `json:"total"`
	Received        decimal.Decimal `json:"received"`
	ChangeDue       decimal.Decimal `json:"change_due"`
	Voided          bool            `json:"voided"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty"`
	VoidReason      string          `json:"void_reason,omitempty"`
	CreatedBy       string          `json:"created_by"`
	Lines           []InvoiceLine   `json:"lines"`
}

// InvoiceLine freezes the unit price at the moment of sale.
type InvoiceLine struct {
	InvoiceID   string          `json:"invoice_id"`
	LineNo      int             `json:"line_no"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleCreateRequest struct {
	Items           []LineItem      `json:"items"`
	EmployeeID      string          `json:"employee_id"`
	CustomerID      string          `json:"customer_id,omitempty"`
	TaxRateID       string          `json:"tax_rate_id"`
	PaymentMethodID string          `json:"payment_method_id"`
	Tip             decimal.Decimal `json:"tip"`
	Received        decimal.Decimal `json:"received"`
}

type SaleVoidRequest struct {
	ManagerPIN string `json:"manager_pin"`
	Reason     string `json:"reason"`
}

type InvoiceListResponse struct {
	Date     string    `json:"date"`
	Invoices []Invoice `json:"invoices"`
}

type Purchase struct {
	ID         string          `json:"id"`
	SupplierID string          `json:"supplier_id,omitempty"`
	Notes      string          `json:"notes"`
	Total      decimal.Decimal `json:"total"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Lines      []PurchaseLine  `json:"lines"`
}

type PurchaseLine struct {
	PurchaseID  string          `json:"purchase_id"`
	LineNo      int             `json:"line_no"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         int             `json:"qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PurchaseLineInput struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type PurchaseCreateRequest struct {
	SupplierID string              `json:"supplier_id,omitempty"`
	Lines      []PurchaseLineInput `json:"lines"`
	Notes      string              `json:"notes"`
}

// PurchaseModifyRequest replaces every line. A nil SupplierID or Notes keeps
// the stored value; an empty SupplierID clears the supplier.
type PurchaseModifyRequest struct {
	Lines      []PurchaseLineInput `json:"lines"`
	SupplierID *string             `json:"supplier_id,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
}

type PurchaseListResponse struct {
	Purchases []Purchase `json:"purchases"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserAccount struct {
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

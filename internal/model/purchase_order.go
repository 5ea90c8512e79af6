package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// POStatus enum constants
const (
	POStatusDraft     = "DRAFT"
	POStatusSubmitted = "SUBMITTED"
	POStatusApproved  = "APPROVED"
	POStatusRejected  = "REJECTED"
	POStatusCompleted = "COMPLETED"
	POStatusCancelled = "CANCELLED"
)

// TransactionType enum constants
const (
	TxTypeGoods    = "GOODS"
	TxTypeServices = "SERVICES"
)

// TransactionOrigin enum constants
const (
	TxOriginLocal    = "LOCAL"
	TxOriginImported = "IMPORTED"
)

// ShipVia enum constants (fixed carrier set)
const (
	ShipViaUPS     = "UPS"
	ShipViaFedEx   = "FEDEX"
	ShipViaUSPS    = "USPS"
	ShipViaDHL     = "DHL"
	ShipViaFreight = "FREIGHT"
	ShipViaCourier = "COURIER"
	ShipViaPickup  = "PICKUP"
)

// PurchaseOrder represents an order placed with a vendor. TotalAmount is
// derived from the line items and recomputed on every create/update.
type PurchaseOrder struct {
	ID                    uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber              string                  `gorm:"column:po_number;type:varchar(50);uniqueIndex;not null" json:"po_number"`
	VendorName            string                  `gorm:"type:varchar(255);not null" json:"vendor_name"`
	OneTimeVendor         string                  `gorm:"type:text" json:"one_time_vendor"`
	OrderDate             time.Time               `gorm:"type:date;not null" json:"order_date"`
	CustomerSONumber      string                  `gorm:"column:customer_so_number;type:varchar(100)" json:"customer_so_number"`
	CustomerInvoiceNumber string                  `gorm:"type:varchar(100)" json:"customer_invoice_number"`
	APAccount             string                  `gorm:"column:ap_account;type:varchar(100)" json:"ap_account"`
	TransactionType       string                  `gorm:"type:varchar(20);not null" json:"transaction_type"` // GOODS, SERVICES
	TransactionOrigin     string                  `gorm:"type:varchar(20)" json:"transaction_origin"`        // LOCAL, IMPORTED
	ShipVia               string                  `gorm:"type:varchar(20)" json:"ship_via"`
	Status                string                  `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	TotalAmount           decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"` // derived: sum of line item amounts
	LineItems             []PurchaseOrderLineItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"line_items"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

// PurchaseOrderLineItem is a single purchased item belonging to one order.
// Amount is derived (quantity * unit_price), never independently settable.
type PurchaseOrderLineItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	GLAccountID     uuid.UUID       `gorm:"column:gl_account_id;type:uuid;not null;index" json:"gl_account_id"`
	GLAccount       *GLAccount      `gorm:"foreignKey:GLAccountID" json:"gl_account,omitempty"`
	Item            string          `gorm:"type:varchar(255);not null" json:"item"`
	Description     string          `gorm:"type:text" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"` // quantity * unit_price
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

// LineItemPayload carries a line item on order creation. Quantity and
// unit price travel as strings so binary floating point never touches them.
type LineItemPayload struct {
	GLAccountID string `json:"gl_account_id" binding:"required"`
	Item        string `json:"item" binding:"required"`
	Description string `json:"description"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

// LineItemUpdatePayload carries a line item on order update. An element
// with an ID updates (or, with Delete set, removes) an existing row; an
// element without an ID creates a new row.
type LineItemUpdatePayload struct {
	ID          *string `json:"id"`
	GLAccountID *string `json:"gl_account_id"`
	Item        *string `json:"item"`
	Description *string `json:"description"`
	Quantity    *string `json:"quantity"`
	UnitPrice   *string `json:"unit_price"`
	Delete      bool    `json:"_delete"`
}

type CreatePurchaseOrderRequest struct {
	PONumber              string            `json:"po_number" binding:"required"`
	VendorName            string            `json:"vendor_name" binding:"required"`
	OneTimeVendor         string            `json:"one_time_vendor"`
	OrderDate             string            `json:"order_date" binding:"required"` // YYYY-MM-DD
	CustomerSONumber      string            `json:"customer_so_number"`
	CustomerInvoiceNumber string            `json:"customer_invoice_number"`
	APAccount             string            `json:"ap_account"`
	TransactionType       string            `json:"transaction_type" binding:"required"`
	TransactionOrigin     string            `json:"transaction_origin"`
	ShipVia               string            `json:"ship_via"`
	Status                string            `json:"status"`
	LineItems             []LineItemPayload `json:"line_items" binding:"required,min=1"`
}

type UpdatePurchaseOrderRequest struct {
	PONumber              *string                  `json:"po_number"`
	VendorName            *string                  `json:"vendor_name"`
	OneTimeVendor         *string                  `json:"one_time_vendor"`
	OrderDate             *string                  `json:"order_date"`
	CustomerSONumber      *string                  `json:"customer_so_number"`
	CustomerInvoiceNumber *string                  `json:"customer_invoice_number"`
	APAccount             *string                  `json:"ap_account"`
	TransactionType       *string                  `json:"transaction_type"`
	TransactionOrigin     *string                  `json:"transaction_origin"`
	ShipVia               *string                  `json:"ship_via"`
	Status                *string                  `json:"status"`
	LineItems             *[]LineItemUpdatePayload `json:"line_items"` // nil = line items untouched
}

// PurchaseOrderFilter narrows order listings; all fields optional.
type PurchaseOrderFilter struct {
	Search    string
	Status    string
	DateFrom  string // YYYY-MM-DD, inclusive
	DateTo    string // YYYY-MM-DD, inclusive
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type LineItemResponse struct {
	ID          string `json:"id"`
	GLAccountID string `json:"gl_account_id"`
	GLAccount   string `json:"gl_account,omitempty"` // code - name, for display
	Item        string `json:"item"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

type PurchaseOrderResponse struct {
	ID                    string             `json:"id"`
	PONumber              string             `json:"po_number"`
	VendorName            string             `json:"vendor_name"`
	OneTimeVendor         string             `json:"one_time_vendor"`
	OrderDate             string             `json:"order_date"`
	CustomerSONumber      string             `json:"customer_so_number"`
	CustomerInvoiceNumber string             `json:"customer_invoice_number"`
	APAccount             string             `json:"ap_account"`
	TransactionType       string             `json:"transaction_type"`
	TransactionOrigin     string             `json:"transaction_origin"`
	ShipVia               string             `json:"ship_via"`
	Status                string             `json:"status"`
	TotalAmount           string             `json:"total_amount"`
	LineItems             []LineItemResponse `json:"line_items"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// --- Interface ---

type PurchaseOrderService interface {
	CreateOrder(ctx context.Context, req CreatePurchaseOrderRequest) (PurchaseOrderResponse, error)
	GetOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrderResponse, int64, error)
	GetOrderStats(ctx context.Context, filter PurchaseOrderFilter) (repository.PurchaseOrderStats, error)
	GetOrder(ctx context.Context, id string) (PurchaseOrderResponse, error)
	UpdateOrder(ctx context.Context, id string, req UpdatePurchaseOrderRequest) (PurchaseOrderResponse, error)
	DeleteOrder(ctx context.Context, id string) error
}

// --- Implementation ---

type purchaseOrderService struct {
	orderRepo   repository.PurchaseOrderRepository
	accountRepo repository.GLAccountRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewPurchaseOrderService(
	orderRepo repository.PurchaseOrderRepository,
	accountRepo repository.GLAccountRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) PurchaseOrderService {
	return &purchaseOrderService{
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Validation helpers ---

var validTransactionTypes = map[string]bool{
	model.TxTypeGoods:    true,
	model.TxTypeServices: true,
}

var validTransactionOrigins = map[string]bool{
	model.TxOriginLocal:    true,
	model.TxOriginImported: true,
}

var validShipVia = map[string]bool{
	model.ShipViaUPS:     true,
	model.ShipViaFedEx:   true,
	model.ShipViaUSPS:    true,
	model.ShipViaDHL:     true,
	model.ShipViaFreight: true,
	model.ShipViaCourier: true,
	model.ShipViaPickup:  true,
}

var validStatuses = map[string]bool{
	model.POStatusDraft:     true,
	model.POStatusSubmitted: true,
	model.POStatusApproved:  true,
	model.POStatusRejected:  true,
	model.POStatusCompleted: true,
	model.POStatusCancelled: true,
}

// parsePositiveDecimal parses a strictly positive decimal with at most two
// fractional digits. Quantities and unit prices both go through here so a
// malformed value never reaches amount computation.
func parsePositiveDecimal(value, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid %s: %s", field, value)
	}
	if !d.IsPositive() {
		return decimal.Zero, apperror.Validation("%s must be greater than zero", field)
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, apperror.Validation("%s must have at most 2 decimal places", field)
	}
	return d, nil
}

func parseOrderDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperror.Validation("invalid order_date format (expected YYYY-MM-DD): %s", value)
	}
	return t, nil
}

func (s *purchaseOrderService) resolveAccountID(ctx context.Context, raw string) (uuid.UUID, error) {
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid gl_account_id: %s", raw)
	}
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.NotFound("GL account %s not found", raw)
		}
		return uuid.Nil, fmt.Errorf("failed to fetch GL account: %w", err)
	}
	return accountID, nil
}

func (s *purchaseOrderService) validateHeaderEnums(txType, origin, shipVia, status string) error {
	if txType != "" && !validTransactionTypes[txType] {
		return apperror.Validation("transaction_type must be one of: GOODS, SERVICES")
	}
	if origin != "" && !validTransactionOrigins[origin] {
		return apperror.Validation("transaction_origin must be one of: LOCAL, IMPORTED")
	}
	if shipVia != "" && !validShipVia[shipVia] {
		return apperror.Validation("ship_via must be one of: UPS, FEDEX, USPS, DHL, FREIGHT, COURIER, PICKUP")
	}
	if status != "" && !validStatuses[status] {
		return apperror.Validation("status must be one of: DRAFT, SUBMITTED, APPROVED, REJECTED, COMPLETED, CANCELLED")
	}
	return nil
}

// --- CRUD ---

func (s *purchaseOrderService) CreateOrder(ctx context.Context, req CreatePurchaseOrderRequest) (PurchaseOrderResponse, error) {
	poNumber := strings.TrimSpace(req.PONumber)
	if poNumber == "" {
		return PurchaseOrderResponse{}, apperror.Validation("po_number is required")
	}
	if strings.TrimSpace(req.VendorName) == "" {
		return PurchaseOrderResponse{}, apperror.Validation("vendor_name is required")
	}
	if len(req.LineItems) == 0 {
		return PurchaseOrderResponse{}, apperror.Validation("at least one line item is required")
	}
	if err := s.validateHeaderEnums(req.TransactionType, req.TransactionOrigin, req.ShipVia, req.Status); err != nil {
		return PurchaseOrderResponse{}, err
	}
	if req.TransactionType == "" {
		return PurchaseOrderResponse{}, apperror.Validation("transaction_type is required")
	}

	orderDate, err := parseOrderDate(req.OrderDate)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	// Optimistic pre-check; the unique index backstops concurrent creates.
	count, err := s.orderRepo.CountByNumber(ctx, poNumber, nil)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("failed to check PO number uniqueness: %w", err)
	}
	if count > 0 {
		return PurchaseOrderResponse{}, apperror.Conflict("PO number '%s' already exists", poNumber)
	}

	status := req.Status
	if status == "" {
		status = model.POStatusDraft
	}

	// Compute per-line amounts and the order total with exact decimal arithmetic
	items := make([]model.PurchaseOrderLineItem, 0, len(req.LineItems))
	total := decimal.Zero
	for i, line := range req.LineItems {
		item, err := s.buildLineItem(ctx, line, i)
		if err != nil {
			return PurchaseOrderResponse{}, err
		}
		items = append(items, item)
		total = total.Add(item.Amount)
	}

	order := model.PurchaseOrder{
		PONumber:              poNumber,
		VendorName:            strings.TrimSpace(req.VendorName),
		OneTimeVendor:         req.OneTimeVendor,
		OrderDate:             orderDate,
		CustomerSONumber:      req.CustomerSONumber,
		CustomerInvoiceNumber: req.CustomerInvoiceNumber,
		APAccount:             req.APAccount,
		TransactionType:       req.TransactionType,
		TransactionOrigin:     req.TransactionOrigin,
		ShipVia:               req.ShipVia,
		Status:                status,
		TotalAmount:           total,
		LineItems:             items,
	}

	// Header and lines persist as a single unit via the association
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Create(txCtx, &order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("PO number '%s' already exists", poNumber)
			}
			return fmt.Errorf("failed to create purchase order: %w", err)
		}
		return s.writeAuditLog(txCtx, model.ActionCreateOrder, order.ID.String(), order.PONumber,
			map[string]interface{}{"po_number": order.PONumber, "total_amount": order.TotalAmount.StringFixed(2)})
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	// Reload with relations
	reloaded, err := s.orderRepo.FindByIDWithItems(ctx, order.ID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("failed to reload purchase order: %w", err)
	}

	s.broadcast("purchase_order.created", map[string]interface{}{"id": order.ID.String(), "po_number": order.PONumber})
	return toPurchaseOrderResponse(*reloaded), nil
}

func (s *purchaseOrderService) buildLineItem(ctx context.Context, line LineItemPayload, idx int) (model.PurchaseOrderLineItem, error) {
	if strings.TrimSpace(line.Item) == "" {
		return model.PurchaseOrderLineItem{}, apperror.Validation("line_items[%d]: item is required", idx)
	}
	accountID, err := s.resolveAccountID(ctx, line.GLAccountID)
	if err != nil {
		return model.PurchaseOrderLineItem{}, err
	}
	qty, err := parsePositiveDecimal(line.Quantity, fmt.Sprintf("line_items[%d].quantity", idx))
	if err != nil {
		return model.PurchaseOrderLineItem{}, err
	}
	price, err := parsePositiveDecimal(line.UnitPrice, fmt.Sprintf("line_items[%d].unit_price", idx))
	if err != nil {
		return model.PurchaseOrderLineItem{}, err
	}

	return model.PurchaseOrderLineItem{
		GLAccountID: accountID,
		Item:        strings.TrimSpace(line.Item),
		Description: line.Description,
		Quantity:    qty,
		UnitPrice:   price,
		Amount:      qty.Mul(price),
	}, nil
}

func (s *purchaseOrderService) GetOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrderResponse, int64, error) {
	repoFilter, err := s.toRepoFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	orders, total, err := s.orderRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchase orders: %w", err)
	}

	res := make([]PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toPurchaseOrderResponse(o))
	}
	return res, total, nil
}

func (s *purchaseOrderService) GetOrderStats(ctx context.Context, filter PurchaseOrderFilter) (repository.PurchaseOrderStats, error) {
	repoFilter, err := s.toRepoFilter(filter)
	if err != nil {
		return repository.PurchaseOrderStats{}, err
	}

	stats, err := s.orderRepo.Stats(ctx, repoFilter)
	if err != nil {
		return repository.PurchaseOrderStats{}, fmt.Errorf("failed to compute purchase order statistics: %w", err)
	}
	return stats, nil
}

func (s *purchaseOrderService) toRepoFilter(filter PurchaseOrderFilter) (repository.PurchaseOrderListFilter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !validStatuses[filter.Status] {
		return repository.PurchaseOrderListFilter{}, apperror.Validation("unsupported status filter: %s", filter.Status)
	}

	repoFilter := repository.PurchaseOrderListFilter{
		Search:    filter.Search,
		Status:    filter.Status,
		Page:      filter.Page,
		Limit:     filter.Limit,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}
	if filter.DateFrom != "" {
		t, err := time.Parse("2006-01-02", filter.DateFrom)
		if err != nil {
			return repository.PurchaseOrderListFilter{}, apperror.Validation("invalid date_from format (expected YYYY-MM-DD): %s", filter.DateFrom)
		}
		repoFilter.DateFrom = &t
	}
	if filter.DateTo != "" {
		t, err := time.Parse("2006-01-02", filter.DateTo)
		if err != nil {
			return repository.PurchaseOrderListFilter{}, apperror.Validation("invalid date_to format (expected YYYY-MM-DD): %s", filter.DateTo)
		}
		repoFilter.DateTo = &t
	}
	return repoFilter, nil
}

func (s *purchaseOrderService) GetOrder(ctx context.Context, id string) (PurchaseOrderResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return PurchaseOrderResponse{}, apperror.Validation("invalid purchase order ID")
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseOrderResponse{}, apperror.NotFound("purchase order %s not found", id)
		}
		return PurchaseOrderResponse{}, fmt.Errorf("failed to fetch purchase order: %w", err)
	}
	return toPurchaseOrderResponse(*order), nil
}

func (s *purchaseOrderService) UpdateOrder(ctx context.Context, id string, req UpdatePurchaseOrderRequest) (PurchaseOrderResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return PurchaseOrderResponse{}, apperror.Validation("invalid purchase order ID")
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseOrderResponse{}, apperror.NotFound("purchase order %s not found", id)
		}
		return PurchaseOrderResponse{}, fmt.Errorf("failed to fetch purchase order: %w", err)
	}

	// Header field updates; only fields genuinely present apply
	if req.PONumber != nil {
		newNumber := strings.TrimSpace(*req.PONumber)
		if newNumber == "" {
			return PurchaseOrderResponse{}, apperror.Validation("po_number cannot be empty")
		}
		// Excluding self keeps a no-op po_number resubmission from colliding
		if newNumber != order.PONumber {
			count, err := s.orderRepo.CountByNumber(ctx, newNumber, &uid)
			if err != nil {
				return PurchaseOrderResponse{}, fmt.Errorf("failed to check PO number uniqueness: %w", err)
			}
			if count > 0 {
				return PurchaseOrderResponse{}, apperror.Conflict("PO number '%s' already exists", newNumber)
			}
		}
		order.PONumber = newNumber
	}
	if req.VendorName != nil {
		if strings.TrimSpace(*req.VendorName) == "" {
			return PurchaseOrderResponse{}, apperror.Validation("vendor_name cannot be empty")
		}
		order.VendorName = strings.TrimSpace(*req.VendorName)
	}
	if req.OneTimeVendor != nil {
		order.OneTimeVendor = *req.OneTimeVendor
	}
	if req.OrderDate != nil {
		t, err := parseOrderDate(*req.OrderDate)
		if err != nil {
			return PurchaseOrderResponse{}, err
		}
		order.OrderDate = t
	}
	if req.CustomerSONumber != nil {
		order.CustomerSONumber = *req.CustomerSONumber
	}
	if req.CustomerInvoiceNumber != nil {
		order.CustomerInvoiceNumber = *req.CustomerInvoiceNumber
	}
	if req.APAccount != nil {
		order.APAccount = *req.APAccount
	}
	if req.TransactionType != nil {
		if !validTransactionTypes[*req.TransactionType] {
			return PurchaseOrderResponse{}, apperror.Validation("transaction_type must be one of: GOODS, SERVICES")
		}
		order.TransactionType = *req.TransactionType
	}
	if req.TransactionOrigin != nil {
		if *req.TransactionOrigin != "" && !validTransactionOrigins[*req.TransactionOrigin] {
			return PurchaseOrderResponse{}, apperror.Validation("transaction_origin must be one of: LOCAL, IMPORTED")
		}
		order.TransactionOrigin = *req.TransactionOrigin
	}
	if req.ShipVia != nil {
		if *req.ShipVia != "" && !validShipVia[*req.ShipVia] {
			return PurchaseOrderResponse{}, apperror.Validation("ship_via must be one of: UPS, FEDEX, USPS, DHL, FREIGHT, COURIER, PICKUP")
		}
		order.ShipVia = *req.ShipVia
	}
	if req.Status != nil {
		if !validStatuses[*req.Status] {
			return PurchaseOrderResponse{}, apperror.Validation("status must be one of: DRAFT, SUBMITTED, APPROVED, REJECTED, COMPLETED, CANCELLED")
		}
		order.Status = *req.Status
	}

	// Reconcile line items and recompute the total inside one transaction,
	// so a failed line operation never leaves a stale total behind.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.LineItems != nil {
			if err := s.reconcileLineItems(txCtx, order, *req.LineItems); err != nil {
				return err
			}
		}

		// Total is summed from the persisted rows, not the input payload
		persisted, err := s.orderRepo.FindLineItems(txCtx, uid)
		if err != nil {
			return fmt.Errorf("failed to load line items: %w", err)
		}
		total := decimal.Zero
		for _, item := range persisted {
			total = total.Add(item.Amount)
		}
		order.TotalAmount = total

		if err := s.orderRepo.Update(txCtx, order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("PO number '%s' already exists", order.PONumber)
			}
			return fmt.Errorf("failed to update purchase order: %w", err)
		}

		return s.writeAuditLog(txCtx, model.ActionUpdateOrder, order.ID.String(), order.PONumber,
			map[string]interface{}{"po_number": order.PONumber, "total_amount": order.TotalAmount.StringFixed(2)})
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	// Reload with relations
	reloaded, err := s.orderRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("failed to reload purchase order: %w", err)
	}

	s.broadcast("purchase_order.updated", map[string]interface{}{"id": uid.String(), "po_number": reloaded.PONumber})
	return toPurchaseOrderResponse(*reloaded), nil
}

// reconcileLineItems applies the differential strategy: incoming elements
// partition into delete/update/create sets by presence of an identifier and
// the _delete flag. Updated rows recompute amount only when quantity or
// unit price changed, falling back to the persisted value for the side not
// supplied. Existing row identifiers survive.
func (s *purchaseOrderService) reconcileLineItems(ctx context.Context, order *model.PurchaseOrder, payload []LineItemUpdatePayload) error {
	existing := make(map[uuid.UUID]model.PurchaseOrderLineItem, len(order.LineItems))
	for _, item := range order.LineItems {
		existing[item.ID] = item
	}

	var deleteIDs []uuid.UUID
	var creates []model.PurchaseOrderLineItem

	for i, line := range payload {
		// Create set: no identifier
		if line.ID == nil {
			if line.Delete {
				continue // deleting a row that was never persisted is a no-op
			}
			created, err := s.buildLineItem(ctx, LineItemPayload{
				GLAccountID: strValue(line.GLAccountID),
				Item:        strValue(line.Item),
				Description: strValue(line.Description),
				Quantity:    strValue(line.Quantity),
				UnitPrice:   strValue(line.UnitPrice),
			}, i)
			if err != nil {
				return err
			}
			created.PurchaseOrderID = order.ID
			creates = append(creates, created)
			continue
		}

		itemID, err := uuid.Parse(*line.ID)
		if err != nil {
			return apperror.Validation("line_items[%d]: invalid id", i)
		}
		current, ok := existing[itemID]
		if !ok {
			return apperror.Validation("line_items[%d]: line item %s does not belong to this order", i, itemID)
		}

		// Delete set: identifier plus deletion flag
		if line.Delete {
			deleteIDs = append(deleteIDs, itemID)
			continue
		}

		// Update set: recompute amount only if quantity or unit price changed
		if line.GLAccountID != nil {
			accountID, err := s.resolveAccountID(ctx, *line.GLAccountID)
			if err != nil {
				return err
			}
			current.GLAccountID = accountID
			current.GLAccount = nil
		}
		if line.Item != nil {
			if strings.TrimSpace(*line.Item) == "" {
				return apperror.Validation("line_items[%d]: item cannot be empty", i)
			}
			current.Item = strings.TrimSpace(*line.Item)
		}
		if line.Description != nil {
			current.Description = *line.Description
		}
		if line.Quantity != nil || line.UnitPrice != nil {
			qty := current.Quantity
			price := current.UnitPrice
			if line.Quantity != nil {
				qty, err = parsePositiveDecimal(*line.Quantity, fmt.Sprintf("line_items[%d].quantity", i))
				if err != nil {
					return err
				}
			}
			if line.UnitPrice != nil {
				price, err = parsePositiveDecimal(*line.UnitPrice, fmt.Sprintf("line_items[%d].unit_price", i))
				if err != nil {
					return err
				}
			}
			current.Quantity = qty
			current.UnitPrice = price
			current.Amount = qty.Mul(price)
		}

		if err := s.orderRepo.UpdateLineItem(ctx, &current); err != nil {
			return fmt.Errorf("failed to update line item: %w", err)
		}
	}

	if err := s.orderRepo.DeleteLineItems(ctx, order.ID, deleteIDs); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}
	if err := s.orderRepo.CreateLineItems(ctx, creates); err != nil {
		return fmt.Errorf("failed to create line items: %w", err)
	}
	return nil
}

func (s *purchaseOrderService) DeleteOrder(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid purchase order ID")
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("purchase order %s not found", id)
		}
		return fmt.Errorf("failed to fetch purchase order: %w", err)
	}

	// Cascade: line items go with the order, no usage guard
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.DeleteLineItemsByOrderID(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := s.orderRepo.Delete(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete purchase order: %w", err)
		}
		return s.writeAuditLog(txCtx, model.ActionDeleteOrder, uid.String(), order.PONumber,
			map[string]string{"po_number": order.PONumber})
	})
	if err != nil {
		return err
	}

	s.broadcast("purchase_order.deleted", map[string]interface{}{"id": uid.String(), "po_number": order.PONumber})
	return nil
}

// --- Helpers ---

func (s *purchaseOrderService) writeAuditLog(ctx context.Context, action, entityID, entityName string, details interface{}) error {
	detailsJSON, _ := json.Marshal(details)
	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *purchaseOrderService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(RecordEvent{Event: event, Data: data})
	s.hub.Broadcast <- payload
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// --- Response mappers ---

func toPurchaseOrderResponse(o model.PurchaseOrder) PurchaseOrderResponse {
	items := make([]LineItemResponse, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		res := LineItemResponse{
			ID:          item.ID.String(),
			GLAccountID: item.GLAccountID.String(),
			Item:        item.Item,
			Description: item.Description,
			Quantity:    item.Quantity.StringFixed(2),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Amount:      item.Amount.StringFixed(2),
		}
		if item.GLAccount != nil {
			res.GLAccount = item.GLAccount.Code + " - " + item.GLAccount.Name
		}
		items = append(items, res)
	}

	return PurchaseOrderResponse{
		ID:                    o.ID.String(),
		PONumber:              o.PONumber,
		VendorName:            o.VendorName,
		OneTimeVendor:         o.OneTimeVendor,
		OrderDate:             o.OrderDate.Format("2006-01-02"),
		CustomerSONumber:      o.CustomerSONumber,
		CustomerInvoiceNumber: o.CustomerInvoiceNumber,
		APAccount:             o.APAccount,
		TransactionType:       o.TransactionType,
		TransactionOrigin:     o.TransactionOrigin,
		ShipVia:               o.ShipVia,
		Status:                o.Status,
		TotalAmount:           o.TotalAmount.StringFixed(2),
		LineItems:             items,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderListFilter holds search/filter/sort/pagination parameters
// for purchase order listings. DateFrom/DateTo bound order_date inclusively.
type PurchaseOrderListFilter struct {
	Search    string // substring match on po_number, vendor_name, customer_so_number
	Status    string // exact match
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// PurchaseOrderStats aggregates the order set matched by a listing filter.
type PurchaseOrderStats struct {
	TotalCount     int64           `json:"total_count"`
	DraftCount     int64           `json:"draft_count"`
	SubmittedCount int64           `json:"submitted_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *model.PurchaseOrder) error
	Update(ctx context.Context, order *model.PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error)
	Stats(ctx context.Context, filter PurchaseOrderListFilter) (PurchaseOrderStats, error)
	CountByNumber(ctx context.Context, poNumber string, excludeID *uuid.UUID) (int64, error)
	CreateLineItems(ctx context.Context, items []model.PurchaseOrderLineItem) error
	UpdateLineItem(ctx context.Context, item *model.PurchaseOrderLineItem) error
	DeleteLineItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) error
	DeleteLineItemsByOrderID(ctx context.Context, orderID uuid.UUID) error
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseOrderLineItem, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *purchaseOrderRepository) Update(ctx context.Context, order *model.PurchaseOrder) error {
	// Omit the association so header updates never touch line item rows;
	// reconciliation manages those explicitly.
	return GetDB(ctx, r.db).Omit("LineItems").Save(order).Error
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PurchaseOrder{}).Error
}

func (r *purchaseOrderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).
		Preload("LineItems").
		Preload("LineItems.GLAccount").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func applyOrderFilters(query *gorm.DB, filter PurchaseOrderListFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR vendor_name ILIKE ? OR customer_so_number ILIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("order_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("order_date <= ?", *filter.DateTo)
	}
	return query
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	db := GetDB(ctx, r.db)
	countQuery := applyOrderFilters(db.Model(&model.PurchaseOrder{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyOrderFilters(db.Model(&model.PurchaseOrder{}), filter).
		Preload("LineItems").
		Preload("LineItems.GLAccount")

	if err := fetchQuery.
		Order(orderSortClause(filter.SortBy, filter.SortOrder)).
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Stats aggregates over the same filtered set the listing returns, so the
// numbers shown next to a filtered table always describe that table.
func (r *purchaseOrderRepository) Stats(ctx context.Context, filter PurchaseOrderListFilter) (PurchaseOrderStats, error) {
	var row struct {
		TotalCount     int64
		DraftCount     int64
		SubmittedCount int64
		TotalValue     decimal.Decimal
	}

	query := applyOrderFilters(GetDB(ctx, r.db).Model(&model.PurchaseOrder{}), filter)
	err := query.Select(
		"COUNT(*) AS total_count, " +
			"COUNT(*) FILTER (WHERE status = 'DRAFT') AS draft_count, " +
			"COUNT(*) FILTER (WHERE status = 'SUBMITTED') AS submitted_count, " +
			"COALESCE(SUM(total_amount), 0) AS total_value").
		Scan(&row).Error
	if err != nil {
		return PurchaseOrderStats{}, err
	}

	return PurchaseOrderStats{
		TotalCount:     row.TotalCount,
		DraftCount:     row.DraftCount,
		SubmittedCount: row.SubmittedCount,
		TotalValue:     row.TotalValue,
	}, nil
}

func (r *purchaseOrderRepository) CountByNumber(ctx context.Context, poNumber string, excludeID *uuid.UUID) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("po_number = ?", poNumber)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *purchaseOrderRepository) CreateLineItems(ctx context.Context, items []model.PurchaseOrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *purchaseOrderRepository) UpdateLineItem(ctx context.Context, item *model.PurchaseOrderLineItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *purchaseOrderRepository) DeleteLineItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).
		Where("purchase_order_id = ? AND id IN ?", orderID, ids).
		Delete(&model.PurchaseOrderLineItem{}).Error
}

func (r *purchaseOrderRepository) DeleteLineItemsByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("purchase_order_id = ?", orderID).
		Delete(&model.PurchaseOrderLineItem{}).Error
}

func (r *purchaseOrderRepository) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseOrderLineItem, error) {
	var items []model.PurchaseOrderLineItem
	if err := GetDB(ctx, r.db).
		Where("purchase_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// orderSortClause returns a safe ORDER BY clause from an allow-list of fields.
func orderSortClause(sortBy, sortOrder string) string {
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "po_number":
		return "po_number " + dir
	case "vendor_name":
		return "vendor_name " + dir
	case "order_date":
		return "order_date " + dir
	case "total_amount":
		return "total_amount " + dir
	case "status":
		return "status " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "created_at DESC"
	}
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. They mirror the
// postgres-backed implementations closely enough to exercise uniqueness
// checks, pagination, filtering and line item reconciliation.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- GL account repository fake ---

type fakeGLAccountRepo struct {
	accounts map[uuid.UUID]model.GLAccount
	usage    map[uuid.UUID]int64 // line items referencing each account
}

func newFakeGLAccountRepo() *fakeGLAccountRepo {
	return &fakeGLAccountRepo{
		accounts: make(map[uuid.UUID]model.GLAccount),
		usage:    make(map[uuid.UUID]int64),
	}
}

func (f *fakeGLAccountRepo) Create(_ context.Context, account *model.GLAccount) error {
	for _, a := range f.accounts {
		if a.Code == account.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeGLAccountRepo) Update(_ context.Context, account *model.GLAccount) error {
	for id, a := range f.accounts {
		if id != account.ID && a.Code == account.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	account.UpdatedAt = time.Now()
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeGLAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.accounts, id)
	return nil
}

func (f *fakeGLAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.GLAccount, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f *fakeGLAccountRepo) FindByCode(_ context.Context, code string) (*model.GLAccount, error) {
	for _, a := range f.accounts {
		if a.Code == code {
			account := a
			return &account, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGLAccountRepo) List(_ context.Context, filter repository.GLAccountListFilter) ([]model.GLAccount, int64, error) {
	var matched []model.GLAccount
	needle := strings.ToLower(filter.Search)
	for _, a := range f.accounts {
		if needle == "" ||
			strings.Contains(strings.ToLower(a.Code), needle) ||
			strings.Contains(strings.ToLower(a.Name), needle) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Code < matched[j].Code })

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeGLAccountRepo) ListAll(_ context.Context) ([]model.GLAccount, error) {
	accounts := make([]model.GLAccount, 0, len(f.accounts))
	for _, a := range f.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (f *fakeGLAccountRepo) CountByCode(_ context.Context, code string, excludeID *uuid.UUID) (int64, error) {
	var count int64
	for id, a := range f.accounts {
		if a.Code != code {
			continue
		}
		if excludeID != nil && id == *excludeID {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeGLAccountRepo) CountLineItemUsage(_ context.Context, accountID uuid.UUID) (int64, error) {
	return f.usage[accountID], nil
}

// --- Purchase order repository fake ---

type fakePurchaseOrderRepo struct {
	orders map[uuid.UUID]model.PurchaseOrder
	items  map[uuid.UUID]model.PurchaseOrderLineItem
	seq    int // monotonic clock for created_at ordering
}

func newFakePurchaseOrderRepo() *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{
		orders: make(map[uuid.UUID]model.PurchaseOrder),
		items:  make(map[uuid.UUID]model.PurchaseOrderLineItem),
	}
}

func (f *fakePurchaseOrderRepo) tick() time.Time {
	f.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Millisecond)
}

func (f *fakePurchaseOrderRepo) Create(_ context.Context, order *model.PurchaseOrder) error {
	for _, o := range f.orders {
		if o.PONumber == order.PONumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = f.tick()
	order.UpdatedAt = order.CreatedAt
	for i := range order.LineItems {
		item := order.LineItems[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.PurchaseOrderID = order.ID
		item.CreatedAt = f.tick()
		item.UpdatedAt = item.CreatedAt
		f.items[item.ID] = item
		order.LineItems[i] = item
	}
	header := *order
	header.LineItems = nil
	f.orders[order.ID] = header
	return nil
}

func (f *fakePurchaseOrderRepo) Update(_ context.Context, order *model.PurchaseOrder) error {
	for id, o := range f.orders {
		if id != order.ID && o.PONumber == order.PONumber {
			return gorm.ErrDuplicatedKey
		}
	}
	header := *order
	header.LineItems = nil
	header.UpdatedAt = f.tick()
	f.orders[order.ID] = header
	return nil
}

func (f *fakePurchaseOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.orders, id)
	return nil
}

func (f *fakePurchaseOrderRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o.LineItems = f.itemsForOrder(id)
	return &o, nil
}

func (f *fakePurchaseOrderRepo) itemsForOrder(orderID uuid.UUID) []model.PurchaseOrderLineItem {
	var items []model.PurchaseOrderLineItem
	for _, item := range f.items {
		if item.PurchaseOrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

func (f *fakePurchaseOrderRepo) matches(o model.PurchaseOrder, filter repository.PurchaseOrderListFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(o.PONumber), needle) &&
			!strings.Contains(strings.ToLower(o.VendorName), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerSONumber), needle) {
			return false
		}
	}
	if filter.Status != "" && o.Status != filter.Status {
		return false
	}
	if filter.DateFrom != nil && o.OrderDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && o.OrderDate.After(*filter.DateTo) {
		return false
	}
	return true
}

func (f *fakePurchaseOrderRepo) List(_ context.Context, filter repository.PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error) {
	var matched []model.PurchaseOrder
	for _, o := range f.orders {
		if f.matches(o, filter) {
			o.LineItems = f.itemsForOrder(o.ID)
			matched = append(matched, o)
		}
	}
	// newest first, the default listing order
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakePurchaseOrderRepo) Stats(_ context.Context, filter repository.PurchaseOrderListFilter) (repository.PurchaseOrderStats, error) {
	stats := repository.PurchaseOrderStats{TotalValue: decimal.Zero}
	for _, o := range f.orders {
		if !f.matches(o, filter) {
			continue
		}
		stats.TotalCount++
		switch o.Status {
		case model.POStatusDraft:
			stats.DraftCount++
		case model.POStatusSubmitted:
			stats.SubmittedCount++
		}
		stats.TotalValue = stats.TotalValue.Add(o.TotalAmount)
	}
	return stats, nil
}

func (f *fakePurchaseOrderRepo) CountByNumber(_ context.Context, poNumber string, excludeID *uuid.UUID) (int64, error) {
	var count int64
	for id, o := range f.orders {
		if o.PONumber != poNumber {
			continue
		}
		if excludeID != nil && id == *excludeID {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakePurchaseOrderRepo) CreateLineItems(_ context.Context, items []model.PurchaseOrderLineItem) error {
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.CreatedAt = f.tick()
		item.UpdatedAt = item.CreatedAt
		f.items[item.ID] = item
	}
	return nil
}

func (f *fakePurchaseOrderRepo) UpdateLineItem(_ context.Context, item *model.PurchaseOrderLineItem) error {
	stored, ok := f.items[item.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *item
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = f.tick()
	f.items[item.ID] = updated
	return nil
}

func (f *fakePurchaseOrderRepo) DeleteLineItems(_ context.Context, orderID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		if item, ok := f.items[id]; ok && item.PurchaseOrderID == orderID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakePurchaseOrderRepo) DeleteLineItemsByOrderID(_ context.Context, orderID uuid.UUID) error {
	for id, item := range f.items {
		if item.PurchaseOrderID == orderID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakePurchaseOrderRepo) FindLineItems(_ context.Context, orderID uuid.UUID) ([]model.PurchaseOrderLineItem, error) {
	return f.itemsForOrder(orderID), nil
}

// --- Audit repository fake ---

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	total := int64(len(f.entries))
	// newest first
	reversed := make([]model.AuditLog, len(f.entries))
	for i, e := range f.entries {
		reversed[len(f.entries)-1-i] = e
	}
	offset := (page - 1) * limit
	if offset >= len(reversed) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[offset:end], total, nil
}

func strPtr(s string) *string { return &s }

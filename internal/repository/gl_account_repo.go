package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GLAccountListFilter holds search/sort/pagination parameters for account listings.
type GLAccountListFilter struct {
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type GLAccountRepository interface {
	Create(ctx context.Context, account *model.GLAccount) error
	Update(ctx context.Context, account *model.GLAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.GLAccount, error)
	FindByCode(ctx context.Context, code string) (*model.GLAccount, error)
	List(ctx context.Context, filter GLAccountListFilter) ([]model.GLAccount, int64, error)
	ListAll(ctx context.Context) ([]model.GLAccount, error)
	CountByCode(ctx context.Context, code string, excludeID *uuid.UUID) (int64, error)
	CountLineItemUsage(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type glAccountRepository struct {
	db *gorm.DB
}

func NewGLAccountRepository(db *gorm.DB) GLAccountRepository {
	return &glAccountRepository{db: db}
}

func (r *glAccountRepository) Create(ctx context.Context, account *model.GLAccount) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *glAccountRepository) Update(ctx context.Context, account *model.GLAccount) error {
	return GetDB(ctx, r.db).Save(account).Error
}

func (r *glAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.GLAccount{}).Error
}

func (r *glAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.GLAccount, error) {
	var account model.GLAccount
	if err := GetDB(ctx, r.db).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *glAccountRepository) FindByCode(ctx context.Context, code string) (*model.GLAccount, error) {
	var account model.GLAccount
	if err := GetDB(ctx, r.db).First(&account, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *glAccountRepository) List(ctx context.Context, filter GLAccountListFilter) ([]model.GLAccount, int64, error) {
	var accounts []model.GLAccount
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.GLAccount{})
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := db.Model(&model.GLAccount{})
	if filter.Search != "" {
		fetchQuery = fetchQuery.Where("code ILIKE ? OR name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := fetchQuery.
		Order(accountSortClause(filter.SortBy, filter.SortOrder)).
		Offset(offset).Limit(filter.Limit).
		Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *glAccountRepository) ListAll(ctx context.Context) ([]model.GLAccount, error) {
	var accounts []model.GLAccount
	if err := GetDB(ctx, r.db).
		Select("id", "code", "name", "description").
		Order("code ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *glAccountRepository) CountByCode(ctx context.Context, code string, excludeID *uuid.UUID) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.GLAccount{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *glAccountRepository) CountLineItemUsage(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).
		Model(&model.PurchaseOrderLineItem{}).
		Where("gl_account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// accountSortClause returns a safe ORDER BY clause from an allow-list of fields.
func accountSortClause(sortBy, sortOrder string) string {
	dir := "ASC"
	if sortOrder == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "name":
		return "name " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "code ASC"
	}
}

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
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateGLAccountRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateGLAccountRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type GLAccountResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GLAccountOption is the lightweight projection used to populate account
// dropdowns in order entry forms.
type GLAccountOption struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// --- Interface ---

type GLAccountService interface {
	CreateAccount(ctx context.Context, req CreateGLAccountRequest) (GLAccountResponse, error)
	GetAccounts(ctx context.Context, search string, page, limit int, sortBy, sortOrder string) ([]GLAccountResponse, int64, error)
	GetAccount(ctx context.Context, id string) (GLAccountResponse, error)
	GetAccountByCode(ctx context.Context, code string) (GLAccountResponse, error)
	UpdateAccount(ctx context.Context, id string, req UpdateGLAccountRequest) (GLAccountResponse, error)
	DeleteAccount(ctx context.Context, id string) error
	GetAllAccounts(ctx context.Context) ([]GLAccountOption, error)
}

// --- Implementation ---

type glAccountService struct {
	accountRepo repository.GLAccountRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewGLAccountService(
	accountRepo repository.GLAccountRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) GLAccountService {
	return &glAccountService{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

func (s *glAccountService) CreateAccount(ctx context.Context, req CreateGLAccountRequest) (GLAccountResponse, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" {
		return GLAccountResponse{}, apperror.Validation("code is required")
	}
	if name == "" {
		return GLAccountResponse{}, apperror.Validation("name is required")
	}

	// Optimistic pre-check; the unique index backstops concurrent creates.
	count, err := s.accountRepo.CountByCode(ctx, code, nil)
	if err != nil {
		return GLAccountResponse{}, fmt.Errorf("failed to check code uniqueness: %w", err)
	}
	if count > 0 {
		return GLAccountResponse{}, apperror.Conflict("account code '%s' already exists", code)
	}

	account := model.GLAccount{
		Code:        code,
		Name:        name,
		Description: req.Description,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.Create(txCtx, &account); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("account code '%s' already exists", code)
			}
			return fmt.Errorf("failed to create account: %w", err)
		}
		return s.writeAuditLog(txCtx, model.ActionCreateAccount, account.ID.String(), account.Name, req)
	})
	if err != nil {
		return GLAccountResponse{}, err
	}

	s.broadcast("gl_account.created", map[string]interface{}{"id": account.ID.String(), "code": account.Code})
	return toGLAccountResponse(account), nil
}

func (s *glAccountService) GetAccounts(ctx context.Context, search string, page, limit int, sortBy, sortOrder string) ([]GLAccountResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	accounts, total, err := s.accountRepo.List(ctx, repository.GLAccountListFilter{
		Search:    search,
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	res := make([]GLAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		res = append(res, toGLAccountResponse(a))
	}
	return res, total, nil
}

func (s *glAccountService) GetAccount(ctx context.Context, id string) (GLAccountResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return GLAccountResponse{}, apperror.Validation("invalid account ID")
	}

	account, err := s.accountRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GLAccountResponse{}, apperror.NotFound("account %s not found", id)
		}
		return GLAccountResponse{}, fmt.Errorf("failed to fetch account: %w", err)
	}
	return toGLAccountResponse(*account), nil
}

func (s *glAccountService) GetAccountByCode(ctx context.Context, code string) (GLAccountResponse, error) {
	account, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GLAccountResponse{}, apperror.NotFound("account with code '%s' not found", code)
		}
		return GLAccountResponse{}, fmt.Errorf("failed to fetch account: %w", err)
	}
	return toGLAccountResponse(*account), nil
}

func (s *glAccountService) UpdateAccount(ctx context.Context, id string, req UpdateGLAccountRequest) (GLAccountResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return GLAccountResponse{}, apperror.Validation("invalid account ID")
	}

	account, err := s.accountRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GLAccountResponse{}, apperror.NotFound("account %s not found", id)
		}
		return GLAccountResponse{}, fmt.Errorf("failed to fetch account: %w", err)
	}

	// Apply only fields genuinely present in the payload
	if req.Code != nil {
		newCode := strings.TrimSpace(*req.Code)
		if newCode == "" {
			return GLAccountResponse{}, apperror.Validation("code cannot be empty")
		}
		if newCode != account.Code {
			count, err := s.accountRepo.CountByCode(ctx, newCode, &uid)
			if err != nil {
				return GLAccountResponse{}, fmt.Errorf("failed to check code uniqueness: %w", err)
			}
			if count > 0 {
				return GLAccountResponse{}, apperror.Conflict("account code '%s' already exists", newCode)
			}
		}
		account.Code = newCode
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return GLAccountResponse{}, apperror.Validation("name cannot be empty")
		}
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		account.Description = *req.Description
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.Update(txCtx, account); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("account code '%s' already exists", account.Code)
			}
			return fmt.Errorf("failed to update account: %w", err)
		}
		return s.writeAuditLog(txCtx, model.ActionUpdateAccount, account.ID.String(), account.Name, req)
	})
	if err != nil {
		return GLAccountResponse{}, err
	}

	s.broadcast("gl_account.updated", map[string]interface{}{"id": account.ID.String(), "code": account.Code})
	return toGLAccountResponse(*account), nil
}

func (s *glAccountService) DeleteAccount(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid account ID")
	}

	account, err := s.accountRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("account %s not found", id)
		}
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	// Restrict-on-delete: the account stays while line items reference it
	usage, err := s.accountRepo.CountLineItemUsage(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to check account usage: %w", err)
	}
	if usage > 0 {
		return apperror.Conflict("account '%s' is referenced by %d line item(s) and cannot be deleted", account.Code, usage)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.Delete(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return s.writeAuditLog(txCtx, model.ActionDeleteAccount, uid.String(), account.Name, map[string]string{"code": account.Code})
	})
	if err != nil {
		return err
	}

	s.broadcast("gl_account.deleted", map[string]interface{}{"id": uid.String(), "code": account.Code})
	return nil
}

func (s *glAccountService) GetAllAccounts(ctx context.Context) ([]GLAccountOption, error) {
	accounts, err := s.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	options := make([]GLAccountOption, 0, len(accounts))
	for _, a := range accounts {
		options = append(options, GLAccountOption{
			ID:          a.ID.String(),
			Code:        a.Code,
			Name:        a.Name,
			Description: a.Description,
		})
	}
	return options, nil
}

// --- Helpers ---

func (s *glAccountService) writeAuditLog(ctx context.Context, action, entityID, entityName string, details interface{}) error {
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

func (s *glAccountService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(RecordEvent{Event: event, Data: data})
	s.hub.Broadcast <- payload
}

func toGLAccountResponse(a model.GLAccount) GLAccountResponse {
	return GLAccountResponse{
		ID:          a.ID.String(),
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

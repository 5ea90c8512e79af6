package service

import (
	"context"
	"fmt"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountTestService() (GLAccountService, *fakeGLAccountRepo, *fakeAuditRepo) {
	accountRepo := newFakeGLAccountRepo()
	auditRepo := &fakeAuditRepo{}
	svc := NewGLAccountService(accountRepo, auditRepo, fakeTxManager{}, nil)
	return svc, accountRepo, auditRepo
}

func TestCreateAccount(t *testing.T) {
	svc, _, auditRepo := newAccountTestService()

	res, err := svc.CreateAccount(context.Background(), CreateGLAccountRequest{
		Code:        "  5000 ",
		Name:        " Office Supplies ",
		Description: "Consumables",
	})
	require.NoError(t, err)

	assert.Equal(t, "5000", res.Code)
	assert.Equal(t, "Office Supplies", res.Name)
	assert.Equal(t, "Consumables", res.Description)
	assert.NotEmpty(t, res.ID)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateAccount, auditRepo.entries[0].Action)
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Another Name"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "   ", Name: "X"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: ""})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateAccountPartialFields(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)

	// only the name travels; code must survive untouched
	updated, err := svc.UpdateAccount(ctx, created.ID, UpdateGLAccountRequest{Name: strPtr("Stationery")})
	require.NoError(t, err)
	assert.Equal(t, "5000", updated.Code)
	assert.Equal(t, "Stationery", updated.Name)
}

func TestUpdateAccountSameCodeNoConflict(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)

	// resubmitting the record's own code is a no-op, not a collision
	updated, err := svc.UpdateAccount(ctx, created.ID, UpdateGLAccountRequest{Code: strPtr("5000")})
	require.NoError(t, err)
	assert.Equal(t, "5000", updated.Code)
}

func TestUpdateAccountCodeConflict(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)
	second, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "6000", Name: "Travel"})
	require.NoError(t, err)

	_, err = svc.UpdateAccount(ctx, second.ID, UpdateGLAccountRequest{Code: strPtr("5000")})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestDeleteAccountInUse(t *testing.T) {
	svc, accountRepo, _ := newAccountTestService()
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)

	for id := range accountRepo.accounts {
		accountRepo.usage[id] = 3
	}

	err = svc.DeleteAccount(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Len(t, accountRepo.accounts, 1, "account must survive a refused delete")
}

func TestDeleteAccount(t *testing.T) {
	svc, accountRepo, auditRepo := newAccountTestService()
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, created.ID))
	assert.Empty(t, accountRepo.accounts)

	require.Len(t, auditRepo.entries, 2)
	assert.Equal(t, model.ActionDeleteAccount, auditRepo.entries[1].Action)
}

func TestDeleteAccountNotFound(t *testing.T) {
	svc, _, _ := newAccountTestService()

	err := svc.DeleteAccount(context.Background(), "2f8b0a3e-74f1-4b7e-9a25-54b3b1a7c111")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetAccountsPagination(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{
			Code: fmt.Sprintf("5%03d", i),
			Name: fmt.Sprintf("Account %d", i),
		})
		require.NoError(t, err)
	}

	accounts, total, err := svc.GetAccounts(ctx, "", 2, 10, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, accounts, 10)
	assert.Equal(t, "5010", accounts[0].Code)

	accounts, total, err = svc.GetAccounts(ctx, "", 3, 10, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, accounts, 5)
}

func TestGetAccountsSearchCaseInsensitive(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "6000", Name: "Travel"})
	require.NoError(t, err)

	accounts, total, err := svc.GetAccounts(ctx, "OFFICE", 1, 20, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, "5000", accounts[0].Code)
}

func TestGetAccountByCode(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: "5000", Name: "Office Supplies"})
	require.NoError(t, err)

	res, err := svc.GetAccountByCode(ctx, "5000")
	require.NoError(t, err)
	assert.Equal(t, "Office Supplies", res.Name)

	_, err = svc.GetAccountByCode(ctx, "9999")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetAllAccountsSortedByCode(t *testing.T) {
	svc, _, _ := newAccountTestService()
	ctx := context.Background()

	for _, code := range []string{"7000", "5000", "6000"} {
		_, err := svc.CreateAccount(ctx, CreateGLAccountRequest{Code: code, Name: "Account " + code})
		require.NoError(t, err)
	}

	options, err := svc.GetAllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "5000", options[0].Code)
	assert.Equal(t, "6000", options[1].Code)
	assert.Equal(t, "7000", options[2].Code)
}

func TestGetAccountInvalidID(t *testing.T) {
	svc, _, _ := newAccountTestService()

	_, err := svc.GetAccount(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type GLAccountHandler struct {
	accountService service.GLAccountService
}

func NewGLAccountHandler(accountService service.GLAccountService) *GLAccountHandler {
	return &GLAccountHandler{accountService: accountService}
}

func (h *GLAccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/api/gl-accounts")
	{
		accounts.GET("", h.ListAccounts)
		accounts.GET("/all", h.GetAllAccounts)
		accounts.GET("/code/:code", h.GetAccountByCode)
		accounts.GET("/:id", h.GetAccount)
		accounts.POST("", h.CreateAccount)
		accounts.PATCH("/:id", h.UpdateAccount)
		accounts.DELETE("/:id", h.DeleteAccount)
	}
}

// ListAccounts returns paginated GL accounts with optional search
// @Summary      List GL accounts
// @Tags         gl-accounts
// @Produce      json
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        limit       query     int     false  "Items per page (default: 20)"
// @Param        search      query     string  false  "Case-insensitive substring match on code or name"
// @Param        sort_by     query     string  false  "Sort field: code, name, created_at"
// @Param        sort_order  query     string  false  "Sort direction: asc, desc"
// @Success      200  {object}  response.Response
// @Router       /api/gl-accounts [get]
func (h *GLAccountHandler) ListAccounts(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	accounts, total, err := h.accountService.GetAccounts(c.Request.Context(), search, params.Page, params.Limit, params.SortBy, params.SortOrder)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, accounts, params.Page, params.Limit, total))
}

// GetAllAccounts returns every account as a lightweight dropdown projection
// @Summary      Get all GL accounts (dropdown)
// @Tags         gl-accounts
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/gl-accounts/all [get]
func (h *GLAccountHandler) GetAllAccounts(c *gin.Context) {
	options, err := h.accountService.GetAllAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, options))
}

// GetAccount returns a single account by ID
// @Summary      Get GL account
// @Tags         gl-accounts
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/gl-accounts/{id} [get]
func (h *GLAccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// GetAccountByCode returns a single account by its unique code
// @Summary      Get GL account by code
// @Tags         gl-accounts
// @Produce      json
// @Param        code  path  string  true  "Account code"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/gl-accounts/code/{code} [get]
func (h *GLAccountHandler) GetAccountByCode(c *gin.Context) {
	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// CreateAccount creates a new GL account
// @Summary      Create GL account
// @Tags         gl-accounts
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateGLAccountRequest  true  "Account payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/gl-accounts [post]
func (h *GLAccountHandler) CreateAccount(c *gin.Context) {
	var req service.CreateGLAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// UpdateAccount updates an existing GL account (partial update)
// @Summary      Update GL account
// @Tags         gl-accounts
// @Accept       json
// @Produce      json
// @Param        id       path  string                          true  "Account ID"
// @Param        payload  body  service.UpdateGLAccountRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/gl-accounts/{id} [patch]
func (h *GLAccountHandler) UpdateAccount(c *gin.Context) {
	var req service.UpdateGLAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// DeleteAccount deletes a GL account with no line-item references
// @Summary      Delete GL account
// @Tags         gl-accounts
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/gl-accounts/{id} [delete]
func (h *GLAccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Account deleted successfully"}))
}

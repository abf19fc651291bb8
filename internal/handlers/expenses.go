package handlers

import (
	"net/http"
	"strconv"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ExpenseResponse wraps a single expense.
type ExpenseResponse struct {
	Message string         `json:"message,omitempty" example:"Expense created successfully"`
	Expense models.Expense `json:"expense"`
}

// ExpenseListResponse wraps the list endpoint result.
type ExpenseListResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

// expenseID parses :id. Anything that is not a positive integer cannot name an expense.
func (h *Handler) expenseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: msgExpenseNotFound})
		return 0, false
	}
	return id, true
}

// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreateExpenseInput  true  "amount, category, date (YYYY-MM-DD), notes"
// @Success      201   {object}  ExpenseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/expenses [post]
// @Security     BearerAuth
func (h *Handler) createExpense(c *gin.Context) {
	uid := userID(c)

	var input service.CreateExpenseInput
	if ok := h.bindJSONOrBadRequest(c, &input, service.MsgExpenseFieldsRequired); !ok {
		return
	}

	e, err := h.services.Expenses.Create(c.Request.Context(), uid, input)
	if err != nil {
		h.fail(c, "expense_create_failed", err, "user_id", uid)
		return
	}

	c.JSON(http.StatusCreated, ExpenseResponse{Message: msgExpenseCreated, Expense: e})
}

// @Summary      List expenses
// @Description  Newest first. Both month and year are needed to filter; one alone is ignored.
// @Tags         expenses
// @Produce      json
// @Param        month  query     int  false  "Month 1-12"  example(3)
// @Param        year   query     int  false  "Year"        example(2024)
// @Success      200    {object}  ExpenseListResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /api/expenses [get]
// @Security     BearerAuth
func (h *Handler) listExpenses(c *gin.Context) {
	uid := userID(c)

	list, err := h.services.Expenses.List(c.Request.Context(), uid, service.ListFilter{
		Month: c.Query("month"),
		Year:  c.Query("year"),
	})
	if err != nil {
		h.fail(c, "expense_list_failed", err, "user_id", uid)
		return
	}

	c.JSON(http.StatusOK, ExpenseListResponse{Expenses: list})
}

// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id   path      int  true  "Expense ID"
// @Success      200  {object}  ExpenseResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/expenses/{id} [get]
// @Security     BearerAuth
func (h *Handler) getExpense(c *gin.Context) {
	uid := userID(c)
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	e, err := h.services.Expenses.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.fail(c, "expense_get_failed", err, "user_id", uid, "expense_id", id)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Expense: e})
}

// @Summary      Update an expense
// @Description  Partial update. Zero amount or empty category/date keep the stored value; notes overwrite when present.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id    path      int                         true  "Expense ID"
// @Param        body  body      service.UpdateExpenseInput  true  "any subset of amount, category, date, notes"
// @Success      200   {object}  ExpenseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/expenses/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateExpense(c *gin.Context) {
	uid := userID(c)
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	var input service.UpdateExpenseInput
	if ok := h.bindJSONOrBadRequest(c, &input, service.MsgUpdateFieldRequired); !ok {
		return
	}

	e, err := h.services.Expenses.Update(c.Request.Context(), uid, id, input)
	if err != nil {
		h.fail(c, "expense_update_failed", err, "user_id", uid, "expense_id", id)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Message: msgExpenseUpdated, Expense: e})
}

// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id   path      int  true  "Expense ID"
// @Success      200  {object}  ErrorResponse  "message"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/expenses/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteExpense(c *gin.Context) {
	uid := userID(c)
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	if err := h.services.Expenses.Delete(c.Request.Context(), uid, id); err != nil {
		h.fail(c, "expense_delete_failed", err, "user_id", uid, "expense_id", id)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgExpenseDeleted})
}

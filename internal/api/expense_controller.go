package api

import (
	"net/http"
	"strconv"

	"contable/server/internal/models"
	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// ExpenseController управляет API endpoints для расходов
type ExpenseController struct {
	service *services.ExpenseService
}

// NewExpenseController создает новый контроллер расходов
func NewExpenseController(service *services.ExpenseService) *ExpenseController {
	return &ExpenseController{service: service}
}

// GetExpenses получает расходы
// GET /api/v1/expenses?category=rent&limit=100
func (ec *ExpenseController) GetExpenses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	expenses, err := ec.service.GetExpenses(c.Query("category"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения расходов",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"count":    len(expenses),
	})
}

// GetExpense получает расход по ID
// GET /api/v1/expenses/:id
func (ec *ExpenseController) GetExpense(c *gin.Context) {
	id := c.Param("id")
	expense, err := ec.service.GetExpenseByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Расход не найден",
		})
		return
	}

	c.JSON(http.StatusOK, expense)
}

// CreateExpense создает расход
// POST /api/v1/expenses
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	var req models.Expense
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Описание расхода обязательно",
		})
		return
	}

	if err := ec.service.CreateExpense(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка создания расхода",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, req)
}

// UpdateExpense обновляет расход
// PUT /api/v1/expenses/:id
func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	id := c.Param("id")

	var req models.Expense
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := ec.service.UpdateExpense(id, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка обновления расхода",
			"details": err.Error(),
		})
		return
	}

	expense, err := ec.service.GetExpenseByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Ошибка получения обновленного расхода",
		})
		return
	}

	c.JSON(http.StatusOK, expense)
}

// DeleteExpense удаляет расход
// DELETE /api/v1/expenses/:id
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	id := c.Param("id")

	if err := ec.service.DeleteExpense(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка удаления расхода",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Расход удален",
	})
}

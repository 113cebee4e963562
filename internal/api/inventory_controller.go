package api

import (
	"net/http"
	"strconv"

	"contable/server/internal/models"
	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// InventoryController управляет API endpoints склада
type InventoryController struct {
	service   *services.InventoryService
	catalog   *services.CatalogService
	publisher *services.DocumentPublisher
}

// NewInventoryController создает новый контроллер склада
func NewInventoryController(service *services.InventoryService, catalog *services.CatalogService, publisher *services.DocumentPublisher) *InventoryController {
	return &InventoryController{
		service:   service,
		catalog:   catalog,
		publisher: publisher,
	}
}

// GetInventory получает складские записи всех товаров
// GET /api/v1/inventory
func (ic *InventoryController) GetInventory(c *gin.Context) {
	records, err := ic.service.GetAllRecords()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения склада",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// GetAtRisk получает товары с остатком на минимальном пороге или ниже
// GET /api/v1/inventory/at-risk
func (ic *InventoryController) GetAtRisk(c *gin.Context) {
	records, err := ic.service.GetAtRiskRecords()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения склада",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// AdjustStockRequest — тело запроса ручной корректировки остатка
type AdjustStockRequest struct {
	Type     models.MovementType `json:"type" binding:"required"`
	Quantity float64             `json:"quantity" binding:"required"`
	Note     string              `json:"note"`
}

// AdjustStock выполняет ручную корректировку остатка товара
// POST /api/v1/inventory/:productId/adjust
func (ic *InventoryController) AdjustStock(c *gin.Context) {
	productID := c.Param("productId")

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	movement, err := ic.service.AdjustStock(productID, req.Type, req.Quantity, req.Note)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка корректировки остатка",
			"details": err.Error(),
		})
		return
	}

	ic.catalog.Invalidate()
	ic.publisher.Publish("stock_adjusted", productID, movement.ResultingStock, movement)
	BroadcastDashboardUpdate("stock_adjusted", map[string]interface{}{
		"product_id":      productID,
		"resulting_stock": movement.ResultingStock,
	})

	c.JSON(http.StatusOK, movement)
}

// SetMinimumStockRequest — тело запроса установки минимального порога
type SetMinimumStockRequest struct {
	MinimumStock float64 `json:"minimum_stock"`
}

// SetMinimumStock устанавливает минимальный порог остатка
// PUT /api/v1/inventory/:productId/minimum
func (ic *InventoryController) SetMinimumStock(c *gin.Context) {
	productID := c.Param("productId")

	var req SetMinimumStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := ic.service.SetMinimumStock(productID, req.MinimumStock); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка установки порога",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Минимальный порог обновлен",
	})
}

// GetMovements получает журнал движений товара
// GET /api/v1/inventory/:productId/movements?limit=100
func (ic *InventoryController) GetMovements(c *gin.Context) {
	productID := c.Param("productId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	movements, err := ic.service.GetMovements(productID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения журнала",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movements": movements,
		"count":     len(movements),
	})
}

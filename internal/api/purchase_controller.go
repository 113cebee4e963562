package api

import (
	"net/http"
	"strconv"

	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// PurchaseController управляет API endpoints для закупок
type PurchaseController struct {
	service   *services.PurchaseService
	catalog   *services.CatalogService
	publisher *services.DocumentPublisher
}

// NewPurchaseController создает новый контроллер закупок
func NewPurchaseController(service *services.PurchaseService, catalog *services.CatalogService, publisher *services.DocumentPublisher) *PurchaseController {
	return &PurchaseController{
		service:   service,
		catalog:   catalog,
		publisher: publisher,
	}
}

// GetPurchases получает закупки
// GET /api/v1/purchases?status=pending&search=PUR&limit=100
func (pc *PurchaseController) GetPurchases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	if query := c.Query("search"); query != "" {
		purchases, err := pc.service.SearchPurchases(query, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Ошибка поиска закупок",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"purchases": purchases, "count": len(purchases)})
		return
	}

	purchases, err := pc.service.GetPurchases(c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения закупок",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": purchases,
		"count":     len(purchases),
	})
}

// GetPurchase получает закупку со строками
// GET /api/v1/purchases/:id
func (pc *PurchaseController) GetPurchase(c *gin.Context) {
	id := c.Param("id")
	purchase, err := pc.service.GetPurchaseByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Закупка не найдена",
		})
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// CompletePurchase завершает закупку и пополняет остатки
// POST /api/v1/purchases/:id/complete
func (pc *PurchaseController) CompletePurchase(c *gin.Context) {
	id := c.Param("id")

	purchase, err := pc.service.CompletePurchase(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка завершения закупки",
			"details": err.Error(),
		})
		return
	}

	pc.catalog.Invalidate()
	pc.publisher.Publish("purchase_completed", purchase.Number, purchase.Total, nil)
	BroadcastDashboardUpdate("purchase_completed", map[string]interface{}{
		"number": purchase.Number,
		"total":  purchase.Total,
	})

	c.JSON(http.StatusOK, purchase)
}

// CancelPurchase отменяет закупку
// POST /api/v1/purchases/:id/cancel
func (pc *PurchaseController) CancelPurchase(c *gin.Context) {
	id := c.Param("id")

	if err := pc.service.CancelPurchase(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка отмены закупки",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Закупка отменена",
	})
}

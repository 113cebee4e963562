package api

import (
	"net/http"
	"strconv"

	"contable/server/internal/models"
	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// InvoiceController управляет API endpoints для счетов-фактур
type InvoiceController struct {
	service *services.InvoiceService
}

// NewInvoiceController создает новый контроллер счетов
func NewInvoiceController(service *services.InvoiceService) *InvoiceController {
	return &InvoiceController{service: service}
}

// GetInvoices получает счета
// GET /api/v1/invoices?status=draft&search=INV&limit=100
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	if query := c.Query("search"); query != "" {
		invoices, err := ic.service.SearchInvoices(query, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Ошибка поиска счетов",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoices": invoices, "count": len(invoices)})
		return
	}

	invoices, err := ic.service.GetInvoices(c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения счетов",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices": invoices,
		"count":    len(invoices),
	})
}

// GetInvoice получает счет со строками
// GET /api/v1/invoices/:id
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	invoice, err := ic.service.GetInvoiceByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Счет не найден",
		})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatusRequest — тело запроса смены статуса счета
type UpdateInvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status" binding:"required"`
}

// UpdateInvoiceStatus изменяет статус счета
// PUT /api/v1/invoices/:id/status
func (ic *InvoiceController) UpdateInvoiceStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := ic.service.UpdateStatus(id, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка смены статуса",
			"details": err.Error(),
		})
		return
	}

	invoice, err := ic.service.GetInvoiceByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Ошибка получения обновленного счета",
		})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice удаляет счет (только черновик)
// DELETE /api/v1/invoices/:id
func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	id := c.Param("id")

	if err := ic.service.DeleteInvoice(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка удаления счета",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Счет удален",
	})
}

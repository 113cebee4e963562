package api

import (
	"net/http"

	"contable/server/internal/models"
	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// ClientController управляет API endpoints для клиентов
type ClientController struct {
	service *services.ClientService
}

// NewClientController создает новый контроллер клиентов
func NewClientController(service *services.ClientService) *ClientController {
	return &ClientController{service: service}
}

// GetClients получает список всех клиентов
// GET /api/v1/clients
func (cc *ClientController) GetClients(c *gin.Context) {
	if query := c.Query("search"); query != "" {
		clients, err := cc.service.SearchClients(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Ошибка поиска клиентов",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": clients, "count": len(clients)})
		return
	}

	clients, err := cc.service.GetAllClients()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения клиентов",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": clients,
		"count":   len(clients),
	})
}

// GetClient получает клиента по ID
// GET /api/v1/clients/:id
func (cc *ClientController) GetClient(c *gin.Context) {
	id := c.Param("id")
	client, err := cc.service.GetClientByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Клиент не найден",
		})
		return
	}

	c.JSON(http.StatusOK, client)
}

// CreateClient создает нового клиента
// POST /api/v1/clients
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req models.Client
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Имя клиента обязательно",
		})
		return
	}

	if err := cc.service.CreateClient(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка создания клиента",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, req)
}

// UpdateClient обновляет данные клиента
// PUT /api/v1/clients/:id
func (cc *ClientController) UpdateClient(c *gin.Context) {
	id := c.Param("id")

	var req models.Client
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := cc.service.UpdateClient(id, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка обновления клиента",
			"details": err.Error(),
		})
		return
	}

	client, err := cc.service.GetClientByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Ошибка получения обновленного клиента",
		})
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient удаляет клиента
// DELETE /api/v1/clients/:id
func (cc *ClientController) DeleteClient(c *gin.Context) {
	id := c.Param("id")

	if err := cc.service.DeleteClient(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка удаления клиента",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Клиент удален",
	})
}

package api

import (
	"net/http"

	"contable/server/internal/models"
	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// ProductController управляет API endpoints для каталога товаров и услуг
type ProductController struct {
	service *services.ProductService
	catalog *services.CatalogService
}

// NewProductController создает новый контроллер каталога
func NewProductController(service *services.ProductService, catalog *services.CatalogService) *ProductController {
	return &ProductController{
		service: service,
		catalog: catalog,
	}
}

// GetProducts получает позиции каталога
// GET /api/v1/products?kind=product|service&search=...
func (pc *ProductController) GetProducts(c *gin.Context) {
	if query := c.Query("search"); query != "" {
		products, err := pc.service.SearchProducts(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Ошибка поиска",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
		return
	}

	var products []models.Product
	var err error
	if kind := c.Query("kind"); kind != "" {
		products, err = pc.service.GetProductsByKind(models.ProductKind(kind))
	} else {
		products, err = pc.service.GetAllProducts()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения каталога",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct получает позицию каталога по ID
// GET /api/v1/products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := pc.service.GetProductByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Позиция не найдена",
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct создает позицию каталога
// POST /api/v1/products
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Название позиции обязательно",
		})
		return
	}
	if req.UnitPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Цена не может быть отрицательной",
		})
		return
	}

	if err := pc.service.CreateProduct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка создания позиции",
			"details": err.Error(),
		})
		return
	}

	pc.catalog.Invalidate()
	c.JSON(http.StatusCreated, req)
}

// UpdateProduct обновляет позицию каталога
// PUT /api/v1/products/:id
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var req models.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := pc.service.UpdateProduct(id, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка обновления позиции",
			"details": err.Error(),
		})
		return
	}

	pc.catalog.Invalidate()

	product, err := pc.service.GetProductByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Ошибка получения обновленной позиции",
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct удаляет позицию каталога
// DELETE /api/v1/products/:id
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	if err := pc.service.DeleteProduct(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка удаления позиции",
			"details": err.Error(),
		})
		return
	}

	pc.catalog.Invalidate()
	c.JSON(http.StatusOK, gin.H{
		"message": "Позиция удалена",
	})
}

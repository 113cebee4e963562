package services

import (
	"fmt"
	"log"

	"contable/server/internal/models"

	"gorm.io/gorm"
)

// ProductService управляет каталогом товаров и услуг
type ProductService struct {
	db *gorm.DB
}

// NewProductService создает новый экземпляр ProductService
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// GetAllProducts получает все позиции каталога
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductsByKind получает позиции каталога одного вида
func (s *ProductService) GetProductsByKind(kind models.ProductKind) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("kind = ?", kind).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductByID получает позицию каталога по ID
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct создает позицию каталога.
// Для товара сразу заводится складская запись с нулевым остатком,
// чтобы склад и каталог не расходились.
func (s *ProductService) CreateProduct(product *models.Product) error {
	// Проверяем уникальность артикула
	if product.Code != "" {
		var existing models.Product
		if err := s.db.Where("code = ?", product.Code).First(&existing).Error; err == nil {
			return fmt.Errorf("позиция с артикулом %s уже существует", product.Code)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		if product.IsProduct() {
			record := &models.InventoryRecord{ProductID: product.ID}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
			log.Printf("📦 Создана складская запись для товара %s", product.Name)
		}
		return nil
	})
}

// UpdateProduct обновляет позицию каталога.
// Смена вида запрещена: у товара есть складская история, у услуги — нет.
func (s *ProductService) UpdateProduct(id string, product *models.Product) error {
	var existing models.Product
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		return fmt.Errorf("позиция не найдена: %v", err)
	}
	if product.Kind != "" && product.Kind != existing.Kind {
		return fmt.Errorf("вид позиции изменить нельзя")
	}

	if product.Code != "" {
		var other models.Product
		if err := s.db.Where("code = ? AND id != ?", product.Code, id).First(&other).Error; err == nil {
			return fmt.Errorf("позиция с артикулом %s уже существует", product.Code)
		}
	}

	if err := s.db.Model(&models.Product{}).Where("id = ?", id).Updates(product).Error; err != nil {
		return err
	}
	return nil
}

// DeleteProduct удаляет позицию каталога (soft delete)
func (s *ProductService) DeleteProduct(id string) error {
	// Позицию, участвующую в документах, удалять нельзя
	var invoiceCount, purchaseCount int64
	if err := s.db.Model(&models.InvoiceItem{}).Where("product_id = ?", id).Count(&invoiceCount).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.PurchaseItem{}).Where("product_id = ?", id).Count(&purchaseCount).Error; err != nil {
		return err
	}
	if invoiceCount > 0 || purchaseCount > 0 {
		return fmt.Errorf("позиция используется в документах, удаление невозможно")
	}
	return s.db.Delete(&models.Product{}, "id = ?", id).Error
}

// SearchProducts ищет позиции по названию или артикулу
func (s *ProductService) SearchProducts(query string) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + query + "%"
	if err := s.db.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern).
		Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

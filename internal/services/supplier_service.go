package services

import (
	"fmt"

	"contable/server/internal/models"

	"gorm.io/gorm"
)

// SupplierService управляет поставщиками
type SupplierService struct {
	db *gorm.DB
}

// NewSupplierService создает новый экземпляр SupplierService
func NewSupplierService(db *gorm.DB) *SupplierService {
	return &SupplierService{db: db}
}

// GetAllSuppliers получает список всех поставщиков
func (s *SupplierService) GetAllSuppliers() ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := s.db.Order("name").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetSupplierByID получает поставщика по ID
func (s *SupplierService) GetSupplierByID(id string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// CreateSupplier создает нового поставщика
func (s *SupplierService) CreateSupplier(supplier *models.Supplier) error {
	// Проверяем уникальность RUC
	if supplier.RUC != "" {
		var existing models.Supplier
		if err := s.db.Where("ruc = ?", supplier.RUC).First(&existing).Error; err == nil {
			return fmt.Errorf("поставщик с RUC %s уже существует", supplier.RUC)
		}
	}

	if err := s.db.Create(supplier).Error; err != nil {
		return err
	}
	return nil
}

// UpdateSupplier обновляет данные поставщика
func (s *SupplierService) UpdateSupplier(id string, supplier *models.Supplier) error {
	// Проверяем уникальность RUC (если изменился)
	if supplier.RUC != "" {
		var existing models.Supplier
		if err := s.db.Where("ruc = ? AND id != ?", supplier.RUC, id).First(&existing).Error; err == nil {
			return fmt.Errorf("поставщик с RUC %s уже существует", supplier.RUC)
		}
	}

	if err := s.db.Model(&models.Supplier{}).Where("id = ?", id).Updates(supplier).Error; err != nil {
		return err
	}
	return nil
}

// DeleteSupplier удаляет поставщика (soft delete)
func (s *SupplierService) DeleteSupplier(id string) error {
	// Поставщика с оформленными закупками удалять нельзя
	var count int64
	if err := s.db.Model(&models.Purchase{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("у поставщика есть закупки, удаление невозможно")
	}
	return s.db.Delete(&models.Supplier{}, "id = ?", id).Error
}

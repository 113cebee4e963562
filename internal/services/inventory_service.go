package services

import (
	"fmt"
	"log"

	"contable/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryService управляет складскими остатками и журналом движений
type InventoryService struct {
	db *gorm.DB
}

// NewInventoryService создает новый экземпляр InventoryService
func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// GetAllRecords получает складские записи всех товаров
func (s *InventoryService) GetAllRecords() ([]models.InventoryRecord, error) {
	var records []models.InventoryRecord
	if err := s.db.Preload("Product").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecordByProductID получает складскую запись товара
func (s *InventoryService) GetRecordByProductID(productID string) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := s.db.Preload("Product").First(&record, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAtRiskRecords получает товары с остатком на минимальном пороге или ниже
func (s *InventoryService) GetAtRiskRecords() ([]models.InventoryRecord, error) {
	var records []models.InventoryRecord
	if err := s.db.Preload("Product").
		Where("minimum_stock > 0 AND current_stock <= minimum_stock").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SetMinimumStock устанавливает минимальный порог остатка
func (s *InventoryService) SetMinimumStock(productID string, minimum float64) error {
	if minimum < 0 {
		return fmt.Errorf("минимальный остаток не может быть отрицательным")
	}
	return s.db.Model(&models.InventoryRecord{}).
		Where("product_id = ?", productID).
		Update("minimum_stock", minimum).Error
}

// AdjustStock выполняет ручную корректировку остатка.
// Остаток и запись журнала пишутся в одной транзакции: журнал движений
// только дописывается, каждая запись фиксирует результирующий остаток.
func (s *InventoryService) AdjustStock(productID string, movementType models.MovementType, quantity float64, note string) (*models.InventoryMovement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("количество должно быть положительным")
	}
	if movementType != models.MovementTypeIncrease && movementType != models.MovementTypeDecrease {
		return nil, fmt.Errorf("ручная корректировка допускает только increase и decrease")
	}

	var movement *models.InventoryMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		m, err := applyMovement(tx, productID, movementType, quantity, "", note)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📦 Корректировка остатка %s: %s %.3f (остаток %.3f)",
		productID, movementType, quantity, movement.ResultingStock)
	return movement, nil
}

// applyMovement изменяет остаток товара и дописывает журнал.
// Вызывается только внутри транзакции: остаток блокируется FOR UPDATE,
// уход в минус отклоняется.
func applyMovement(tx *gorm.DB, productID string, movementType models.MovementType, quantity float64, reference, note string) (*models.InventoryMovement, error) {
	var record models.InventoryRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "product_id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("складская запись не найдена: %v", err)
	}

	delta := quantity
	if movementType == models.MovementTypeDecrease || movementType == models.MovementTypeSale {
		delta = -quantity
	}
	resulting := record.CurrentStock + delta
	if resulting < 0 {
		return nil, fmt.Errorf("недостаточно товара на складе: доступно %.3f, требуется %.3f",
			record.CurrentStock, quantity)
	}

	if err := tx.Model(&record).Update("current_stock", resulting).Error; err != nil {
		return nil, err
	}

	movement := &models.InventoryMovement{
		ProductID:      productID,
		Type:           movementType,
		Quantity:       quantity,
		ResultingStock: resulting,
		Reference:      reference,
		Note:           note,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

// GetMovements получает журнал движений товара (новые сверху)
func (s *InventoryService) GetMovements(productID string, limit int) ([]models.InventoryMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var movements []models.InventoryMovement
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

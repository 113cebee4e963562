package services

import (
	"fmt"
	"log"

	"contable/server/internal/composer"
	"contable/server/internal/models"

	"gorm.io/gorm"
)

// PurchaseService управляет закупками
type PurchaseService struct {
	db *gorm.DB
}

// NewPurchaseService создает новый экземпляр PurchaseService
func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{db: db}
}

// GetPurchases получает закупки (новые сверху), опционально фильтруя по статусу
func (s *PurchaseService) GetPurchases(status string, limit int) ([]models.Purchase, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.Preload("Supplier").Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// GetPurchaseByID получает закупку со строками
func (s *PurchaseService) GetPurchaseByID(id string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.Preload("Supplier").Preload("Items").Preload("Items.Product").
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// CreateFromSubmission сохраняет собранную композером закупку.
// Остатки НЕ пополняются при оформлении: приход фиксируется отдельно,
// когда закупка переводится в completed (товар физически получен).
func (s *PurchaseService) CreateFromSubmission(payload *composer.SubmissionPayload) (*models.Purchase, error) {
	if payload.Kind != composer.DocumentKindPurchase {
		return nil, fmt.Errorf("ожидалась закупка, получен документ вида %s", payload.Kind)
	}

	// Проверяем уникальность номера
	var existing models.Purchase
	if err := s.db.Where("number = ?", payload.Number).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("закупка с номером %s уже существует", payload.Number)
	}

	purchase := &models.Purchase{
		Number:        payload.Number,
		SupplierID:    payload.CounterpartyID,
		Date:          payload.Date,
		PaymentMethod: payload.PaymentMethod,
		Status:        models.PurchaseStatus(payload.Status),
		Subtotal:      payload.Subtotal,
		Tax:           payload.Tax,
		Total:         payload.Total,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		for _, item := range payload.Items {
			// В закупке допустимы только товары
			var product models.Product
			if err := tx.First(&product, "id = ?", item.CatalogID).Error; err != nil {
				return fmt.Errorf("позиция каталога не найдена: %v", err)
			}
			if !product.IsProduct() {
				return fmt.Errorf("в закупку нельзя включить услугу: %s", product.Name)
			}

			purchaseItem := &models.PurchaseItem{
				PurchaseID: purchase.ID,
				ProductID:  item.CatalogID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				Total:      item.LineTotal,
			}
			if err := tx.Create(purchaseItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🛒 Создана закупка %s на сумму %.2f (%d строк)",
		purchase.Number, purchase.Total, len(payload.Items))
	return s.GetPurchaseByID(purchase.ID)
}

// CompletePurchase переводит закупку в completed и пополняет остатки.
// Приход по всем строкам и смена статуса идут одной транзакцией.
func (s *PurchaseService) CompletePurchase(id string) (*models.Purchase, error) {
	purchase, err := s.GetPurchaseByID(id)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusPending {
		return nil, fmt.Errorf("пополнить остатки можно только по закупке в статусе pending, текущий: %s", purchase.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range purchase.Items {
			if _, err := applyMovement(tx, item.ProductID, models.MovementTypePurchase,
				float64(item.Quantity), purchase.Number, ""); err != nil {
				return err
			}
		}
		return tx.Model(&models.Purchase{}).Where("id = ?", id).
			Update("status", models.PurchaseStatusCompleted).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📦 Закупка %s завершена, остатки пополнены", purchase.Number)
	return s.GetPurchaseByID(id)
}

// CancelPurchase отменяет закупку. Завершенную закупку отменить нельзя:
// полученный товар уже на складе.
func (s *PurchaseService) CancelPurchase(id string) error {
	var purchase models.Purchase
	if err := s.db.First(&purchase, "id = ?", id).Error; err != nil {
		return err
	}
	if purchase.Status != models.PurchaseStatusPending {
		return fmt.Errorf("отменить можно только закупку в статусе pending")
	}
	return s.db.Model(&models.Purchase{}).Where("id = ?", id).
		Update("status", models.PurchaseStatusCancelled).Error
}

// SearchPurchases ищет закупки по номеру
func (s *PurchaseService) SearchPurchases(query string, limit int) ([]models.Purchase, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var purchases []models.Purchase
	if err := s.db.Preload("Supplier").
		Where("number ILIKE ?", "%"+query+"%").
		Order("created_at DESC").Limit(limit).
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

package services

import (
	"fmt"
	"log"
	"time"

	"contable/server/internal/composer"
	"contable/server/internal/models"

	"gorm.io/gorm"
)

// InvoiceService управляет счетами-фактурами
type InvoiceService struct {
	db *gorm.DB
}

// NewInvoiceService создает новый экземпляр InvoiceService
func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// GetInvoices получает счета (новые сверху), опционально фильтруя по статусу
func (s *InvoiceService) GetInvoices(status string, limit int) ([]models.Invoice, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.Preload("Client").Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// GetInvoiceByID получает счет со строками
func (s *InvoiceService) GetInvoiceByID(id string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Preload("Client").Preload("Items").Preload("Items.Product").
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CreateFromSubmission сохраняет собранный композером счет.
// Счет, строки и списание остатков идут одной транзакцией: если товара
// не хватает (остаток изменился после открытия диалога), вся запись
// откатывается.
func (s *InvoiceService) CreateFromSubmission(payload *composer.SubmissionPayload) (*models.Invoice, error) {
	if payload.Kind != composer.DocumentKindInvoice {
		return nil, fmt.Errorf("ожидался счет, получен документ вида %s", payload.Kind)
	}

	// Проверяем уникальность номера
	var existing models.Invoice
	if err := s.db.Where("number = ?", payload.Number).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("счет с номером %s уже существует", payload.Number)
	}

	invoice := &models.Invoice{
		Number:   payload.Number,
		ClientID: payload.CounterpartyID,
		Date:     payload.Date,
		DueDate:  payload.DueDate,
		Status:   models.InvoiceStatus(payload.Status),
		Subtotal: payload.Subtotal,
		Tax:      payload.Tax,
		Total:    payload.Total,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		for _, item := range payload.Items {
			invoiceItem := &models.InvoiceItem{
				InvoiceID: invoice.ID,
				ProductID: item.CatalogID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.LineTotal,
			}
			if err := tx.Create(invoiceItem).Error; err != nil {
				return err
			}

			// Списываем остаток только по товарам
			var product models.Product
			if err := tx.First(&product, "id = ?", item.CatalogID).Error; err != nil {
				return fmt.Errorf("позиция каталога не найдена: %v", err)
			}
			if product.IsProduct() {
				if _, err := applyMovement(tx, product.ID, models.MovementTypeSale,
					float64(item.Quantity), invoice.Number, ""); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("💰 Создан счет %s на сумму %.2f (%d строк)",
		invoice.Number, invoice.Total, len(payload.Items))
	return s.GetInvoiceByID(invoice.ID)
}

// UpdateStatus изменяет статус счета
func (s *InvoiceService) UpdateStatus(id string, status models.InvoiceStatus) error {
	switch status {
	case models.InvoiceStatusDraft, models.InvoiceStatusPending,
		models.InvoiceStatusSent, models.InvoiceStatusPaid, models.InvoiceStatusOverdue:
	default:
		return fmt.Errorf("неизвестный статус счета: %s", status)
	}
	return s.db.Model(&models.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

// MarkOverdueInvoices помечает просроченные счета.
// Вызывается фоновой задачей раз в сутки.
func (s *InvoiceService) MarkOverdueInvoices(now time.Time) (int64, error) {
	result := s.db.Model(&models.Invoice{}).
		Where("status IN ? AND due_date < ?",
			[]models.InvoiceStatus{models.InvoiceStatusPending, models.InvoiceStatusSent},
			now.Format("2006-01-02")).
		Update("status", models.InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("⚠️ Помечено просроченных счетов: %d", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// DeleteInvoice удаляет счет (soft delete). Черновики удаляются свободно,
// остальные статусы — нет: списанные остатки не восстанавливаются задним числом.
func (s *InvoiceService) DeleteInvoice(id string) error {
	var invoice models.Invoice
	if err := s.db.First(&invoice, "id = ?", id).Error; err != nil {
		return err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return fmt.Errorf("удалить можно только черновик")
	}
	return s.db.Delete(&models.Invoice{}, "id = ?", id).Error
}

// SearchInvoices ищет счета по номеру
func (s *InvoiceService) SearchInvoices(query string, limit int) ([]models.Invoice, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var invoices []models.Invoice
	if err := s.db.Preload("Client").
		Where("number ILIKE ?", "%"+query+"%").
		Order("created_at DESC").Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

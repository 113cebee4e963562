package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus представляет статус счета-фактуры
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"   // Черновик
	InvoiceStatusPending InvoiceStatus = "pending" // Ожидает отправки
	InvoiceStatusSent    InvoiceStatus = "sent"    // Отправлен клиенту
	InvoiceStatusPaid    InvoiceStatus = "paid"    // Оплачен
	InvoiceStatusOverdue InvoiceStatus = "overdue" // Просрочен
)

// Invoice представляет счет-фактуру, выставленную клиенту
type Invoice struct {
	ID       string        `json:"id" gorm:"type:uuid;primaryKey"`
	Number   string        `json:"number" gorm:"type:varchar(50);uniqueIndex;not null"`
	ClientID string        `json:"client_id" gorm:"type:uuid;index;not null"`
	Date     string        `json:"date" gorm:"type:date;not null"`
	DueDate  string        `json:"due_date" gorm:"type:date;not null"`
	Status   InvoiceStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	// Итоги фиксируются на момент сохранения (ставка налога может измениться)
	Subtotal float64 `json:"subtotal" gorm:"type:decimal(15,2);default:0"`
	Tax      float64 `json:"tax" gorm:"type:decimal(15,2);default:0"`
	Total    float64 `json:"total" gorm:"type:decimal(15,2);default:0"`

	Client *Client       `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Items  []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Invoice) TableName() string {
	return "invoices"
}

// BeforeCreate генерирует UUID
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	return nil
}

// IsSettled проверяет, закрыт ли счет
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid
}

// IsOverdue проверяет, просрочен ли счет на момент now
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.IsSettled() || i.DueDate == "" {
		return false
	}
	due, err := time.Parse("2006-01-02", i.DueDate)
	if err != nil {
		return false
	}
	return now.After(due)
}

// InvoiceItem представляет строку счета-фактуры
type InvoiceItem struct {
	ID        string  `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceID string  `json:"invoice_id" gorm:"type:uuid;index;not null"`
	ProductID string  `json:"product_id" gorm:"type:uuid;index;not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	UnitPrice float64 `json:"unit_price" gorm:"type:decimal(15,2);not null"`
	Total     float64 `json:"total" gorm:"type:decimal(15,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// BeforeCreate генерирует UUID
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == "" {
		ii.ID = uuid.New().String()
	}
	return nil
}

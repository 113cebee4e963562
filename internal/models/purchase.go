package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseStatus представляет статус закупки
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"   // Оформлена, товар не получен
	PurchaseStatusCompleted PurchaseStatus = "completed" // Товар получен, остатки пополнены
	PurchaseStatusCancelled PurchaseStatus = "cancelled" // Отменена
)

// Purchase представляет закупку у поставщика
type Purchase struct {
	ID            string         `json:"id" gorm:"type:uuid;primaryKey"`
	Number        string         `json:"number" gorm:"type:varchar(50);uniqueIndex;not null"`
	SupplierID    string         `json:"supplier_id" gorm:"type:uuid;index;not null"`
	Date          string         `json:"date" gorm:"type:date;not null"`
	PaymentMethod string         `json:"payment_method" gorm:"type:varchar(50);not null"` // 'cash', 'transfer', 'credit'
	Status        PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Subtotal float64 `json:"subtotal" gorm:"type:decimal(15,2);default:0"`
	Tax      float64 `json:"tax" gorm:"type:decimal(15,2);default:0"`
	Total    float64 `json:"total" gorm:"type:decimal(15,2);default:0"`

	Supplier *Supplier      `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Items    []PurchaseItem `json:"items,omitempty" gorm:"foreignKey:PurchaseID"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Purchase) TableName() string {
	return "purchases"
}

// BeforeCreate генерирует UUID
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PurchaseStatusPending
	}
	return nil
}

// IsCompleted проверяет, получен ли товар по закупке
func (p *Purchase) IsCompleted() bool {
	return p.Status == PurchaseStatusCompleted
}

// PurchaseItem представляет строку закупки
type PurchaseItem struct {
	ID         string  `json:"id" gorm:"type:uuid;primaryKey"`
	PurchaseID string  `json:"purchase_id" gorm:"type:uuid;index;not null"`
	ProductID  string  `json:"product_id" gorm:"type:uuid;index;not null"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	UnitPrice  float64 `json:"unit_price" gorm:"type:decimal(15,2);not null"`
	Total      float64 `json:"total" gorm:"type:decimal(15,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// BeforeCreate генерирует UUID
func (pi *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == "" {
		pi.ID = uuid.New().String()
	}
	return nil
}

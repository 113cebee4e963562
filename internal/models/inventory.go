package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryRecord представляет складскую запись товара.
// У каждого товара не более одной записи; услуги записей не имеют.
type InventoryRecord struct {
	ID           string  `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID    string  `json:"product_id" gorm:"type:uuid;uniqueIndex;not null"`
	CurrentStock float64 `json:"current_stock" gorm:"type:decimal(15,3);default:0"`
	MinimumStock float64 `json:"minimum_stock" gorm:"type:decimal(15,3);default:0"` // Порог для предупреждений

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// BeforeCreate генерирует UUID
func (r *InventoryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// IsAtRisk проверяет, опустился ли остаток до минимального порога
func (r *InventoryRecord) IsAtRisk() bool {
	return r.MinimumStock > 0 && r.CurrentStock <= r.MinimumStock
}

// MovementType представляет тип складского движения
type MovementType string

const (
	MovementTypeIncrease MovementType = "increase" // Ручное увеличение
	MovementTypeDecrease MovementType = "decrease" // Ручное уменьшение
	MovementTypePurchase MovementType = "purchase" // Приход по закупке
	MovementTypeSale     MovementType = "sale"     // Списание по счету
)

// InventoryMovement представляет запись журнала складских движений.
// Журнал только дописывается: каждая корректировка остатка фиксируется
// вместе с результирующим остатком на момент операции.
type InventoryMovement struct {
	ID             string       `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID      string       `json:"product_id" gorm:"type:uuid;index;not null"`
	Type           MovementType `json:"type" gorm:"type:varchar(10);not null"`
	Quantity       float64      `json:"quantity" gorm:"type:decimal(15,3);not null"`
	ResultingStock float64      `json:"resulting_stock" gorm:"type:decimal(15,3);not null"` // Остаток после операции
	Reference      string       `json:"reference" gorm:"type:varchar(100)"`                 // Номер документа-основания
	Note           string       `json:"note" gorm:"type:varchar(500)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName указывает имя таблицы
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// BeforeCreate генерирует UUID
func (m *InventoryMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// IsInbound проверяет, увеличивает ли движение остаток
func (m *InventoryMovement) IsInbound() bool {
	return m.Type == MovementTypeIncrease || m.Type == MovementTypePurchase
}

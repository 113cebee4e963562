package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductKind представляет вид позиции каталога
type ProductKind string

const (
	ProductKindProduct ProductKind = "product" // Товар (ведется учет остатков)
	ProductKindService ProductKind = "service" // Услуга (остатки не учитываются)
)

// Product представляет позицию каталога: товар или услугу
type Product struct {
	ID          string      `json:"id" gorm:"type:uuid;primaryKey"`
	Code        string      `json:"code" gorm:"type:varchar(50);uniqueIndex"` // Артикул (уникальный)
	Name        string      `json:"name" gorm:"type:varchar(255);not null"`
	Description string      `json:"description" gorm:"type:text"`
	Kind        ProductKind `json:"kind" gorm:"type:varchar(10);default:'product';index"`
	UnitPrice   float64     `json:"unit_price" gorm:"type:decimal(15,2);default:0"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Product) TableName() string {
	return "products"
}

// BeforeCreate генерирует UUID
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Kind == "" {
		p.Kind = ProductKindProduct
	}
	return nil
}

// IsProduct проверяет, является ли позиция товаром
func (p *Product) IsProduct() bool {
	return p.Kind == ProductKindProduct
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientIDType представляет тип идентификационного документа клиента
type ClientIDType string

const (
	ClientIDTypeCedula ClientIDType = "cedula" // Седула (физлицо)
	ClientIDTypeRUC    ClientIDType = "ruc"    // RUC (юрлицо)
)

// Client представляет клиента — контрагента по счетам-фактурам
type Client struct {
	ID       string       `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string       `json:"name" gorm:"type:varchar(255);not null"`
	IDType   ClientIDType `json:"id_type" gorm:"type:varchar(10);default:'cedula'"`
	IDNumber string       `json:"id_number" gorm:"type:varchar(20);uniqueIndex"` // Номер документа (уникальный)

	// Контактная информация
	Email   string `json:"email" gorm:"type:varchar(255)"`
	Phone   string `json:"phone" gorm:"type:varchar(50)"`
	Address string `json:"address" gorm:"type:varchar(500)"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate генерирует UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.IDType == "" {
		c.IDType = ClientIDTypeCedula
	}
	return nil
}

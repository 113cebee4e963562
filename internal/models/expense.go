package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseCategory представляет категорию расхода
type ExpenseCategory string

const (
	ExpenseCategoryRent      ExpenseCategory = "rent"      // Аренда
	ExpenseCategoryUtilities ExpenseCategory = "utilities" // Коммунальные услуги
	ExpenseCategorySalaries  ExpenseCategory = "salaries"  // Зарплаты
	ExpenseCategorySupplies  ExpenseCategory = "supplies"  // Расходные материалы
	ExpenseCategoryOther     ExpenseCategory = "other"     // Прочее
)

// Expense представляет операционный расход (не связанный с закупками)
type Expense struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey"`
	Description string          `json:"description" gorm:"type:varchar(500);not null"`
	Category    ExpenseCategory `json:"category" gorm:"type:varchar(20);default:'other';index"`
	Amount      float64         `json:"amount" gorm:"type:decimal(15,2);not null"`
	Date        string          `json:"date" gorm:"type:date;not null"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate генерирует UUID
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Category == "" {
		e.Category = ExpenseCategoryOther
	}
	return nil
}

package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate выполняет миграцию всех таблиц приложения
func AutoMigrate(db *gorm.DB) error {
	log.Println("📦 Запуск миграций базы данных...")
	err := db.AutoMigrate(
		&Client{},
		&Supplier{},
		&Product{},
		&InventoryRecord{},
		&InventoryMovement{},
		&Invoice{},
		&InvoiceItem{},
		&Purchase{},
		&PurchaseItem{},
		&Expense{},
	)
	if err != nil {
		return err
	}
	log.Println("✅ Миграции выполнены")
	return nil
}

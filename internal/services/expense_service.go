package services

import (
	"fmt"

	"contable/server/internal/models"

	"gorm.io/gorm"
)

// ExpenseService управляет операционными расходами
type ExpenseService struct {
	db *gorm.DB
}

// NewExpenseService создает новый экземпляр ExpenseService
func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{db: db}
}

// GetExpenses получает расходы (новые сверху), опционально фильтруя по категории
func (s *ExpenseService) GetExpenses(category string, limit int) ([]models.Expense, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.Order("date DESC").Limit(limit)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// GetExpenseByID получает расход по ID
func (s *ExpenseService) GetExpenseByID(id string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// CreateExpense создает расход
func (s *ExpenseService) CreateExpense(expense *models.Expense) error {
	if expense.Amount <= 0 {
		return fmt.Errorf("сумма расхода должна быть положительной")
	}
	if expense.Date == "" {
		return fmt.Errorf("дата расхода обязательна")
	}
	return s.db.Create(expense).Error
}

// UpdateExpense обновляет расход
func (s *ExpenseService) UpdateExpense(id string, expense *models.Expense) error {
	if expense.Amount < 0 {
		return fmt.Errorf("сумма расхода не может быть отрицательной")
	}
	return s.db.Model(&models.Expense{}).Where("id = ?", id).Updates(expense).Error
}

// DeleteExpense удаляет расход (soft delete)
func (s *ExpenseService) DeleteExpense(id string) error {
	return s.db.Delete(&models.Expense{}, "id = ?", id).Error
}

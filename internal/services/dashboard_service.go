package services

import (
	"log"
	"time"

	"contable/server/internal/models"
	"contable/server/internal/utils"

	"gorm.io/gorm"
)

// DashboardStats — сводка главного экрана за текущий месяц
type DashboardStats struct {
	MonthlyRevenue  float64 `json:"monthly_revenue"`  // Оплаченные счета за месяц
	MonthlyExpenses float64 `json:"monthly_expenses"` // Расходы + завершенные закупки за месяц
	NetProfit       float64 `json:"net_profit"`
	PendingInvoices int64   `json:"pending_invoices"` // Счета, ожидающие оплаты
	AtRiskProducts  int64   `json:"at_risk_products"` // Товары на минимальном пороге
}

// MonthlyReportPoint — точка помесячного отчета доходов/расходов
type MonthlyReportPoint struct {
	Month    string  `json:"month"` // YYYY-MM
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// DashboardService считает сводную статистику.
// Агрегаты кэшируются в Redis на минуту: дашборд опрашивается часто,
// а точность до секунды ему не нужна.
type DashboardService struct {
	db        *gorm.DB
	redisUtil *utils.RedisClient
}

// NewDashboardService создает новый экземпляр DashboardService
func NewDashboardService(db *gorm.DB, redisUtil *utils.RedisClient) *DashboardService {
	return &DashboardService{db: db, redisUtil: redisUtil}
}

const dashboardCacheKey = "dashboard:stats"

// GetStats возвращает сводку за текущий месяц
func (s *DashboardService) GetStats(now time.Time) (*DashboardStats, error) {
	if s.redisUtil != nil {
		var cached DashboardStats
		if err := s.redisUtil.GetJSON(dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	nextMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0).Format("2006-01-02")

	stats := &DashboardStats{}

	// Доход: оплаченные счета за месяц
	if err := s.db.Model(&models.Invoice{}).
		Where("status = ? AND date >= ? AND date < ?", models.InvoiceStatusPaid, monthStart, nextMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.MonthlyRevenue).Error; err != nil {
		return nil, err
	}

	// Расходы: операционные расходы + завершенные закупки
	var expenses, purchases float64
	if err := s.db.Model(&models.Expense{}).
		Where("date >= ? AND date < ?", monthStart, nextMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&expenses).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Purchase{}).
		Where("status = ? AND date >= ? AND date < ?", models.PurchaseStatusCompleted, monthStart, nextMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&purchases).Error; err != nil {
		return nil, err
	}
	stats.MonthlyExpenses = expenses + purchases
	stats.NetProfit = stats.MonthlyRevenue - stats.MonthlyExpenses

	if err := s.db.Model(&models.Invoice{}).
		Where("status IN ?", []models.InvoiceStatus{
			models.InvoiceStatusPending, models.InvoiceStatusSent, models.InvoiceStatusOverdue,
		}).Count(&stats.PendingInvoices).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.InventoryRecord{}).
		Where("minimum_stock > 0 AND current_stock <= minimum_stock").
		Count(&stats.AtRiskProducts).Error; err != nil {
		return nil, err
	}

	if s.redisUtil != nil {
		if err := s.redisUtil.Set(dashboardCacheKey, stats, time.Minute); err != nil {
			log.Printf("⚠️ Не удалось закэшировать статистику дашборда: %v", err)
		}
	}

	return stats, nil
}

// GetMonthlyReport возвращает помесячные доходы/расходы за последние months месяцев
func (s *DashboardService) GetMonthlyReport(now time.Time, months int) ([]MonthlyReportPoint, error) {
	if months <= 0 || months > 36 {
		months = 12
	}

	report := make([]MonthlyReportPoint, 0, months)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		start := cursor.Format("2006-01-02")
		end := cursor.AddDate(0, 1, 0).Format("2006-01-02")

		point := MonthlyReportPoint{Month: cursor.Format("2006-01")}
		if err := s.db.Model(&models.Invoice{}).
			Where("status = ? AND date >= ? AND date < ?", models.InvoiceStatusPaid, start, end).
			Select("COALESCE(SUM(total), 0)").Scan(&point.Revenue).Error; err != nil {
			return nil, err
		}

		var expenses, purchases float64
		if err := s.db.Model(&models.Expense{}).
			Where("date >= ? AND date < ?", start, end).
			Select("COALESCE(SUM(amount), 0)").Scan(&expenses).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(&models.Purchase{}).
			Where("status = ? AND date >= ? AND date < ?", models.PurchaseStatusCompleted, start, end).
			Select("COALESCE(SUM(total), 0)").Scan(&purchases).Error; err != nil {
			return nil, err
		}
		point.Expenses = expenses + purchases

		report = append(report, point)
		cursor = cursor.AddDate(0, 1, 0)
	}

	return report, nil
}

// Invalidate сбрасывает кэш сводки (после записи документа)
func (s *DashboardService) Invalidate() {
	if s.redisUtil == nil {
		return
	}
	if err := s.redisUtil.Delete(dashboardCacheKey); err != nil {
		log.Printf("⚠️ Не удалось сбросить кэш дашборда: %v", err)
	}
}

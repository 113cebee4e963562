package api

import (
	"net/http"
	"strconv"
	"time"

	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// DashboardController управляет API endpoints сводной статистики
type DashboardController struct {
	service *services.DashboardService
}

// NewDashboardController создает новый контроллер дашборда
func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

// GetStats получает сводку за текущий месяц
// GET /api/v1/dashboard/stats
func (dc *DashboardController) GetStats(c *gin.Context) {
	stats, err := dc.service.GetStats(time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка получения статистики",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMonthlyReport получает помесячный отчет доходов/расходов
// GET /api/v1/dashboard/monthly-report?months=12
func (dc *DashboardController) GetMonthlyReport(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))

	report, err := dc.service.GetMonthlyReport(time.Now().UTC(), months)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ошибка построения отчета",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"months": len(report),
	})
}

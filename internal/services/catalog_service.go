package services

import (
	"context"
	"log"
	"time"

	"contable/server/internal/composer"
	"contable/server/internal/models"
	"contable/server/internal/utils"

	"gorm.io/gorm"
)

// Ключ кэша снимка каталога в Redis
const catalogCacheKey = "composer:catalog"

// CatalogService собирает снимок каталога для композера документов:
// позиции с ценами и текущими остатками.
// Снимок кэшируется в Redis с коротким TTL, чтобы открытие диалога
// не ходило в Postgres на каждый клик.
type CatalogService struct {
	db        *gorm.DB
	redisUtil *utils.RedisClient // может быть nil, кэширование тогда отключено
	cacheTTL  time.Duration
}

// NewCatalogService создает новый экземпляр CatalogService
func NewCatalogService(db *gorm.DB, redisUtil *utils.RedisClient, cacheTTL time.Duration) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &CatalogService{
		db:        db,
		redisUtil: redisUtil,
		cacheTTL:  cacheTTL,
	}
}

// Snapshot возвращает снимок каталога с остатками.
// Порядок источников: кэш Redis -> Postgres (каталог + склад).
// Если склад прочитать не удалось, возвращается деградированный снимок:
// у всех товаров фиктивный остаток, контроль остается за записью документа.
func (s *CatalogService) Snapshot(ctx context.Context) ([]composer.CatalogEntry, error) {
	if s.redisUtil != nil {
		var cached []composer.CatalogEntry
		if err := s.redisUtil.GetJSON(catalogCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}

	stocks, degraded := s.loadStocks(ctx)

	entries := make([]composer.CatalogEntry, 0, len(products))
	for _, p := range products {
		entry := composer.CatalogEntry{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
		}
		if p.IsProduct() {
			entry.Kind = composer.CatalogEntryKindProduct
			if degraded {
				entry.CurrentStock = composer.DegradedStockSentinel
			} else {
				entry.CurrentStock = stocks[p.ID]
			}
		} else {
			entry.Kind = composer.CatalogEntryKindService
		}
		entries = append(entries, entry)
	}

	// Деградированный снимок не кэшируем: следующий запрос может получить остатки
	if s.redisUtil != nil && !degraded {
		if err := s.redisUtil.Set(catalogCacheKey, entries, s.cacheTTL); err != nil {
			log.Printf("⚠️ Не удалось закэшировать каталог: %v", err)
		}
	}

	return entries, nil
}

// loadStocks читает остатки всех товаров.
// Ошибка склада не валит запрос: снимок уходит деградированным.
func (s *CatalogService) loadStocks(ctx context.Context) (map[string]float64, bool) {
	var records []models.InventoryRecord
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		log.Printf("⚠️ Склад недоступен, каталог в деградированном режиме: %v", err)
		return nil, true
	}
	stocks := make(map[string]float64, len(records))
	for _, r := range records {
		stocks[r.ProductID] = r.CurrentStock
	}
	return stocks, false
}

// Invalidate сбрасывает кэш снимка (после записи документа или корректировки склада)
func (s *CatalogService) Invalidate() {
	if s.redisUtil == nil {
		return
	}
	if err := s.redisUtil.Delete(catalogCacheKey); err != nil {
		log.Printf("⚠️ Не удалось сбросить кэш каталога: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"contable/server/internal/api"
	"contable/server/internal/config"
	"contable/server/internal/database"
	"contable/server/internal/models"
	"contable/server/internal/services"
	"contable/server/internal/utils"
)

func main() {
	// Загружаем переменные окружения из .env файла (если существует)
	// Игнорируем ошибку, если файл не найден (для production окружений)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ .env файл не найден, используем переменные окружения системы")
	} else {
		log.Printf("✅ Переменные окружения загружены из .env файла")
	}

	// Загрузка конфигурации
	cfg := config.Load()

	// Логируем наличие DATABASE_URL (без пароля)
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL установлен: %s", safeURL)
	}

	// Подключение к PostgreSQL
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Printf("❌ PostgreSQL connection failed: %v", err)
		log.Printf("⚠️ Продолжаем без БД (ограниченная функциональность)")
		db = nil
	} else {
		defer database.ClosePostgres(db)

		// Выполняем миграции
		if err := models.AutoMigrate(db); err != nil {
			log.Printf("❌ Migration failed: %v", err)
			log.Printf("⚠️ Continuing with limited functionality")
		}
	}

	// Подключение к Redis (с поддержкой Sentinel)
	redisClient, err := database.ConnectRedis(
		cfg.RedisURL,
		cfg.RedisSentinelAddrs,
		cfg.RedisMasterName,
	)
	var redisUtil *utils.RedisClient
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (continuing without Redis)", err)
		redisClient = nil
		redisUtil = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// Kafka producer событий документов (nil, если брокеры не настроены)
	publisher := services.NewDocumentPublisher(cfg.KafkaBrokers)
	if publisher != nil {
		defer publisher.Close()
	} else {
		log.Println("⚠️ Kafka producer не запущен: KAFKA_BROKERS не установлен")
	}

	// Инициализация сервисов
	var clientService *services.ClientService
	var supplierService *services.SupplierService
	var productService *services.ProductService
	var inventoryService *services.InventoryService
	var catalogService *services.CatalogService
	var invoiceService *services.InvoiceService
	var purchaseService *services.PurchaseService
	var expenseService *services.ExpenseService
	var dashboardService *services.DashboardService
	var sessionService *services.DocumentSessionService
	if db != nil {
		clientService = services.NewClientService(db)
		supplierService = services.NewSupplierService(db)
		productService = services.NewProductService(db)
		inventoryService = services.NewInventoryService(db)
		catalogService = services.NewCatalogService(db, redisUtil, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
		invoiceService = services.NewInvoiceService(db)
		purchaseService = services.NewPurchaseService(db)
		expenseService = services.NewExpenseService(db)
		dashboardService = services.NewDashboardService(db, redisUtil)
		sessionService = services.NewDocumentSessionService(
			catalogService, clientService, supplierService,
			time.Duration(cfg.SessionTTLMinutes)*time.Minute,
		)
		sessionService.StartJanitor(context.Background())
		log.Println("✅ Сервисы инициализированы")
	} else {
		log.Println("⚠️ Сервисы не инициализированы: PostgreSQL недоступен")
	}

	// Фоновая задача: пометка просроченных счетов (раз в сутки)
	if invoiceService != nil {
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for {
				if _, err := invoiceService.MarkOverdueInvoices(time.Now().UTC()); err != nil {
					log.Printf("⚠️ Ошибка пометки просроченных счетов: %v", err)
				}
				<-ticker.C
			}
		}()
		log.Println("⏰ Фоновая проверка просроченных счетов запущена (каждые 24 часа)")
	}

	// Отключаем debug-логи Gin
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Health check endpoint (должен быть до CORS)
	r.GET("/api/v1/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": "Contable Server",
			"version": "1.0.0",
		}
		if sessionService != nil {
			body["open_sessions"] = sessionService.Count()
		}
		c.JSON(http.StatusOK, body)
	})

	// Логирование всех запросов
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("🌐 %s %s - Status: %d - Latency: %v", method, path, status, latency)
	})

	// CORS для фронтенда
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// API routes
	apiGroup := r.Group("/api/v1")

	if db != nil {
		// Клиенты
		clientController := api.NewClientController(clientService)
		clientGroup := apiGroup.Group("/clients")
		{
			clientGroup.GET("", clientController.GetClients)
			clientGroup.POST("", clientController.CreateClient)
			clientGroup.GET("/:id", clientController.GetClient)
			clientGroup.PUT("/:id", clientController.UpdateClient)
			clientGroup.DELETE("/:id", clientController.DeleteClient)
		}

		// Поставщики
		supplierController := api.NewSupplierController(supplierService)
		supplierGroup := apiGroup.Group("/suppliers")
		{
			supplierGroup.GET("", supplierController.GetSuppliers)
			supplierGroup.POST("", supplierController.CreateSupplier)
			supplierGroup.GET("/:id", supplierController.GetSupplier)
			supplierGroup.PUT("/:id", supplierController.UpdateSupplier)
			supplierGroup.DELETE("/:id", supplierController.DeleteSupplier)
		}

		// Каталог товаров и услуг
		productController := api.NewProductController(productService, catalogService)
		productGroup := apiGroup.Group("/products")
		{
			productGroup.GET("", productController.GetProducts)
			productGroup.POST("", productController.CreateProduct)
			productGroup.GET("/:id", productController.GetProduct)
			productGroup.PUT("/:id", productController.UpdateProduct)
			productGroup.DELETE("/:id", productController.DeleteProduct)
		}

		// Склад
		inventoryController := api.NewInventoryController(inventoryService, catalogService, publisher)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryController.GetInventory)
			inventoryGroup.GET("/at-risk", inventoryController.GetAtRisk)
			inventoryGroup.POST("/:productId/adjust", inventoryController.AdjustStock)
			inventoryGroup.PUT("/:productId/minimum", inventoryController.SetMinimumStock)
			inventoryGroup.GET("/:productId/movements", inventoryController.GetMovements)
		}

		// Счета-фактуры
		invoiceController := api.NewInvoiceController(invoiceService)
		invoiceGroup := apiGroup.Group("/invoices")
		{
			invoiceGroup.GET("", invoiceController.GetInvoices)
			invoiceGroup.GET("/:id", invoiceController.GetInvoice)
			invoiceGroup.PUT("/:id/status", invoiceController.UpdateInvoiceStatus)
			invoiceGroup.DELETE("/:id", invoiceController.DeleteInvoice)
		}

		// Закупки
		purchaseController := api.NewPurchaseController(purchaseService, catalogService, publisher)
		purchaseGroup := apiGroup.Group("/purchases")
		{
			purchaseGroup.GET("", purchaseController.GetPurchases)
			purchaseGroup.GET("/:id", purchaseController.GetPurchase)
			purchaseGroup.POST("/:id/complete", purchaseController.CompletePurchase)
			purchaseGroup.POST("/:id/cancel", purchaseController.CancelPurchase)
		}

		// Расходы
		expenseController := api.NewExpenseController(expenseService)
		expenseGroup := apiGroup.Group("/expenses")
		{
			expenseGroup.GET("", expenseController.GetExpenses)
			expenseGroup.POST("", expenseController.CreateExpense)
			expenseGroup.GET("/:id", expenseController.GetExpense)
			expenseGroup.PUT("/:id", expenseController.UpdateExpense)
			expenseGroup.DELETE("/:id", expenseController.DeleteExpense)
		}

		// Дашборд
		dashboardController := api.NewDashboardController(dashboardService)
		dashboardGroup := apiGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/stats", dashboardController.GetStats)
			dashboardGroup.GET("/monthly-report", dashboardController.GetMonthlyReport)
		}

		// Композер документов: сессии редактирования счетов и закупок
		composerController := api.NewComposerController(
			sessionService, invoiceService, purchaseService,
			catalogService, dashboardService, publisher,
		)
		composerGroup := apiGroup.Group("/composer/sessions")
		{
			composerGroup.POST("", composerController.OpenSession)
			composerGroup.GET("/:id", composerController.GetSession)
			composerGroup.PUT("/:id/header", composerController.SetHeader)
			composerGroup.POST("/:id/lines", composerController.AddLine)
			composerGroup.PUT("/:id/lines/:index", composerController.UpdateLine)
			composerGroup.DELETE("/:id/lines/:index", composerController.RemoveLine)
			composerGroup.POST("/:id/reload-catalog", composerController.ReloadCatalog)
			composerGroup.POST("/:id/hydrate", composerController.Hydrate)
			composerGroup.POST("/:id/submit", composerController.Submit)
			composerGroup.DELETE("/:id", composerController.CloseSession)
		}
		log.Println("📝 Composer endpoints enabled: /api/v1/composer/sessions")
	} else {
		log.Println("⚠️ API endpoints не зарегистрированы: PostgreSQL недоступен")
	}

	// Запускаем WebSocket Hub для дашборда
	go api.DashboardHub.Run()
	log.Println("🌐 WebSocket Hub запущен для дашборда")

	// WebSocket для дашборда
	apiGroup.GET("/ws/dashboard", api.ServeDashboardWS)

	// Запускаем Kafka Consumer для трансляции событий документов в WebSocket
	if cfg.KafkaBrokers != "" {
		kafkaConsumer := api.NewKafkaWSConsumer(cfg.KafkaBrokers, cfg.KafkaUsername, cfg.KafkaPassword)
		kafkaConsumer.Start()
		defer kafkaConsumer.Stop()
	} else {
		log.Println("⚠️ Kafka WS Consumer НЕ запущен: KAFKA_BROKERS не установлен")
	}

	// Периодическое логирование статистики памяти
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			logMemoryStats()
		}
	}()

	port := cfg.ServerPort
	log.Printf("🚀 Server starting on port %s", port)
	log.Printf("📡 API доступен на http://0.0.0.0:%s/api/v1", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// logMemoryStats логирует текущую статистику использования памяти
func logMemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	heapAllocMB := float64(m.HeapAlloc) / 1024 / 1024
	sysMB := float64(m.Sys) / 1024 / 1024
	numGoroutines := runtime.NumGoroutine()

	log.Printf("💾 Memory Stats: HeapAlloc=%.2f MB, Sys=%.2f MB, GC=%d, Goroutines=%d",
		heapAllocMB, sysMB, m.NumGC, numGoroutines)

	if numGoroutines > 200 {
		log.Printf("⚠️ WARNING: High number of goroutines detected: %d (possible goroutine leak)", numGoroutines)
	}
}

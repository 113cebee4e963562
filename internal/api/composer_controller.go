package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"contable/server/internal/composer"
	"contable/server/internal/services"

	"github.com/gin-gonic/gin"
)

// ComposerController управляет сессиями редактирования документов:
// открытие диалога счета/закупки, строки, итоги, отправка.
type ComposerController struct {
	sessions  *services.DocumentSessionService
	invoices  *services.InvoiceService
	purchases *services.PurchaseService
	catalog   *services.CatalogService
	dashboard *services.DashboardService
	publisher *services.DocumentPublisher
}

// NewComposerController создает новый контроллер композера
func NewComposerController(
	sessions *services.DocumentSessionService,
	invoices *services.InvoiceService,
	purchases *services.PurchaseService,
	catalog *services.CatalogService,
	dashboard *services.DashboardService,
	publisher *services.DocumentPublisher,
) *ComposerController {
	return &ComposerController{
		sessions:  sessions,
		invoices:  invoices,
		purchases: purchases,
		catalog:   catalog,
		dashboard: dashboard,
		publisher: publisher,
	}
}

// OpenSessionRequest — тело запроса открытия сессии
type OpenSessionRequest struct {
	Kind composer.DocumentKind `json:"kind" binding:"required"` // invoice | purchase
}

// OpenSession открывает сессию редактирования документа
// POST /api/v1/composer/sessions
func (cc *ComposerController) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	session, err := cc.sessions.Open(c.Request.Context(), req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Ошибка открытия сессии",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID(),
		"kind":       session.Kind(),
	})
}

// GetSession возвращает полное состояние сессии:
// готовность справочников, каталог, контрагенты, шапку, строки и итоги
// GET /api/v1/composer/sessions/:id
func (cc *ComposerController) GetSession(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     session.ID(),
		"kind":           session.Kind(),
		"ready":          session.Ready(),
		"degraded":       session.Degraded(),
		"catalog":        session.Catalog(),
		"counterparties": session.Counterparties(),
		"header":         session.Header(),
		"lines":          session.Lines(),
		"totals":         session.Totals(),
	})
}

// SetHeader заменяет шапку документа
// PUT /api/v1/composer/sessions/:id/header
func (cc *ComposerController) SetHeader(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	var header composer.DocumentHeader
	if err := c.ShouldBindJSON(&header); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := session.SetHeader(header); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"header": session.Header()})
}

// AddLine добавляет пустую строку
// POST /api/v1/composer/sessions/:id/lines
func (cc *ComposerController) AddLine(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	if err := session.AddLine(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lines":  session.Lines(),
		"totals": session.Totals(),
	})
}

// RemoveLine удаляет строку (последнюю удалить нельзя)
// DELETE /api/v1/composer/sessions/:id/lines/:index
func (cc *ComposerController) RemoveLine(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный индекс строки"})
		return
	}

	if err := session.RemoveLine(index); err != nil {
		respondLineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lines":  session.Lines(),
		"totals": session.Totals(),
	})
}

// UpdateLineRequest — тело запроса изменения строки.
// Поля опциональны: приходит только то, что изменил пользователь.
// Количество и цена принимаются как есть (строка, число, null) —
// нормализация на стороне ядра.
type UpdateLineRequest struct {
	CatalogID *string     `json:"catalog_id"`
	Quantity  interface{} `json:"quantity"`
	UnitPrice interface{} `json:"unit_price"`
}

// UpdateLine изменяет строку: выбор позиции, количество, цену
// PUT /api/v1/composer/sessions/:id/lines/:index
func (cc *ComposerController) UpdateLine(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный индекс строки"})
		return
	}

	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if req.CatalogID != nil {
		if err := session.SelectEntry(index, *req.CatalogID); err != nil {
			respondLineError(c, err)
			return
		}
	}
	if req.Quantity != nil {
		if err := session.SetQuantity(index, req.Quantity); err != nil {
			respondLineError(c, err)
			return
		}
	}
	if req.UnitPrice != nil {
		if err := session.SetUnitPrice(index, req.UnitPrice); err != nil {
			respondLineError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"lines":  session.Lines(),
		"totals": session.Totals(),
	})
}

// ReloadCatalog заменяет снимок каталога свежим
// POST /api/v1/composer/sessions/:id/reload-catalog
func (cc *ComposerController) ReloadCatalog(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	cc.catalog.Invalidate()
	if err := session.ReloadCatalog(c.Request.Context(), cc.sessions.CatalogFetcher()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Не удалось обновить каталог",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog":  session.Catalog(),
		"degraded": session.Degraded(),
	})
}

// HydrateRequest — тело запроса наполнения сессии существующим документом
type HydrateRequest struct {
	Header composer.DocumentHeader `json:"header"`
	Lines  []composer.HydrateLine  `json:"lines"`
}

// Hydrate наполняет сессию существующим документом (редактирование)
// POST /api/v1/composer/sessions/:id/hydrate
func (cc *ComposerController) Hydrate(c *gin.Context) {
	session, err := cc.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	var req HydrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := session.Hydrate(req.Header, req.Lines); err != nil {
		respondLineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"header": session.Header(),
		"lines":  session.Lines(),
		"totals": session.Totals(),
	})
}

// Submit валидирует документ, сохраняет его и закрывает сессию
// POST /api/v1/composer/sessions/:id/submit
func (cc *ComposerController) Submit(c *gin.Context) {
	id := c.Param("id")
	session, err := cc.sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
		return
	}

	payload, validationErrs := session.Submit(time.Now().UTC())
	if len(validationErrs) > 0 {
		fields := make([]gin.H, 0, len(validationErrs))
		for _, ve := range validationErrs {
			fields = append(fields, gin.H{
				"field":   ve.Field,
				"message": ve.Error(),
			})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Документ не прошел валидацию",
			"fields": fields,
		})
		return
	}

	switch payload.Kind {
	case composer.DocumentKindInvoice:
		invoice, err := cc.invoices.CreateFromSubmission(payload)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Ошибка сохранения счета",
				"details": err.Error(),
			})
			return
		}
		cc.afterSubmit("invoice_created", invoice.Number, invoice.Total, id)
		c.JSON(http.StatusCreated, invoice)

	case composer.DocumentKindPurchase:
		purchase, err := cc.purchases.CreateFromSubmission(payload)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Ошибка сохранения закупки",
				"details": err.Error(),
			})
			return
		}
		cc.afterSubmit("purchase_created", purchase.Number, purchase.Total, id)
		c.JSON(http.StatusCreated, purchase)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный вид документа"})
	}
}

// afterSubmit выполняет пост-обработку записанного документа:
// сброс кэшей, событие в Kafka, уведомление дашборда, закрытие сессии
func (cc *ComposerController) afterSubmit(eventType, number string, total float64, sessionID string) {
	cc.catalog.Invalidate()
	cc.dashboard.Invalidate()
	cc.publisher.Publish(eventType, number, total, nil)
	BroadcastDashboardUpdate(eventType, map[string]interface{}{
		"number": number,
		"total":  total,
	})
	cc.sessions.Close(sessionID)
}

// CloseSession закрывает сессию без сохранения
// DELETE /api/v1/composer/sessions/:id
func (cc *ComposerController) CloseSession(c *gin.Context) {
	cc.sessions.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Сессия закрыта"})
}

// respondLineError переводит ошибки ядра в HTTP-ответы.
// Ошибки выбора позиции — пользовательские, они уходят как 422 с
// деталями для конкретной строки.
func respondLineError(c *gin.Context, err error) {
	var sel *composer.SelectionError
	if errors.As(err, &sel) {
		body := gin.H{"error": sel.Error()}
		if sel.EntryID != "" {
			body["entry_id"] = sel.EntryID
		}
		if errors.Is(err, composer.ErrInsufficientStock) {
			body["available"] = sel.Available
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	switch {
	case errors.Is(err, composer.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, composer.ErrCatalogNotLoaded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, composer.ErrInvalidQuantity),
		errors.Is(err, composer.ErrEmptyDocument):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

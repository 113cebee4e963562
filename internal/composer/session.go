package composer

import (
	"context"
	"log"
	"sync"
	"time"
)

// CatalogFetcher загружает снимок каталога (товары и услуги с остатками)
type CatalogFetcher func(ctx context.Context) ([]CatalogEntry, error)

// CounterpartyFetcher загружает список контрагентов (клиентов или поставщиков)
type CounterpartyFetcher func(ctx context.Context) ([]CounterpartyEntry, error)

// Session — сессия редактирования одного документа: шапка, строки,
// снимок каталога и список контрагентов. Справочники загружаются
// асинхронно при открытии; до завершения загрузки выбор позиций и
// отправка недоступны, но placeholder-строки редактировать можно.
//
// Все методы потокобезопасны: сессию дергают HTTP-обработчики
// конкурентно.
type Session struct {
	mu sync.Mutex

	id     string
	cfg    DocumentConfig
	header DocumentHeader
	store  *LineItemStore
	index  *AvailabilityIndex

	counterparties []CounterpartyEntry

	catalogReady      bool
	counterpartyReady bool
	degraded          bool // каталог загружен без остатков, контроль за бэкендом
	closed            bool

	touchedAt time.Time
}

// NewSession создает сессию редактирования документа.
// Хранилище строк начинается с одной placeholder-строки: документ в UI
// всегда показывает минимум одну строку.
func NewSession(id string, cfg DocumentConfig) *Session {
	s := &Session{
		id:        id,
		cfg:       cfg,
		store:     NewLineItemStore(nil),
		touchedAt: time.Now(),
	}
	s.store.AddPlaceholder()
	return s
}

// ID возвращает идентификатор сессии
func (s *Session) ID() string {
	return s.id
}

// Kind возвращает вид собираемого документа
func (s *Session) Kind() DocumentKind {
	return s.cfg.Kind
}

// TouchedAt возвращает время последнего обращения к сессии
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// touch отмечает обращение к сессии. Вызывается под s.mu.
func (s *Session) touch() {
	s.touchedAt = time.Now()
}

// LoadAsync запускает параллельную загрузку каталога и контрагентов.
// Загрузки независимы: отказ одной не отменяет другую. Результат,
// пришедший после Close, молча отбрасывается — закрытая сессия не
// должна оживать от запоздавшего ответа.
func (s *Session) LoadAsync(ctx context.Context, catalog CatalogFetcher, counterparties CounterpartyFetcher) {
	go func() {
		entries, err := catalog(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if err != nil {
			log.Printf("⚠️ [Composer] Сессия %s: не удалось загрузить каталог: %v", s.id, err)
			return
		}
		s.applyCatalogLocked(entries)
	}()

	go func() {
		list, err := counterparties(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if err != nil {
			log.Printf("⚠️ [Composer] Сессия %s: не удалось загрузить контрагентов: %v", s.id, err)
			return
		}
		s.counterparties = list
		s.counterpartyReady = true
	}()
}

// applyCatalogLocked применяет снимок каталога: фильтрует по конфигурации,
// строит индекс доступности и привязывает его к хранилищу. Вызывается под s.mu.
func (s *Session) applyCatalogLocked(entries []CatalogEntry) {
	filtered := entries
	if s.cfg.ProductsOnly {
		filtered = make([]CatalogEntry, 0, len(entries))
		for _, entry := range entries {
			if entry.Kind == CatalogEntryKindProduct {
				filtered = append(filtered, entry)
			}
		}
	}
	degraded := false
	for _, entry := range filtered {
		if entry.Kind == CatalogEntryKindProduct && entry.CurrentStock == DegradedStockSentinel {
			degraded = true
			break
		}
	}
	s.index = BuildIndex(filtered, s.cfg.StrictUniqueness)
	s.store.bindIndex(s.index)
	s.catalogReady = true
	s.degraded = degraded
	if degraded {
		log.Printf("⚠️ [Composer] Сессия %s: каталог в деградированном режиме, контроль остатков отключен", s.id)
	}
}

// ReloadCatalog заменяет снимок каталога свежим (кнопка "обновить" в UI).
// Занятые позиции сохраняются: claims переносятся на новый индекс по
// текущим строкам хранилища.
func (s *Session) ReloadCatalog(ctx context.Context, catalog CatalogFetcher) error {
	entries, err := catalog(ctx)
	if err != nil {
		return &ValidationError{Err: ErrNetworkFetch, Field: "catalog", Details: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.applyCatalogLocked(entries)
	for i, item := range s.store.Items() {
		if item.Entry != nil {
			s.index.Claim(item.Entry.ID, i)
		}
	}
	s.touch()
	return nil
}

// Ready проверяет, загружены ли оба справочника
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogReady && s.counterpartyReady
}

// Degraded проверяет, работает ли каталог без контроля остатков
func (s *Session) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Close закрывает сессию. Запоздавшие результаты загрузок после закрытия
// игнорируются.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Catalog возвращает снимок каталога для выпадающих списков UI.
// До завершения загрузки возвращает пустой срез.
func (s *Session) Catalog() []*CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	return s.index.Entries()
}

// Counterparties возвращает загруженный список контрагентов
func (s *Session) Counterparties() []CounterpartyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]CounterpartyEntry, len(s.counterparties))
	copy(result, s.counterparties)
	return result
}

// SetHeader заменяет шапку документа. Валидация откладывается до Submit:
// пока документ редактируется, шапка может быть сколь угодно неполной.
func (s *Session) SetHeader(header DocumentHeader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.header = header
	s.touch()
	return nil
}

// Header возвращает текущую шапку документа
func (s *Session) Header() DocumentHeader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// AddLine добавляет placeholder-строку
func (s *Session) AddLine() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.store.AddPlaceholder()
	s.touch()
	return nil
}

// RemoveLine удаляет строку. Последнюю строку удалить нельзя: документ
// в UI всегда показывает минимум одну строку.
func (s *Session) RemoveLine(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.store.Len() <= 1 {
		return ErrEmptyDocument
	}
	if err := s.store.Remove(index); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SelectEntry выбирает позицию каталога для строки
func (s *Session) SelectEntry(index int, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.SetCatalogRef(index, entryID); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SetQuantity изменяет количество в строке
func (s *Session) SetQuantity(index int, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.SetQuantity(index, value); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SetUnitPrice изменяет цену за единицу в строке
func (s *Session) SetUnitPrice(index int, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.SetUnitPrice(index, value); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Lines возвращает снимок строк документа
func (s *Session) Lines() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Items()
}

// Totals вычисляет текущие итоги документа
func (s *Session) Totals() DocumentTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.store)
}

// Hydrate наполняет сессию существующим документом (редактирование).
// Требует загруженного каталога: строки занимают позиции в индексе так же,
// как при ручном вводе.
func (s *Session) Hydrate(header DocumentHeader, lines []HydrateLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.catalogReady {
		return ErrCatalogNotLoaded
	}
	s.header = header
	s.store = NewLineItemStore(s.index)
	if err := s.store.Hydrate(lines); err != nil {
		return err
	}
	if s.store.Len() == 0 {
		s.store.AddPlaceholder()
	}
	s.touch()
	return nil
}

// Submit валидирует документ и собирает payload для отправки.
// До завершения загрузки справочников отправка невозможна: список
// контрагентов нужен для их резолва, каталог — для выбора позиций.
func (s *Session) Submit(now time.Time) (*SubmissionPayload, []*ValidationError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, []*ValidationError{{Err: ErrSessionClosed}}
	}
	if !s.catalogReady || !s.counterpartyReady {
		return nil, []*ValidationError{{Err: ErrNetworkFetch, Field: "session", Details: "справочники еще загружаются"}}
	}
	s.touch()
	return BuildSubmission(s.cfg, s.header, s.store, s.counterparties, now)
}

package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"contable/server/internal/composer"

	"github.com/google/uuid"
)

// DocumentSessionService — реестр открытых сессий редактирования документов.
// Каждое открытие диалога счета/закупки создает сессию с собственным
// снимком каталога; брошенные сессии убирает фоновый janitor по TTL.
type DocumentSessionService struct {
	mu       sync.RWMutex
	sessions map[string]*composer.Session

	catalog  *CatalogService
	clients  *ClientService
	supplier *SupplierService

	ttl time.Duration
}

// NewDocumentSessionService создает новый экземпляр DocumentSessionService
func NewDocumentSessionService(catalog *CatalogService, clients *ClientService, supplier *SupplierService, ttl time.Duration) *DocumentSessionService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DocumentSessionService{
		sessions: make(map[string]*composer.Session),
		catalog:  catalog,
		clients:  clients,
		supplier: supplier,
		ttl:      ttl,
	}
}

// Open создает сессию редактирования и запускает асинхронную загрузку
// каталога и контрагентов.
func (s *DocumentSessionService) Open(ctx context.Context, kind composer.DocumentKind) (*composer.Session, error) {
	var cfg composer.DocumentConfig
	switch kind {
	case composer.DocumentKindInvoice:
		cfg = composer.InvoiceConfig()
	case composer.DocumentKindPurchase:
		cfg = composer.PurchaseConfig()
	default:
		return nil, fmt.Errorf("неизвестный вид документа: %s", kind)
	}

	session := composer.NewSession(uuid.New().String(), cfg)
	session.LoadAsync(ctx, s.catalogFetcher(), s.counterpartyFetcher(kind))

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	log.Printf("📝 Открыта сессия %s (%s)", session.ID(), kind)
	return session, nil
}

// Get возвращает сессию по ID
func (s *DocumentSessionService) Get(id string) (*composer.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("сессия %s не найдена", id)
	}
	return session, nil
}

// Close закрывает сессию и убирает ее из реестра
func (s *DocumentSessionService) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		session.Close()
		delete(s.sessions, id)
	}
}

// CatalogFetcher возвращает загрузчик каталога для ReloadCatalog
func (s *DocumentSessionService) CatalogFetcher() composer.CatalogFetcher {
	return s.catalogFetcher()
}

func (s *DocumentSessionService) catalogFetcher() composer.CatalogFetcher {
	return func(ctx context.Context) ([]composer.CatalogEntry, error) {
		return s.catalog.Snapshot(ctx)
	}
}

func (s *DocumentSessionService) counterpartyFetcher(kind composer.DocumentKind) composer.CounterpartyFetcher {
	return func(ctx context.Context) ([]composer.CounterpartyEntry, error) {
		if kind == composer.DocumentKindPurchase {
			suppliers, err := s.supplier.GetAllSuppliers()
			if err != nil {
				return nil, err
			}
			entries := make([]composer.CounterpartyEntry, 0, len(suppliers))
			for _, sup := range suppliers {
				entries = append(entries, composer.CounterpartyEntry{ID: sup.ID, Name: sup.Name})
			}
			return entries, nil
		}

		clients, err := s.clients.GetAllClients()
		if err != nil {
			return nil, err
		}
		entries := make([]composer.CounterpartyEntry, 0, len(clients))
		for _, c := range clients {
			entries = append(entries, composer.CounterpartyEntry{ID: c.ID, Name: c.Name})
		}
		return entries, nil
	}
}

// StartJanitor запускает фоновую чистку брошенных сессий
func (s *DocumentSessionService) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// sweep закрывает сессии, к которым не обращались дольше TTL
func (s *DocumentSessionService) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.TouchedAt().Before(cutoff) {
			session.Close()
			delete(s.sessions, id)
			log.Printf("🧹 Закрыта брошенная сессия %s", id)
		}
	}
}

// Count возвращает количество открытых сессий (для health-check)
func (s *DocumentSessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package services

import (
	"fmt"

	"contable/server/internal/models"

	"gorm.io/gorm"
)

// ClientService управляет клиентами
type ClientService struct {
	db *gorm.DB
}

// NewClientService создает новый экземпляр ClientService
func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// GetAllClients получает список всех клиентов
func (s *ClientService) GetAllClients() ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// GetClientByID получает клиента по ID
func (s *ClientService) GetClientByID(id string) (*models.Client, error) {
	var client models.Client
	if err := s.db.First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// CreateClient создает нового клиента
func (s *ClientService) CreateClient(client *models.Client) error {
	// Проверяем уникальность номера документа
	if client.IDNumber != "" {
		var existing models.Client
		if err := s.db.Where("id_number = ?", client.IDNumber).First(&existing).Error; err == nil {
			return fmt.Errorf("клиент с документом %s уже существует", client.IDNumber)
		}
	}

	if err := s.db.Create(client).Error; err != nil {
		return err
	}
	return nil
}

// UpdateClient обновляет данные клиента
func (s *ClientService) UpdateClient(id string, client *models.Client) error {
	// Проверяем уникальность номера документа (если изменился)
	if client.IDNumber != "" {
		var existing models.Client
		if err := s.db.Where("id_number = ? AND id != ?", client.IDNumber, id).First(&existing).Error; err == nil {
			return fmt.Errorf("клиент с документом %s уже существует", client.IDNumber)
		}
	}

	if err := s.db.Model(&models.Client{}).Where("id = ?", id).Updates(client).Error; err != nil {
		return err
	}
	return nil
}

// DeleteClient удаляет клиента (soft delete)
func (s *ClientService) DeleteClient(id string) error {
	// Клиента с выставленными счетами удалять нельзя
	var count int64
	if err := s.db.Model(&models.Invoice{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("у клиента есть счета, удаление невозможно")
	}
	return s.db.Delete(&models.Client{}, "id = ?", id).Error
}

// SearchClients ищет клиентов по имени или номеру документа
func (s *ClientService) SearchClients(query string) ([]models.Client, error) {
	var clients []models.Client
	pattern := "%" + query + "%"
	if err := s.db.Where("name ILIKE ? OR id_number ILIKE ?", pattern, pattern).
		Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

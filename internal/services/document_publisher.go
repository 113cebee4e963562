package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Топик событий документов
const DocumentsTopic = "documents"

// DocumentEvent — событие документооборота для шины Kafka.
// Из Kafka события разлетаются в WebSocket дашборда и внешним потребителям
// (отчетность, уведомления).
type DocumentEvent struct {
	Type      string      `json:"type"` // invoice_created, purchase_created, purchase_completed, stock_adjusted
	Number    string      `json:"number,omitempty"`
	Total     float64     `json:"total,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// DocumentPublisher отправляет события документов в Kafka.
// Отправка асинхронная: запись документа не ждет подтверждения брокера.
type DocumentPublisher struct {
	writer *kafka.Writer
}

// NewDocumentPublisher создает producer событий документов.
// При пустом списке брокеров возвращает nil — вызывающий код обязан
// переживать отсутствие Kafka (graceful degradation).
func NewDocumentPublisher(kafkaBrokers string) *DocumentPublisher {
	if kafkaBrokers == "" {
		return nil
	}
	brokers := strings.Split(kafkaBrokers, ",")
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    DocumentsTopic,
		Balancer: &kafka.LeastBytes{},
		Async:    true, // Асинхронная отправка, запись документа не блокируется
	}
	log.Printf("✅ Kafka producer событий документов подключен к %s", kafkaBrokers)
	return &DocumentPublisher{writer: writer}
}

// Publish отправляет событие в топик documents.
// Ошибки только логируются: шина событий вторична по отношению к записи в БД.
func (p *DocumentPublisher) Publish(eventType, number string, total float64, payload interface{}) {
	if p == nil || p.writer == nil {
		return
	}
	event := DocumentEvent{
		Type:      eventType,
		Number:    number,
		Total:     total,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Не удалось сериализовать событие %s: %v", eventType, err)
		return
	}

	err = p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(number),
		Value: data,
	})
	if err != nil {
		log.Printf("⚠️ Kafka: не удалось отправить событие %s: %v", eventType, err)
	}
}

// Close закрывает Kafka writer
func (p *DocumentPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

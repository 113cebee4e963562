package api

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"contable/server/internal/services"

	"github.com/segmentio/kafka-go"
)

// KafkaWSConsumer читает события документов из Kafka и транслирует их
// в WebSocket дашборда. Так событие о новом счете доезжает до всех
// открытых дашбордов, даже если документ записал другой инстанс сервера.
type KafkaWSConsumer struct {
	topic     string
	groupID   string
	reader    *kafka.Reader
	ctx       context.Context
	cancel    context.CancelFunc
	processed int64 // Счетчик обработанных событий
}

// NewKafkaWSConsumer создает новый Kafka Consumer для WebSocket дашборда
func NewKafkaWSConsumer(brokers string, username, password string) *KafkaWSConsumer {
	brokerList := ParseKafkaBrokers(brokers)
	ctx, cancel := context.WithCancel(context.Background())

	dialer := CreateKafkaDialer(username, password)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokerList,
		Topic:       services.DocumentsTopic,
		GroupID:     "dashboard-ws-group",
		StartOffset: kafka.LastOffset, // Дашборду нужны только новые события
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
	})

	return &KafkaWSConsumer{
		topic:   services.DocumentsTopic,
		groupID: "dashboard-ws-group",
		reader:  reader,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start запускает чтение из Kafka и отправку в WebSocket
func (kc *KafkaWSConsumer) Start() {
	log.Printf("📡 Kafka WS Consumer запущен: topic=%s, groupID=%s", kc.topic, kc.groupID)

	go func() {
		for {
			select {
			case <-kc.ctx.Done():
				log.Println("🛑 Kafka WS Consumer остановлен")
				return
			default:
				msg, err := kc.reader.ReadMessage(kc.ctx)
				if err != nil {
					if err == context.Canceled {
						return
					}
					log.Printf("⚠️ Kafka WS Consumer ошибка чтения: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}

				var event services.DocumentEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					// Чужой формат сообщения, пропускаем молча
					continue
				}

				BroadcastDashboardUpdate(event.Type, map[string]interface{}{
					"number": event.Number,
					"total":  event.Total,
				})

				processed := atomic.AddInt64(&kc.processed, 1)
				if processed%100 == 0 {
					log.Printf("📊 Kafka WS Consumer: обработано %d событий", processed)
				}
			}
		}
	}()
}

// Stop останавливает Kafka Consumer
func (kc *KafkaWSConsumer) Stop() {
	kc.cancel()
	if kc.reader != nil {
		kc.reader.Close()
	}
	log.Println("🛑 Kafka WS Consumer остановлен")
}

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sharedMessaging "quest-server/shared/messaging"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ClientUpdatePublisher публикует события для клиентского приложения.
type ClientUpdatePublisher interface {
	PublishQuestCompleted(ctx context.Context, event sharedMessaging.QuestCompletedEvent) error
}

// rabbitMQPublisher реализует ClientUpdatePublisher поверх RabbitMQ.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
}

// NewRabbitMQClientUpdatePublisher создает паблишер клиентских обновлений.
// Очередь объявляется здесь же, чтобы система не зависела от порядка запуска
// сервисов; параметры должны совпадать с консьюмером.
func NewRabbitMQClientUpdatePublisher(conn *amqp.Connection, queueName string) (ClientUpdatePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("client update publisher: не удалось открыть канал: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("client update publisher: не удалось объявить очередь %s: %w", queueName, err)
	}
	return &rabbitMQPublisher{channel: ch, queueName: queueName}, nil
}

// PublishQuestCompleted отправляет событие завершения квеста.
func (p *rabbitMQPublisher) PublishQuestCompleted(ctx context.Context, event sharedMessaging.QuestCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать событие: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(publishCtx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("не удалось опубликовать событие в %s: %w", p.queueName, err)
	}
	return nil
}

// Package sender 提供通知端口的具体投递实现
package sender

import (
	"context"

	"github.com/StefanoVidesott/WannaWork-App/internal/notification/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/mq"
)

// KafkaSender 把通知事件写入 Kafka 主题，由下游邮件服务消费
type KafkaSender struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaSender 创建 Kafka 投递端口
func NewKafkaSender(producer *mq.KafkaProducer, topic string) *KafkaSender {
	return &KafkaSender{
		producer: producer,
		topic:    topic,
	}
}

// Dispatch 投递单条通知事件，以收件人为分区键
func (s *KafkaSender) Dispatch(ctx context.Context, event domain.Event) error {
	return s.producer.SendMessage(ctx, s.topic, event.Recipient, event)
}

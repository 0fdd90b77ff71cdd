// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"tigersai/internal/config"
	"tigersai/pkg/events"
	"tigersai/pkg/log"
)

// maxAttempts 达到该失败次数后提交 offset，放弃该消息。
const maxAttempts = 3

// EventProcessor 处理一条对话事件，使消费者与具体的索引实现解耦。
type EventProcessor interface {
	Process(ctx context.Context, event events.ConversationLogged) error
}

// MessageWriter 是 kafka.Writer 的最小接口。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader 是 kafka.Reader 的最小接口。
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AttemptCounter 记录每条消息的失败次数。
type AttemptCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Publisher 把对话事件写入 Kafka。
type Publisher struct {
	writer MessageWriter
}

// NewPublisher 用给定的 writer 创建 Publisher。
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// NewProducer 按配置创建 Kafka 生产者。Brokers 为空时返回 nil。
func NewProducer(cfg config.KafkaConfig) *Publisher {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		log.Info("Kafka 未配置，跳过对话事件发布")
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	log.Info("Kafka 生产者初始化成功")
	return NewPublisher(w)
}

// PublishConversationLogged 发送一条对话事件，按 owner 分区。
func (p *Publisher) PublishConversationLogged(ctx context.Context, event events.ConversationLogged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: payload,
	})
}

// Close 关闭底层 writer。
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NewReader 按配置创建消费者使用的 kafka.Reader。
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  splitBrokers(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}

// StartConsumer 循环读取对话事件并交给 processor 处理，直到 ctx 结束或读取失败。
func StartConsumer(ctx context.Context, r MessageReader, processor EventProcessor, attempts AttemptCounter) {
	log.Info("Kafka 消费者已启动")
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("从 Kafka 读取消息失败", err)
			}
			return
		}
		handleMessage(ctx, r, m, processor, attempts)
	}
}

// handleMessage 在原地重试处理失败的事件。
// kafka-go 的 FetchMessage 不会重新投递未提交的消息，后续消息提交后 offset 会越过它。
func handleMessage(ctx context.Context, r MessageReader, m kafka.Message, processor EventProcessor, attempts AttemptCounter) {
	var event events.ConversationLogged
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Errorf("无法解析 Kafka 消息: %v, offset: %d", err, m.Offset)
		// 消息格式错误，直接提交，避免阻塞队列
		commit(ctx, r, m)
		return
	}

	var local int64
	for {
		err := processor.Process(ctx, event)
		if err == nil {
			_ = attempts.Reset(ctx, event.AttemptKey())
			commit(ctx, r, m)
			return
		}
		log.Errorw("处理对话事件失败", "entryId", event.EntryID, "offset", m.Offset, "error", err)

		// Redis 计数跨进程重启累计；不可用时退回本地计数
		local++
		n, incErr := attempts.Incr(ctx, event.AttemptKey())
		if incErr != nil {
			log.Warnw("失败计数不可用，使用本地计数", "entryId", event.EntryID, "error", incErr)
			n = local
		}
		if n >= maxAttempts {
			log.Errorf("对话事件多次失败(>=%d)，提交 offset 终止重试: entry=%d", maxAttempts, event.EntryID)
			commit(ctx, r, m)
			return
		}

		select {
		case <-ctx.Done():
			// 停机时不提交，重启后从该 offset 继续
			return
		case <-time.After(retryBackoff(n)):
		}
	}
}

// retryDelay 是第一次重试前的等待时间，之后每次翻倍。
var retryDelay = 500 * time.Millisecond

func retryBackoff(attempt int64) time.Duration {
	return retryDelay << (attempt - 1)
}

func commit(ctx context.Context, r MessageReader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}

// RedisAttemptCounter 使用 Redis 计数失败次数，计数 24 小时后过期。
type RedisAttemptCounter struct {
	rdb *redis.Client
}

func NewRedisAttemptCounter(rdb *redis.Client) *RedisAttemptCounter {
	return &RedisAttemptCounter{rdb: rdb}
}

func (c *RedisAttemptCounter) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return n, nil
}

func (c *RedisAttemptCounter) Reset(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

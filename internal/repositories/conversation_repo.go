package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/xiyue520/xiyue-chat/internal/models"
)

// ConversationRepository 双人会话仓储
// 每个会话是一个 Redis list（chat:<pairKey>），只保留最近 limit 条。
// 追加使用 RPUSH + LTRIM：RPUSH 本身是原子命令，并发发送互不覆盖，
// 这替代了原版"读出 JSON 数组改完整写回"的非原子方案（会丢消息）。
type ConversationRepository struct {
	rdb   *redis.Client
	limit int64 // 历史上限，超出后从头部淘汰（FIFO）
}

// NewConversationRepository 创建会话仓储，limit <= 0 时取 100
func NewConversationRepository(rdb *redis.Client, limit int64) *ConversationRepository {
	if limit <= 0 {
		limit = 100
	}
	return &ConversationRepository{rdb: rdb, limit: limit}
}

// PairKey 生成会话标识：两个用户名按字典序排序后以 _ 连接
// 对称且确定：PairKey(a,b) == PairKey(b,a)
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + "_" + pair[1]
}

func chatKey(a, b string) string {
	return "chat:" + PairKey(a, b)
}

// Append 追加一条消息并裁剪历史
func (r *ConversationRepository) Append(ctx context.Context, msg *models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatKey(msg.From, msg.To)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -r.limit, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return nil
}

// History 返回两人之间的全部消息，旧的在前
// 会话不存在时返回空切片
func (r *ConversationRepository) History(ctx context.Context, a, b string) ([]models.Message, error) {
	payloads, err := r.rdb.LRange(ctx, chatKey(a, b), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(payloads))
	for _, p := range payloads {
		var msg models.Message
		if err := json.Unmarshal([]byte(p), &msg); err != nil {
			return nil, fmt.Errorf("消息记录损坏: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/xiyue520/xiyue-chat/internal/models"
	"github.com/xiyue520/xiyue-chat/pkg/bloom"
)

// 存储布局：
//   user:<username> -> 用户记录 JSON
//   users           -> 全量用户名索引（set）
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const usersIndexKey = "users"

// UserRepository 用户仓储，负责 user:<username> 记录与 users 索引
// 记录只增改、从不删除
type UserRepository struct {
	rdb  *redis.Client
	seen *bloom.Filter // 用户名布隆过滤器，注册查重的快速否定路径
}

// NewUserRepository 创建用户仓储实例，并用现有索引预热布隆过滤器
func NewUserRepository(ctx context.Context, rdb *redis.Client) (*UserRepository, error) {
	r := &UserRepository{
		rdb:  rdb,
		seen: bloom.New(1<<20, 4),
	}

	usernames, err := rdb.SMembers(ctx, usersIndexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("预热用户名索引失败: %w", err)
	}
	for _, name := range usernames {
		r.seen.Add(name)
	}
	return r, nil
}

func userKey(username string) string {
	return "user:" + username
}

// Create 创建用户并写入索引
// 以 SETNX 保证同名并发注册只有一个成功
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}

	ok, err := r.rdb.SetNX(ctx, userKey(user.Username), payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserExists
	}

	if err := r.rdb.SAdd(ctx, usersIndexKey, user.Username).Err(); err != nil {
		return err
	}
	r.seen.Add(user.Username)
	return nil
}

// Get 根据用户名获取用户
func (r *UserRepository) Get(ctx context.Context, username string) (*models.User, error) {
	payload, err := r.rdb.Get(ctx, userKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("用户记录损坏 %s: %w", username, err)
	}
	return &user, nil
}

// Exists 判断用户名是否已占用
// 布隆过滤器给出否定即可直接返回，命中时再向 Redis 确认（可能是假阳性）
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	if !r.seen.MayContain(username) {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, userKey(username)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update 覆盖写用户记录（username 不可变，键保持不变）
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, userKey(user.Username), payload, 0).Err()
}

// List 按索引加载全部用户记录
// 索引中存在但记录缺失的用户名直接跳过（不应出现，防御处理）
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	usernames, err := r.rdb.SMembers(ctx, usersIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(usernames) == 0 {
		return []models.User{}, nil
	}

	keys := make([]string, len(usernames))
	for i, name := range usernames {
		keys[i] = userKey(name)
	}

	payloads, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(payloads))
	for _, p := range payloads {
		s, ok := p.(string)
		if !ok {
			continue
		}
		var user models.User
		if err := json.Unmarshal([]byte(s), &user); err != nil {
			return nil, fmt.Errorf("用户记录损坏: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

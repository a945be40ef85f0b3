package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/internal/models"
	"github.com/xiyue520/xiyue-chat/internal/repositories"
	"github.com/xiyue520/xiyue-chat/pkg/errorx"
)

type MessageService struct {
	ConvRepo *repositories.ConversationRepository
	UserRepo *repositories.UserRepository
	logger   *zap.Logger
}

func NewMessageService(convRepo *repositories.ConversationRepository, userRepo *repositories.UserRepository, logger *zap.Logger) *MessageService {
	return &MessageService{
		ConvRepo: convRepo,
		UserRepo: userRepo,
		logger:   logger,
	}
}

// Send 发送一条私聊消息
// 内容先去除首尾空白，为空则拒绝；收件人必须已注册；校验全部通过后才写库
func (s *MessageService) Send(ctx context.Context, from, to, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorx.Validation("content", "消息内容不能为空")
	}

	if _, err := s.UserRepo.Get(ctx, to); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, errorx.NotFound("用户不存在")
		}
		return nil, errorx.WrapStore(err, "发送消息失败")
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}

	if err := s.ConvRepo.Append(ctx, msg); err != nil {
		return nil, errorx.WrapStore(err, "发送消息失败")
	}

	s.logger.Debug("消息已保存",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("id", msg.ID),
	)
	return msg, nil
}

// History 读取与 peer 的全部会话历史，旧的在前
// peer 未注册返回 NotFound；会话尚不存在返回空序列
func (s *MessageService) History(ctx context.Context, me, peer string) ([]models.Message, error) {
	if _, err := s.UserRepo.Get(ctx, peer); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, errorx.NotFound("用户不存在")
		}
		return nil, errorx.WrapStore(err, "读取消息失败")
	}

	messages, err := s.ConvRepo.History(ctx, me, peer)
	if err != nil {
		return nil, errorx.WrapStore(err, "读取消息失败")
	}
	return messages, nil
}

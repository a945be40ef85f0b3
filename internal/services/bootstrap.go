package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/config"
	"github.com/xiyue520/xiyue-chat/internal/models"
	"github.com/xiyue520/xiyue-chat/internal/repositories"
	"github.com/xiyue520/xiyue-chat/internal/utils"
)

// BootstrapService 冷启动引导：种子 admin 账号与站点启动时间标记
// 所有操作幂等，可在每次启动时重复调用
type BootstrapService struct {
	UserRepo   *repositories.UserRepository
	SystemRepo *repositories.SystemRepository
	cfg        *config.ChatConfig
	logger     *zap.Logger

	startedAt int64 // 站点启动时间（epoch ms），EnsureUptimeMarker 之后有效
}

func NewBootstrapService(userRepo *repositories.UserRepository, systemRepo *repositories.SystemRepository, cfg *config.ChatConfig, logger *zap.Logger) *BootstrapService {
	return &BootstrapService{
		UserRepo:   userRepo,
		SystemRepo: systemRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run 执行全部引导步骤
func (s *BootstrapService) Run(ctx context.Context) error {
	if err := s.EnsureSeedAccount(ctx); err != nil {
		return err
	}
	startedAt, err := s.SystemRepo.EnsureUptimeMarker(ctx)
	if err != nil {
		return err
	}
	s.startedAt = startedAt
	return nil
}

// EnsureSeedAccount 确保 admin 账号存在
// 先查后建，底层 SETNX 兜底并发启动；密码按统一策略哈希存储
func (s *BootstrapService) EnsureSeedAccount(ctx context.Context) error {
	exists, err := s.UserRepo.Exists(ctx, AdminUsername)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	passwordHash, err := utils.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     AdminUsername,
		PasswordHash: passwordHash,
		Nickname:     "Admin",
		AvatarURL:    models.DefaultAvatar,
		Bio:          "系统创始人",
		Title:        models.TitleMember, // 首次登录时升级为创始人
		IsAdmin:      true,
		FirstLogin:   true,
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := s.UserRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrUserExists) {
			// 另一个实例抢先创建了，视为成功
			return nil
		}
		return err
	}

	s.logger.Info("种子 admin 账号已创建")
	return nil
}

// StartedAt 站点启动时间（epoch ms）
func (s *BootstrapService) StartedAt() int64 {
	return s.startedAt
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/config"
	"github.com/xiyue520/xiyue-chat/internal/models"
	"github.com/xiyue520/xiyue-chat/internal/repositories"
	"github.com/xiyue520/xiyue-chat/internal/utils"
	"github.com/xiyue520/xiyue-chat/pkg/errorx"
)

// AdminUsername 种子管理员账号，注册时不可占用，公开列表中隐藏
const AdminUsername = "admin"

type UserService struct {
	UserRepo *repositories.UserRepository
	cfg      *config.ChatConfig
	logger   *zap.Logger
}

func NewUserService(userRepo *repositories.UserRepository, cfg *config.ChatConfig, logger *zap.Logger) *UserService {
	return &UserService{
		UserRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	Gender     string `json:"gender"`
	Bio        string `json:"bio"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// Register 注册新用户
// 校验顺序固定：邀请码 -> 用户名 -> 昵称 -> 密码 -> 头像 -> 性别；
// 第一条不通过的规则即中止，任何写入都发生在全部校验之后
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req.InviteCode != s.cfg.InviteCode {
		return nil, errorx.Validation("inviteCode", "邀请码错误")
	}
	if !utils.ValidateUsername(req.Username) {
		return nil, errorx.Validation("username", "用户名需为3-20位字母、数字或下划线")
	}

	exists, err := s.UserRepo.Exists(ctx, req.Username)
	if err != nil {
		return nil, errorx.WrapStore(err, "注册失败")
	}
	if exists {
		return nil, errorx.Validation("username", "用户名已存在")
	}

	if req.Nickname != "" && !utils.ValidateNickname(req.Nickname) {
		return nil, errorx.Validation("nickname", "昵称长度需为2-20个字符")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, errorx.Validation("password", "密码至少6位")
	}
	if req.Avatar != "" && !utils.ValidateAvatarURL(req.Avatar) {
		return nil, errorx.Validation("avatar", "头像链接需以 http(s):// 开头")
	}
	if !utils.ValidateGender(req.Gender) {
		return nil, errorx.Validation("gender", "性别只能为 ♂ 或 ♀")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errorx.WrapStore(err, "注册失败")
	}

	avatar := req.Avatar
	if avatar == "" {
		avatar = models.DefaultAvatar
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Nickname:     req.Nickname,
		AvatarURL:    avatar,
		Gender:       req.Gender,
		Bio:          req.Bio,
		Title:        models.TitleMember,
		IsAdmin:      false,
		FirstLogin:   false,
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserExists) {
			// 并发注册时 SETNX 兜底
			return nil, errorx.Validation("username", "用户名已存在")
		}
		return nil, errorx.WrapStore(err, "注册失败")
	}

	s.logger.Info("用户注册成功", zap.String("username", user.Username))
	return user.Sanitized(), nil
}

// Login 校验凭证并返回用户记录（不含凭证字段）
// 用户不存在与密码错误返回同一条消息，避免探测已注册用户名
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.verify(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	dirty := false

	// 登录时可顺带更新头像
	if req.Avatar != "" {
		user.AvatarURL = req.Avatar
		dirty = true
	}

	// admin 首次登录后头衔升级为创始人
	if user.IsAdmin && user.FirstLogin {
		user.Title = models.TitleFounder
		user.FirstLogin = false
		dirty = true
	}

	if dirty {
		if err := s.UserRepo.Update(ctx, user); err != nil {
			return nil, errorx.WrapStore(err, "登录失败")
		}
	}

	s.logger.Info("用户登录成功", zap.String("username", user.Username))
	return user.Sanitized(), nil
}

// VerifyCredentials 校验用户名密码（Basic 认证路径使用），成功返回脱敏记录
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *UserService) verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.UserRepo.Get(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, errorx.Auth("用户名或密码错误")
	}
	if err != nil {
		return nil, errorx.WrapStore(err, "登录失败")
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, errorx.Auth("用户名或密码错误")
	}
	return user, nil
}

// ListOthers 联系人列表：排除本人与种子 admin 账号
// query 非空时要求用户名或昵称包含该子串（区分大小写）
func (s *UserService) ListOthers(ctx context.Context, exclude, query string) ([]*models.User, error) {
	users, err := s.UserRepo.List(ctx)
	if err != nil {
		return nil, errorx.WrapStore(err, "获取用户列表失败")
	}

	result := make([]*models.User, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Username == exclude || u.Username == AdminUsername {
			continue
		}
		if query != "" && !strings.Contains(u.Username, query) && !strings.Contains(u.Nickname, query) {
			continue
		}
		result = append(result, u.Sanitized())
	}
	return result, nil
}

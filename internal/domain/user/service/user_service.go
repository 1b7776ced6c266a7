package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"thywilluche/internal/domain/user/model"
	"thywilluche/internal/domain/user/repository"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/notify"
	"thywilluche/internal/pkg/otp"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/utils"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const otpPurposeReset = "password_reset"

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// dummyHash 用户不存在时也做一次比较，避免通过耗时判断账号是否存在
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("thywilluche-dummy-password"), bcrypt.DefaultCost)

type SignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// ProfileInput nil 字段保持原值
type ProfileInput struct {
	Name  *string
	Image *string
	Bio   *string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt *time.Time  `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type ListQuery struct {
	Search string
	Role   string
	utils.Pagination
}

// UserService 用户服务接口
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetMe(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error)
	ListUsers(ctx context.Context, q ListQuery) ([]model.User, int64, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ChangeRole(ctx context.Context, adminID, id, role string) (*model.User, error)
	SetRoleByEmail(ctx context.Context, email, role string) (*model.User, error)
}

// userService 实现
type userService struct {
	repo     repository.UserRepository
	otp      otp.OTPService
	notifier notify.Notifier
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, otp otp.OTPService, notifier notify.Notifier) UserService {
	return &userService{repo: repo, otp: otp, notifier: notifier}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup 注册，角色固定为 USER
func (s *userService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !database.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册由唯一索引兜底
		if database.IsDuplicateKey(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.notifier.Notify(notify.Notification{
		To:       user.Email,
		Subject:  "Welcome to " + config.GlobalConfig.App.Name,
		Template: notify.TemplateWelcome,
		Data:     map[string]any{"Name": user.Name},
	})
	return user, nil
}

// Login 支持邮箱或用户名登录
func (s *userService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	var user *model.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.repo.GetByEmail(ctx, identifier)
	} else {
		user, err = s.repo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if database.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expireAt, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expireAt, User: user}, nil
}

// RequestPasswordReset 未注册邮箱同样返回成功
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil
		}
		return err
	}

	code, err := s.otp.Issue(ctx, otpPurposeReset, user.Email)
	if err != nil {
		if errors.Is(err, otp.ErrTooFrequent) {
			return ErrResetTooFrequent
		}
		return err
	}

	s.notifier.Notify(notify.Notification{
		To:       user.Email,
		Subject:  "Your password reset code",
		Template: notify.TemplatePasswordReset,
		Data:     map[string]any{"Code": code, "Minutes": int(otp.CodeTTL.Minutes())},
	})
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if err := s.otp.Verify(ctx, otpPurposeReset, email, code); err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			return ErrInvalidResetCode
		}
		return err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if database.IsNotFound(err) {
			return ErrInvalidResetCode
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	logger.Log.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *userService) GetMe(ctx context.Context, id string) (*model.User, error) {
	return s.GetUser(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			user.Name = name
		}
	}
	utils.Patch(&user.Image, in.Image)
	utils.Patch(&user.Bio, in.Bio)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers 获取用户列表（分页）
func (s *userService) ListUsers(ctx context.Context, q ListQuery) ([]model.User, int64, error) {
	if q.Role != "" && !model.IsValidRole(q.Role) {
		return nil, 0, ErrInvalidRole
	}
	offset, limit := q.GetPageOffset()
	return s.repo.GetList(ctx, repository.ListFilter{
		Search: strings.TrimSpace(q.Search),
		Role:   q.Role,
		Offset: offset,
		Limit:  limit,
	})
}

// GetUser 获取单个用户
func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangeRole 管理员修改角色，不能修改自己
func (s *userService) ChangeRole(ctx context.Context, adminID, id, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if adminID == id {
		return nil, ErrSelfRoleChange
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role
	logger.Log.Info("role changed", zap.String("admin_id", adminID), zap.String("user_id", id), zap.String("role", role))
	return user, nil
}

// SetRoleByEmail 命令行工具使用，不经过管理员校验
func (s *userService) SetRoleByEmail(ctx context.Context, email, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mini_shop/internal/domain/user/model"
	"mini_shop/internal/domain/user/repository"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/apperr"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer 签发登录凭证
type TokenIssuer interface {
	GenerateToken(userID uint, role string) (string, *time.Time, error)
}

// RegisterParams 注册参数
type RegisterParams struct {
	Username string
	Password string
	Email    string
	Address  string
	Phone    string
}

// ProfileParams 可修改的个人资料
type ProfileParams struct {
	Email   string
	Address string
	Phone   string
}

// AuthResult 注册、登录成功后返回给客户端的内容
type AuthResult struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
}

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, params ProfileParams) (*model.User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	// EnsureAdmin 确保配置中的管理员账号存在且拥有 admin 角色
	EnsureAdmin(ctx context.Context, username, password, email string) error
}

// userService 实现
type userService struct {
	repo   repository.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, tokens TokenIssuer, log *zap.Logger) UserService {
	return &userService{repo: repo, tokens: tokens, log: log}
}

// Register 注册
func (s *userService) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if !validate.Username(params.Username) {
		return nil, apperr.New(apperr.ErrInvalidParam, validate.UsernameMessage)
	}
	if !validate.StrongPassword(params.Password) {
		return nil, apperr.New(apperr.ErrInvalidParam, validate.PasswordMessage)
	}

	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return nil, apperr.New(apperr.ErrConflict, "User already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: params.Username,
		Password: hash,
		Email:    params.Email,
		Address:  params.Address,
		Phone:    params.Phone,
		Role:     model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// Login 用户名密码登录
func (s *userService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.ErrAuthFailed, "Invalid credentials")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.New(apperr.ErrAuthFailed, "Invalid credentials")
	}
	return s.issue(user)
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile 整体覆盖邮箱、地址、电话
func (s *userService) UpdateProfile(ctx context.Context, userID uint, params ProfileParams) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Email = params.Email
	user.Address = params.Address
	user.Phone = params.Phone

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword 修改密码，需要校验旧密码
func (s *userService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return apperr.New(apperr.ErrAuthFailed, "Old password is incorrect")
	}
	if !validate.StrongPassword(newPassword) {
		return apperr.New(apperr.ErrInvalidParam, validate.NewPasswordMessage)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return s.repo.Update(ctx, user)
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		s.log.Warn("admin account not configured, skipping bootstrap")
		return nil
	}

	user, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if user.IsAdmin() {
			return nil
		}
		user.Role = model.RoleAdmin
		if err := s.repo.Update(ctx, user); err != nil {
			return err
		}
		s.log.Info("existing user promoted to admin", zap.String("username", username))
		return nil
	case !errors.Is(err, apperr.ErrNotFound):
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &model.User{Username: username, Password: hash, Email: email, Role: model.RoleAdmin}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("admin account created", zap.Uint("user_id", admin.ID), zap.String("username", username))
	return nil
}

func (s *userService) issue(user *model.User) (*AuthResult, error) {
	token, expireAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expireAt, Username: user.Username, Role: user.Role}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.New(apperr.ErrInvalidParam, validate.PasswordMessage)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/mail"
	"camp-ratings/pkg/utils"
)

var (
	// ErrInvalidLogin 对外口径统一，不区分“邮箱不存在”和“密码不对”
	ErrInvalidLogin = errors.New("Invalid login attempt.")
	ErrLockedOut    = errors.New("account locked out")
	// ErrConfirmFailed 确认页可见的非致命错误
	ErrConfirmFailed = errors.New("There was a problem confirming your email. Please try again")
	ErrBadAccount    = errors.New("There is a problem with your account.")
)

type Service struct {
	users      domain.UserRepository
	tokens     TokenStore
	lockout    Lockout
	deny       Denylist
	sender     mail.Sender
	jwt        *auth.JWTer
	log        *zap.Logger
	baseURL    string
	confirmTTL time.Duration
}

func NewService(users domain.UserRepository, tokens TokenStore, lockout Lockout, deny Denylist,
	sender mail.Sender, jwt *auth.JWTer, log *zap.Logger, baseURL string, confirmTTL time.Duration) *Service {
	return &Service{
		users: users, tokens: tokens, lockout: lockout, deny: deny,
		sender: sender, jwt: jwt, log: log, baseURL: baseURL, confirmTTL: confirmTTL,
	}
}

type RegisterInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register 查重只为表单提示，真正兜底的是唯一索引
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	// 先归一化再校验，带空格/大写的邮箱也能过
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateRegister(in); err != nil {
		return nil, err
	}
	email := in.Email

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ValidationError{Fields: map[string]string{"email": "A user with this email already exists."}}
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: utils.HashPassword(in.Password),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// 预检与插入之间被抢注：同样的表单错误
			return nil, &ValidationError{Fields: map[string]string{"email": "A user with this email already exists."}}
		}
		return nil, err
	}

	if err := s.sendConfirmation(ctx, u); err != nil {
		// 账号已建，邮件失败不回滚
		s.log.Warn("confirmation mail failed", zap.String("user", u.ID), zap.Error(err))
	}
	s.log.Info("user registered", zap.String("user", u.ID))
	return u, nil
}

func (s *Service) sendConfirmation(ctx context.Context, u *domain.User) error {
	token := uuid.NewString()
	if err := s.tokens.Save(ctx, u.ID, token, s.confirmTTL); err != nil {
		return err
	}
	url := mail.ConfirmURL(s.baseURL, u.ID, token)
	return s.sender.Send(ctx, u.Email, mail.ConfirmSubject, mail.ConfirmBody(url))
}

func (s *Service) ConfirmEmail(ctx context.Context, userID, token string) error {
	if userID == "" || token == "" {
		s.log.Warn("confirm email called without user id or token")
		return ErrBadAccount
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		s.log.Warn("confirm email for unknown user", zap.String("user", userID))
		return ErrBadAccount
	}
	ok, err := s.tokens.Consume(ctx, userID, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConfirmFailed
	}
	u.EmailConfirmed = true
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.log.Info("email confirmed", zap.String("user", userID))
	return nil
}

type LoginResult struct {
	Token   string       `json:"token"`
	Landing string       `json:"landing"` // "admin" / "user"
	User    *domain.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if locked, err := s.lockout.Locked(ctx, email); err != nil {
		return nil, err
	} else if locked {
		return nil, ErrLockedOut
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// 只在日志里区分，响应口径一致，防止枚举账号
		s.log.Info("login failed: unknown email", zap.String("email", email))
		return nil, s.registerFailure(ctx, email)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		s.log.Info("login failed: wrong password", zap.String("user", u.ID))
		return nil, s.registerFailure(ctx, email)
	}
	if !u.EmailConfirmed {
		s.log.Info("login failed: email not confirmed", zap.String("user", u.ID))
		return nil, ErrInvalidLogin
	}

	_ = s.lockout.Reset(ctx, email)

	token, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil || token == "" {
		return nil, errors.New("issue token failed")
	}
	landing := "user"
	if domain.IsAdmin(u.Role) {
		landing = "admin"
	}
	return &LoginResult{Token: token, Landing: landing, User: u}, nil
}

func (s *Service) registerFailure(ctx context.Context, email string) error {
	locked, err := s.lockout.Fail(ctx, email)
	if err != nil {
		return err
	}
	if locked {
		return ErrLockedOut
	}
	return ErrInvalidLogin
}

func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.deny.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.log.Info("user logged out", zap.String("user", claims.UID))
	return nil
}

type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UpdateProfile 邮箱同时是登录名，两者始终同步
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}

	email := in.Email
	other, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != u.ID {
		return nil, &ValidationError{Fields: map[string]string{"email": "Email is already in use by another account."}}
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Email = email
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, &ValidationError{Fields: map[string]string{"email": "Email is already in use by another account."}}
		}
		return nil, err
	}
	return u, nil
}

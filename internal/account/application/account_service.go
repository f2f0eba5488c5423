// Package application 账户用例层：注册与登录。
package application

import (
	"context"
	"strings"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	"github.com/StefanoVidesott/WannaWork-App/pkg/middleware"
)

// RegisterCommand 注册命令
type RegisterCommand struct {
	Role     string
	Name     string
	Surname  string
	Email    string
	Password string
	// 雇主字段，学生注册时忽略
	CompanyName  string
	Headquarters string
}

// LoginCommand 登录命令
type LoginCommand struct {
	Email    string
	Password string
}

// AccountDTO 对外返回的账户视图
type AccountDTO struct {
	ID           uint   `json:"id"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Surname      string `json:"surname,omitempty"`
	Email        string `json:"email"`
	CompanyName  string `json:"companyName,omitempty"`
	Headquarters string `json:"headquarters,omitempty"`
}

// LoginResult 登录结果，含 JWT
type LoginResult struct {
	Token   string      `json:"token"`
	Account *AccountDTO `json:"account"`
}

// AccountService 账户用例服务
type AccountService struct {
	accounts  domain.AccountRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAccountService 创建账户服务
func NewAccountService(accounts domain.AccountRepository, jwtSecret string, tokenTTL time.Duration) *AccountService {
	return &AccountService{accounts: accounts, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register 注册新账户，邮箱全局唯一
func (s *AccountService) Register(ctx context.Context, cmd RegisterCommand) (*AccountDTO, error) {
	role := domain.Role(cmd.Role)
	if role != domain.RoleStudent && role != domain.RoleEmployer {
		return nil, errs.Validation("role must be student or employer")
	}
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if cmd.Email == "" || !strings.Contains(cmd.Email, "@") {
		return nil, errs.Validation("a valid email is required")
	}
	if cmd.Name == "" {
		return nil, errs.Validation("name is required")
	}
	if len(cmd.Password) < 8 {
		return nil, errs.Validation("password must be at least 8 characters")
	}

	hash, err := domain.HashPassword(cmd.Password)
	if err != nil {
		return nil, errs.Internal(err)
	}
	account := &domain.Account{
		Role:         role,
		Name:         cmd.Name,
		Surname:      cmd.Surname,
		Email:        cmd.Email,
		PasswordHash: hash,
	}
	if role == domain.RoleEmployer {
		account.CompanyName = cmd.CompanyName
		account.Headquarters = cmd.Headquarters
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Account registered", "account_id", account.ID, "role", cmd.Role)
	return toAccountDTO(account), nil
}

// Login 校验凭证并签发 JWT。
// 邮箱不存在与密码错误返回同一个错误，不暴露账户是否存在。
func (s *AccountService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.CheckPassword(cmd.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := middleware.IssueToken(s.jwtSecret, s.tokenTTL, account.ID, string(account.Role), account.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	logger.Info(ctx, "Account logged in", "account_id", account.ID)
	return &LoginResult{Token: token, Account: toAccountDTO(account)}, nil
}

func toAccountDTO(a *domain.Account) *AccountDTO {
	return &AccountDTO{
		ID:           a.ID,
		Role:         string(a.Role),
		Name:         a.Name,
		Surname:      a.Surname,
		Email:        a.Email,
		CompanyName:  a.CompanyName,
		Headquarters: a.Headquarters,
	}
}

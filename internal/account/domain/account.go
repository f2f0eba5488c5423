// Package domain 包含操作者账户（学生 / 雇主）的领域模型
package domain

import (
	"context"

	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role 账户角色
type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
)

// 账户相关错误
var (
	// ErrAccountNotFound 账户不存在
	ErrAccountNotFound = errs.NotFound("account")
	// ErrEmailTaken 邮箱已被注册
	ErrEmailTaken = errs.Conflict("email is already registered")
	// ErrInvalidCredentials 登录凭证无效
	ErrInvalidCredentials = errs.Unauthorized("invalid email or password")
)

// Account 操作者账户实体
type Account struct {
	gorm.Model
	Role         Role
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	// 雇主字段
	CompanyName  string
	Headquarters string
}

// FullName 显示名
func (a *Account) FullName() string {
	if a.Surname == "" {
		return a.Name
	}
	return a.Name + " " + a.Surname
}

// CheckPassword 校验明文密码
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// HashPassword 生成密码散列
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AccountRepository 账户仓储接口
type AccountRepository interface {
	// 绑定事务句柄
	WithTx(tx *gorm.DB) AccountRepository
	// 创建账户，邮箱唯一
	Create(ctx context.Context, account *Account) error
	// 按 ID 查找，不存在时返回 (nil, nil)
	FindByID(ctx context.Context, id uint) (*Account, error)
	// 批量按 ID 查找
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Account, error)
	// 按邮箱查找，不存在时返回 (nil, nil)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

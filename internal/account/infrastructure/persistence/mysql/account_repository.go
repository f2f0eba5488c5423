// Package mysql 提供账户仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// AccountModel 账户数据库模型，对应 accounts 表
type AccountModel struct {
	gorm.Model
	Role         string `gorm:"column:role;type:varchar(20);index;not null"`
	Name         string `gorm:"column:name;type:varchar(100);not null"`
	Surname      string `gorm:"column:surname;type:varchar(100)"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(100);not null"`
	CompanyName  string `gorm:"column:company_name;type:varchar(255)"`
	Headquarters string `gorm:"column:headquarters;type:varchar(255)"`
}

// TableName 指定表名
func (AccountModel) TableName() string {
	return "accounts"
}

// AccountRepositoryImpl 账户仓储实现
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓储
func NewAccountRepository(database *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: database}
}

// WithTx 返回绑定到事务的仓储副本
func (r *AccountRepositoryImpl) WithTx(tx *gorm.DB) domain.AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepositoryImpl{db: tx}
}

// Create 创建账户
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	model := toModel(account)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	account.Model = model.Model
	return nil
}

// FindByID 按 ID 查找账户
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account %d: %w", id, err)
	}
	return toDomain(&model), nil
}

// FindByIDs 批量按 ID 查找账户
func (r *AccountRepositoryImpl) FindByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Account, error) {
	result := make(map[uint]*domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []AccountModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	for i := range models {
		account := toDomain(&models[i])
		result[account.ID] = account
	}
	return result, nil
}

// FindByEmail 按邮箱查找账户
func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var model AccountModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return toDomain(&model), nil
}

func toModel(account *domain.Account) *AccountModel {
	return &AccountModel{
		Model:        account.Model,
		Role:         string(account.Role),
		Name:         account.Name,
		Surname:      account.Surname,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CompanyName:  account.CompanyName,
		Headquarters: account.Headquarters,
	}
}

func toDomain(model *AccountModel) *domain.Account {
	return &domain.Account{
		Model:        model.Model,
		Role:         domain.Role(model.Role),
		Name:         model.Name,
		Surname:      model.Surname,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		CompanyName:  model.CompanyName,
		Headquarters: model.Headquarters,
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// Package mysql 提供求职档案仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/profile/domain"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ProfileModel 档案数据库模型，对应 availability_profiles 表
type ProfileModel struct {
	gorm.Model
	// 学生 ID，唯一索引保证 1:1
	StudentID     uint       `gorm:"column:student_id;uniqueIndex;not null"`
	Phone         string     `gorm:"column:phone;type:varchar(30)"`
	Skills        string     `gorm:"column:skills;type:varchar(500)"`
	Experience    string     `gorm:"column:experience;type:text"`
	WorkHours     int        `gorm:"column:work_hours"`
	AvailableFrom *time.Time `gorm:"column:available_from"`
	Status        string     `gorm:"column:status;type:varchar(20);index;not null"`
}

// TableName 指定表名
func (ProfileModel) TableName() string {
	return "availability_profiles"
}

// ProfileRepositoryImpl 档案仓储实现
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

// NewProfileRepository 创建档案仓储
func NewProfileRepository(database *gorm.DB) domain.ProfileRepository {
	return &ProfileRepositoryImpl{db: database}
}

// WithTx 返回绑定到事务的仓储副本
func (r *ProfileRepositoryImpl) WithTx(tx *gorm.DB) domain.ProfileRepository {
	if tx == nil {
		return r
	}
	return &ProfileRepositoryImpl{db: tx}
}

// Create 创建档案
func (r *ProfileRepositoryImpl) Create(ctx context.Context, profile *domain.Profile) error {
	model := toModel(profile)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	profile.Model = model.Model
	return nil
}

// FindByID 按 ID 查找档案
func (r *ProfileRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile %d: %w", id, err)
	}
	return toDomain(&model), nil
}

// FindByStudent 按学生查找档案
func (r *ProfileRepositoryImpl) FindByStudent(ctx context.Context, studentID uint) (*domain.Profile, error) {
	var model ProfileModel
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile by student %d: %w", studentID, err)
	}
	return toDomain(&model), nil
}

// Update 更新档案
func (r *ProfileRepositoryImpl) Update(ctx context.Context, profile *domain.Profile) error {
	model := toModel(profile)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update profile %d: %w", profile.ID, err)
	}
	return nil
}

// Delete 硬删除档案
func (r *ProfileRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Unscoped().Delete(&ProfileModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete profile %d: %w", id, err)
	}
	return nil
}

func toModel(profile *domain.Profile) *ProfileModel {
	return &ProfileModel{
		Model:         profile.Model,
		StudentID:     profile.StudentID,
		Phone:         profile.Phone,
		Skills:        profile.Skills,
		Experience:    profile.Experience,
		WorkHours:     profile.WorkHours,
		AvailableFrom: profile.AvailableFrom,
		Status:        string(profile.Status),
	}
}

func toDomain(model *ProfileModel) *domain.Profile {
	return &domain.Profile{
		Model:         model.Model,
		StudentID:     model.StudentID,
		Phone:         model.Phone,
		Skills:        model.Skills,
		Experience:    model.Experience,
		WorkHours:     model.WorkHours,
		AvailableFrom: model.AvailableFrom,
		Status:        domain.ProfileStatus(model.Status),
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

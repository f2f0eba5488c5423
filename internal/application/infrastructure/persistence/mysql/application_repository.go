// Package mysql 提供申请仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ApplicationModel 申请数据库模型，对应 applications 表
type ApplicationModel struct {
	gorm.Model
	// 学生 ID，与 offer_id 构成唯一索引：同一对至多一条记录
	StudentID uint `gorm:"column:student_id;uniqueIndex:idx_student_offer;index;not null"`
	// 职位 ID
	OfferID uint `gorm:"column:offer_id;uniqueIndex:idx_student_offer;index;not null"`
	// 雇主 ID（冗余自 offer，便于雇主侧查询）
	EmployerID uint `gorm:"column:employer_id;index;not null"`
	// 申请状态
	Status string `gorm:"column:status;type:varchar(20);index;not null"`
	// 附言
	Message string `gorm:"column:message;type:varchar(500)"`
}

// TableName 指定表名
func (ApplicationModel) TableName() string {
	return "applications"
}

// ApplicationHistoryModel 状态历史模型，只插入，按自增 ID 保序
type ApplicationHistoryModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	ApplicationID uint      `gorm:"column:application_id;index;not null"`
	Status        string    `gorm:"column:status;type:varchar(20);not null"`
	ChangedAt     time.Time `gorm:"column:changed_at;not null"`
	Note          string    `gorm:"column:note;type:varchar(255)"`
}

// TableName 指定表名
func (ApplicationHistoryModel) TableName() string {
	return "application_status_history"
}

// ApplicationRepositoryImpl 申请仓储实现
type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

// NewApplicationRepository 创建申请仓储
func NewApplicationRepository(database *gorm.DB) domain.ApplicationRepository {
	return &ApplicationRepositoryImpl{db: database}
}

// WithTx 返回绑定到事务的仓储副本
func (r *ApplicationRepositoryImpl) WithTx(tx *gorm.DB) domain.ApplicationRepository {
	if tx == nil {
		return r
	}
	return &ApplicationRepositoryImpl{db: tx}
}

// Create 创建申请及其初始历史
func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *domain.Application) error {
	model := toModel(app)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			// 唯一约束是并发 apply 竞争的最终保障，
			// 冲突要翻译成状态机会给出的同一个错误
			return domain.ErrDuplicateActiveApplication
		}
		logger.Error(ctx, "Failed to create application",
			"student_id", app.StudentID,
			"offer_id", app.OfferID,
			"error", err,
		)
		return fmt.Errorf("failed to create application: %w", err)
	}
	app.Model = model.Model

	for _, change := range app.History {
		if err := r.AppendHistory(ctx, app.ID, change); err != nil {
			return err
		}
	}
	return nil
}

// Update 更新申请的状态与附言
func (r *ApplicationRepositoryImpl) Update(ctx context.Context, app *domain.Application) error {
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Where("id = ?", app.ID).
		Updates(map[string]interface{}{
			"status":  string(app.Status),
			"message": app.Message,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update application %d: %w", app.ID, err)
	}
	return nil
}

// AppendHistory 追加一条状态历史
func (r *ApplicationRepositoryImpl) AppendHistory(ctx context.Context, applicationID uint, change domain.StatusChange) error {
	record := &ApplicationHistoryModel{
		ApplicationID: applicationID,
		Status:        string(change.Status),
		ChangedAt:     change.ChangedAt,
		Note:          change.Note,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to append application history: %w", err)
	}
	return nil
}

// FindByStudentAndOffer 按 (student, offer) 查找申请
func (r *ApplicationRepositoryImpl) FindByStudentAndOffer(ctx context.Context, studentID, offerID uint) (*domain.Application, error) {
	var model ApplicationModel

	err := r.db.WithContext(ctx).
		Where("student_id = ? AND offer_id = ?", studentID, offerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}

	app := toDomain(&model)
	if err := r.loadHistory(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListByStudent 列出学生的申请
func (r *ApplicationRepositoryImpl) ListByStudent(ctx context.Context, studentID uint, status domain.Status, sortOldest bool) ([]*domain.Application, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	order := "created_at DESC"
	if sortOldest {
		order = "created_at ASC"
	}

	var models []ApplicationModel
	if err := query.Order(order).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return toDomainList(models), nil
}

// ListActiveByOffer 列出职位的活跃申请
func (r *ApplicationRepositoryImpl) ListActiveByOffer(ctx context.Context, offerID uint) ([]*domain.Application, error) {
	var models []ApplicationModel
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND status IN ?", offerID, activeStatuses()).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active applications by offer: %w", err)
	}
	return toDomainList(models), nil
}

// ListActiveByStudent 列出学生的活跃申请
func (r *ApplicationRepositoryImpl) ListActiveByStudent(ctx context.Context, studentID uint) ([]*domain.Application, error) {
	var models []ApplicationModel
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND status IN ?", studentID, activeStatuses()).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active applications by student: %w", err)
	}
	return toDomainList(models), nil
}

// CountNonWithdrawnByOffer 统计职位的非撤回申请数
func (r *ApplicationRepositoryImpl) CountNonWithdrawnByOffer(ctx context.Context, offerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Where("offer_id = ? AND status <> ?", offerID, string(domain.StatusWithdrawn)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// loadHistory 加载申请的完整历史，按追加顺序
func (r *ApplicationRepositoryImpl) loadHistory(ctx context.Context, app *domain.Application) error {
	var records []ApplicationHistoryModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", app.ID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return fmt.Errorf("failed to load application history: %w", err)
	}

	app.History = make([]domain.StatusChange, 0, len(records))
	for _, rec := range records {
		app.History = append(app.History, domain.StatusChange{
			Status:    domain.Status(rec.Status),
			ChangedAt: rec.ChangedAt,
			Note:      rec.Note,
		})
	}
	return nil
}

func activeStatuses() []string {
	return []string{string(domain.StatusPending), string(domain.StatusReviewed)}
}

func toModel(app *domain.Application) *ApplicationModel {
	return &ApplicationModel{
		Model:      app.Model,
		StudentID:  app.StudentID,
		OfferID:    app.OfferID,
		EmployerID: app.EmployerID,
		Status:     string(app.Status),
		Message:    app.Message,
	}
}

func toDomain(model *ApplicationModel) *domain.Application {
	return &domain.Application{
		Model:      model.Model,
		StudentID:  model.StudentID,
		OfferID:    model.OfferID,
		EmployerID: model.EmployerID,
		Status:     domain.Status(model.Status),
		Message:    model.Message,
	}
}

func toDomainList(models []ApplicationModel) []*domain.Application {
	apps := make([]*domain.Application, 0, len(models))
	for i := range models {
		apps = append(apps, toDomain(&models[i]))
	}
	return apps
}

// isDuplicateKey 识别唯一约束冲突
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

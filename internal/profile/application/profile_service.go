// Package application 求职档案用例层。
package application

import (
	"context"
	"time"

	appsvc "github.com/StefanoVidesott/WannaWork-App/internal/application/application"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	"github.com/StefanoVidesott/WannaWork-App/internal/profile/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
)

// ProfileDTO 对外返回的档案视图
type ProfileDTO struct {
	ID            uint       `json:"id"`
	StudentID     uint       `json:"studentId"`
	Phone         string     `json:"phone,omitempty"`
	Skills        string     `json:"skills,omitempty"`
	Experience    string     `json:"experience,omitempty"`
	WorkHours     int        `json:"workHours,omitempty"`
	AvailableFrom *time.Time `json:"availableFrom,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CreateProfileCommand 创建档案命令
type CreateProfileCommand struct {
	StudentID     uint
	Phone         string
	Skills        string
	Experience    string
	WorkHours     int
	AvailableFrom *time.Time
	// Visible 创建时即对雇主可见
	Visible bool
}

// DeleteProfileCommand 删除档案命令，需要密码确认，
// 成功后级联撤回该学生的所有活跃申请
type DeleteProfileCommand struct {
	ProfileID uint
	StudentID uint
	Password  string
}

// DeleteProfileResult 删除档案结果
type DeleteProfileResult struct {
	// WithdrawnApplications 被级联撤回的申请数
	WithdrawnApplications int `json:"withdrawnApplications"`
}

// ProfileService 档案用例服务
type ProfileService struct {
	profiles domain.ProfileRepository
	accounts accountdomain.AccountRepository
	cascades *appsvc.CascadeEngine
}

// NewProfileService 创建档案服务
func NewProfileService(
	profiles domain.ProfileRepository,
	accounts accountdomain.AccountRepository,
	cascades *appsvc.CascadeEngine,
) *ProfileService {
	return &ProfileService{profiles: profiles, accounts: accounts, cascades: cascades}
}

// Create 创建档案，每个学生至多一份
func (s *ProfileService) Create(ctx context.Context, cmd CreateProfileCommand) (*ProfileDTO, error) {
	status := domain.ProfileStatusHidden
	if cmd.Visible {
		status = domain.ProfileStatusVisible
	}
	profile := &domain.Profile{
		StudentID:     cmd.StudentID,
		Phone:         cmd.Phone,
		Skills:        cmd.Skills,
		Experience:    cmd.Experience,
		WorkHours:     cmd.WorkHours,
		AvailableFrom: cmd.AvailableFrom,
		Status:        status,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Availability profile created", "student_id", cmd.StudentID)
	return toProfileDTO(profile), nil
}

// Update 部分更新档案，只有所有者可以修改
func (s *ProfileService) Update(ctx context.Context, profileID, studentID uint, changes domain.Update) (*ProfileDTO, error) {
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	if profile.StudentID != studentID {
		return nil, domain.ErrNotOwner
	}
	changes.Apply(profile)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return toProfileDTO(profile), nil
}

// GetMine 返回自己的档案
func (s *ProfileService) GetMine(ctx context.Context, studentID uint) (*ProfileDTO, error) {
	profile, err := s.profiles.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return toProfileDTO(profile), nil
}

// Delete 删除自己的档案。
// 密码确认在事务外先行校验；删除与级联撤回由级联引擎在一个事务里完成。
func (s *ProfileService) Delete(ctx context.Context, cmd DeleteProfileCommand) (*DeleteProfileResult, error) {
	if cmd.Password == "" {
		return nil, domain.ErrPasswordRequired
	}
	account, err := s.accounts.FindByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrAccountNotFound
	}
	if !account.CheckPassword(cmd.Password) {
		return nil, domain.ErrPasswordMismatch
	}

	// 所有权在级联事务内校验
	result, err := s.cascades.Run(ctx, appsvc.ProfileDeleted{
		ProfileID: cmd.ProfileID,
		ActorID:   cmd.StudentID,
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Availability profile deleted",
		"student_id", cmd.StudentID,
		"withdrawn_applications", len(result.Affected),
	)
	return &DeleteProfileResult{WithdrawnApplications: len(result.Affected)}, nil
}

func toProfileDTO(p *domain.Profile) *ProfileDTO {
	return &ProfileDTO{
		ID:            p.ID,
		StudentID:     p.StudentID,
		Phone:         p.Phone,
		Skills:        p.Skills,
		Experience:    p.Experience,
		WorkHours:     p.WorkHours,
		AvailableFrom: p.AvailableFrom,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

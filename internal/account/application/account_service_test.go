package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/middleware"
)

type fakeAccountRepo struct {
	accounts map[uint]*domain.Account
	nextID   uint
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uint]*domain.Account), nextID: 1}
}

func (r *fakeAccountRepo) WithTx(*gorm.DB) domain.AccountRepository { return r }

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return domain.ErrEmailTaken
		}
	}
	account.ID = r.nextID
	r.nextID++
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uint) (*domain.Account, error) {
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]*domain.Account, error) {
	out := make(map[uint]*domain.Account)
	for _, id := range ids {
		if account, ok := r.accounts[id]; ok {
			out[id] = account
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

const testSecret = "test-secret"

func newService() (*AccountService, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	return NewAccountService(repo, testSecret, time.Hour), repo
}

func TestRegisterStudent(t *testing.T) {
	svc, repo := newService()

	account, err := svc.Register(context.Background(), RegisterCommand{
		Role:     "student",
		Name:     "Alice",
		Surname:  "Rossi",
		Email:    "Alice@Student.Test",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "student", account.Role)
	// 邮箱归一化为小写
	assert.Equal(t, "alice@student.test", account.Email)

	stored := repo.accounts[account.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
	assert.True(t, stored.CheckPassword("supersecret"))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Register(context.Background(), RegisterCommand{Role: "admin", Name: "X", Email: "x@test", Password: "longenough"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterCommand{Role: "student", Name: "X", Email: "not-an-email", Password: "longenough"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterCommand{Role: "student", Name: "X", Email: "x@test", Password: "short"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService()

	cmd := RegisterCommand{Role: "student", Name: "Alice", Email: "alice@test", Password: "supersecret"}
	_, err := svc.Register(context.Background(), cmd)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newService()

	registered, err := svc.Register(context.Background(), RegisterCommand{
		Role: "employer", Name: "Bob", Email: "hr@acme.test", Password: "supersecret",
		CompanyName: "Acme", Headquarters: "Milan",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginCommand{Email: "HR@Acme.Test", Password: "supersecret"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := middleware.ParseToken(testSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.ActorID)
	assert.Equal(t, "employer", claims.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Register(context.Background(), RegisterCommand{
		Role: "student", Name: "Alice", Email: "alice@test", Password: "supersecret",
	})
	require.NoError(t, err)

	// 未知邮箱与错误密码返回同一个错误
	_, err = svc.Login(context.Background(), LoginCommand{Email: "nobody@test", Password: "supersecret"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginCommand{Email: "alice@test", Password: "wrongpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	notifapp "github.com/StefanoVidesott/WannaWork-App/internal/notification/application"
	notifdomain "github.com/StefanoVidesott/WannaWork-App/internal/notification/domain"
	"github.com/StefanoVidesott/WannaWork-App/internal/notification/infrastructure/sender"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	offerdomain "github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	profiledomain "github.com/StefanoVidesott/WannaWork-App/internal/profile/domain"
)

var testTime = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

const (
	studentID  = 1
	employerID = 2
	offerID    = 10
	profileID  = 100
)

type fixture struct {
	store      *memStore
	apps       *fakeAppRepo
	offers     *fakeOfferRepo
	profiles   *fakeProfileRepo
	accounts   *fakeAccountRepo
	sender     *sender.MockSender
	dispatcher *notifapp.Dispatcher
	commands   *ApplicationCommandService
	cascades   *CascadeEngine
	queries    *ApplicationQueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	f := &fixture{
		store:    store,
		apps:     &fakeAppRepo{store: store},
		offers:   &fakeOfferRepo{store: store},
		profiles: &fakeProfileRepo{store: store},
		accounts: &fakeAccountRepo{store: store},
		sender:   sender.NewMockSender(),
	}
	f.dispatcher = notifapp.NewDispatcher(f.sender, nil)
	runner := &fakeTxRunner{store: store}
	f.commands = NewApplicationCommandService(runner, f.apps, f.offers, f.profiles, f.accounts, f.dispatcher, nil)
	f.commands.now = func() time.Time { return testTime }
	f.cascades = NewCascadeEngine(runner, f.apps, f.offers, f.profiles, f.accounts, f.dispatcher, nil)
	f.cascades.now = func() time.Time { return testTime }
	f.queries = NewApplicationQueryService(f.apps, f.offers, f.accounts)

	store.accounts[studentID] = &accountdomain.Account{
		Model: gorm.Model{ID: studentID},
		Role:  accountdomain.RoleStudent,
		Name:  "Alice", Surname: "Rossi",
		Email: "alice@student.test",
	}
	store.accounts[employerID] = &accountdomain.Account{
		Model:        gorm.Model{ID: employerID},
		Role:         accountdomain.RoleEmployer,
		Name:         "Bob",
		Email:        "hr@acme.test",
		CompanyName:  "Acme",
		Headquarters: "Milan",
	}
	store.offers[offerID] = &offerdomain.Offer{
		Model:      gorm.Model{ID: offerID},
		EmployerID: employerID,
		Position:   "Backend Intern",
		WorkHours:  20,
		Salary:     decimal.NewFromInt(900),
		Status:     offerdomain.OfferStatusPublished,
	}
	store.profiles[profileID] = &profiledomain.Profile{
		Model:     gorm.Model{ID: profileID},
		StudentID: studentID,
		Status:    profiledomain.ProfileStatusVisible,
	}
	return f
}

// seedApplication 直接写入指定状态的申请
func (f *fixture) seedApplication(student, offer, employer uint, status domain.Status) *domain.Application {
	app := domain.NewApplication(student, offer, employer, "", testTime.Add(-24*time.Hour))
	app.ID = f.store.nextAppID
	f.store.nextAppID++
	if status != domain.StatusPending {
		app.Transition(status, "", testTime.Add(-time.Hour))
	}
	f.store.apps[app.ID] = app
	return app
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newFixture(t)

	result, err := f.commands.Apply(context.Background(), ApplyCommand{
		StudentID: studentID,
		OfferID:   offerID,
		Message:   "I would love to join",
	})
	require.NoError(t, err)
	assert.False(t, result.Reactivated)
	assert.Equal(t, string(domain.StatusPending), result.Application.Status)
	require.Len(t, result.Application.History, 1)
	assert.Equal(t, string(domain.StatusPending), result.Application.History[0].Status)

	f.dispatcher.Wait()
	require.Equal(t, 1, f.sender.Count())
	event := f.sender.Events()[0]
	assert.Equal(t, notifdomain.EventApplicationSubmitted, event.Type)
	assert.Equal(t, "hr@acme.test", event.Recipient)
	assert.Equal(t, "Backend Intern", event.OfferTitle)
	assert.Equal(t, "Alice Rossi", event.StudentName)
}

func TestApplyRequiresVisibleProfile(t *testing.T) {
	f := newFixture(t)
	f.store.profiles[profileID].Status = profiledomain.ProfileStatusHidden

	_, err := f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	delete(f.store.profiles, profileID)
	_, err = f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	f.dispatcher.Wait()
	assert.Equal(t, 0, f.sender.Count())
}

func TestApplyOfferUnavailable(t *testing.T) {
	f := newFixture(t)

	_, err := f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: 999})
	assert.ErrorIs(t, err, domain.ErrOfferUnavailable)

	f.store.offers[offerID].Status = offerdomain.OfferStatusDraft
	_, err = f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrOfferUnavailable)

	expired := testTime.Add(-time.Hour)
	f.store.offers[offerID].Status = offerdomain.OfferStatusPublished
	f.store.offers[offerID].ExpiresAt = &expired
	_, err = f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrOfferUnavailable)
}

func TestApplyRejectsDuplicateActive(t *testing.T) {
	f := newFixture(t)
	f.seedApplication(studentID, offerID, employerID, domain.StatusPending)

	_, err := f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveApplication)

	// reviewed 同样算活跃
	f.store.apps[1].Status = domain.StatusReviewed
	_, err = f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveApplication)
}

func TestApplyRejectsOverlongMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.commands.Apply(context.Background(), ApplyCommand{
		StudentID: studentID,
		OfferID:   offerID,
		Message:   strings.Repeat("a", domain.MaxMessageLength+1),
	})
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)
}

func TestReactivationAfterWithdrawal(t *testing.T) {
	f := newFixture(t)

	_, err := f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	require.NoError(t, err)
	_, err = f.commands.Withdraw(context.Background(), WithdrawCommand{StudentID: studentID, OfferID: offerID})
	require.NoError(t, err)

	result, err := f.commands.Apply(context.Background(), ApplyCommand{
		StudentID: studentID,
		OfferID:   offerID,
		Message:   "second attempt",
	})
	require.NoError(t, err)
	assert.True(t, result.Reactivated)
	assert.Equal(t, string(domain.StatusPending), result.Application.Status)

	// 历史保留完整轨迹：pending → withdrawn → pending
	require.Len(t, result.Application.History, 3)
	assert.Equal(t, string(domain.StatusPending), result.Application.History[0].Status)
	assert.Equal(t, string(domain.StatusWithdrawn), result.Application.History[1].Status)
	assert.Equal(t, string(domain.StatusPending), result.Application.History[2].Status)
	assert.Equal(t, "reactivated after withdrawal", result.Application.History[2].Note)

	// 重新激活使用更新后的附言
	assert.Equal(t, "second attempt", result.Application.Message)

	f.dispatcher.Wait()
	assert.Equal(t, 3, f.sender.Count())
}

func TestWithdrawIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedApplication(studentID, offerID, employerID, domain.StatusPending)

	first, err := f.commands.Withdraw(context.Background(), WithdrawCommand{
		StudentID: studentID,
		OfferID:   offerID,
		Reason:    "changed my mind",
	})
	require.NoError(t, err)
	assert.False(t, first.AlreadyWithdrawn)
	assert.Equal(t, string(domain.StatusWithdrawn), first.Application.Status)

	second, err := f.commands.Withdraw(context.Background(), WithdrawCommand{StudentID: studentID, OfferID: offerID})
	require.NoError(t, err)
	assert.True(t, second.AlreadyWithdrawn)

	// 重复撤回不追加历史
	assert.Len(t, f.store.apps[1].History, 2)

	f.dispatcher.Wait()
	require.Equal(t, 1, f.sender.Count())
	event := f.sender.Events()[0]
	assert.Equal(t, notifdomain.EventApplicationWithdrawn, event.Type)
	assert.Equal(t, "hr@acme.test", event.Recipient)
}

func TestWithdrawFinalizedApplication(t *testing.T) {
	f := newFixture(t)

	for _, status := range []domain.Status{domain.StatusAccepted, domain.StatusRejected} {
		f = newFixture(t)
		f.seedApplication(studentID, offerID, employerID, status)

		_, err := f.commands.Withdraw(context.Background(), WithdrawCommand{StudentID: studentID, OfferID: offerID})
		assert.ErrorIs(t, err, domain.ErrAlreadyFinalized, "status %s", status)
		// 终态不可变
		assert.Equal(t, status, f.store.apps[1].Status)
	}
}

func TestWithdrawMissingApplication(t *testing.T) {
	f := newFixture(t)

	_, err := f.commands.Withdraw(context.Background(), WithdrawCommand{StudentID: studentID, OfferID: offerID})
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
}

func TestApplyRollsBackOnNotificationDataFailure(t *testing.T) {
	f := newFixture(t)
	// 模拟事务内任何一步失败后整体回滚
	f.apps.failUpdateID = 1
	f.seedApplication(studentID, offerID, employerID, domain.StatusWithdrawn)

	_, err := f.commands.Apply(context.Background(), ApplyCommand{StudentID: studentID, OfferID: offerID})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDuplicateActiveApplication))

	// 重新激活被回滚，记录仍是 withdrawn
	assert.Equal(t, domain.StatusWithdrawn, f.store.apps[1].Status)
	assert.Len(t, f.store.apps[1].History, 2)

	f.dispatcher.Wait()
	assert.Equal(t, 0, f.sender.Count())
}

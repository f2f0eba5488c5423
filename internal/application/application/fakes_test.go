package application

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	offerdomain "github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	profiledomain "github.com/StefanoVidesott/WannaWork-App/internal/profile/domain"
)

// memStore 测试用内存存储，所有假仓储共享
type memStore struct {
	apps      map[uint]*domain.Application
	offers    map[uint]*offerdomain.Offer
	profiles  map[uint]*profiledomain.Profile
	accounts  map[uint]*accountdomain.Account
	nextAppID uint
}

func newMemStore() *memStore {
	return &memStore{
		apps:      make(map[uint]*domain.Application),
		offers:    make(map[uint]*offerdomain.Offer),
		profiles:  make(map[uint]*profiledomain.Profile),
		accounts:  make(map[uint]*accountdomain.Account),
		nextAppID: 1,
	}
}

type storeSnapshot struct {
	apps     map[uint]*domain.Application
	offers   map[uint]*offerdomain.Offer
	profiles map[uint]*profiledomain.Profile
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		apps:     make(map[uint]*domain.Application, len(s.apps)),
		offers:   make(map[uint]*offerdomain.Offer, len(s.offers)),
		profiles: make(map[uint]*profiledomain.Profile, len(s.profiles)),
	}
	for id, app := range s.apps {
		cp := *app
		cp.History = append([]domain.StatusChange(nil), app.History...)
		snap.apps[id] = &cp
	}
	for id, offer := range s.offers {
		cp := *offer
		snap.offers[id] = &cp
	}
	for id, profile := range s.profiles {
		cp := *profile
		snap.profiles[id] = &cp
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.apps = snap.apps
	s.offers = snap.offers
	s.profiles = snap.profiles
}

// fakeTxRunner 模拟事务：fn 失败时回滚内存存储
type fakeTxRunner struct {
	store *memStore
}

func (r *fakeTxRunner) WithTxTimeout(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// fakeAppRepo 基于 memStore 的申请仓储
type fakeAppRepo struct {
	store *memStore
	// failUpdateID 模拟写入失败：更新该申请时报错
	failUpdateID uint
}

func (r *fakeAppRepo) WithTx(*gorm.DB) domain.ApplicationRepository { return r }

func (r *fakeAppRepo) Create(_ context.Context, app *domain.Application) error {
	for _, existing := range r.store.apps {
		if existing.StudentID == app.StudentID && existing.OfferID == app.OfferID {
			return domain.ErrDuplicateActiveApplication
		}
	}
	app.ID = r.store.nextAppID
	r.store.nextAppID++
	r.store.apps[app.ID] = app
	return nil
}

func (r *fakeAppRepo) Update(_ context.Context, app *domain.Application) error {
	if r.failUpdateID != 0 && app.ID == r.failUpdateID {
		return fmt.Errorf("simulated write failure for application %d", app.ID)
	}
	r.store.apps[app.ID] = app
	return nil
}

func (r *fakeAppRepo) AppendHistory(_ context.Context, applicationID uint, _ domain.StatusChange) error {
	if _, ok := r.store.apps[applicationID]; !ok {
		return fmt.Errorf("application %d not found", applicationID)
	}
	return nil
}

func (r *fakeAppRepo) FindByStudentAndOffer(_ context.Context, studentID, offerID uint) (*domain.Application, error) {
	for _, app := range r.store.apps {
		if app.StudentID == studentID && app.OfferID == offerID {
			return app, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) ListByStudent(_ context.Context, studentID uint, status domain.Status, _ bool) ([]*domain.Application, error) {
	var out []*domain.Application
	for _, app := range r.store.apps {
		if app.StudentID != studentID {
			continue
		}
		if status != "" && app.Status != status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (r *fakeAppRepo) ListActiveByOffer(_ context.Context, offerID uint) ([]*domain.Application, error) {
	var out []*domain.Application
	for _, app := range r.store.apps {
		if app.OfferID == offerID && app.Status.IsActive() {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) ListActiveByStudent(_ context.Context, studentID uint) ([]*domain.Application, error) {
	var out []*domain.Application
	for _, app := range r.store.apps {
		if app.StudentID == studentID && app.Status.IsActive() {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) CountNonWithdrawnByOffer(_ context.Context, offerID uint) (int64, error) {
	var count int64
	for _, app := range r.store.apps {
		if app.OfferID == offerID && app.Status != domain.StatusWithdrawn {
			count++
		}
	}
	return count, nil
}

// fakeOfferRepo 基于 memStore 的职位仓储
type fakeOfferRepo struct {
	store *memStore
}

func (r *fakeOfferRepo) WithTx(*gorm.DB) offerdomain.OfferRepository { return r }

func (r *fakeOfferRepo) Create(_ context.Context, offer *offerdomain.Offer) error {
	r.store.offers[offer.ID] = offer
	return nil
}

func (r *fakeOfferRepo) FindByID(_ context.Context, id uint) (*offerdomain.Offer, error) {
	return r.store.offers[id], nil
}

func (r *fakeOfferRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]*offerdomain.Offer, error) {
	out := make(map[uint]*offerdomain.Offer)
	for _, id := range ids {
		if offer, ok := r.store.offers[id]; ok {
			out[id] = offer
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) ListPublished(_ context.Context, _, _ int, _ bool) ([]*offerdomain.Offer, int64, error) {
	var out []*offerdomain.Offer
	for _, offer := range r.store.offers {
		if offer.Status == offerdomain.OfferStatusPublished {
			out = append(out, offer)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOfferRepo) ListByEmployer(_ context.Context, employerID uint) ([]*offerdomain.Offer, error) {
	var out []*offerdomain.Offer
	for _, offer := range r.store.offers {
		if offer.EmployerID == employerID {
			out = append(out, offer)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) Update(_ context.Context, offer *offerdomain.Offer) error {
	r.store.offers[offer.ID] = offer
	return nil
}

func (r *fakeOfferRepo) Delete(_ context.Context, id uint) error {
	delete(r.store.offers, id)
	return nil
}

// fakeProfileRepo 基于 memStore 的档案仓储
type fakeProfileRepo struct {
	store *memStore
}

func (r *fakeProfileRepo) WithTx(*gorm.DB) profiledomain.ProfileRepository { return r }

func (r *fakeProfileRepo) Create(_ context.Context, profile *profiledomain.Profile) error {
	for _, existing := range r.store.profiles {
		if existing.StudentID == profile.StudentID {
			return profiledomain.ErrProfileExists
		}
	}
	r.store.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uint) (*profiledomain.Profile, error) {
	return r.store.profiles[id], nil
}

func (r *fakeProfileRepo) FindByStudent(_ context.Context, studentID uint) (*profiledomain.Profile, error) {
	for _, profile := range r.store.profiles {
		if profile.StudentID == studentID {
			return profile, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *profiledomain.Profile) error {
	r.store.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id uint) error {
	delete(r.store.profiles, id)
	return nil
}

// fakeAccountRepo 基于 memStore 的账户仓储
type fakeAccountRepo struct {
	store *memStore
}

func (r *fakeAccountRepo) WithTx(*gorm.DB) accountdomain.AccountRepository { return r }

func (r *fakeAccountRepo) Create(_ context.Context, account *accountdomain.Account) error {
	r.store.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uint) (*accountdomain.Account, error) {
	return r.store.accounts[id], nil
}

func (r *fakeAccountRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]*accountdomain.Account, error) {
	out := make(map[uint]*accountdomain.Account)
	for _, id := range ids {
		if account, ok := r.store.accounts[id]; ok {
			out[id] = account
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*accountdomain.Account, error) {
	for _, account := range r.store.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

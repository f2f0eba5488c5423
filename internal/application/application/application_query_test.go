package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
)

func TestCheckWithoutApplication(t *testing.T) {
	f := newFixture(t)

	result, err := f.queries.Check(context.Background(), studentID, offerID)
	require.NoError(t, err)
	assert.False(t, result.HasApplied)
	assert.Empty(t, result.Status)
	assert.Nil(t, result.ApplicationDate)
}

func TestCheckActiveApplication(t *testing.T) {
	f := newFixture(t)
	f.seedApplication(studentID, offerID, employerID, domain.StatusPending)

	result, err := f.queries.Check(context.Background(), studentID, offerID)
	require.NoError(t, err)
	assert.True(t, result.HasApplied)
	assert.Equal(t, string(domain.StatusPending), result.Status)
	assert.NotNil(t, result.ApplicationDate)
}

func TestCheckWithdrawnApplication(t *testing.T) {
	f := newFixture(t)
	f.seedApplication(studentID, offerID, employerID, domain.StatusWithdrawn)

	// withdrawn 不算已申请，允许重新投递
	result, err := f.queries.Check(context.Background(), studentID, offerID)
	require.NoError(t, err)
	assert.False(t, result.HasApplied)
	assert.Equal(t, string(domain.StatusWithdrawn), result.Status)
	assert.Nil(t, result.ApplicationDate)
}

func TestListMineEnrichesOffers(t *testing.T) {
	f := newFixture(t)
	f.seedApplication(studentID, offerID, employerID, domain.StatusPending)

	apps, err := f.queries.ListMine(context.Background(), ListMineQuery{StudentID: studentID})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.NotNil(t, apps[0].Offer)
	assert.Equal(t, "Backend Intern", apps[0].Offer.Position)
	assert.Equal(t, "Acme", apps[0].Offer.CompanyName)
}

func TestListMineStatusFilter(t *testing.T) {
	f := newFixture(t)
	f.seedApplication(studentID, offerID, employerID, domain.StatusPending)
	f.seedApplication(studentID, 11, employerID, domain.StatusWithdrawn)

	apps, err := f.queries.ListMine(context.Background(), ListMineQuery{
		StudentID: studentID,
		Status:    "withdrawn",
	})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, string(domain.StatusWithdrawn), apps[0].Status)

	_, err = f.queries.ListMine(context.Background(), ListMineQuery{StudentID: studentID, Status: "bogus"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

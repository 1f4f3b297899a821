package service

import (
	"context"
	"errors"
	"testing"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/internal/core/ports/mocks"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAuditPolicy_AdminSeesEverything(t *testing.T) {
	policy := NewAuditPolicy(NewEntityRegistry())

	admin := ports.Caller{ID: uuid.New(), Role: domain.RoleAdmin}
	// Admin bypass happens before any registry lookup, so even an
	// unregistered type passes.
	err := policy.CanView(context.Background(), admin, domain.EntityListing, uuid.New())
	assert.NoError(t, err)
	assert.NoError(t, policy.CanViewActor(admin, uuid.New()))
	assert.NoError(t, policy.CanViewSystem(admin))
}

func TestAuditPolicy_OwnerSeesOwnDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	docID := uuid.New()

	accessor := mocks.NewMockEntityAccessor(ctrl)
	accessor.EXPECT().OwnerID(gomock.Any(), docID).Return(ownerID, nil)

	reg := NewEntityRegistry()
	reg.Register(domain.EntityListing, accessor)
	policy := NewAuditPolicy(reg)

	owner := ports.Caller{ID: ownerID, Role: domain.RoleInstructor}
	assert.NoError(t, policy.CanView(context.Background(), owner, domain.EntityListing, docID))
}

func TestAuditPolicy_StrangerDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	docID := uuid.New()
	accessor := mocks.NewMockEntityAccessor(ctrl)
	accessor.EXPECT().OwnerID(gomock.Any(), docID).Return(uuid.New(), nil)

	reg := NewEntityRegistry()
	reg.Register(domain.EntityListing, accessor)
	policy := NewAuditPolicy(reg)

	stranger := ports.Caller{ID: uuid.New(), Role: domain.RoleLearner}
	err := policy.CanView(context.Background(), stranger, domain.EntityListing, docID)
	assertAppErrorCode(t, err, "AUD_003")
}

func TestAuditPolicy_MissingDocumentDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	docID := uuid.New()
	accessor := mocks.NewMockEntityAccessor(ctrl)
	accessor.EXPECT().OwnerID(gomock.Any(), docID).Return(uuid.Nil, nil)

	reg := NewEntityRegistry()
	reg.Register(domain.EntityListing, accessor)
	policy := NewAuditPolicy(reg)

	caller := ports.Caller{ID: uuid.New(), Role: domain.RoleLearner}
	err := policy.CanView(context.Background(), caller, domain.EntityListing, docID)
	assertAppErrorCode(t, err, "AUD_003")
}

func TestAuditPolicy_UnknownEntityType(t *testing.T) {
	policy := NewAuditPolicy(NewEntityRegistry())

	caller := ports.Caller{ID: uuid.New(), Role: domain.RoleLearner}
	err := policy.CanView(context.Background(), caller, "Widget", uuid.New())
	assertAppErrorCode(t, err, "AUD_001")
}

func TestAuditPolicy_ActorSelfView(t *testing.T) {
	policy := NewAuditPolicy(NewEntityRegistry())

	userID := uuid.New()
	caller := ports.Caller{ID: userID, Role: domain.RoleLearner}

	assert.NoError(t, policy.CanViewActor(caller, userID))
	assertAppErrorCode(t, policy.CanViewActor(caller, uuid.New()), "AUD_003")
}

func TestAuditPolicy_SystemAdminOnly(t *testing.T) {
	policy := NewAuditPolicy(NewEntityRegistry())

	learner := ports.Caller{ID: uuid.New(), Role: domain.RoleLearner}
	instructor := ports.Caller{ID: uuid.New(), Role: domain.RoleInstructor}

	assertAppErrorCode(t, policy.CanViewSystem(learner), "AUD_003")
	assertAppErrorCode(t, policy.CanViewSystem(instructor), "AUD_003")
}

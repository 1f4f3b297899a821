package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skills-marketplace-api/internal/adapter/http/dto"
	"skills-marketplace-api/internal/adapter/http/middleware"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/internal/core/ports/mocks"
	"skills-marketplace-api/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func asCaller(c *gin.Context, id uuid.UUID, role domain.Role) ports.Caller {
	caller := ports.Caller{ID: id, Role: role, Name: "Test User"}
	c.Set(middleware.CtxCaller, caller)
	return caller
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

// --- Auth Handler Tests ---

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "asha@example.com", "password123").Return("jwt-token-123", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Email:    "asha@example.com",
		Password: "password123",
	})
	c, w := testContext(t, http.MethodPost, "/", body)

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	c, w := testContext(t, http.MethodPost, "/", []byte(`{"email":"not-an-email"}`))
	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(t, w))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	c, w := testContext(t, http.MethodPost, "/", body)

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", errorCode(t, w))
}

// --- Audit Handler Tests ---

func TestDocumentHistory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	querySvc := mocks.NewMockAuditQueryService(ctrl)
	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(querySvc, policy)

	docID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/?page=2&limit=10&action=update", nil)
	caller := asCaller(c, uuid.New(), domain.RoleAdmin)
	c.Params = gin.Params{
		{Key: "entityType", Value: "Listing"},
		{Key: "documentId", Value: docID.String()},
	}

	policy.EXPECT().CanView(gomock.Any(), caller, domain.EntityListing, docID).Return(nil)

	var captured ports.AuditQueryOptions
	querySvc.EXPECT().ByDocument(gomock.Any(), domain.EntityListing, docID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ domain.EntityType, _ uuid.UUID, opts ports.AuditQueryOptions) (*ports.AuditQueryResult, error) {
			captured = opts
			return &ports.AuditQueryResult{
				Pagination: ports.Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3},
			}, nil
		})

	h.DocumentHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 10, captured.Limit)
	require.NotNil(t, captured.Action)
	assert.Equal(t, domain.AuditActionUpdate, *captured.Action)
}

func TestDocumentHistory_AccessDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	querySvc := mocks.NewMockAuditQueryService(ctrl)
	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(querySvc, policy)

	docID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/", nil)
	asCaller(c, uuid.New(), domain.RoleLearner)
	c.Params = gin.Params{
		{Key: "entityType", Value: "Listing"},
		{Key: "documentId", Value: docID.String()},
	}

	policy.EXPECT().CanView(gomock.Any(), gomock.Any(), domain.EntityListing, docID).
		Return(apperror.ErrAuditAccessDenied())

	h.DocumentHistory(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUD_003", errorCode(t, w))
}

func TestDocumentHistory_MalformedDocumentID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuditHandler(mocks.NewMockAuditQueryService(ctrl), mocks.NewMockAuditAccessPolicy(ctrl))

	c, w := testContext(t, http.MethodGet, "/", nil)
	asCaller(c, uuid.New(), domain.RoleAdmin)
	c.Params = gin.Params{
		{Key: "entityType", Value: "Listing"},
		{Key: "documentId", Value: "not-a-uuid"},
	}

	h.DocumentHistory(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUD_002", errorCode(t, w))
}

func TestDocumentHistory_InvalidDateFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(mocks.NewMockAuditQueryService(ctrl), policy)

	docID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/?date_from=yesterday", nil)
	asCaller(c, uuid.New(), domain.RoleAdmin)
	c.Params = gin.Params{
		{Key: "entityType", Value: "Listing"},
		{Key: "documentId", Value: docID.String()},
	}

	policy.EXPECT().CanView(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	h.DocumentHistory(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(t, w))
}

func TestActorHistory_SelfAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	querySvc := mocks.NewMockAuditQueryService(ctrl)
	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(querySvc, policy)

	actorID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/", nil)
	caller := asCaller(c, actorID, domain.RoleLearner)
	c.Params = gin.Params{{Key: "actorId", Value: actorID.String()}}

	policy.EXPECT().CanViewActor(caller, actorID).Return(nil)
	querySvc.EXPECT().ByActor(gomock.Any(), actorID, gomock.Any()).
		Return(&ports.AuditQueryResult{}, nil)

	h.ActorHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActorHistory_StrangerDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(mocks.NewMockAuditQueryService(ctrl), policy)

	actorID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/", nil)
	caller := asCaller(c, uuid.New(), domain.RoleInstructor)
	c.Params = gin.Params{{Key: "actorId", Value: actorID.String()}}

	policy.EXPECT().CanViewActor(caller, actorID).
		Return(apperror.ErrAuditAccessDenied())

	h.ActorHistory(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUD_003", errorCode(t, w))
}

func TestSystemQuery_AdminOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(mocks.NewMockAuditQueryService(ctrl), policy)

	c, w := testContext(t, http.MethodGet, "/", nil)
	caller := asCaller(c, uuid.New(), domain.RoleInstructor)

	policy.EXPECT().CanViewSystem(caller).
		Return(apperror.ErrAuditAccessDenied())

	h.SystemQuery(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUD_003", errorCode(t, w))
}

func TestRecentActivity_ParsesFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	querySvc := mocks.NewMockAuditQueryService(ctrl)
	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(querySvc, policy)

	c, w := testContext(t, http.MethodGet, "/?entity_types=Listing,User&actions=create&limit=5", nil)
	caller := asCaller(c, uuid.New(), domain.RoleAdmin)

	policy.EXPECT().CanViewSystem(caller).Return(nil)

	var captured ports.AuditFeedOptions
	querySvc.EXPECT().RecentActivity(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, opts ports.AuditFeedOptions) ([]domain.ActivityEntry, error) {
			captured = opts
			return []domain.ActivityEntry{}, nil
		})

	h.RecentActivity(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.EntityType{domain.EntityListing, domain.EntityUser}, captured.EntityTypes)
	assert.Equal(t, []domain.AuditAction{domain.AuditActionCreate}, captured.Actions)
	assert.Equal(t, 5, captured.Limit)
}

func TestDocumentSummary_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	querySvc := mocks.NewMockAuditQueryService(ctrl)
	policy := mocks.NewMockAuditAccessPolicy(ctrl)
	h := NewAuditHandler(querySvc, policy)

	docID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/", nil)
	asCaller(c, uuid.New(), domain.RoleAdmin)
	c.Params = gin.Params{
		{Key: "entityType", Value: "Enrollment"},
		{Key: "documentId", Value: docID.String()},
	}

	policy.EXPECT().CanView(gomock.Any(), gomock.Any(), domain.EntityEnrollment, docID).Return(nil)
	querySvc.EXPECT().Summary(gomock.Any(), domain.EntityEnrollment, docID).
		Return(&domain.AuditSummary{}, nil)

	h.DocumentSummary(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Listing Handler Tests ---

func TestCreateListing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listingSvc := mocks.NewMockListingService(ctrl)
	h := NewListingHandler(listingSvc, mocks.NewMockReviewService(ctrl))

	instructorID := uuid.New()
	c, w := testContext(t, http.MethodPost, "/", mustJSON(t, dto.CreateListingRequest{
		Title:        "Pottery for Beginners",
		Type:         "workshop",
		LocationType: "online",
		TimeSlots:    []domain.TimeSlot{{StartTime: "10:00", EndTime: "12:00"}},
	}))
	caller := asCaller(c, instructorID, domain.RoleInstructor)

	listingSvc.EXPECT().Create(gomock.Any(), caller, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, _ ports.Caller, in ports.ListingInput, meta *ports.RequestMeta) (*domain.Listing, error) {
			assert.Equal(t, "Pottery for Beginners", in.Title)
			require.NotNil(t, meta)
			return &domain.Listing{ID: uuid.New(), Title: in.Title}, nil
		})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateListing_PassesRawPatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listingSvc := mocks.NewMockListingService(ctrl)
	h := NewListingHandler(listingSvc, mocks.NewMockReviewService(ctrl))

	listingID := uuid.New()
	c, w := testContext(t, http.MethodPatch, "/", []byte(`{"title":"New Title","participant_fee":2500}`))
	asCaller(c, uuid.New(), domain.RoleInstructor)
	c.Params = gin.Params{{Key: "id", Value: listingID.String()}}

	listingSvc.EXPECT().Update(gomock.Any(), gomock.Any(), listingID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, _ ports.Caller, _ uuid.UUID, patch map[string]json.RawMessage, _ *ports.RequestMeta) (*domain.Listing, error) {
			assert.Contains(t, patch, "title")
			assert.Contains(t, patch, "participant_fee")
			return &domain.Listing{ID: listingID}, nil
		})

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetListing_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listingSvc := mocks.NewMockListingService(ctrl)
	h := NewListingHandler(listingSvc, mocks.NewMockReviewService(ctrl))

	listingID := uuid.New()
	c, w := testContext(t, http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: listingID.String()}}

	listingSvc.EXPECT().Get(gomock.Any(), listingID).Return(nil, apperror.ErrNotFound("listing"))

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CAT_001", errorCode(t, w))
}

// --- Enrollment Handler Tests ---

func TestEnroll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	enrollSvc := mocks.NewMockEnrollmentService(ctrl)
	h := NewEnrollmentHandler(enrollSvc, mocks.NewMockCertificateService(ctrl))

	listingID := uuid.New()
	c, w := testContext(t, http.MethodPost, "/", mustJSON(t, dto.EnrollRequest{
		ListingID:    listingID.String(),
		SelectedDate: "2026-09-15",
		SelectedSlot: domain.TimeSlot{StartTime: "10:00", EndTime: "12:00"},
	}))
	asCaller(c, uuid.New(), domain.RoleLearner)

	enrollSvc.EXPECT().Enroll(gomock.Any(), gomock.Any(), ports.EnrollRequest{
		ListingID:    listingID,
		SelectedDate: "2026-09-15",
		SelectedSlot: domain.TimeSlot{StartTime: "10:00", EndTime: "12:00"},
	}, gomock.Any()).Return(&domain.Enrollment{ID: uuid.New()}, nil)

	h.Enroll(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnroll_BadDateRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewEnrollmentHandler(mocks.NewMockEnrollmentService(ctrl), mocks.NewMockCertificateService(ctrl))

	c, w := testContext(t, http.MethodPost, "/", mustJSON(t, dto.EnrollRequest{
		ListingID:    uuid.New().String(),
		SelectedDate: "15/09/2026",
		SelectedSlot: domain.TimeSlot{StartTime: "10:00", EndTime: "12:00"},
	}))
	asCaller(c, uuid.New(), domain.RoleLearner)

	h.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

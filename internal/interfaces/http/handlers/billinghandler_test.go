package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pecal-inc/pecal/internal/application/billing/dto"
	"github.com/pecal-inc/pecal/internal/application/billing/usecases"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers/testutil"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type mockRegisterBillingUC struct {
	cmd    usecases.RegisterBillingCommand
	result *usecases.RegisterBillingResult
	err    error
}

func (m *mockRegisterBillingUC) Execute(ctx context.Context, cmd usecases.RegisterBillingCommand) (*usecases.RegisterBillingResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockGetBillingKeyUC struct {
	result *dto.BillingKeyDTO
	err    error
}

func (m *mockGetBillingKeyUC) Execute(ctx context.Context, memberID uint) (*dto.BillingKeyDTO, error) {
	return m.result, m.err
}

type mockRemoveBillingKeyUC struct {
	memberID uint
	err      error
}

func (m *mockRemoveBillingKeyUC) Execute(ctx context.Context, memberID uint) error {
	m.memberID = memberID
	return m.err
}

func validRegisterBody() dto.RegisterBillingRequest {
	return dto.RegisterBillingRequest{
		CardNo:    "4111111111111111",
		ExpYear:   "27",
		ExpMonth:  "12",
		IDNo:      "800101",
		CardPw:    "12",
		PlanID:    2,
		OwnerID:   42,
		OwnerType: "personal",
	}
}

func TestBillingHandler_Register(t *testing.T) {
	register := &mockRegisterBillingUC{result: &usecases.RegisterBillingResult{
		TID:            "nictest04m01162403050904091234",
		SubscriptionID: 7,
		BillingKeyID:   3,
	}}
	h := NewBillingHandler(register, &mockGetBillingKeyUC{}, &mockRemoveBillingKeyUC{}, logger.NewDiscard())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/register", validRegisterBody())
	testutil.SetAuthContext(c, 42, "member")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp, err := testutil.ParseResponse(w)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	var body dto.RegisterBillingResponse
	require.NoError(t, testutil.DecodeData(resp, &body))
	assert.Equal(t, "nictest04m01162403050904091234", body.TID)
	assert.Equal(t, uint(7), body.SubscriptionID)

	assert.Equal(t, uint(42), register.cmd.MemberID)
	assert.Equal(t, vo.OwnerTypePersonal, register.cmd.OwnerType)
	assert.Equal(t, uint(2), register.cmd.PlanID)
}

func TestBillingHandler_Register_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		ucErr    error
		wantCode int
		wantType string
	}{
		{
			name:     "missing fields",
			body:     map[string]string{"card_no": "4111111111111111"},
			wantCode: http.StatusBadRequest,
			wantType: string(errors.ErrorTypeValidation),
		},
		{
			name:     "bad owner type",
			body:     func() dto.RegisterBillingRequest { b := validRegisterBody(); b.OwnerType = "org"; return b }(),
			wantCode: http.StatusBadRequest,
			wantType: string(errors.ErrorTypeValidation),
		},
		{
			name:     "gateway declined",
			body:     validRegisterBody(),
			ucErr:    errors.NewGatewayError("잔액 부족"),
			wantCode: http.StatusInternalServerError,
			wantType: string(errors.ErrorTypeGateway),
		},
		{
			name:     "not a team member",
			body:     validRegisterBody(),
			ucErr:    errors.NewForbiddenError("not a member of this team"),
			wantCode: http.StatusForbidden,
			wantType: string(errors.ErrorTypeForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBillingHandler(&mockRegisterBillingUC{err: tt.ucErr}, &mockGetBillingKeyUC{}, &mockRemoveBillingKeyUC{}, logger.NewDiscard())
			c, w := testutil.NewTestContext(http.MethodPost, "/billing/register", tt.body)
			testutil.SetAuthContext(c, 42, "member")

			h.Register(c)

			assert.Equal(t, tt.wantCode, w.Code)
			resp, err := testutil.ParseResponse(w)
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantType, resp.ErrorType)
		})
	}
}

func TestBillingHandler_Register_GatewayMessagePassedThrough(t *testing.T) {
	h := NewBillingHandler(&mockRegisterBillingUC{err: errors.NewGatewayError("카드번호 오류")}, &mockGetBillingKeyUC{}, &mockRemoveBillingKeyUC{}, logger.NewDiscard())
	c, w := testutil.NewTestContext(http.MethodPost, "/billing/register", validRegisterBody())
	testutil.SetAuthContext(c, 42, "member")

	h.Register(c)

	resp, err := testutil.ParseResponse(w)
	require.NoError(t, err)
	assert.Equal(t, "카드번호 오류", resp.Error)
}

func TestBillingHandler_GetBillingKey(t *testing.T) {
	t.Run("active key", func(t *testing.T) {
		key := &dto.BillingKeyDTO{ID: 3, CardCode: "04", CardName: "삼성", CardNoMasked: "4111********1111", CreatedAt: time.Now().UTC()}
		h := NewBillingHandler(&mockRegisterBillingUC{}, &mockGetBillingKeyUC{result: key}, &mockRemoveBillingKeyUC{}, logger.NewDiscard())
		c, w := testutil.NewTestContext(http.MethodGet, "/billing/key", nil)
		testutil.SetAuthContext(c, 42, "member")

		h.GetBillingKey(c)

		assert.Equal(t, http.StatusOK, w.Code)
		resp, err := testutil.ParseResponse(w)
		require.NoError(t, err)
		var got dto.BillingKeyDTO
		require.NoError(t, testutil.DecodeData(resp, &got))
		assert.Equal(t, "4111********1111", got.CardNoMasked)
	})

	t.Run("no key", func(t *testing.T) {
		h := NewBillingHandler(&mockRegisterBillingUC{}, &mockGetBillingKeyUC{}, &mockRemoveBillingKeyUC{}, logger.NewDiscard())
		c, w := testutil.NewTestContext(http.MethodGet, "/billing/key", nil)
		testutil.SetAuthContext(c, 42, "member")

		h.GetBillingKey(c)

		assert.Equal(t, http.StatusOK, w.Code)
		resp, err := testutil.ParseResponse(w)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Data)
	})
}

func TestBillingHandler_RemoveBillingKey(t *testing.T) {
	remove := &mockRemoveBillingKeyUC{}
	h := NewBillingHandler(&mockRegisterBillingUC{}, &mockGetBillingKeyUC{}, remove, logger.NewDiscard())
	c, w := testutil.NewTestContext(http.MethodDelete, "/billing/remove", nil)
	testutil.SetAuthContext(c, 42, "member")

	h.RemoveBillingKey(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), remove.memberID)

	remove.err = errors.NewNotFoundError("no active billing key")
	c, w = testutil.NewTestContext(http.MethodDelete, "/billing/remove", nil)
	testutil.SetAuthContext(c, 42, "member")

	h.RemoveBillingKey(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

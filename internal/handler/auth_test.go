package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brian/tmov-booking/internal/config"
	"github.com/brian/tmov-booking/internal/model"
	"github.com/brian/tmov-booking/internal/repository"
	"github.com/brian/tmov-booking/internal/utils"
)

// memberStoreStub is an in-memory MemberStore for auth handler tests.
type memberStoreStub struct {
	nextID  uint64
	byEmail map[string]model.Member
	byID    map[uint64]model.Member
}

func newMemberStoreStub() *memberStoreStub {
	return &memberStoreStub{byEmail: make(map[string]model.Member), byID: make(map[uint64]model.Member)}
}

func (s *memberStoreStub) Create(ctx context.Context, email, displayName, password string, cost int) (uint64, error) {
	if _, ok := s.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.nextID++
	m := model.Member{ID: s.nextID, Email: email, DisplayName: displayName, PasswordHash: hash}
	s.byEmail[email] = m
	s.byID[m.ID] = m
	return m.ID, nil
}

func (s *memberStoreStub) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	m, ok := s.byEmail[email]
	if !ok {
		return model.Member{}, repository.ErrMemberNotFound
	}
	return m, nil
}

func (s *memberStoreStub) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	m, ok := s.byID[id]
	if !ok {
		return model.Member{}, repository.ErrMemberNotFound
	}
	return m, nil
}

func testAuthHandler() *AuthHandler {
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: 4}
	return NewAuthHandler(cfg, newMemberStoreStub())
}

func TestRegister(t *testing.T) {
	h := testAuthHandler()

	body := `{"email":"Alice@Example.com","display_name":"Alice","password":"pw123456"}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/auth/register", body, nil)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	// Email is normalized to lower case and a token is issued.
	assert.Contains(t, rec.Body.String(), `"email":"alice@example.com"`)
	assert.Contains(t, rec.Body.String(), `"token"`)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := testAuthHandler()

	body := `{"email":"alice@example.com","password":"pw123456"}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/auth/register", body, nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c2, rec2 := newBookingContext(t, http.MethodPost, "/api/auth/register", body, nil)
	require.NoError(t, h.Register(c2))
	assert.Equal(t, http.StatusConflict, rec2.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	h := testAuthHandler()
	c, rec := newBookingContext(t, http.MethodPost, "/api/auth/register", `{"email":"a@b.c"}`, nil)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	h := testAuthHandler()

	reg := `{"email":"alice@example.com","password":"pw123456"}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/auth/register", reg, nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c2, rec2 := newBookingContext(t, http.MethodPost, "/api/auth/login", reg, nil)
	require.NoError(t, h.Login(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), `"token"`)

	bad := `{"email":"alice@example.com","password":"wrong"}`
	c3, rec3 := newBookingContext(t, http.MethodPost, "/api/auth/login", bad, nil)
	require.NoError(t, h.Login(c3))
	assert.Equal(t, http.StatusUnauthorized, rec3.Code)
}

func TestLoginUnknownMember(t *testing.T) {
	h := testAuthHandler()
	c, rec := newBookingContext(t, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"pw"}`, nil)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	h := testAuthHandler()

	reg := `{"email":"alice@example.com","display_name":"Alice","password":"pw123456"}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/auth/register", reg, nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c2, rec2 := newBookingContext(t, http.MethodGet, "/api/auth/me", "", uint64(1))
	require.NoError(t, h.Me(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), `"display_name":"Alice"`)
}

func TestMeUnauthorized(t *testing.T) {
	h := testAuthHandler()
	c, rec := newBookingContext(t, http.MethodGet, "/api/auth/me", "", nil)

	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

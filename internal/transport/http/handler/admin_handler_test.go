package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/identity"
	"camp-ratings/internal/transport/http/response"
)

func testIdentity(users *fakeUsers, sender *noopSender) *identity.Service {
	jwter := &auth.JWTer{Secret: []byte("test"), Issuer: "camp-ratings", TTL: time.Hour}
	return identity.NewService(users, noopTokens{}, noopLockout{}, noopDeny{}, sender, jwter,
		zap.NewNop(), "http://localhost:8080", time.Hour)
}

func adminEngine(users *fakeUsers, camps *fakeCamps, reviews *fakeReviews, sender *noopSender) *gin.Engine {
	h := NewAdminHandler(users, camps, reviews, testIdentity(users, sender), nil, zap.NewNop())
	return newEngine("/admin/v1", "a1", domain.RoleAdmin, h.MountAdmin)
}

func TestDashboardCounts(t *testing.T) {
	users := newFakeUsers(
		&domain.User{ID: "u1", Email: "a@x.com"},
		&domain.User{ID: "u2", Email: "b@x.com"},
	)
	camps := newFakeCamps(&domain.Camp{ID: "c1"})
	reviews := newFakeReviews(
		&domain.Review{ID: "r1", CampID: "c1", UserID: "u1"},
		&domain.Review{ID: "r2", CampID: "c1", UserID: "u2"},
		&domain.Review{ID: "r3", CampID: "c1", UserID: "u2"},
	)
	e := adminEngine(users, camps, reviews, &noopSender{})

	env := doJSON(t, e, http.MethodGet, "/admin/v1/dashboard", nil)
	require.Equal(t, response.CodeOK, env.Code)
	var out struct {
		UserCount   int64 `json:"userCount"`
		CampCount   int64 `json:"campCount"`
		ReviewCount int64 `json:"reviewCount"`
	}
	dataOf(t, env, &out)
	assert.Equal(t, int64(2), out.UserCount)
	assert.Equal(t, int64(1), out.CampCount)
	assert.Equal(t, int64(3), out.ReviewCount)
}

func TestAdminCreateUserSendsConfirmation(t *testing.T) {
	users := newFakeUsers()
	sender := &noopSender{}
	e := adminEngine(users, newFakeCamps(), newFakeReviews(), sender)

	env := doJSON(t, e, http.MethodPost, "/admin/v1/users", gin.H{
		"firstName": "New", "lastName": "User", "email": "new@example.com",
		"password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, response.CodeOK, env.Code)
	var out struct {
		User     domain.User `json:"user"`
		Redirect string      `json:"redirect"`
	}
	dataOf(t, env, &out)
	assert.Equal(t, domain.RoleUser, out.User.Role)
	assert.False(t, out.User.EmailConfirmed, "admin-created accounts still confirm by mail")
	assert.Equal(t, "/admin/v1/users", out.Redirect)
	assert.Equal(t, 1, sender.sent)
}

func TestAdminEditUser(t *testing.T) {
	users := newFakeUsers(
		&domain.User{ID: "u1", Email: "one@x.com", FirstName: "One"},
		&domain.User{ID: "u2", Email: "two@x.com"},
	)
	e := adminEngine(users, newFakeCamps(), newFakeReviews(), &noopSender{})

	env := doJSON(t, e, http.MethodPut, "/admin/v1/users/u1", gin.H{
		"firstName": "Renamed", "lastName": "Person", "email": "renamed@x.com",
	})
	require.Equal(t, response.CodeOK, env.Code)
	got := users.byID["u1"]
	assert.Equal(t, "Renamed", got.FirstName)
	assert.Equal(t, "renamed@x.com", got.Email)

	// 换成别人占用的邮箱 → 字段错误
	env = doJSON(t, e, http.MethodPut, "/admin/v1/users/u1", gin.H{
		"firstName": "Renamed", "lastName": "Person", "email": "two@x.com",
	})
	require.Equal(t, response.CodeBadRequest, env.Code)
	assert.Contains(t, fieldsOf(t, env), "email")

	env = doJSON(t, e, http.MethodPut, "/admin/v1/users/missing", gin.H{
		"firstName": "A", "lastName": "B", "email": "c@x.com",
	})
	assert.Equal(t, response.CodeNotFound, env.Code)
}

func TestAdminEditUserNormalizesEmailForLogin(t *testing.T) {
	users := newFakeUsers(confirmedUser("u1", "old@x.com", "pw123456"))
	svc := testIdentity(users, &noopSender{})
	h := NewAdminHandler(users, newFakeCamps(), newFakeReviews(), svc, nil, zap.NewNop())
	e := newEngine("/admin/v1", "a1", domain.RoleAdmin, h.MountAdmin)

	// 管理员手滑带空格大小写的邮箱也必须归一化落库
	env := doJSON(t, e, http.MethodPut, "/admin/v1/users/u1", gin.H{
		"firstName": "Test", "lastName": "User", "email": "  New@X.COM ",
	})
	require.Equal(t, response.CodeOK, env.Code)
	assert.Equal(t, "new@x.com", users.byID["u1"].Email)

	// 改完还能登录（邮箱即登录名）
	_, err := svc.Login(context.Background(), "New@X.COM", "pw123456")
	require.NoError(t, err)

	// 空邮箱 / 烂格式照样被表单校验拦下
	env = doJSON(t, e, http.MethodPut, "/admin/v1/users/u1", gin.H{
		"firstName": "Test", "lastName": "User", "email": "not-an-email",
	})
	require.Equal(t, response.CodeBadRequest, env.Code)
	assert.Contains(t, fieldsOf(t, env), "email")
}

func TestAdminListUsers(t *testing.T) {
	users := newFakeUsers(
		&domain.User{ID: "u1", Email: "ivan@x.com", FirstName: "Ivan"},
		&domain.User{ID: "u2", Email: "maria@x.com", FirstName: "Maria"},
	)
	e := adminEngine(users, newFakeCamps(), newFakeReviews(), &noopSender{})

	var out struct {
		Total int `json:"total"`
	}
	env := doJSON(t, e, http.MethodGet, "/admin/v1/users?q=maria", nil)
	require.Equal(t, response.CodeOK, env.Code)
	dataOf(t, env, &out)
	assert.Equal(t, 1, out.Total)

	env = doJSON(t, e, http.MethodGet, "/admin/v1/users", nil)
	dataOf(t, env, &out)
	assert.Equal(t, 2, out.Total)
}

func TestAdminCannotBeDeletedAtEitherStage(t *testing.T) {
	users := newFakeUsers(&domain.User{ID: "boss", Email: "boss@x.com", Role: domain.RoleAdmin})
	e := adminEngine(users, newFakeCamps(), newFakeReviews(), &noopSender{})

	// 确认页就拦
	env := doJSON(t, e, http.MethodGet, "/admin/v1/users/boss/delete", nil)
	require.Equal(t, response.CodeForbidden, env.Code)
	assert.Equal(t, "Cannot delete an administrator.", env.Msg)

	// 绕过确认页直接提交也拦
	env = doJSON(t, e, http.MethodDelete, "/admin/v1/users/boss", nil)
	require.Equal(t, response.CodeForbidden, env.Code)
	assert.Equal(t, "Cannot delete an administrator.", env.Msg)
	assert.Len(t, users.byID, 1)
}

func TestAdminDeleteUser(t *testing.T) {
	users := newFakeUsers(&domain.User{ID: "u1", Email: "u@x.com", Role: domain.RoleUser})
	e := adminEngine(users, newFakeCamps(), newFakeReviews(), &noopSender{})

	env := doJSON(t, e, http.MethodGet, "/admin/v1/users/u1/delete", nil)
	require.Equal(t, response.CodeOK, env.Code)
	assert.Len(t, users.byID, 1)

	env = doJSON(t, e, http.MethodDelete, "/admin/v1/users/u1", nil)
	require.Equal(t, response.CodeOK, env.Code)
	var out struct {
		Redirect string `json:"redirect"`
	}
	dataOf(t, env, &out)
	assert.Equal(t, "/admin/v1/users", out.Redirect)
	assert.Empty(t, users.byID)

	env = doJSON(t, e, http.MethodDelete, "/admin/v1/users/u1", nil)
	assert.Equal(t, response.CodeNotFound, env.Code)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"camp-ratings/internal/domain"
)

// ---------- in-memory repos ----------

type fakeCamps struct {
	byID      map[string]*domain.Camp
	updateErr error
}

func newFakeCamps(camps ...*domain.Camp) *fakeCamps {
	f := &fakeCamps{byID: map[string]*domain.Camp{}}
	for _, c := range camps {
		cp := *c
		f.byID[c.ID] = &cp
	}
	return f
}

func (f *fakeCamps) Create(_ context.Context, c *domain.Camp) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCamps) FindByID(_ context.Context, id string) (*domain.Camp, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCamps) FindByIDWithReviews(ctx context.Context, id string) (*domain.Camp, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeCamps) Search(_ context.Context, term string) ([]domain.Camp, error) {
	var out []domain.Camp
	for _, c := range f.byID {
		if term == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCamps) Update(_ context.Context, c *domain.Camp) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCamps) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCamps) Count(_ context.Context) (int64, error) { return int64(len(f.byID)), nil }

type fakeReviews struct {
	byID    map[string]*domain.Review
	created int
}

func newFakeReviews(reviews ...*domain.Review) *fakeReviews {
	f := &fakeReviews{byID: map[string]*domain.Review{}}
	for _, r := range reviews {
		cp := *r
		f.byID[r.ID] = &cp
	}
	return f
}

func (f *fakeReviews) Create(_ context.Context, r *domain.Review) error {
	cp := *r
	f.byID[r.ID] = &cp
	f.created++
	return nil
}

func (f *fakeReviews) FindByID(_ context.Context, id string) (*domain.Review, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeReviews) ListByUser(_ context.Context, userID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviews) List(_ context.Context, campID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.byID {
		if campID == "" || r.CampID == campID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviews) UpdateContent(_ context.Context, id string, rating int, content string) error {
	r, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Rating = rating
	r.Content = content
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReviews) Count(_ context.Context) (int64, error) { return int64(len(f.byID)), nil }

type fakeUsers struct {
	byID map[string]*domain.User
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		cp := *u
		f.byID[u.ID] = &cp
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	for _, e := range f.byID {
		if e.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) List(_ context.Context, q string) ([]domain.User, error) {
	var out []domain.User
	q = strings.ToLower(q)
	for _, u := range f.byID {
		hay := strings.ToLower(u.Email + " " + u.FirstName + " " + u.LastName)
		if q == "" || strings.Contains(hay, q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListNonAdmins(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.byID {
		if !domain.IsAdmin(u.Role) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.User) error {
	for id, e := range f.byID {
		if e.Email == u.Email && id != u.ID {
			return domain.ErrDuplicateEmail
		}
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) DeleteNonAdmin(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !domain.CanDeleteUser(u) {
		return domain.ErrAdminUndeletable
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) Count(_ context.Context) (int64, error) { return int64(len(f.byID)), nil }

// ---------- identity plumbing fakes ----------

type noopTokens struct{}

func (noopTokens) Save(context.Context, string, string, time.Duration) error { return nil }
func (noopTokens) Consume(context.Context, string, string) (bool, error)     { return true, nil }

type noopLockout struct{}

func (noopLockout) Fail(context.Context, string) (bool, error)  { return false, nil }
func (noopLockout) Locked(context.Context, string) (bool, error) { return false, nil }
func (noopLockout) Reset(context.Context, string) error          { return nil }

type noopDeny struct{}

func (noopDeny) Revoke(context.Context, string, time.Duration) error { return nil }
func (noopDeny) Revoked(context.Context, string) (bool, error)       { return false, nil }

type noopSender struct{ sent int }

func (s *noopSender) Send(context.Context, string, string, string) error {
	s.sent++
	return nil
}

// ---------- http plumbing ----------

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// newEngine 挂一个假登录中间件，把 userId/role 写进上下文
func newEngine(prefix, uid, role string, mount func(g *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	g := e.Group(prefix)
	g.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set("userId", uid)
			c.Set("role", role)
		}
	})
	mount(g)
	return e
}

func doJSON(t *testing.T, e *gin.Engine, method, path string, body any) envelope {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func doMultipart(t *testing.T, e *gin.Engine, method, path string, fields map[string]string, photo []byte) envelope {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func dataOf(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// fieldsOf 从 Invalid 响应里取字段错误
func fieldsOf(t *testing.T, env envelope) map[string]string {
	t.Helper()
	var d struct {
		Fields map[string]string `json:"fields"`
	}
	dataOf(t, env, &d)
	return d.Fields
}

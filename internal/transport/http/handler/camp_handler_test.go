package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"camp-ratings/internal/domain"
	"camp-ratings/internal/transport/http/response"
)

func campAPI(camps *fakeCamps) *gin.Engine {
	h := NewCampHandler(camps, nil, zap.NewNop())
	return newEngine("/api/v1", "", "", h.MountAPI)
}

func campAdmin(camps *fakeCamps) *gin.Engine {
	h := NewCampHandler(camps, nil, zap.NewNop())
	return newEngine("/admin/v1", "a1", domain.RoleAdmin, h.MountAdmin)
}

func campFields(name string, lat, lng float64) map[string]string {
	return map[string]string{
		"name":      name,
		"latitude":  strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude": strconv.FormatFloat(lng, 'f', -1, 64),
	}
}

func TestCampSearchFiltersByName(t *testing.T) {
	e := campAPI(newFakeCamps(
		&domain.Camp{ID: "c1", Name: "Pine Valley"},
		&domain.Camp{ID: "c2", Name: "Oak Grove"},
		&domain.Camp{ID: "c3", Name: "Pinewood Lake"},
	))

	var out struct {
		Items []domain.Camp `json:"items"`
		Total int           `json:"total"`
	}

	env := doJSON(t, e, http.MethodGet, "/api/v1/camps?search=pine", nil)
	require.Equal(t, response.CodeOK, env.Code)
	dataOf(t, env, &out)
	assert.Equal(t, 2, out.Total)

	env = doJSON(t, e, http.MethodGet, "/api/v1/camps", nil)
	dataOf(t, env, &out)
	assert.Equal(t, 3, out.Total, "empty search returns everything")
}

func TestCampDetails(t *testing.T) {
	e := campAPI(newFakeCamps(&domain.Camp{ID: "c1", Name: "Pine Valley"}))

	env := doJSON(t, e, http.MethodGet, "/api/v1/camps/c1", nil)
	require.Equal(t, response.CodeOK, env.Code)
	var camp domain.Camp
	dataOf(t, env, &camp)
	assert.Equal(t, "Pine Valley", camp.Name)

	env = doJSON(t, e, http.MethodGet, "/api/v1/camps/missing", nil)
	assert.Equal(t, response.CodeNotFound, env.Code)
}

func TestCreateCampValidation(t *testing.T) {
	camps := newFakeCamps()
	e := campAdmin(camps)

	env := doJSON(t, e, http.MethodPost, "/admin/v1/camps", gin.H{
		"name": "", "latitude": 100.0, "longitude": 200.0,
	})
	require.Equal(t, response.CodeBadRequest, env.Code)
	fields := fieldsOf(t, env)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")
	assert.Empty(t, camps.byID, "invalid form must not be persisted")
}

func TestCreateCamp(t *testing.T) {
	camps := newFakeCamps()
	e := campAdmin(camps)

	env := doJSON(t, e, http.MethodPost, "/admin/v1/camps", gin.H{
		"name": "  Pine Valley  ", "description": "quiet", "latitude": 42.5, "longitude": 23.3,
	})
	require.Equal(t, response.CodeOK, env.Code)
	var out struct {
		Camp     domain.Camp `json:"camp"`
		Redirect string      `json:"redirect"`
	}
	dataOf(t, env, &out)
	assert.Equal(t, "Pine Valley", out.Camp.Name, "name is trimmed")
	assert.Equal(t, "/api/v1/camps", out.Redirect)
	require.Len(t, camps.byID, 1)
}

func TestCreateCampPhotoSizeBoundary(t *testing.T) {
	camps := newFakeCamps()
	e := campAdmin(camps)

	// 正好 2MB：收下
	exact := bytes.Repeat([]byte{0xAB}, domain.MaxPhotoBytes)
	env := doMultipart(t, e, http.MethodPost, "/admin/v1/camps", campFields("With Photo", 1, 1), exact)
	require.Equal(t, response.CodeOK, env.Code)

	// 超一个字节：照片静默丢弃，营地照存
	over := bytes.Repeat([]byte{0xCD}, domain.MaxPhotoBytes+1)
	env = doMultipart(t, e, http.MethodPost, "/admin/v1/camps", campFields("Oversized Photo", 1, 1), over)
	require.Equal(t, response.CodeOK, env.Code)

	require.Len(t, camps.byID, 2)
	for _, c := range camps.byID {
		switch c.Name {
		case "With Photo":
			assert.Len(t, c.Photo, domain.MaxPhotoBytes)
		case "Oversized Photo":
			assert.Nil(t, c.Photo)
		}
	}
}

func TestUpdateCamp(t *testing.T) {
	camps := newFakeCamps(&domain.Camp{
		ID: "c1", Name: "Old Name", Photo: []byte("existing"),
	})
	e := campAdmin(camps)

	env := doJSON(t, e, http.MethodPut, "/admin/v1/camps/c1", gin.H{
		"id": "c1", "name": "New Name", "latitude": 10.0, "longitude": 20.0,
	})
	require.Equal(t, response.CodeOK, env.Code)
	got := camps.byID["c1"]
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, []byte("existing"), got.Photo, "photo survives an update without a new upload")
}

func TestUpdateCampBodyIDMismatchIsNotFound(t *testing.T) {
	camps := newFakeCamps(&domain.Camp{ID: "c1", Name: "Camp"})
	e := campAdmin(camps)

	env := doJSON(t, e, http.MethodPut, "/admin/v1/camps/c1", gin.H{
		"id": "c2", "name": "Hijack", "latitude": 0.0, "longitude": 0.0,
	})
	assert.Equal(t, response.CodeNotFound, env.Code)
	assert.Equal(t, "Camp", camps.byID["c1"].Name)
}

func TestUpdateCampVanishedBetweenLoadAndSave(t *testing.T) {
	camps := newFakeCamps(&domain.Camp{ID: "c1", Name: "Camp"})
	camps.updateErr = domain.ErrNotFound
	e := campAdmin(camps)

	env := doJSON(t, e, http.MethodPut, "/admin/v1/camps/c1", gin.H{
		"name": "New", "latitude": 0.0, "longitude": 0.0,
	})
	assert.Equal(t, response.CodeNotFound, env.Code)
}

func TestCampTwoPhaseDelete(t *testing.T) {
	camps := newFakeCamps(&domain.Camp{ID: "c1", Name: "Doomed"})
	e := campAdmin(camps)

	// 第一段只确认，不删
	env := doJSON(t, e, http.MethodGet, "/admin/v1/camps/c1/delete", nil)
	require.Equal(t, response.CodeOK, env.Code)
	var confirm struct {
		Confirm string `json:"confirm"`
	}
	dataOf(t, env, &confirm)
	assert.Equal(t, "DELETE /admin/v1/camps/c1", confirm.Confirm)
	assert.Len(t, camps.byID, 1)

	// 第二段真删
	env = doJSON(t, e, http.MethodDelete, "/admin/v1/camps/c1", nil)
	require.Equal(t, response.CodeOK, env.Code)
	assert.Empty(t, camps.byID)

	// 再删 404
	env = doJSON(t, e, http.MethodDelete, "/admin/v1/camps/c1", nil)
	assert.Equal(t, response.CodeNotFound, env.Code)

	env = doJSON(t, e, http.MethodGet, "/admin/v1/camps/c1/delete", nil)
	assert.Equal(t, response.CodeNotFound, env.Code)
}

package handler

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"camp-ratings/internal/core/cache"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/transport/http/action"
	"camp-ratings/pkg/utils"
)

const campDetailTTL = 5 * time.Minute

func campDetailKey(id string) string { return "camp:detail:" + id }

type CampHandler struct {
	camps domain.CampRepository
	cache *cache.Cache // 可为 nil（测试不接 redis）
	log   *zap.Logger
}

func NewCampHandler(camps domain.CampRepository, c *cache.Cache, log *zap.Logger) *CampHandler {
	return &CampHandler{camps: camps, cache: c, log: log}
}

// MountAPI 公开读：列表 + 详情
func (h *CampHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/camps", h.list)
	g.GET("/camps/:id", h.details)
}

// MountAdmin 管理端写：建 / 改 / 两段删
func (h *CampHandler) MountAdmin(g *gin.RouterGroup) {
	g.POST("/camps", h.create)
	g.PUT("/camps/:id", h.update)
	g.GET("/camps/:id/delete", h.deleteConfirm)
	g.DELETE("/camps/:id", h.deleteConfirmed)
}

func (h *CampHandler) list(c *gin.Context) {
	camps, err := h.camps.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		action.Fail(c, action.Internal("list camps failed", err))
		return
	}
	action.OK(c, gin.H{"items": camps, "total": len(camps)})
}

func (h *CampHandler) details(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	load := func(ctx context.Context) (*domain.Camp, error) {
		return h.camps.FindByIDWithReviews(ctx, id)
	}

	var camp *domain.Camp
	var err error
	if h.cache != nil {
		camp, err = cache.GetOrLoadJSON[domain.Camp](h.cache, ctx, campDetailKey(id), campDetailTTL, load)
	} else {
		camp, err = load(ctx)
	}
	if err != nil {
		action.Fail(c, action.Internal("load camp failed", err))
		return
	}
	if camp == nil {
		action.Fail(c, action.NotFound("camp not found"))
		return
	}
	action.OK(c, camp)
}

type campForm struct {
	ID          string  `form:"id" json:"id"`
	Name        string  `form:"name" json:"name"`
	Description string  `form:"description" json:"description"`
	Latitude    float64 `form:"latitude" json:"latitude"`
	Longitude   float64 `form:"longitude" json:"longitude"`
}

func validateCamp(f campForm) map[string]string {
	fields := map[string]string{}
	name := strings.TrimSpace(f.Name)
	if name == "" {
		fields["name"] = "The Name field is required."
	} else if len(name) > 64 {
		fields["name"] = "Name can't be more than 64 characters."
	}
	if len(f.Description) > 255 {
		fields["description"] = "Description can't be more than 255 characters."
	}
	if f.Latitude < -90 || f.Latitude > 90 {
		fields["latitude"] = "Latitude must be between -90 and 90."
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		fields["longitude"] = "Longitude must be between -180 and 180."
	}
	return fields
}

// readPhoto 没有照片返回 nil；超过 2MB 的照片静默丢弃（只记日志）
func (h *CampHandler) readPhoto(c *gin.Context) []byte {
	fh, err := c.FormFile("photo")
	if err != nil || fh == nil {
		return nil
	}
	if fh.Size > domain.MaxPhotoBytes {
		h.log.Warn("photo exceeds 2MB, dropped",
			zap.String("filename", fh.Filename), zap.Int64("size", fh.Size))
		return nil
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Warn("open photo failed", zap.Error(err))
		return nil
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		h.log.Warn("read photo failed", zap.Error(err))
		return nil
	}
	return b
}

func (h *CampHandler) create(c *gin.Context) {
	var f campForm
	if err := c.ShouldBind(&f); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	if fields := validateCamp(f); len(fields) > 0 {
		action.Fail(c, action.Invalid(fields))
		return
	}

	camp := &domain.Camp{
		ID:          utils.NewID(),
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		Photo:       h.readPhoto(c),
	}
	if err := h.camps.Create(c.Request.Context(), camp); err != nil {
		action.Fail(c, action.Internal("create camp failed", err))
		return
	}
	h.log.Info("camp created", zap.String("camp", camp.ID))
	action.OK(c, gin.H{"camp": camp, "redirect": "/api/v1/camps"})
}

func (h *CampHandler) update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var f campForm
	if err := c.ShouldBind(&f); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	if f.ID != "" && f.ID != id {
		action.Fail(c, action.NotFound("camp not found"))
		return
	}
	if fields := validateCamp(f); len(fields) > 0 {
		action.Fail(c, action.Invalid(fields))
		return
	}

	camp, err := h.camps.FindByID(ctx, id)
	if err != nil {
		action.Fail(c, action.Internal("load camp failed", err))
		return
	}
	if camp == nil {
		action.Fail(c, action.NotFound("camp not found"))
		return
	}

	camp.Name = strings.TrimSpace(f.Name)
	camp.Description = f.Description
	camp.Latitude = f.Latitude
	camp.Longitude = f.Longitude
	if photo := h.readPhoto(c); photo != nil {
		camp.Photo = photo
	}

	if err := h.camps.Update(ctx, camp); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// 读取和保存之间行没了
			action.Fail(c, action.NotFound("camp not found"))
			return
		}
		action.Fail(c, action.Internal("update camp failed", err))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, campDetailKey(id))
	}
	action.OK(c, gin.H{"camp": camp, "redirect": "/api/v1/camps"})
}

// deleteConfirm 两段删第一段：GET 只回确认信息，不动数据
func (h *CampHandler) deleteConfirm(c *gin.Context) {
	camp, err := h.camps.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		action.Fail(c, action.Internal("load camp failed", err))
		return
	}
	if camp == nil {
		action.Fail(c, action.NotFound("camp not found"))
		return
	}
	action.OK(c, gin.H{"camp": camp, "confirm": "DELETE /admin/v1/camps/" + camp.ID})
}

func (h *CampHandler) deleteConfirmed(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.camps.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			action.Fail(c, action.NotFound("camp not found"))
			return
		}
		action.Fail(c, action.Internal("delete camp failed", err))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, campDetailKey(id))
	}
	h.log.Info("camp deleted", zap.String("camp", id))
	action.OK(c, gin.H{"redirect": "/api/v1/camps"})
}

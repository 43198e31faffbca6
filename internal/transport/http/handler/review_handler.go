package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"camp-ratings/internal/core/cache"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/transport/http/action"
	"camp-ratings/pkg/utils"
)

type ReviewHandler struct {
	reviews domain.ReviewRepository
	camps   domain.CampRepository
	cache   *cache.Cache // 可为 nil
	log     *zap.Logger
}

func NewReviewHandler(reviews domain.ReviewRepository, camps domain.CampRepository, c *cache.Cache, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, camps: camps, cache: c, log: log}
}

// MountAPI 全部要求登录，挂在鉴权分组下
func (h *ReviewHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/reviews/mine", h.myReviews)
	g.GET("/reviews", h.list)
	g.GET("/camps/:id/reviews/new", h.newForm)
	g.POST("/reviews", h.create)
	g.GET("/reviews/:id", h.editForm)
	g.PUT("/reviews/:id", h.edit)
	g.GET("/reviews/:id/delete", h.deleteConfirm)
	g.DELETE("/reviews/:id", h.deleteConfirmed)
}

func toRow(r domain.Review) domain.ReviewRow {
	row := domain.ReviewRow{
		ID:        r.ID,
		Rating:    r.Rating,
		Content:   r.Content,
		CreatedOn: r.CreatedOn,
		CampID:    r.CampID,
		UserID:    r.UserID,
	}
	if r.Camp != nil {
		row.CampName = r.Camp.Name
	}
	if r.User != nil {
		row.UserName = strings.TrimSpace(r.User.FirstName + " " + r.User.LastName)
	}
	return row
}

func (h *ReviewHandler) myReviews(c *gin.Context) {
	uid := c.GetString("userId")
	reviews, err := h.reviews.ListByUser(c.Request.Context(), uid)
	if err != nil {
		action.Fail(c, action.Internal("list reviews failed", err))
		return
	}
	rows := make([]domain.ReviewRow, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, toRow(r))
	}
	action.OK(c, gin.H{"items": rows, "total": len(rows)})
}

func (h *ReviewHandler) list(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context(), c.Query("campId"))
	if err != nil {
		action.Fail(c, action.Internal("list reviews failed", err))
		return
	}
	rows := make([]domain.ReviewRow, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, toRow(r))
	}
	action.OK(c, gin.H{"items": rows, "total": len(rows)})
}

// newForm 空白表单，绑定目标营地
func (h *ReviewHandler) newForm(c *gin.Context) {
	camp, err := h.camps.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		action.Fail(c, action.Internal("load camp failed", err))
		return
	}
	if camp == nil {
		action.Fail(c, action.NotFound("camp not found"))
		return
	}
	action.OK(c, gin.H{"campId": camp.ID, "campName": camp.Name, "rating": 0, "content": ""})
}

type reviewForm struct {
	CampID  string `json:"campId" form:"campId"`
	Rating  int    `json:"rating" form:"rating"`
	Content string `json:"content" form:"content"`
}

// validateReview 内容检查先于其它所有检查
func validateReview(rating int, content string) map[string]string {
	if strings.TrimSpace(content) == "" {
		return map[string]string{"content": "Content cannot be empty."}
	}
	fields := map[string]string{}
	if len(content) > 500 {
		fields["content"] = "Review content can't be more than 500 characters."
	}
	if rating < 1 || rating > 5 {
		fields["rating"] = "Rating must be between 1 and 5."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (h *ReviewHandler) create(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.GetString("userId")

	var f reviewForm
	if err := c.ShouldBind(&f); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	if fields := validateReview(f.Rating, f.Content); fields != nil {
		action.Fail(c, action.Invalid(fields))
		return
	}

	camp, err := h.camps.FindByID(ctx, f.CampID)
	if err != nil {
		action.Fail(c, action.Internal("load camp failed", err))
		return
	}
	if camp == nil {
		action.Fail(c, action.NotFound("camp not found"))
		return
	}

	// UserID 永远取自登录态，CreatedOn 永远取服务端时间
	review := &domain.Review{
		ID:        utils.NewID(),
		CampID:    f.CampID,
		UserID:    uid,
		Rating:    f.Rating,
		Content:   f.Content,
		CreatedOn: time.Now(),
	}
	if err := h.reviews.Create(ctx, review); err != nil {
		action.Fail(c, action.Internal("create review failed", err))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, campDetailKey(f.CampID))
	}
	h.log.Info("review created", zap.String("review", review.ID), zap.String("camp", f.CampID))
	action.OK(c, gin.H{"review": review, "redirect": "/api/v1/camps/" + f.CampID})
}

// loadOwned 先判断存在（404），再判断归属（403），顺序不能反
func (h *ReviewHandler) loadOwned(c *gin.Context) (*domain.Review, bool) {
	review, err := h.reviews.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		action.Fail(c, action.Internal("load review failed", err))
		return nil, false
	}
	if review == nil {
		action.Fail(c, action.NotFound("review not found"))
		return nil, false
	}
	if !domain.CanMutateReview(c.GetString("userId"), review) {
		action.Fail(c, action.Forbidden("not the author of this review"))
		return nil, false
	}
	return review, true
}

func (h *ReviewHandler) editForm(c *gin.Context) {
	review, ok := h.loadOwned(c)
	if !ok {
		return
	}
	action.OK(c, gin.H{
		"id":      review.ID,
		"campId":  review.CampID,
		"rating":  review.Rating,
		"content": review.Content,
	})
}

func (h *ReviewHandler) edit(c *gin.Context) {
	ctx := c.Request.Context()
	review, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var f reviewForm
	if err := c.ShouldBind(&f); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	if fields := validateReview(f.Rating, f.Content); fields != nil {
		action.Fail(c, action.Invalid(fields))
		return
	}

	// 只动 rating/content；campId/userId/createdOn 传什么都不理
	if err := h.reviews.UpdateContent(ctx, review.ID, f.Rating, f.Content); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			action.Fail(c, action.NotFound("review not found"))
			return
		}
		action.Fail(c, action.Internal("update review failed", err))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, campDetailKey(review.CampID))
	}
	action.OK(c, gin.H{"redirect": "/api/v1/camps/" + review.CampID})
}

func (h *ReviewHandler) deleteConfirm(c *gin.Context) {
	review, ok := h.loadOwned(c)
	if !ok {
		return
	}
	action.OK(c, gin.H{"review": toRow(*review), "confirm": "DELETE /api/v1/reviews/" + review.ID})
}

func (h *ReviewHandler) deleteConfirmed(c *gin.Context) {
	ctx := c.Request.Context()
	review, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.reviews.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			action.Fail(c, action.NotFound("review not found"))
			return
		}
		action.Fail(c, action.Internal("delete review failed", err))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, campDetailKey(review.CampID))
	}
	h.log.Info("review deleted", zap.String("review", review.ID))
	action.OK(c, gin.H{"redirect": "/api/v1/reviews/mine"})
}

// Package handler はactivitiesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fitness_backend/internal/api"
	"fitness_backend/internal/feature/activities/domain/entity"
	"fitness_backend/internal/feature/activities/transport/http/dto"
	"fitness_backend/internal/feature/activities/usecase"
	jwtmw "fitness_backend/internal/platform/jwt"
	"fitness_backend/internal/shared/validation"
)

const (
	DetailUpdated = "Activity updated successfully."
	DetailDeleted = "Activity deleted successfully."
)

// ActivityUsecase はアクティビティ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ActivityUsecase interface {
	Create(ctx context.Context, ownerID uint, in usecase.CreateInput) (*entity.Activity, error)
	List(ctx context.Context, ownerID uint) ([]entity.Activity, error)
	Get(ctx context.Context, ownerID, id uint) (*entity.Activity, error)
	Update(ctx context.Context, ownerID, id uint, in usecase.UpdateInput) (*entity.Activity, error)
	Replace(ctx context.Context, ownerID, id uint, in usecase.CreateInput) (*entity.Activity, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

// ActivityHandler はアクティビティのHTTPリクエストを処理します。
// すべてのルートはjwtmw.AuthRequiredの後ろに登録されます。
type ActivityHandler struct {
	uc ActivityUsecase
}

// NewActivityHandler は指定されたusecaseでActivityHandlerの新しいインスタンスを生成します。
func NewActivityHandler(uc ActivityUsecase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

// owner returns the authenticated user ID or aborts with 401.
func owner(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		api.AbortDetail(c, http.StatusUnauthorized, api.DetailNotAuthenticated)
		return 0, false
	}
	return id, true
}

// activityID parses the :id path parameter. Anything that is not a positive
// integer cannot name an activity and is reported as not found.
func activityID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		api.AbortDetail(c, http.StatusNotFound, api.DetailNotFound)
		return 0, false
	}
	return uint(id), true
}

// fail maps usecase errors to responses.
func fail(c *gin.Context, op string, err error) {
	if errs, ok := validation.As(err); ok {
		api.AbortValidation(c, errs)
		return
	}
	if errors.Is(err, usecase.ErrActivityNotFound) {
		api.AbortDetail(c, http.StatusNotFound, api.DetailNotFound)
		return
	}
	slog.Error("activity operation failed", "op", op, "error", err, "remote_addr", c.ClientIP())
	api.AbortDetail(c, http.StatusInternalServerError, api.DetailInternal)
}

// Create はアクティビティを作成します。
//
// POST /activities/create/
func (h *ActivityHandler) Create(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req dto.CreateActivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}
	if errs := req.NullFields(); len(errs) > 0 {
		api.AbortValidation(c, errs)
		return
	}

	a, err := h.uc.Create(c.Request.Context(), ownerID, usecase.CreateInput{
		ActivityType: req.ActivityType,
		Description:  req.Description,
		Date:         req.Date,
		Status:       req.Status.Ptr(),
	})
	if err != nil {
		fail(c, "create", err)
		return
	}

	slog.Info("activity created", "user_id", ownerID, "activity_id", a.ID)
	c.JSON(http.StatusCreated, dto.NewActivityResponse(*a))
}

// List は認証ユーザーのアクティビティを日付の降順で返します。
//
// GET /activities/
func (h *ActivityHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	activities, err := h.uc.List(c.Request.Context(), ownerID)
	if err != nil {
		fail(c, "list", err)
		return
	}

	out := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, dto.NewActivityResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// Get は1件のアクティビティを返します。
//
// GET /activities/:id/
func (h *ActivityHandler) Get(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := activityID(c)
	if !ok {
		return
	}

	a, err := h.uc.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewActivityResponse(*a))
}

// Update は指定されたフィールドのみ更新します。
//
// PATCH /activities/:id/
func (h *ActivityHandler) Update(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := activityID(c)
	if !ok {
		return
	}

	var req dto.UpdateActivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}
	if errs := req.NullFields(); len(errs) > 0 {
		api.AbortValidation(c, errs)
		return
	}

	a, err := h.uc.Update(c.Request.Context(), ownerID, id, usecase.UpdateInput{
		ActivityType: req.ActivityType.Ptr(),
		Description:  req.Description.Ptr(),
		Date:         req.Date.Ptr(),
		Status:       req.Status.Ptr(),
	})
	if err != nil {
		fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, dto.ActivityDetailResponse{Detail: DetailUpdated, Activity: dto.NewActivityResponse(*a)})
}

// Replace は全フィールドを置き換えます。
//
// PUT /activities/:id/
func (h *ActivityHandler) Replace(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := activityID(c)
	if !ok {
		return
	}

	var req dto.CreateActivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}
	if errs := req.NullFields(); len(errs) > 0 {
		api.AbortValidation(c, errs)
		return
	}

	a, err := h.uc.Replace(c.Request.Context(), ownerID, id, usecase.CreateInput{
		ActivityType: req.ActivityType,
		Description:  req.Description,
		Date:         req.Date,
		Status:       req.Status.Ptr(),
	})
	if err != nil {
		fail(c, "replace", err)
		return
	}
	c.JSON(http.StatusOK, dto.ActivityDetailResponse{Detail: DetailUpdated, Activity: dto.NewActivityResponse(*a)})
}

// Delete はアクティビティを削除します。
//
// DELETE /activities/:id/
func (h *ActivityHandler) Delete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := activityID(c)
	if !ok {
		return
	}

	if err := h.uc.Delete(c.Request.Context(), ownerID, id); err != nil {
		fail(c, "delete", err)
		return
	}

	slog.Info("activity deleted", "user_id", ownerID, "activity_id", id)
	c.JSON(http.StatusOK, api.DetailResponse{Detail: DetailDeleted})
}

package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SubscriptionHandler serves đăng ký gói tập.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	log                 logrus.FieldLogger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, log logrus.FieldLogger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, log: log}
}

type RegisterPackageRequest struct {
	PackageID string `json:"maGoiTap" binding:"required"`
}

// Register godoc
// @Summary Register for a package
// @Description Creates a registration waiting for the owner to confirm payment.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterPackageRequest true "Package to buy"
// @Success 201 {object} envelope
// @Failure 409 {object} errorResponse "Already has a pending or active registration"
// @Router /dangky [post]
func (h *SubscriptionHandler) Register(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req RegisterPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	packageID, err := parseObjectID(req.PackageID, "maGoiTap")
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	sub, err := h.subscriptionService.Register(c.Request.Context(), actor.ID, packageID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Đăng ký gói tập thành công, vui lòng chờ xác nhận", sub)
}

// Confirm godoc
// @Summary Confirm payment of a registration
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} envelope
// @Router /dangky/{id}/xac-nhan [put]
func (h *SubscriptionHandler) Confirm(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.subscriptionService.Confirm(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Xác nhận đăng ký thành công", sub)
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Members may cancel their own pending registration; the owner may cancel any pending or active one.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} envelope
// @Router /dangky/{id}/huy [put]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.subscriptionService.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Đã hủy đăng ký", sub)
}

// ListMine godoc
// @Summary The member's registrations
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /dangky/cua-toi [get]
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	subs, err := h.subscriptionService.ListForMember(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy danh sách đăng ký thành công", subs)
}

// List godoc
// @Summary All registrations
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param trangThai query string false "CHO_XAC_NHAN, DANG_HOAT_DONG, HET_HAN or DA_HUY"
// @Success 200 {object} envelope
// @Router /dangky [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	subs, err := h.subscriptionService.List(c.Request.Context(), domain.SubscriptionStatus(c.Query("trangThai")))
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy danh sách đăng ký thành công", subs)
}

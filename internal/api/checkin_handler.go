package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CheckinHandler serves the QR check-in flow.
type CheckinHandler struct {
	checkinService service.CheckinService
	log            logrus.FieldLogger
}

func NewCheckinHandler(checkinService service.CheckinService, log logrus.FieldLogger) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService, log: log}
}

type ScanRequest struct {
	Token string `json:"token" binding:"required"`
}

type QRResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"hetHanLuc"`
	Image     string    `json:"qrCode"` // data URL of the PNG
}

type ScanResponse struct {
	Action domain.ScanAction `json:"hanhDong"`
	Visit  domain.Visit      `json:"luotTap"`
}

// IssueQR godoc
// @Summary Current gym QR code
// @Description Short-lived signed token and its PNG, shown at the entrance.
// @Tags Check-in
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /checkin/qr [get]
func (h *CheckinHandler) IssueQR(c *gin.Context) {
	qr, err := h.checkinService.IssueQR(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Tạo mã QR thành công", QRResponse{
		Token:     qr.Token,
		ExpiresAt: qr.ExpiresAt,
		Image:     "data:image/png;base64," + qr.PNGBase64,
	})
}

// Scan godoc
// @Summary Scan the gym QR code
// @Description Checks the member in, or out when they are already inside.
// @Tags Check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScanRequest true "Scanned token"
// @Success 200 {object} envelope
// @Failure 400 {object} errorResponse "Invalid code or no active registration"
// @Failure 409 {object} errorResponse "Scan already being processed"
// @Router /checkin/scan [post]
func (h *CheckinHandler) Scan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	result, err := h.checkinService.Scan(c.Request.Context(), actor.ID, req.Token)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	message := "Check-in thành công"
	if result.Action == domain.ScanCheckOut {
		message = "Check-out thành công"
	}
	respond(c, http.StatusOK, message, ScanResponse{Action: result.Action, Visit: result.Visit})
}

// MyVisits godoc
// @Summary The member's visits, latest first
// @Tags Check-in
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries"
// @Success 200 {object} envelope
// @Router /checkin/cua-toi [get]
func (h *CheckinHandler) MyVisits(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	visits, err := h.checkinService.ListForMember(c.Request.Context(), actor.ID, limit)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy lịch sử check-in thành công", visits)
}

// Today godoc
// @Summary Visits since midnight
// @Tags Check-in
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /checkin/hom-nay [get]
func (h *CheckinHandler) Today(c *gin.Context) {
	visits, err := h.checkinService.Today(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy danh sách check-in hôm nay thành công", visits)
}

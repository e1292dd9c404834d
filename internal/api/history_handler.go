package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryHandler serves lịch sử tập.
type HistoryHandler struct {
	historyService service.HistoryService
	log            logrus.FieldLogger
}

func NewHistoryHandler(historyService service.HistoryService, log logrus.FieldLogger) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, log: log}
}

type RecordHistoryRequest struct {
	MemberID        string               `json:"maHoiVien"` // required when a PT records
	SessionID       string               `json:"maBuoiTap"`
	WorkoutDate     *time.Time           `json:"ngayTap"`
	DurationMinutes int                  `json:"thoiLuong" binding:"required,gt=0"`
	Exercises       []domain.ExerciseLog `json:"baiTap"`
	CaloriesBurned  int                  `json:"caloTieuHao" binding:"gte=0"`
	Notes           string               `json:"ghiChu"`
}

// RecordHistory godoc
// @Summary Record a workout
// @Description Members record for themselves; a PT records for a member they train.
// @Tags History
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordHistoryRequest true "Workout"
// @Success 201 {object} envelope
// @Failure 403 {object} errorResponse
// @Router /lichsutap [post]
func (h *HistoryHandler) RecordHistory(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req RecordHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	in := service.HistoryInput{
		WorkoutDate:     req.WorkoutDate,
		DurationMinutes: req.DurationMinutes,
		Exercises:       req.Exercises,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	}
	if req.MemberID != "" {
		memberID, err := parseObjectID(req.MemberID, "maHoiVien")
		if err != nil {
			abortWithServiceError(c, h.log, err)
			return
		}
		in.MemberID = memberID
	}
	if req.SessionID != "" {
		sessionID, err := parseObjectID(req.SessionID, "maBuoiTap")
		if err != nil {
			abortWithServiceError(c, h.log, err)
			return
		}
		in.SessionID = &sessionID
	}

	entry, err := h.historyService.Record(c.Request.Context(), actor, in)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Ghi lịch sử tập thành công", entry)
}

// ListMemberHistory godoc
// @Summary A member's workout history, newest first
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param maHoiVien path string true "Member ID"
// @Param tuNgay query string false "From date, YYYY-MM-DD"
// @Param denNgay query string false "To date, YYYY-MM-DD"
// @Success 200 {object} envelope
// @Router /lichsutap/hoivien/{maHoiVien} [get]
func (h *HistoryHandler) ListMemberHistory(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	memberID, ok := objectIDParam(c, "maHoiVien")
	if !ok {
		return
	}
	entries, err := h.historyService.ListForMember(c.Request.Context(), actor, memberID, c.Query("tuNgay"), c.Query("denNgay"))
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy lịch sử tập thành công", entries)
}

// MemberStats godoc
// @Summary Workout totals and the last 8 weeks
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param maHoiVien path string true "Member ID"
// @Success 200 {object} envelope
// @Router /lichsutap/hoivien/{maHoiVien}/thong-ke [get]
func (h *HistoryHandler) MemberStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	memberID, ok := objectIDParam(c, "maHoiVien")
	if !ok {
		return
	}
	stats, err := h.historyService.Stats(c.Request.Context(), actor, memberID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy thống kê thành công", stats)
}

// DeleteHistory godoc
// @Summary Delete a workout record
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} envelope
// @Router /lichsutap/{id} [delete]
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var id primitive.ObjectID
	if id, ok = objectIDParam(c, "id"); !ok {
		return
	}
	if err := h.historyService.Delete(c.Request.Context(), actor, id); err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Đã xóa lịch sử tập", nil)
}

package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler serves member management and PT profiles.
type UserHandler struct {
	userService service.UserService
	log         logrus.FieldLogger
}

func NewUserHandler(userService service.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

type MemberListResponse struct {
	Members []UserResponse `json:"hoiVien"`
	Total   int64          `json:"tongSo"`
	Page    int            `json:"trang"`
	Limit   int            `json:"gioiHan"`
}

type SetStatusRequest struct {
	Status domain.AccountStatus `json:"trangThai" binding:"required,oneof=HOAT_DONG KHOA"`
}

type CreateTrainerRequest struct {
	FullName        string `json:"hoTen" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"soDienThoai"`
	Password        string `json:"matKhau" binding:"required,min=6"`
	Specialty       string `json:"chuyenMon"`
	ExperienceYears int    `json:"kinhNghiem" binding:"gte=0"`
	Bio             string `json:"moTa"`
}

type TrainerResponse struct {
	UserResponse
	Rating domain.RatingSummary `json:"danhGia"`
}

func mapTrainer(p *service.TrainerProfile) TrainerResponse {
	return TrainerResponse{UserResponse: MapUserToResponse(&p.Trainer), Rating: p.Rating}
}

// ListMembers godoc
// @Summary List members
// @Description Accent-insensitive search over name, email and phone.
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size"
// @Success 200 {object} envelope
// @Router /hoivien [get]
func (h *UserHandler) ListMembers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	members, total, err := h.userService.ListMembers(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy danh sách hội viên thành công", MemberListResponse{
		Members: mapUsers(members),
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// GetMember godoc
// @Summary Member detail
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param maHoiVien path string true "Member ID"
// @Success 200 {object} envelope
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /hoivien/{maHoiVien} [get]
func (h *UserHandler) GetMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	memberID, ok := objectIDParam(c, "maHoiVien")
	if !ok {
		return
	}
	member, err := h.userService.GetMember(c.Request.Context(), actor, memberID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy thông tin hội viên thành công", MapUserToResponse(member))
}

// SetMemberStatus godoc
// @Summary Lock or unlock a member account
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param maHoiVien path string true "Member ID"
// @Param body body SetStatusRequest true "New status"
// @Success 200 {object} envelope
// @Router /hoivien/{maHoiVien}/trang-thai [put]
func (h *UserHandler) SetMemberStatus(c *gin.Context) {
	memberID, ok := objectIDParam(c, "maHoiVien")
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	member, err := h.userService.SetMemberStatus(c.Request.Context(), memberID, req.Status)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cập nhật trạng thái thành công", MapUserToResponse(member))
}

// CreateTrainer godoc
// @Summary Create a PT account
// @Tags PT
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTrainerRequest true "PT details"
// @Success 201 {object} ptEnvelope
// @Failure 409 {object} errorResponse "Email already used"
// @Router /pt [post]
func (h *UserHandler) CreateTrainer(c *gin.Context) {
	var req CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	trainer, err := h.userService.CreateTrainer(c.Request.Context(), service.TrainerInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		Specialty:       req.Specialty,
		ExperienceYears: req.ExperienceYears,
		Bio:             req.Bio,
	})
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusCreated, MapUserToResponse(trainer))
}

// ListTrainers godoc
// @Summary Active PTs with their average rating
// @Tags PT
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ptEnvelope
// @Router /pt [get]
func (h *UserHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.userService.ListTrainers(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	out := make([]TrainerResponse, len(trainers))
	for i := range trainers {
		out[i] = mapTrainer(&trainers[i])
	}
	respondPT(c, http.StatusOK, out)
}

// GetTrainer godoc
// @Summary PT profile with rating summary
// @Tags PT
// @Produce json
// @Security BearerAuth
// @Param maPT path string true "PT ID"
// @Success 200 {object} ptEnvelope
// @Failure 404 {object} errorResponse
// @Router /pt/{maPT} [get]
func (h *UserHandler) GetTrainer(c *gin.Context) {
	trainerID, ok := objectIDParam(c, "maPT")
	if !ok {
		return
	}
	profile, err := h.userService.GetTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, mapTrainer(profile))
}

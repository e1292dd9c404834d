package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	FullName string `json:"hoTen" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"soDienThoai"`
	Password string `json:"matKhau" binding:"required,min=6"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID              string               `json:"id"`
	FullName        string               `json:"hoTen"`
	Email           string               `json:"email"`
	Phone           string               `json:"soDienThoai,omitempty"`
	Role            domain.Role          `json:"vaiTro"`
	Status          domain.AccountStatus `json:"trangThai"`
	BirthDate       *time.Time           `json:"ngaySinh,omitempty"`
	Gender          string               `json:"gioiTinh,omitempty"`
	AvatarKey       string               `json:"anhDaiDien,omitempty"`
	Specialty       string               `json:"chuyenMon,omitempty"`
	ExperienceYears int                  `json:"kinhNghiem,omitempty"`
	Bio             string               `json:"moTa,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"matKhau" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	FullName  *string `json:"hoTen"`
	Phone     *string `json:"soDienThoai"`
	BirthDate *string `json:"ngaySinh"` // YYYY-MM-DD
	Gender    *string `json:"gioiTinh"`
	AvatarKey *string `json:"anhDaiDien"`

	// PT only
	Specialty       *string `json:"chuyenMon"`
	ExperienceYears *int    `json:"kinhNghiem"`
	Bio             *string `json:"moTa"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"matKhauCu" binding:"required"`
	NewPassword string `json:"matKhauMoi" binding:"required,min=6"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new member
// @Description Creates a HoiVien account. Staff accounts are created by the owner.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} envelope "User created successfully"
// @Failure 400 {object} errorResponse "Invalid input (validation error)"
// @Failure 409 {object} errorResponse "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Đăng ký thành công", MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} envelope "Login successful"
// @Failure 401 {object} errorResponse "Unauthorized (invalid credentials)"
// @Failure 403 {object} errorResponse "Account locked"
// @Failure 429 {object} errorResponse "Too many attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Đăng nhập thành công", LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// Me godoc
// @Summary Current user's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.authService.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy thông tin thành công", MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} envelope
// @Failure 400 {object} errorResponse
// @Router /me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	in := service.ProfileInput{
		FullName:  req.FullName,
		Phone:     req.Phone,
		Gender:    req.Gender,
		AvatarKey: req.AvatarKey,
	}
	if req.BirthDate != nil {
		d, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, "Ngày sinh không hợp lệ", "ngaySinh must be YYYY-MM-DD")
			return
		}
		in.BirthDate = &d
	}
	if actor.Is(domain.RoleTrainer) {
		in.Specialty = req.Specialty
		in.ExperienceYears = req.ExperienceYears
		in.Bio = req.Bio
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), actor.ID, in)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cập nhật thông tin thành công", MapUserToResponse(user))
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} envelope
// @Failure 400 {object} errorResponse "Wrong current password"
// @Router /me/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), actor.ID, req.OldPassword, req.NewPassword); err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Đổi mật khẩu thành công", nil)
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:              user.ID.Hex(),
		FullName:        user.FullName,
		Email:           user.Email,
		Phone:           user.Phone,
		Role:            user.Role,
		Status:          user.Status,
		BirthDate:       user.BirthDate,
		Gender:          user.Gender,
		AvatarKey:       user.AvatarKey,
		Specialty:       user.Specialty,
		ExperienceYears: user.ExperienceYears,
		Bio:             user.Bio,
		CreatedAt:       user.CreatedAt,
	}
}

func mapUsers(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = MapUserToResponse(&users[i])
	}
	return out
}

package api

import (
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/service"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// envelope is the body of successful general routes.
type envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ptEnvelope is the body of successful /pt routes.
type ptEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, envelope{Message: message, Data: data})
}

func respondPT(c *gin.Context, code int, data interface{}) {
	c.JSON(code, ptEnvelope{Success: true, Data: data})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	abortWithDetail(c, code, message, message)
}

func abortWithDetail(c *gin.Context, code int, message, detail string) {
	c.AbortWithStatusJSON(code, errorResponse{Message: message, Error: detail})
}

type errorMapping struct {
	err     error
	code    int
	message string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{service.ErrValidation, http.StatusBadRequest, "Dữ liệu không hợp lệ"},
	{service.ErrAccessDenied, http.StatusForbidden, "Bạn không có quyền thực hiện thao tác này"},

	{service.ErrUserNotFound, http.StatusNotFound, "Không tìm thấy người dùng"},
	{service.ErrUserAlreadyExists, http.StatusConflict, "Email đã được sử dụng"},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized, "Email hoặc mật khẩu không đúng"},
	{service.ErrAccountLocked, http.StatusForbidden, "Tài khoản đã bị khóa"},
	{service.ErrWrongPassword, http.StatusBadRequest, "Mật khẩu hiện tại không đúng"},

	{service.ErrPackageNotFound, http.StatusNotFound, "Không tìm thấy gói tập"},
	{service.ErrPackageNotOnSale, http.StatusBadRequest, "Gói tập đã ngừng bán"},
	{service.ErrSubscriptionNotFound, http.StatusNotFound, "Không tìm thấy đăng ký gói tập"},
	{service.ErrSubscriptionExists, http.StatusConflict, "Bạn đã có gói tập đang chờ xác nhận hoặc đang hoạt động"},
	{service.ErrSubscriptionState, http.StatusBadRequest, "Không thể thay đổi trạng thái đăng ký"},
	{service.ErrNoActiveSubscription, http.StatusBadRequest, "Hội viên chưa có gói tập đang hoạt động"},
	{service.ErrNoSessionsLeft, http.StatusBadRequest, "Hội viên đã hết buổi tập với PT"},

	{service.ErrSessionNotFound, http.StatusNotFound, "Không tìm thấy buổi tập"},
	{service.ErrInvalidTransition, http.StatusBadRequest, "Không thể chuyển trạng thái buổi tập"},
	{service.ErrSessionChanged, http.StatusConflict, "Buổi tập vừa được cập nhật, vui lòng thử lại"},
	{service.ErrOutsideSchedule, http.StatusBadRequest, "Khung giờ nằm ngoài lịch làm việc của PT"},
	{service.ErrSessionOverlap, http.StatusConflict, "Khung giờ bị trùng với buổi tập khác"},
	{service.ErrSessionNotCompleted, http.StatusBadRequest, "Buổi tập chưa hoàn thành"},

	{service.ErrHistoryNotFound, http.StatusNotFound, "Không tìm thấy lịch sử tập"},
	{service.ErrReviewExists, http.StatusConflict, "Buổi tập này đã được đánh giá"},
	{service.ErrTemplateNotFound, http.StatusNotFound, "Không tìm thấy template"},
	{service.ErrMealNotFound, http.StatusNotFound, "Không tìm thấy món ăn"},
	{service.ErrMealPlanNotFound, http.StatusNotFound, "Không tìm thấy thực đơn"},

	{service.ErrInvalidQRToken, http.StatusBadRequest, "Mã QR không hợp lệ hoặc đã hết hạn"},
	{service.ErrScanInProgress, http.StatusConflict, "Đang xử lý, vui lòng đợi"},

	{service.ErrUploadNotFound, http.StatusNotFound, "Không tìm thấy tệp"},
	{service.ErrUnsupportedContentType, http.StatusBadRequest, "Chỉ hỗ trợ tải lên hình ảnh"},

	{repository.ErrNotFound, http.StatusNotFound, "Không tìm thấy dữ liệu"},
	{repository.ErrDuplicate, http.StatusConflict, "Dữ liệu đã tồn tại"},
}

// abortWithServiceError maps a service error to its status and Vietnamese
// message. Unknown errors become 500 and are logged.
func abortWithServiceError(c *gin.Context, log logrus.FieldLogger, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			abortWithDetail(c, m.code, m.message, err.Error())
			return
		}
	}
	log.WithError(err).WithField("path", c.FullPath()).Error("unexpected error")
	abortWithDetail(c, http.StatusInternalServerError, "Lỗi máy chủ", err.Error())
}

// abortWithBindError reports a request that failed binding or validation.
func abortWithBindError(c *gin.Context, err error) {
	abortWithDetail(c, http.StatusBadRequest, "Dữ liệu không hợp lệ", err.Error())
}

// splitIDs parses a comma separated query value.
func splitIDs(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

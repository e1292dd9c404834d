package api

import (
	"alcyxob/gym-app/internal/cache"
	"alcyxob/gym-app/internal/config"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/repository/memory"
	"alcyxob/gym-app/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerEmail    = "owner@gym.vn"
	ownerPassword = "ownerpass"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	svc    Services
}

// body is the union of the success and error envelopes.
type body struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type nopStorage struct{}

func (nopStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://bucket.example/put/" + key, nil
}

func (nopStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://bucket.example/get/" + key, nil
}

func (nopStorage) DeleteObject(ctx context.Context, key string) error { return nil }

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, tweak func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.RateLimit = config.RateLimitConfig{LoginRPS: 100, LoginBurst: 100, ScanRPS: 100, ScanBurst: 100}
	if tweak != nil {
		tweak(cfg)
	}

	store := memory.NewStore()
	c := cache.NewMemoryCache()
	m := metrics.New()
	loc := time.UTC

	auth := service.NewAuthService(store.Users(), store.Uploads(), nopStorage{}, "api-secret", time.Hour, log)
	svc := Services{
		Auth:          auth,
		Users:         service.NewUserService(store.Users(), store.Reviews(), log),
		Packages:      service.NewPackageService(store.Packages(), c, log),
		Subscriptions: service.NewSubscriptionService(store.Subscriptions(), store.Packages(), store.Users(), m, loc, log),
		Sessions:      service.NewSessionService(store.Sessions(), store.Subscriptions(), store.Schedules(), store.Templates(), store.Users(), loc, log),
		History:       service.NewHistoryService(store.History(), store.Sessions(), store.Users(), loc),
		Reviews:       service.NewReviewService(store.Reviews(), store.Sessions(), store.Users()),
		Templates:     service.NewTemplateService(store.Templates()),
		Schedules:     service.NewScheduleService(store.Schedules(), store.Users()),
		Meals:         service.NewMealService(store.Meals(), store.MealPlans(), store.Sessions(), store.Users(), loc),
		Checkin:       service.NewCheckinService(store.Visits(), store.Subscriptions(), c, m, "qr-secret", time.Minute, 64, loc, log),
		Uploads:       service.NewUploadService(store.Uploads(), nopStorage{}),
		Dashboard:     service.NewDashboardService(store.Users(), store.Subscriptions(), store.Visits(), store.Sessions(), loc),
	}
	require.NoError(t, auth.EnsureOwner(context.Background(), "Chủ phòng gym", ownerEmail, ownerPassword))

	return &testServer{router: NewRouter(cfg, svc, m, log), store: store, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, body) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var b body
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	}
	return w, b
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w, b := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "matKhau": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data LoginResponse
	require.NoError(t, json.Unmarshal(b.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (s *testServer) registerMember(t *testing.T, email string) (string, string) {
	t.Helper()
	w, b := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"hoTen": "Hội viên " + email, "email": email, "matKhau": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u UserResponse
	require.NoError(t, json.Unmarshal(b.Data, &u))
	return u.ID, s.login(t, email, "secret1")
}

func decode(t *testing.T, raw json.RawMessage, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, target), string(raw))
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w, b := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", b.Message)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w, b := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"hoTen": "An", "email": "an@gym.vn", "matKhau": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Đăng ký thành công", b.Message)
	var u UserResponse
	decode(t, b.Data, &u)
	assert.Equal(t, domain.RoleMember, u.Role)
	assert.NotContains(t, w.Body.String(), "matKhau")

	w, b = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"hoTen": "An", "email": "AN@gym.vn", "matKhau": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email đã được sử dụng", b.Message)
	assert.NotEmpty(t, b.Error)

	w, b = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"hoTen": "Bình", "email": "not-an-email", "matKhau": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Dữ liệu không hợp lệ", b.Message)

	w, b = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "an@gym.vn", "matKhau": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email hoặc mật khẩu không đúng", b.Message)

	token := s.login(t, "an@gym.vn", "secret1")
	w, b = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, b.Data, &u)
	assert.Equal(t, "an@gym.vn", u.Email)

	w, b = s.do(t, http.MethodPut, "/api/v1/me", token, gin.H{"hoTen": "Nguyễn An", "ngaySinh": "1995-04-30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, b.Data, &u)
	assert.Equal(t, "Nguyễn An", u.FullName)
	require.NotNil(t, u.BirthDate)

	w, _ = s.do(t, http.MethodPut, "/api/v1/me", token, gin.H{"ngaySinh": "30/04/1995"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/v1/me/password", token, gin.H{"matKhauCu": "secret1", "matKhauMoi": "secret2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.login(t, "an@gym.vn", "secret2")
}

func TestAuthMiddlewareRejects(t *testing.T) {
	s := newTestServer(t)

	w, b := s.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Vui lòng đăng nhập", b.Message)

	w, b = s.do(t, http.MethodGet, "/api/v1/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token không hợp lệ", b.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Packages are behind login too.
	w, _ = s.do(t, http.MethodGet, "/api/v1/goitap", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLockedAccountCannotLogin(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.registerMember(t, "an@gym.vn")
	owner := s.login(t, ownerEmail, ownerPassword)

	w, b := s.do(t, http.MethodPut, "/api/v1/hoivien/"+id+"/trang-thai", owner, gin.H{"trangThai": "KHOA"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u UserResponse
	decode(t, b.Data, &u)
	assert.Equal(t, domain.AccountLocked, u.Status)

	w, b = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "an@gym.vn", "matKhau": "secret1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Tài khoản đã bị khóa", b.Message)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	_, member := s.registerMember(t, "an@gym.vn")
	owner := s.login(t, ownerEmail, ownerPassword)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"member cannot create packages", http.MethodPost, "/api/v1/goitap", member, http.StatusForbidden},
		{"member cannot list members", http.MethodGet, "/api/v1/hoivien", member, http.StatusForbidden},
		{"member cannot issue QR", http.MethodGet, "/api/v1/checkin/qr", member, http.StatusForbidden},
		{"member cannot see dashboard", http.MethodGet, "/api/v1/thong-ke/tong-quan", member, http.StatusForbidden},
		{"owner cannot book sessions", http.MethodPost, "/api/v1/pt/buoitap", owner, http.StatusForbidden},
		{"owner cannot register packages", http.MethodPost, "/api/v1/dangky", owner, http.StatusForbidden},
		{"owner sees dashboard", http.MethodGet, "/api/v1/thong-ke/tong-quan", owner, http.StatusOK},
		{"owner lists members", http.MethodGet, "/api/v1/hoivien", owner, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, tt.method, tt.path, tt.token, gin.H{})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestPackageAndRegistrationFlow(t *testing.T) {
	s := newTestServer(t)
	_, member := s.registerMember(t, "an@gym.vn")
	owner := s.login(t, ownerEmail, ownerPassword)

	w, b := s.do(t, http.MethodPost, "/api/v1/goitap", owner, gin.H{"tenGoiTap": "3 tháng", "gia": 1800000, "thoiHan": 90, "soBuoiPT": 6})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pkg domain.Package
	decode(t, b.Data, &pkg)

	w, b = s.do(t, http.MethodPost, "/api/v1/goitap", owner, gin.H{"tenGoiTap": "Thiếu thời hạn", "gia": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, b = s.do(t, http.MethodGet, "/api/v1/goitap", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Package
	decode(t, b.Data, &list)
	assert.Len(t, list, 1)

	w, b = s.do(t, http.MethodGet, "/api/v1/goitap/not-an-id", member, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, b = s.do(t, http.MethodGet, "/api/v1/goitap/000000000000000000000000", member, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Không tìm thấy gói tập", b.Message)

	w, b = s.do(t, http.MethodPost, "/api/v1/dangky", member, gin.H{"maGoiTap": pkg.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub domain.Subscription
	decode(t, b.Data, &sub)
	assert.Equal(t, domain.SubscriptionPending, sub.Status)

	w, b = s.do(t, http.MethodPost, "/api/v1/dangky", member, gin.H{"maGoiTap": pkg.ID.Hex()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, b = s.do(t, http.MethodPut, "/api/v1/dangky/"+sub.ID.Hex()+"/xac-nhan", owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, b.Data, &sub)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.Equal(t, 6, sub.SessionsRemaining)

	w, b = s.do(t, http.MethodGet, "/api/v1/dangky/cua-toi", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []domain.Subscription
	decode(t, b.Data, &mine)
	assert.Len(t, mine, 1)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/goitap/"+pkg.ID.Hex(), owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, b = s.do(t, http.MethodGet, "/api/v1/goitap", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, b.Data, &list)
	assert.Empty(t, list)
}

func TestTrainerRoutesUseSuccessEnvelope(t *testing.T) {
	s := newTestServer(t)
	owner := s.login(t, ownerEmail, ownerPassword)
	memberID, member := s.registerMember(t, "an@gym.vn")

	w, b := s.do(t, http.MethodPost, "/api/v1/pt", owner, gin.H{
		"hoTen": "PT Hùng", "email": "hung@gym.vn", "matKhau": "secret1", "chuyenMon": "Tăng cơ", "kinhNghiem": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, b.Success)
	assert.Empty(t, b.Message)
	pt := s.login(t, "hung@gym.vn", "secret1")

	w, b = s.do(t, http.MethodGet, "/api/v1/pt", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, b.Success)

	slots := []gin.H{}
	for d := 0; d < 7; d++ {
		slots = append(slots, gin.H{"thu": d, "gioBatDau": "00:00", "gioKetThuc": "23:59"})
	}
	w, b = s.do(t, http.MethodPut, "/api/v1/pt/work-schedule", pt, gin.H{"lichLamViec": slots})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, b.Success)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	booking := gin.H{"maHoiVien": memberID, "ngayTap": tomorrow, "gioBatDau": "10:00", "gioKetThuc": "11:00"}

	// Without a registration the service error keeps the error shape.
	w, b = s.do(t, http.MethodPost, "/api/v1/pt/buoitap", pt, booking)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, b.Success)
	assert.Equal(t, "Hội viên chưa có gói tập đang hoạt động", b.Message)

	w, b = s.do(t, http.MethodPost, "/api/v1/goitap", owner, gin.H{"tenGoiTap": "PT", "gia": 1000000, "thoiHan": 30, "soBuoiPT": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	var pkg domain.Package
	decode(t, b.Data, &pkg)
	w, b = s.do(t, http.MethodPost, "/api/v1/dangky", member, gin.H{"maGoiTap": pkg.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code)
	var sub domain.Subscription
	decode(t, b.Data, &sub)
	w, _ = s.do(t, http.MethodPut, "/api/v1/dangky/"+sub.ID.Hex()+"/xac-nhan", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, b = s.do(t, http.MethodPost, "/api/v1/pt/buoitap", pt, booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, b.Success)
	var session domain.Session
	decode(t, b.Data, &session)
	assert.Equal(t, domain.SessionPreparing, session.Status)

	w, b = s.do(t, http.MethodPost, "/api/v1/pt/buoitap", pt, booking)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Khung giờ bị trùng với buổi tập khác", b.Message)

	w, b = s.do(t, http.MethodPut, "/api/v1/pt/buoitap/"+session.ID.Hex()+"/trang-thai", pt, gin.H{"trangThai": "HOAN_THANH"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Không thể chuyển trạng thái buổi tập", b.Message)

	w, b = s.do(t, http.MethodGet, "/api/v1/buoitap/cua-toi", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, b.Message, "member routes use the message envelope")
	var sessions []domain.Session
	decode(t, b.Data, &sessions)
	assert.Len(t, sessions, 1)
}

func TestCheckinOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := s.login(t, ownerEmail, ownerPassword)
	_, member := s.registerMember(t, "an@gym.vn")

	w, b := s.do(t, http.MethodGet, "/api/v1/checkin/qr", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var qr QRResponse
	decode(t, b.Data, &qr)
	assert.True(t, strings.HasPrefix(qr.Image, "data:image/png;base64,"))

	w, b = s.do(t, http.MethodPost, "/api/v1/checkin/scan", member, gin.H{"token": qr.Token})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Hội viên chưa có gói tập đang hoạt động", b.Message)

	w, b = s.do(t, http.MethodPost, "/api/v1/goitap", owner, gin.H{"tenGoiTap": "1 tháng", "gia": 500000, "thoiHan": 30})
	require.Equal(t, http.StatusCreated, w.Code)
	var pkg domain.Package
	decode(t, b.Data, &pkg)
	w, b = s.do(t, http.MethodPost, "/api/v1/dangky", member, gin.H{"maGoiTap": pkg.ID.Hex()})
	require.Equal(t, http.StatusCreated, w.Code)
	var sub domain.Subscription
	decode(t, b.Data, &sub)
	w, _ = s.do(t, http.MethodPut, "/api/v1/dangky/"+sub.ID.Hex()+"/xac-nhan", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, b = s.do(t, http.MethodPost, "/api/v1/checkin/scan", member, gin.H{"token": qr.Token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res ScanResponse
	decode(t, b.Data, &res)
	assert.Equal(t, domain.ScanCheckIn, res.Action)

	w, b = s.do(t, http.MethodPost, "/api/v1/checkin/scan", member, gin.H{"token": qr.Token})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Đang xử lý, vui lòng đợi", b.Message)

	w, b = s.do(t, http.MethodPost, "/api/v1/checkin/scan", member, gin.H{"token": "forged"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Mã QR không hợp lệ hoặc đã hết hạn", b.Message)

	w, b = s.do(t, http.MethodGet, "/api/v1/checkin/hom-nay", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var today []domain.Visit
	decode(t, b.Data, &today)
	assert.Len(t, today, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/ping", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gym_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}

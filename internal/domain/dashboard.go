package domain

// DashboardSummary is the owner's overview (tổng quan).
type DashboardSummary struct {
	Members             int64          `json:"soHoiVien"`
	ActiveSubscriptions int64          `json:"soGoiDangHoatDong"`
	CheckInsToday       int64          `json:"checkInHomNay"`
	RevenueThisMonth    int64          `json:"doanhThuThang"`
	SessionsByStatus    []SessionCount `json:"buoiTapTheoTrangThai"`
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Role values match the strings the web and mobile clients send.
const (
	RoleMember  Role = "HoiVien"
	RoleTrainer Role = "PT"
	RoleOwner   Role = "OngChu"
)

// AccountStatus is the lock state of an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "HOAT_DONG"
	AccountLocked AccountStatus = "KHOA"
)

// User represents anyone who can log in: a member (hội viên), a PT or the owner.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"hoTen" json:"hoTen"`
	Email        string             `bson:"email" json:"email"` // Should be unique
	Phone        string             `bson:"soDienThoai,omitempty" json:"soDienThoai,omitempty"`
	PasswordHash string             `bson:"matKhau" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"vaiTro" json:"vaiTro"`
	Status       AccountStatus      `bson:"trangThai" json:"trangThai"`
	BirthDate    *time.Time         `bson:"ngaySinh,omitempty" json:"ngaySinh,omitempty"`
	Gender       string             `bson:"gioiTinh,omitempty" json:"gioiTinh,omitempty"`
	AvatarKey    string             `bson:"anhDaiDien,omitempty" json:"anhDaiDien,omitempty"`

	// SearchText is the lower-cased, accent-stripped name/email/phone used by member search.
	SearchText string `bson:"searchText,omitempty" json:"-"`

	// --- PT-specific ---
	Specialty       string `bson:"chuyenMon,omitempty" json:"chuyenMon,omitempty"`
	ExperienceYears int    `bson:"kinhNghiem,omitempty" json:"kinhNghiem,omitempty"`
	Bio             string `bson:"moTa,omitempty" json:"moTa,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsMember() bool {
	return u.Role == RoleMember
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

func (u *User) IsLocked() bool {
	return u.Status == AccountLocked
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleMember, RoleTrainer, RoleOwner:
		return true
	}
	return false
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   Role
	Status AccountStatus
	Query  string // already normalised with search.Normalize
	Page   int
	Limit  int
}

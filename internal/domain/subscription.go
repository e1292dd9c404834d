package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus tracks a member's registration to a package.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "CHO_XAC_NHAN"   // waiting for the owner to confirm payment
	SubscriptionActive    SubscriptionStatus = "DANG_HOAT_DONG" // paid and inside its validity window
	SubscriptionExpired   SubscriptionStatus = "HET_HAN"
	SubscriptionCancelled SubscriptionStatus = "DA_HUY"
)

// Subscription (chi tiết gói tập) links a member to a package they bought.
type Subscription struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID          primitive.ObjectID `bson:"maHoiVien" json:"maHoiVien"`
	PackageID         primitive.ObjectID `bson:"maGoiTap" json:"maGoiTap"`
	PackageName       string             `bson:"tenGoiTap" json:"tenGoiTap"` // denormalised for listings
	Price             int64              `bson:"gia" json:"gia"`             // price at registration time
	Status            SubscriptionStatus `bson:"trangThai" json:"trangThai"`
	StartDate         *time.Time         `bson:"ngayBatDau,omitempty" json:"ngayBatDau,omitempty"`
	EndDate           *time.Time         `bson:"ngayKetThuc,omitempty" json:"ngayKetThuc,omitempty"`
	TrainerSessions   int                `bson:"soBuoiPT" json:"soBuoiPT"`
	SessionsRemaining int                `bson:"soBuoiPTConLai" json:"soBuoiPTConLai"`
	ConfirmedAt       *time.Time         `bson:"ngayXacNhan,omitempty" json:"ngayXacNhan,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ActiveAt reports whether the subscription grants gym access at t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	if s.Status != SubscriptionActive || s.StartDate == nil || s.EndDate == nil {
		return false
	}
	return !t.Before(*s.StartDate) && t.Before(*s.EndDate)
}

// SubscriptionFilter narrows subscription listings.
type SubscriptionFilter struct {
	MemberID *primitive.ObjectID
	Statuses []SubscriptionStatus
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visit is one gym visit opened by a QR check-in and closed by a check-out.
type Visit struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID        primitive.ObjectID `bson:"maHoiVien" json:"maHoiVien"`
	SubscriptionID  primitive.ObjectID `bson:"maDangKy" json:"maDangKy"`
	CheckInAt       time.Time          `bson:"checkIn" json:"checkIn"`
	CheckOutAt      *time.Time         `bson:"checkOut,omitempty" json:"checkOut,omitempty"`
	DurationMinutes int                `bson:"thoiLuong,omitempty" json:"thoiLuong,omitempty"`
	AutoCheckOut    bool               `bson:"tuDongCheckOut,omitempty" json:"tuDongCheckOut,omitempty"`

	// InGym is stored only while the visit is open so a partial unique index
	// can keep one open visit per member.
	InGym bool `bson:"dangMo,omitempty" json:"-"`
}

// Open reports whether the member is still inside the gym.
func (v *Visit) Open() bool {
	return v.CheckOutAt == nil
}

// Close sets the check-out time and the visit duration.
func (v *Visit) Close(at time.Time, auto bool) {
	v.CheckOutAt = &at
	v.InGym = false
	v.DurationMinutes = int(at.Sub(v.CheckInAt).Minutes())
	v.AutoCheckOut = auto
}

// ScanAction is what a QR scan did.
type ScanAction string

const (
	ScanCheckIn  ScanAction = "CHECK_IN"
	ScanCheckOut ScanAction = "CHECK_OUT"
)

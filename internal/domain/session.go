package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the training session lifecycle
type SessionStatus string

const (
	SessionPreparing  SessionStatus = "CHUAN_BI"
	SessionInProgress SessionStatus = "DANG_DIEN_RA"
	SessionCompleted  SessionStatus = "HOAN_THANH"
	SessionCancelled  SessionStatus = "DA_HUY"
)

// ValidSessionStatus reports whether s is a known status.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionPreparing, SessionInProgress, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to SessionStatus) bool {
	switch from {
	case SessionPreparing:
		return to == SessionInProgress || to == SessionCancelled
	case SessionInProgress:
		return to == SessionCompleted
	}
	return false
}

// Session is a training session (buổi tập) between a PT and a member.
type Session struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TrainerID  primitive.ObjectID  `bson:"maPT" json:"maPT"`
	MemberID   primitive.ObjectID  `bson:"maHoiVien" json:"maHoiVien"`
	TemplateID *primitive.ObjectID `bson:"maTemplate,omitempty" json:"maTemplate,omitempty"`
	Date       time.Time           `bson:"ngayTap" json:"ngayTap"` // midnight in the gym's time zone
	StartTime  string              `bson:"gioBatDau" json:"gioBatDau"`
	EndTime    string              `bson:"gioKetThuc" json:"gioKetThuc"`
	StartsAt   time.Time           `bson:"batDauLuc" json:"batDauLuc"` // Date + StartTime, for range queries
	EndsAt     time.Time           `bson:"ketThucLuc" json:"ketThucLuc"`
	Notes      string              `bson:"ghiChu,omitempty" json:"ghiChu,omitempty"`
	Status     SessionStatus       `bson:"trangThai" json:"trangThai"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether two sessions share any time.
func (s *Session) Overlaps(startsAt, endsAt time.Time) bool {
	return s.StartsAt.Before(endsAt) && startsAt.Before(s.EndsAt)
}

// SessionFilter narrows session listings. Zero values are ignored.
type SessionFilter struct {
	TrainerID *primitive.ObjectID
	MemberID  *primitive.ObjectID
	Statuses  []SessionStatus
	From      *time.Time // StartsAt >= From
	To        *time.Time // StartsAt < To
}

// SessionCount is the number of sessions in one status.
type SessionCount struct {
	Status SessionStatus `bson:"_id" json:"trangThai"`
	Count  int64         `bson:"count" json:"soLuong"`
}

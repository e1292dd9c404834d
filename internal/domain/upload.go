package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadKind groups uploaded images by what they are attached to.
// The kind becomes the first segment of the object key in the bucket.
type UploadKind string

const (
	UploadAvatar  UploadKind = "avatar"
	UploadMeal    UploadKind = "meal"
	UploadPackage UploadKind = "package"
)

func ValidUploadKind(k UploadKind) bool {
	switch k {
	case UploadAvatar, UploadMeal, UploadPackage:
		return true
	}
	return false
}

// Upload stores metadata about an image a user asked to upload.
// The actual file resides in S3; the record proves who owns the key.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"nguoiTai" json:"nguoiTai"`
	Kind        UploadKind         `bson:"loai" json:"loai"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	ContentType string             `bson:"contentType" json:"contentType"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

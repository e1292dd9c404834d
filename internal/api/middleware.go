package api

import (
	"alcyxob/gym-app/internal/domain" // For domain.Role
	"alcyxob/gym-app/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// jwtClaims defines the structure we expect in the JWT payload.
// Mirroring the structure used in authService.generateJWT
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithDetail(c, http.StatusUnauthorized, "Vui lòng đăng nhập", "authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithDetail(c, http.StatusUnauthorized, "Vui lòng đăng nhập", "authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithDetail(c, http.StatusUnauthorized, "Phiên đăng nhập đã hết hạn", "token has expired")
			} else {
				abortWithDetail(c, http.StatusUnauthorized, "Token không hợp lệ", err.Error())
			}
			return
		}

		if !token.Valid || claims.UserID == "" || !domain.ValidRole(claims.Role) {
			abortWithDetail(c, http.StatusUnauthorized, "Token không hợp lệ", "invalid token or missing claims")
			return
		}

		// Store UserID as string (Hex representation)
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithDetail(c, http.StatusInternalServerError, "Lỗi máy chủ", err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithDetail(c, http.StatusForbidden, "Bạn không có quyền truy cập",
			fmt.Sprintf("access denied: role '%s' does not have permission", userRole))
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// currentActor reads the caller from the context. On failure the request is
// aborted and ok is false.
func currentActor(c *gin.Context) (actor service.Actor, ok bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithDetail(c, http.StatusUnauthorized, "Vui lòng đăng nhập", err.Error())
		return actor, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithDetail(c, http.StatusUnauthorized, "Token không hợp lệ", "invalid user ID format in token")
		return actor, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithDetail(c, http.StatusUnauthorized, "Vui lòng đăng nhập", err.Error())
		return actor, false
	}
	return service.Actor{ID: id, Role: role}, true
}

// objectIDParam parses a path parameter as an ObjectID, aborting with 400 on failure.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Mã không hợp lệ", fmt.Sprintf("invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseObjectID(raw, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is not a valid id", service.ErrValidation, field)
	}
	return id, nil
}

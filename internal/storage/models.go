package storage

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ClientType enumerates the kinds of registered service clients.
type ClientType string

const (
	ClientTypeMCPServer ClientType = "mcp_server"
	ClientTypeAIAgent   ClientType = "ai_agent"
	ClientTypeService   ClientType = "service"
)

// ValidClientType reports whether s names a known client type.
func ValidClientType(s string) bool {
	switch ClientType(s) {
	case ClientTypeMCPServer, ClientTypeAIAgent, ClientTypeService:
		return true
	}
	return false
}

// BaseModel contains common fields for all persisted records.
type BaseModel struct {
	ID        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate generates an ID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// User is a human account created on first provider login. Never deleted by
// the auth core.
type User struct {
	BaseModel
	Email    string `gorm:"uniqueIndex;not null"`
	Name     string
	Picture  string
	Role     Role   `gorm:"not null;default:user"`
	GoogleID string `gorm:"uniqueIndex;not null"`
}

// RefreshToken holds the SHA-256 hash of an opaque refresh secret. The
// plaintext is never stored; it is returned to the caller exactly once.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Revoked   bool      `gorm:"not null;default:false"`
}

// BeforeCreate generates an ID if not already set.
func (t *RefreshToken) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Client is a registered machine identity for the client-credentials grant.
type Client struct {
	BaseModel
	ClientID   string     `gorm:"uniqueIndex;not null"`
	SecretHash string     `gorm:"not null"`
	Name       string     `gorm:"not null"`
	ClientType ClientType `gorm:"not null"`
	Scopes     []string   `gorm:"serializer:json"`
	IsActive   bool       `gorm:"not null;default:true"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateAccount = "CREATE_GL_ACCOUNT"
	ActionUpdateAccount = "UPDATE_GL_ACCOUNT"
	ActionDeleteAccount = "DELETE_GL_ACCOUNT"
	ActionCreateOrder   = "CREATE_PURCHASE_ORDER"
	ActionUpdateOrder   = "UPDATE_PURCHASE_ORDER"
	ActionDeleteOrder   = "DELETE_PURCHASE_ORDER"
)

// AuditLog tracks What and When for critical record changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

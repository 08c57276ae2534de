package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Admin audit actions
const (
	AdminActionUpdateUser     = "update_user"
	AdminActionDeactivateUser = "deactivate_user"
	AdminActionReactivateUser = "reactivate_user"
	AdminActionDeletePost     = "delete_post"
	AdminActionDeleteComment  = "delete_comment"
)

// Meta is free-form JSON stored with an audit entry
type Meta map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSONB
func (m *Meta) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported meta type %T", value)
	}
}

// AdminLog is an append-only audit entry
type AdminLog struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	AdminID    string    `gorm:"type:uuid;not null;index" json:"admin_id"`
	Action     string    `gorm:"size:50;not null" json:"action"`
	TargetType string    `gorm:"size:20;not null" json:"target_type"`
	TargetID   string    `gorm:"type:uuid;not null" json:"target_id"`
	Meta       Meta      `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AdminLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}

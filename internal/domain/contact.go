package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// QuoteSubjectPrefix marks a message as generated by the quote configurator.
const QuoteSubjectPrefix = "Project Inquiry:"

// Message represents a stored inquiry, either a plain contact message or a
// configured quote request.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;index" json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate hook
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = tx.NowFunc()
	}
	return nil
}

// IsQuote reports whether the message came from the quote configurator.
func (m *Message) IsQuote() bool {
	return strings.HasPrefix(m.Subject, QuoteSubjectPrefix)
}

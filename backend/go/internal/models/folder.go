package models

import (
	"time"

	"gorm.io/datatypes"
)

// Folder groups the chats of a single user.
type Folder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Chats     []Chat    `gorm:"constraint:OnDelete:CASCADE" json:"chats,omitempty"`
}

// Chat is one conversation inside a folder. It is owned through its folder.
type Chat struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	FolderID  uint          `gorm:"index;not null" json:"folder"`
	Name      string        `gorm:"not null;size:255" json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Messages  []ChatMessage `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`

	MessageCount int64 `gorm:"-" json:"message_count"`
}

// ChatMessage is one question with the answer the engine produced.
// Sources lists the segment ids the answer was grounded on.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ChatID    uint           `gorm:"index;not null" json:"chat"`
	Question  string         `gorm:"type:text;not null" json:"question"`
	Answer    string         `gorm:"type:text;not null" json:"answer"`
	Sources   datatypes.JSON `json:"sources,omitempty"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
}

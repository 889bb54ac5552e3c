package models

import "gorm.io/gorm"

// Message is a direct message between two connected users. Messages are
// append-only; CreatedAt is assigned by the server at persistence time so a
// conversation ordered by it is stable regardless of client clocks.
type Message struct {
	gorm.Model
	SenderID   uint   `gorm:"not null;index:idx_message_pair"`
	ReceiverID uint   `gorm:"not null;index:idx_message_pair"`
	Content    string `gorm:"not null"`
	Read       bool   `gorm:"not null;default:false"`

	Sender   User `gorm:"foreignKey:SenderID"`
	Receiver User `gorm:"foreignKey:ReceiverID"`
}

package models

import "time"

// UseCase is an externally supplied business idea attached to a domain.
// Order 1 is the primary use case surfaced by the idea-of-the-day job.
type UseCase struct {
	ID          uint64    `gorm:"primary_key;autoIncrement" json:"id"`
	DomainID    uint64    `gorm:"column:domain_id;NOT NULL;index" json:"domainId"`
	Title       string    `gorm:"column:title;type:varchar(255);NOT NULL" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Order       int       `gorm:"column:display_order;NOT NULL;DEFAULT:1" json:"order"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
}

func (UseCase) TableName() string {
	return "use_cases"
}

package models

import (
	"time"

	"github.com/nametracker/nametracker/internal/enum"
)

// IdeaOfTheDay holds the winning candidate per (date, list_state). Written
// only by the idea-of-the-day job.
type IdeaOfTheDay struct {
	ID        uint64         `gorm:"primary_key;autoIncrement" json:"id"`
	Date      time.Time      `gorm:"column:date;type:date;NOT NULL;uniqueIndex:idx_idea_date_list" json:"date"`
	ListState enum.ListState `gorm:"column:list_state;type:varchar(50);NOT NULL;uniqueIndex:idx_idea_date_list" json:"listState"`
	DomainID  uint64         `gorm:"column:domain_id;NOT NULL" json:"domainId"`
	Domain    string         `gorm:"column:domain;type:varchar(255);NOT NULL" json:"domain"`
	UseCase   string         `gorm:"column:use_case;type:text" json:"useCase"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;DEFAULT:current_timestamp" json:"updatedAt"`
}

func (IdeaOfTheDay) TableName() string {
	return "ideas_of_the_day"
}

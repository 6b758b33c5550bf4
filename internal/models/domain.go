package models

import (
	"strings"
	"time"

	"github.com/nametracker/nametracker/internal/enum"
	er "github.com/nametracker/nametracker/internal/errors"
)

type Domain struct {
	ID             uint64         `gorm:"primary_key;autoIncrement" json:"id"`
	Domain         string         `gorm:"column:domain;type:varchar(255);NOT NULL;uniqueIndex" json:"domain"`
	Extension      string         `gorm:"column:extension;type:varchar(20);NOT NULL;index" json:"extension"`
	ListState      enum.ListState `gorm:"column:list_state;type:varchar(50);NOT NULL;DEFAULT:'pending_delete';index" json:"listState"`
	RegStatus      enum.RegStatus `gorm:"column:reg_status;type:varchar(20);NOT NULL;DEFAULT:'pending';index" json:"regStatus"`
	Score          *int           `gorm:"column:score;type:smallint" json:"score"`
	IsTopRated     bool           `gorm:"column:is_top_rated;type:boolean;NOT NULL;DEFAULT:false" json:"isTopRated"`
	TopRatedDate   *time.Time     `gorm:"column:top_rated_date;type:date" json:"topRatedDate"`
	IsIdeaOfTheDay bool           `gorm:"column:is_idea_of_the_day;type:boolean;NOT NULL;DEFAULT:false" json:"isIdeaOfTheDay"`
	DropDate       time.Time      `gorm:"column:drop_date;type:date;NOT NULL;index" json:"dropDate"`
	DropTime       time.Time      `gorm:"column:drop_time;type:timestamp;NOT NULL;index" json:"dropTime"`
	LastChecked    *time.Time     `gorm:"column:last_checked;type:timestamp" json:"lastChecked"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;type:timestamp;DEFAULT:current_timestamp" json:"updatedAt"`
}

func (Domain) TableName() string {
	return "domains"
}

// Normalize derives extension and drop_time from the domain name and drop
// date. It is the single write path for derived fields; callers persist the
// record only after a successful Normalize.
func (d *Domain) Normalize() error {
	ext, err := ExtensionOf(d.Domain)
	if err != nil {
		return err
	}
	d.Extension = ext
	d.DropTime = DropTimeFor(d.DropDate, ext)
	return nil
}

// ExtensionOf returns the lowercased suffix after the last dot.
func ExtensionOf(domain string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(domain))
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return "", er.ErrUnknownExtension
	}
	return name[idx+1:], nil
}

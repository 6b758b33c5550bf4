package models

import (
	"time"

	"github.com/nametracker/nametracker/internal/enum"
)

// ArchivedDomain is an append-only copy of a Domain taken by the archival
// job once the record ages out of the live table. Never mutated.
type ArchivedDomain struct {
	ID          uint64         `gorm:"primary_key;autoIncrement" json:"id"`
	Domain      string         `gorm:"column:domain;type:varchar(255);NOT NULL;index" json:"domain"`
	Extension   string         `gorm:"column:extension;type:varchar(20);NOT NULL" json:"extension"`
	ListState   enum.ListState `gorm:"column:list_state;type:varchar(50);NOT NULL" json:"listState"`
	RegStatus   enum.RegStatus `gorm:"column:reg_status;type:varchar(20);NOT NULL" json:"regStatus"`
	DropDate    time.Time      `gorm:"column:drop_date;type:date;NOT NULL;index" json:"dropDate"`
	DropTime    time.Time      `gorm:"column:drop_time;type:timestamp;NOT NULL" json:"dropTime"`
	LastChecked *time.Time     `gorm:"column:last_checked;type:timestamp" json:"lastChecked"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	ArchivedAt  time.Time      `gorm:"column:archived_at;type:timestamp;NOT NULL" json:"archivedAt"`
}

func (ArchivedDomain) TableName() string {
	return "archived_domains"
}

// ArchivedFrom projects the fields the archival job carries over.
func ArchivedFrom(d Domain, archivedAt time.Time) ArchivedDomain {
	return ArchivedDomain{
		Domain:      d.Domain,
		Extension:   d.Extension,
		ListState:   d.ListState,
		RegStatus:   d.RegStatus,
		DropDate:    d.DropDate,
		DropTime:    d.DropTime,
		LastChecked: d.LastChecked,
		CreatedAt:   d.CreatedAt,
		ArchivedAt:  archivedAt,
	}
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/internal/models"
)

type Repositories struct {
	DomainRepository         DomainRepository
	ArchivedDomainRepository ArchivedDomainRepository
	IdeaOfTheDayRepository   IdeaOfTheDayRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DomainRepository:         NewDomainRepository(db),
		ArchivedDomainRepository: NewArchivedDomainRepository(db),
		IdeaOfTheDayRepository:   NewIdeaOfTheDayRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.Domain{},
		&models.ArchivedDomain{},
		&models.IdeaOfTheDay{},
		&models.UseCase{},
	)

	sqlDB.Close()

	sqlDB, _ = db.DB()
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}

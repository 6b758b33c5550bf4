package services

import (
	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/interfaces"
	"github.com/nametracker/nametracker/internal/logger"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/services/domain"
	"github.com/nametracker/nametracker/services/dynadot"
)

type Services struct {
	DynadotService interfaces.DynadotService
	DomainService  interfaces.DomainService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) *Services {
	dynadotService := dynadot.NewDynadotService(cfg.DynadotConfig)

	return &Services{
		DynadotService: dynadotService,
		DomainService:  domain.NewDomainService(log, cfg, repos, dynadotService),
	}
}

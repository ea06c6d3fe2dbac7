package services

import (
	"rxvision_server/database"
	"rxvision_server/stores"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	AuthService     *AuthService
	TokenService    *TokenService
	UserService     *UserService
	EmailService    *EmailService
	CacheService    *CacheService
	HealthService   *HealthService
	GroupService    *GroupService
	MoleculeService *MoleculeService
}

// NewServiceManager wires every service over set. db may be nil when set is in memory;
// sender may be nil to use the Resend API.
func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, set *stores.Set, db *database.DB, sender MailSender) *ServiceManager {
	cacheService := NewCacheService(logger, cfg)
	emailService := NewEmailService(logger, cfg, sender)
	tokenService := NewTokenService(logger, cfg, set.Users, cacheService)
	authService := NewAuthService(logger, cfg, set.Users, cacheService)
	userService := NewUserService(logger, cfg, set.Users, tokenService, emailService, cacheService)
	healthService := NewHealthService(logger, db, cfg.Database.Driver, cacheService)
	groupService := NewGroupService(logger, set.Groups)
	moleculeService := NewMoleculeService(logger, set.Molecules)

	return &ServiceManager{
		AuthService:     authService,
		TokenService:    tokenService,
		UserService:     userService,
		EmailService:    emailService,
		CacheService:    cacheService,
		HealthService:   healthService,
		GroupService:    groupService,
		MoleculeService: moleculeService,
	}
}

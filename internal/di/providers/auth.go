package providers

import (
	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/auth"
	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/logger"
)

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)

	key, err := auth.ResolveKey(cfg.Auth.KeyHex, cfg.Auth.KeyDir)
	if err != nil {
		return nil, err
	}
	return auth.NewTokenService(key)
}

// ProvideAuthService provides admin authentication.
func ProvideAuthService(i do.Injector) (*auth.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)

	return auth.NewService(auth.Config{
		AdminEmails:  cfg.Auth.AdminEmails,
		PasswordHash: cfg.Auth.AdminPasswordHash,
		TokenTTL:     cfg.Auth.TokenTTL,
	}, tokens, sessions.Store, log.Logger), nil
}

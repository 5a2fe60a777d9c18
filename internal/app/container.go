package app

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dfworx/auth-service/config"
	"github.com/dfworx/auth-service/internal/account"
	"github.com/dfworx/auth-service/internal/auth"
	"github.com/dfworx/auth-service/internal/infrastructure/database"
	"github.com/dfworx/auth-service/internal/pkg/lazy"
	"github.com/dfworx/auth-service/internal/revocation"
	"github.com/dfworx/auth-service/internal/user"
	"gorm.io/gorm"
)

// Container builds each dependency once, on first use, so commands that only
// need the token service never open a database.
type Container struct {
	Logger  *slog.Logger
	Hasher  lazy.Loader[auth.Hasher]
	Tokens  lazy.Loader[auth.TokenService]
	Users   lazy.Loader[user.Repository]
	Account lazy.Loader[account.Service]

	sqlite lazy.Loader[*sql.DB]
	gorm   lazy.Loader[*gorm.DB]
}

func NewContainer(cfg *config.Config, logger *slog.Logger) *Container {
	c := &Container{Logger: logger}

	c.Hasher = lazy.New(func() (auth.Hasher, error) {
		return auth.NewBcryptHasher(cfg.Password.BcryptCost, cfg.Password.MaxConcurrent)
	})
	c.Tokens = lazy.New(func() (auth.TokenService, error) {
		return auth.NewTokenService(auth.TokenConfig{
			Secret:    cfg.JWT.Secret,
			Algorithm: cfg.JWT.Algorithm,
			Expiry:    cfg.TokenExpiry(),
			Leeway:    cfg.TokenLeeway(),
			Issuer:    cfg.JWT.Issuer,
		})
	})

	c.sqlite = lazy.New(func() (*sql.DB, error) {
		return database.NewSQLiteDB(cfg.DB.Path)
	})
	c.gorm = lazy.New(func() (*gorm.DB, error) {
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&user.User{}); err != nil {
			return nil, err
		}
		return db, nil
	})
	c.Users = lazy.New(func() (user.Repository, error) {
		switch cfg.DB.Driver {
		case "postgres":
			db, err := c.gorm.Load()
			if err != nil {
				return nil, err
			}
			return user.NewGormRepository(db), nil
		default:
			db, err := c.sqlite.Load()
			if err != nil {
				return nil, err
			}
			return user.NewSQLiteRepository(db), nil
		}
	})

	c.Account = lazy.New(func() (account.Service, error) {
		users, err := c.Users.Load()
		if err != nil {
			return nil, err
		}
		hasher, err := c.Hasher.Load()
		if err != nil {
			return nil, err
		}
		tokens, err := c.Tokens.Load()
		if err != nil {
			return nil, err
		}
		return account.NewService(users, hasher, tokens, revocation.NewMemoryStore(nil), logger)
	})

	return c
}

// Close releases whichever database connection was opened.
func (c *Container) Close() error {
	var errs []error
	c.sqlite.IfLoaded(func(db *sql.DB) {
		errs = append(errs, db.Close())
	})
	c.gorm.IfLoaded(func(db *gorm.DB) {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, err)
			return
		}
		errs = append(errs, sqlDB.Close())
	})
	return errors.Join(errs...)
}

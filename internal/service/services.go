package service

import (
	"github.com/mgarcia-dev/biblioteca-api/internal/auth"
	"github.com/mgarcia-dev/biblioteca-api/internal/config"
	"github.com/mgarcia-dev/biblioteca-api/internal/repository"
)

type Services struct {
	Auth *AuthService
	Book *BookService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	hasher := auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	return &Services{
		Auth: NewAuthService(repos.User, hasher, cfg),
		Book: NewBookService(repos.Book),
	}
}

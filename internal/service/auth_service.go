package service

import (
	"errors"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService issues JWTs for existing accounts. Account management itself
// lives in the platform service; this service only authenticates.
type AuthService struct {
	users UserStore
	cfg   *config.Config
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Login(req LoginRequest) (string, *model.User, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.cfg.JWT.Secret, s.cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

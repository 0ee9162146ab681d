// services/user_service.go
package services

import (
	"fmt"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
)

// UserService is the account CRUD collaborator. The game engine never
// touches it; it exists for the surrounding lobby/profile surface.
type UserService struct {
	store persistence.Store
}

func NewUserService(store persistence.Store) *UserService {
	return &UserService{store: store}
}

// Register creates a new account after the classic field-length checks.
func (s *UserService) Register(account, name, password string, sex int, picPath string) error {
	if account == "" || name == "" || password == "" {
		return fmt.Errorf("account, name and password are required")
	}
	if len(account) > 255 {
		return fmt.Errorf("account too long")
	}
	if len(name) > 100 {
		return fmt.Errorf("name too long")
	}
	if len(password) > 50 {
		return fmt.Errorf("password too long")
	}

	if sex < 0 {
		sex = 0
	}
	if sex > 1 {
		sex = 1
	}

	return s.store.CreateUser(&models.GormUser{
		Account:  account,
		Name:     name,
		Password: password,
		Sex:      sex,
		PicPath:  picPath,
	})
}

// Exists reports whether an account name is taken.
func (s *UserService) Exists(account string) (bool, error) {
	if account == "" {
		return false, nil
	}
	return s.store.ExistUser(account)
}

// Profile fetches the public profile of an account.
func (s *UserService) Profile(account string) (*models.GormUser, error) {
	user, err := s.store.GetUser(account)
	if err != nil {
		return nil, err
	}
	// never hand the password out of the service
	user.Password = ""
	return user, nil
}

package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/incluso/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		// GetUserByEmail does a case-insensitive match on User.Email.
		GetUserByEmail(email string) (User, error)
		GetCredential(email string) (Credential, error)
		SetCredential(cred Credential) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a local user along with their sign-in credential.
func (svc *Service) Create(nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}

	email := core.CleanString(nu.Email, true)
	if _, err := svc.repo.GetUserByEmail(email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}

	usr := User{
		ID:        uuid.NewString(),
		Name:      core.CleanString(nu.Name),
		Email:     email,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}

	cred, err := NewCredential(email, nu.Password)
	if err != nil {
		return User{}, err
	}
	return usr, svc.repo.SetCredential(cred)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true))
}

// ResetPassword replaces the stored credential for an existing user.
func (svc *Service) ResetPassword(email, pwd string) error {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(email, true))
	if err != nil {
		return err
	}
	nu := NewUser{Name: usr.Name, Email: usr.Email, Role: usr.Role, Password: pwd}
	if err := nu.Validate(); err != nil {
		return err
	}
	cred, err := NewCredential(usr.Email, pwd)
	if err != nil {
		return err
	}
	return svc.repo.SetCredential(cred)
}

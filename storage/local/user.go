package localstore

import (
	"strings"

	"github.com/google/uuid"

	"github.com/incluso/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	for _, u := range repo.db.data.Users {
		if strings.EqualFold(u.Email, usr.Email) {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.db.data.Users = append(repo.db.data.Users, usr)
	return usr, repo.db.save()
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, len(repo.db.data.Users))
	copy(users, repo.db.data.Users)
	return users, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, u := range repo.db.data.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, u := range repo.db.data.Users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetCredential(email string) (user.Credential, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.data.Credentials {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return user.Credential{}, user.ErrNotFound
}

func (repo *userRepository) SetCredential(cred user.Credential) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, c := range repo.db.data.Credentials {
		if strings.EqualFold(c.Email, cred.Email) {
			repo.db.data.Credentials[i] = cred
			return repo.db.save()
		}
	}
	repo.db.data.Credentials = append(repo.db.data.Credentials, cred)
	return repo.db.save()
}

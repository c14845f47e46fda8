package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/incluso/backend/core"
)

// Roles
const (
	RoleCoordinator = "coordinator"
	RoleTeacher     = "teacher"
)

var AllRoles = []string{RoleCoordinator, RoleTeacher}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

func (u User) IsCoordinator() bool { return u.Role == RoleCoordinator }
func (u User) IsTeacher() bool     { return u.Role == RoleTeacher }

// Session is the signed-in identity: an opaque token plus the resolved
// user profile. It is persisted in the local store and restored at startup.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credential is a locally-stored sign-in secret; passwords themselves
// are never persisted.
type Credential struct {
	Email        string `json:"email"`
	PasswordHash []byte `json:"passwordHash"`
}

func NewCredential(email, pwd string) (Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Email: core.CleanString(email, true), PasswordHash: hash}, nil
}

// CheckPassword reports whether pwd matches the stored hash.
func (c Credential) CheckPassword(pwd string) bool {
	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(pwd)) == nil
}

type NewUser struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,allroles"`
	Password string `json:"password" validate:"required"`
}

func (nu NewUser) Validate() error {
	nu.Email = core.CleanString(nu.Email, true)
	return core.Validate.Struct(nu)
}

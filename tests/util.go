package testutil

import (
	"testing"
	"time"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
	localstore "github.com/incluso/backend/storage/local"
)

// OpenDB opens an empty record store under a per-test temp dir.
func OpenDB(t *testing.T) *localstore.DB {
	t.Helper()

	db, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, role, pwd string,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if pwd != "" {
		cred, err := user.NewCredential(email, pwd)
		if err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
		if err := repo.SetCredential(cred); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	return usr
}

func CreateStudent(t *testing.T, repo school.Repository, name, course, class, regNumber string) school.Student {
	t.Helper()

	st, err := repo.CreateStudent(school.Student{
		Name:               name,
		Course:             course,
		Class:              class,
		BirthDate:          "2012-01-01",
		RegistrationNumber: regNumber,
		CreatedAt:          time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateAdaptation(t *testing.T, repo school.Repository, studentID, description string) school.Adaptation {
	t.Helper()

	ad, err := repo.CreateAdaptation(school.Adaptation{
		StudentID:     studentID,
		Description:   description,
		Justification: "Laudo apresentado",
		Date:          "2024-02-01",
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAdaptation() failed: %v", err)
	}
	return ad
}

func CreateReport(t *testing.T, repo school.Repository, studentID, subject, result string) school.Report {
	t.Helper()

	rp, err := repo.CreateReport(school.Report{
		StudentID:   studentID,
		TeacherID:   "2",
		TeacherName: "Carlos Andrade",
		Subject:     subject,
		Date:        "2024-03-01",
		Result:      result,
		Description: "Acompanhamento registrado",
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateReport() failed: %v", err)
	}
	return rp
}

// NewLogger returns a no-op core.Logger for tests.
func NewLogger() core.Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

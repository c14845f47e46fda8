package localstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

// Default sign-in pairs, kept from the web client's dev builds.
const (
	SeedCoordinatorEmail    = "coordenador@escola.com"
	SeedCoordinatorPassword = "coord123"
	SeedTeacherEmail        = "professor@escola.com"
	SeedTeacherPassword     = "prof123"
)

// EnsureSeed populates default data on first use. Each collection is
// seeded only when empty, so re-running it never overwrites anything.
func (db *DB) EnsureSeed() error {
	db.Lock()
	defer db.Unlock()

	var changed bool
	if len(db.data.Users) == 0 {
		if err := db.seedUsers(); err != nil {
			return err
		}
		changed = true
	}
	if len(db.data.Students) == 0 {
		db.seedStudents()
		changed = true
	}
	if !changed {
		return nil
	}
	return db.save()
}

func (db *DB) seedUsers() error {
	now := time.Now().UTC()
	db.data.Users = []user.User{
		{ID: "1", Email: SeedCoordinatorEmail, Name: "Maria Souza", Role: user.RoleCoordinator, CreatedAt: now},
		{ID: "2", Email: SeedTeacherEmail, Name: "Carlos Andrade", Role: user.RoleTeacher, CreatedAt: now},
	}

	for email, pwd := range map[string]string{
		SeedCoordinatorEmail: SeedCoordinatorPassword,
		SeedTeacherEmail:     SeedTeacherPassword,
	} {
		cred, err := user.NewCredential(email, pwd)
		if err != nil {
			return err
		}
		db.data.Credentials = append(db.data.Credentials, cred)
	}
	return nil
}

func (db *DB) seedStudents() {
	now := time.Now().UTC()
	first := school.Student{
		ID:                 uuid.NewString(),
		Name:               "Ana Beatriz Lima",
		Course:             "Ensino Fundamental II",
		Class:              "7B",
		BirthDate:          "2012-03-14",
		RegistrationNumber: "2024-0107",
		GuardianName:       "Rute Lima",
		GuardianContact:    "rute.lima@example.com",
		CreatedAt:          now,
		CreatedBy:          "1",
	}
	second := school.Student{
		ID:                 uuid.NewString(),
		Name:               "Pedro Henrique Costa",
		Course:             "Ensino Fundamental II",
		Class:              "8A",
		BirthDate:          "2011-11-02",
		RegistrationNumber: "2024-0212",
		CreatedAt:          now,
		CreatedBy:          "1",
	}
	db.data.Students = []school.Student{first, second}

	db.data.Adaptations = []school.Adaptation{{
		ID:            uuid.NewString(),
		StudentID:     first.ID,
		Description:   "Avaliações com tempo estendido",
		Justification: "Laudo de TDAH apresentado pela família",
		Date:          "2024-02-19",
		CreatedAt:     now,
		CreatedBy:     "1",
	}}
	db.data.Reports = []school.Report{{
		ID:          uuid.NewString(),
		StudentID:   first.ID,
		TeacherID:   "2",
		TeacherName: "Carlos Andrade",
		Subject:     "Matemática",
		Date:        "2024-03-08",
		Result:      school.ResultPositive,
		Description: "Boa resposta às atividades adaptadas de frações",
		CreatedAt:   now,
	}}
}

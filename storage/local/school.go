package localstore

import (
	"github.com/google/uuid"

	"github.com/incluso/backend/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// Students

func (repo *schoolRepository) QueryAllStudents() ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, len(repo.db.data.Students))
	copy(students, repo.db.data.Students)
	return students, nil
}

func (repo *schoolRepository) GetStudentByID(id string) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.data.Students {
		if st.ID == id {
			return st, nil
		}
	}
	return school.Student{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateStudent(st school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	repo.db.data.Students = append(repo.db.data.Students, st)
	return st, repo.db.save()
}

func (repo *schoolRepository) UpdateStudent(st school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, cur := range repo.db.data.Students {
		if cur.ID == st.ID {
			repo.db.data.Students[i] = st
			return st, repo.db.save()
		}
	}
	return school.Student{}, school.ErrNotFound
}

// DeleteStudent removes the student and cascades to its adaptations and
// reports; referential integrity here is by cascade, not constraint.
func (repo *schoolRepository) DeleteStudent(id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var found bool
	students := repo.db.data.Students[:0]
	for _, st := range repo.db.data.Students {
		if st.ID == id {
			found = true
			continue
		}
		students = append(students, st)
	}
	if !found {
		return false, nil
	}
	repo.db.data.Students = students

	adapts := repo.db.data.Adaptations[:0]
	for _, ad := range repo.db.data.Adaptations {
		if ad.StudentID != id {
			adapts = append(adapts, ad)
		}
	}
	repo.db.data.Adaptations = adapts

	reports := repo.db.data.Reports[:0]
	for _, rp := range repo.db.data.Reports {
		if rp.StudentID != id {
			reports = append(reports, rp)
		}
	}
	repo.db.data.Reports = reports

	return true, repo.db.save()
}

// Adaptations

func (repo *schoolRepository) QueryAdaptationsByStudent(studentID string) ([]school.Adaptation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var adapts []school.Adaptation
	for _, ad := range repo.db.data.Adaptations {
		if ad.StudentID == studentID {
			adapts = append(adapts, ad)
		}
	}
	return adapts, nil
}

func (repo *schoolRepository) GetAdaptationByID(id string) (school.Adaptation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ad := range repo.db.data.Adaptations {
		if ad.ID == id {
			return ad, nil
		}
	}
	return school.Adaptation{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateAdaptation(ad school.Adaptation) (school.Adaptation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}
	repo.db.data.Adaptations = append(repo.db.data.Adaptations, ad)
	return ad, repo.db.save()
}

func (repo *schoolRepository) UpdateAdaptation(ad school.Adaptation) (school.Adaptation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, cur := range repo.db.data.Adaptations {
		if cur.ID == ad.ID {
			repo.db.data.Adaptations[i] = ad
			return ad, repo.db.save()
		}
	}
	return school.Adaptation{}, school.ErrNotFound
}

func (repo *schoolRepository) DeleteAdaptation(id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	adapts := repo.db.data.Adaptations[:0]
	var found bool
	for _, ad := range repo.db.data.Adaptations {
		if ad.ID == id {
			found = true
			continue
		}
		adapts = append(adapts, ad)
	}
	if !found {
		return false, nil
	}
	repo.db.data.Adaptations = adapts
	return true, repo.db.save()
}

// Reports

func (repo *schoolRepository) QueryReportsByStudent(studentID string) ([]school.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reports []school.Report
	for _, rp := range repo.db.data.Reports {
		if rp.StudentID == studentID {
			reports = append(reports, rp)
		}
	}
	return reports, nil
}

func (repo *schoolRepository) GetReportByID(id string) (school.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rp := range repo.db.data.Reports {
		if rp.ID == id {
			return rp, nil
		}
	}
	return school.Report{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateReport(rp school.Report) (school.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if rp.ID == "" {
		rp.ID = uuid.NewString()
	}
	repo.db.data.Reports = append(repo.db.data.Reports, rp)
	return rp, repo.db.save()
}

func (repo *schoolRepository) UpdateReport(rp school.Report) (school.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, cur := range repo.db.data.Reports {
		if cur.ID == rp.ID {
			repo.db.data.Reports[i] = rp
			return rp, repo.db.save()
		}
	}
	return school.Report{}, school.ErrNotFound
}

func (repo *schoolRepository) DeleteReport(id string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	reports := repo.db.data.Reports[:0]
	var found bool
	for _, rp := range repo.db.data.Reports {
		if rp.ID == id {
			found = true
			continue
		}
		reports = append(reports, rp)
	}
	if !found {
		return false, nil
	}
	repo.db.data.Reports = reports
	return true, repo.db.save()
}

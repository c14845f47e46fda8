package school

import (
	"context"
	"errors"
	"time"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("record not found")
)

type (
	// Repository is the authoritative on-device record store.
	Repository interface {
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		// CreateStudent assigns an id when the record carries none.
		CreateStudent(st Student) (Student, error)
		UpdateStudent(st Student) (Student, error)
		// DeleteStudent cascades to the student's adaptations and reports;
		// false when the id is unknown.
		DeleteStudent(id string) (bool, error)

		QueryAdaptationsByStudent(studentID string) ([]Adaptation, error)
		GetAdaptationByID(id string) (Adaptation, error)
		CreateAdaptation(ad Adaptation) (Adaptation, error)
		UpdateAdaptation(ad Adaptation) (Adaptation, error)
		DeleteAdaptation(id string) (bool, error)

		QueryReportsByStudent(studentID string) ([]Report, error)
		GetReportByID(id string) (Report, error)
		CreateReport(rp Report) (Report, error)
		UpdateReport(rp Report) (Report, error)
		DeleteReport(id string) (bool, error)
	}

	// Remote is the remote REST API; every call is best-effort and the
	// implementation normalizes wire shapes defensively. Update/Delete
	// calls retry the nested {studentId}/{id} path on a 404.
	Remote interface {
		ListStudents(ctx context.Context) ([]Student, error)
		CreateStudent(ctx context.Context, st Student) (Student, error)
		UpdateStudent(ctx context.Context, st Student) error
		DeleteStudent(ctx context.Context, id string) error

		ListAdaptations(ctx context.Context, studentID string) ([]Adaptation, error)
		CreateAdaptation(ctx context.Context, ad Adaptation) (Adaptation, error)
		UpdateAdaptation(ctx context.Context, ad Adaptation) error
		DeleteAdaptation(ctx context.Context, studentID, id string) error

		ListReports(ctx context.Context, studentID string) ([]Report, error)
		CreateReport(ctx context.Context, rp Report) (Report, error)
		UpdateReport(ctx context.Context, rp Report) error
		DeleteReport(ctx context.Context, studentID, id string) error

		// FetchStudentReport fetches the remote aggregate, completing
		// partial (bare-list) responses with parallel follow-up fetches.
		FetchStudentReport(ctx context.Context, studentID string) (StudentReport, error)
	}

	// Service coordinates every student/adaptation/report mutation as a
	// dual write: the remote call is an optimistic synchronization
	// attempt, the local write is the durability guarantee. Mutations
	// report `synced=false` instead of failing when the remote is down.
	Service struct {
		repo   Repository
		remote Remote
		mail   core.EmailService
		log    core.Logger
	}
)

func NewService(repo Repository, remote Remote, mail core.EmailService, log core.Logger) *Service {
	return &Service{repo: repo, remote: remote, mail: mail, log: log}
}

// Students

// ListStudents merges the remote collection (empty on failure) with the
// local one, local winning on key collision.
func (svc *Service) ListStudents(ctx context.Context) ([]Student, error) {
	remote, err := svc.remote.ListStudents(ctx)
	if err != nil {
		svc.log.Debug("school: remote student list unavailable", err)
		remote = nil
	}
	local, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	return mergeStudents(remote, local), nil
}

// GetStudent reads a single student, local copy taking precedence.
func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	if st, err := svc.repo.GetStudentByID(id); err == nil {
		return st, nil
	}
	remote, err := svc.remote.ListStudents(ctx)
	if err != nil {
		return Student{}, ErrNotFound
	}
	for _, st := range remote {
		if st.ID == id {
			return st, nil
		}
	}
	return Student{}, ErrNotFound
}

func (svc *Service) CreateStudent(ctx context.Context, actor user.User, ns NewStudent) (Student, bool, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, false, err
	}

	st := Student{
		Name:               core.CleanString(ns.Name),
		Course:             core.CleanString(ns.Course),
		Class:              core.CleanString(ns.Class),
		BirthDate:          ns.BirthDate,
		RegistrationNumber: core.CleanString(ns.RegistrationNumber),
		GuardianName:       core.CleanString(ns.GuardianName),
		GuardianContact:    core.CleanString(ns.GuardianContact, true),
		CreatedAt:          time.Now().UTC(),
		CreatedBy:          actor.ID,
	}

	created, remoteErr := svc.remote.CreateStudent(ctx, st)
	if remoteErr == nil && created.ID != "" {
		// thread the remote-assigned id into the local write so both
		// stores reconcile on the next merge
		st.ID = created.ID
	} else if remoteErr != nil {
		svc.log.Warn("school: student saved offline", remoteErr)
	}

	st, localErr := svc.repo.CreateStudent(st)
	if localErr != nil {
		return Student{}, false, localErr
	}
	return st, remoteErr == nil, nil
}

func (svc *Service) UpdateStudent(ctx context.Context, actor user.User, id string, us UpdateStudent) (Student, bool, error) {
	if err := us.Validate(); err != nil {
		return Student{}, false, err
	}

	st, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, false, err
	}
	applyStudentUpdate(&st, us)
	now := time.Now().UTC()
	st.UpdatedAt = &now
	st.UpdatedBy = actor.ID

	remoteErr := svc.remote.UpdateStudent(ctx, st)
	if remoteErr != nil {
		svc.log.Warn("school: student update saved offline", remoteErr)
	}

	st, localErr := svc.repo.UpdateStudent(st)
	if localErr != nil {
		return Student{}, false, localErr
	}
	return st, remoteErr == nil, nil
}

// DeleteStudent removes the student and, by cascade, every adaptation
// and report referencing it. The local delete is authoritative; the
// remote outcome never reverses it.
func (svc *Service) DeleteStudent(ctx context.Context, id string) (found, synced bool, err error) {
	found, err = svc.repo.DeleteStudent(id)
	if err != nil {
		return false, false, err
	}

	remoteErr := svc.remote.DeleteStudent(ctx, id)
	if remoteErr != nil {
		svc.log.Warn("school: student delete pending remote sync", remoteErr)
	}
	return found, remoteErr == nil, nil
}

// Adaptations

func (svc *Service) ListAdaptations(ctx context.Context, studentID string) ([]Adaptation, error) {
	remote, err := svc.remote.ListAdaptations(ctx, studentID)
	if err != nil {
		svc.log.Debug("school: remote adaptation list unavailable", err)
		remote = nil
	}
	local, err := svc.repo.QueryAdaptationsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	return mergeAdaptations(remote, local), nil
}

func (svc *Service) CreateAdaptation(ctx context.Context, actor user.User, na NewAdaptation) (Adaptation, bool, error) {
	if err := na.Validate(); err != nil {
		return Adaptation{}, false, err
	}

	ad := Adaptation{
		StudentID:     na.StudentID,
		Description:   core.CleanString(na.Description),
		Justification: core.CleanString(na.Justification),
		Date:          na.Date,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     actor.ID,
	}

	created, remoteErr := svc.remote.CreateAdaptation(ctx, ad)
	if remoteErr == nil && created.ID != "" {
		ad.ID = created.ID
	} else if remoteErr != nil {
		svc.log.Warn("school: adaptation saved offline", remoteErr)
	}

	ad, localErr := svc.repo.CreateAdaptation(ad)
	if localErr != nil {
		return Adaptation{}, false, localErr
	}
	return ad, remoteErr == nil, nil
}

func (svc *Service) UpdateAdaptation(ctx context.Context, id string, ua UpdateAdaptation) (Adaptation, bool, error) {
	if err := ua.Validate(); err != nil {
		return Adaptation{}, false, err
	}

	ad, err := svc.repo.GetAdaptationByID(id)
	if err != nil {
		return Adaptation{}, false, err
	}
	if ua.Description != "" {
		ad.Description = core.CleanString(ua.Description)
	}
	if ua.Justification != "" {
		ad.Justification = core.CleanString(ua.Justification)
	}
	if ua.Date != "" {
		ad.Date = ua.Date
	}
	now := time.Now().UTC()
	ad.UpdatedAt = &now

	remoteErr := svc.remote.UpdateAdaptation(ctx, ad)
	if remoteErr != nil {
		svc.log.Warn("school: adaptation update saved offline", remoteErr)
	}

	ad, localErr := svc.repo.UpdateAdaptation(ad)
	if localErr != nil {
		return Adaptation{}, false, localErr
	}
	return ad, remoteErr == nil, nil
}

func (svc *Service) DeleteAdaptation(ctx context.Context, id string) (found, synced bool, err error) {
	// read before delete: the nested remote path needs the parent id
	var studentID string
	if ad, err := svc.repo.GetAdaptationByID(id); err == nil {
		studentID = ad.StudentID
	}

	found, err = svc.repo.DeleteAdaptation(id)
	if err != nil {
		return false, false, err
	}

	remoteErr := svc.remote.DeleteAdaptation(ctx, studentID, id)
	if remoteErr != nil {
		svc.log.Warn("school: adaptation delete pending remote sync", remoteErr)
	}
	return found, remoteErr == nil, nil
}

// Reports

func (svc *Service) ListReports(ctx context.Context, studentID string) ([]Report, error) {
	remote, err := svc.remote.ListReports(ctx, studentID)
	if err != nil {
		svc.log.Debug("school: remote report list unavailable", err)
		remote = nil
	}
	local, err := svc.repo.QueryReportsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	return mergeReports(remote, local), nil
}

// CreateReport stamps the report with the acting teacher's identity.
func (svc *Service) CreateReport(ctx context.Context, actor user.User, nr NewReport) (Report, bool, error) {
	if err := nr.Validate(); err != nil {
		return Report{}, false, err
	}

	rp := Report{
		StudentID:   nr.StudentID,
		TeacherID:   actor.ID,
		TeacherName: actor.Name,
		Subject:     core.CleanString(nr.Subject),
		Date:        nr.Date,
		Result:      nr.Result,
		Description: core.CleanString(nr.Description),
		CreatedAt:   time.Now().UTC(),
	}

	created, remoteErr := svc.remote.CreateReport(ctx, rp)
	if remoteErr == nil && created.ID != "" {
		rp.ID = created.ID
	} else if remoteErr != nil {
		svc.log.Warn("school: report saved offline", remoteErr)
	}

	rp, localErr := svc.repo.CreateReport(rp)
	if localErr != nil {
		return Report{}, false, localErr
	}
	return rp, remoteErr == nil, nil
}

func (svc *Service) UpdateReport(ctx context.Context, id string, ur UpdateReport) (Report, bool, error) {
	if err := ur.Validate(); err != nil {
		return Report{}, false, err
	}

	rp, err := svc.repo.GetReportByID(id)
	if err != nil {
		return Report{}, false, err
	}
	if ur.Subject != "" {
		rp.Subject = core.CleanString(ur.Subject)
	}
	if ur.Date != "" {
		rp.Date = ur.Date
	}
	if ur.Result != "" {
		rp.Result = ur.Result
	}
	if ur.Description != "" {
		rp.Description = core.CleanString(ur.Description)
	}
	now := time.Now().UTC()
	rp.UpdatedAt = &now

	remoteErr := svc.remote.UpdateReport(ctx, rp)
	if remoteErr != nil {
		svc.log.Warn("school: report update saved offline", remoteErr)
	}

	rp, localErr := svc.repo.UpdateReport(rp)
	if localErr != nil {
		return Report{}, false, localErr
	}
	return rp, remoteErr == nil, nil
}

func (svc *Service) DeleteReport(ctx context.Context, id string) (found, synced bool, err error) {
	var studentID string
	if rp, err := svc.repo.GetReportByID(id); err == nil {
		studentID = rp.StudentID
	}

	found, err = svc.repo.DeleteReport(id)
	if err != nil {
		return false, false, err
	}

	remoteErr := svc.remote.DeleteReport(ctx, studentID, id)
	if remoteErr != nil {
		svc.log.Warn("school: report delete pending remote sync", remoteErr)
	}
	return found, remoteErr == nil, nil
}

func applyStudentUpdate(st *Student, us UpdateStudent) {
	if us.Name != "" {
		st.Name = core.CleanString(us.Name)
	}
	if us.Course != "" {
		st.Course = core.CleanString(us.Course)
	}
	if us.Class != "" {
		st.Class = core.CleanString(us.Class)
	}
	if us.BirthDate != "" {
		st.BirthDate = us.BirthDate
	}
	if us.RegistrationNumber != "" {
		st.RegistrationNumber = core.CleanString(us.RegistrationNumber)
	}
	if us.GuardianName != "" {
		st.GuardianName = core.CleanString(us.GuardianName)
	}
	if us.GuardianContact != "" {
		st.GuardianContact = core.CleanString(us.GuardianContact, true)
	}
}

package school_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
	localstore "github.com/incluso/backend/storage/local"
	testutil "github.com/incluso/backend/tests"
)

var errRemoteDown = errors.New("connection refused")

// fakeRemote scripts the remote side of a dual write: err fails every
// call, nextID is echoed back as the server-assigned id on creates.
type fakeRemote struct {
	err    error
	nextID string

	students    []school.Student
	adaptations map[string][]school.Adaptation
	reports     map[string][]school.Report
	aggregate   school.StudentReport

	deleted []string
}

var _ school.Remote = (*fakeRemote)(nil)

func (f *fakeRemote) ListStudents(context.Context) ([]school.Student, error) {
	return f.students, f.err
}

func (f *fakeRemote) CreateStudent(_ context.Context, st school.Student) (school.Student, error) {
	if f.err != nil {
		return school.Student{}, f.err
	}
	st.ID = f.nextID
	return st, nil
}

func (f *fakeRemote) UpdateStudent(context.Context, school.Student) error { return f.err }

func (f *fakeRemote) DeleteStudent(_ context.Context, id string) error {
	if f.err == nil {
		f.deleted = append(f.deleted, "students/"+id)
	}
	return f.err
}

func (f *fakeRemote) ListAdaptations(_ context.Context, studentID string) ([]school.Adaptation, error) {
	return f.adaptations[studentID], f.err
}

func (f *fakeRemote) CreateAdaptation(_ context.Context, ad school.Adaptation) (school.Adaptation, error) {
	if f.err != nil {
		return school.Adaptation{}, f.err
	}
	ad.ID = f.nextID
	return ad, nil
}

func (f *fakeRemote) UpdateAdaptation(context.Context, school.Adaptation) error { return f.err }

func (f *fakeRemote) DeleteAdaptation(_ context.Context, studentID, id string) error {
	if f.err == nil {
		f.deleted = append(f.deleted, "adaptations/"+studentID+"/"+id)
	}
	return f.err
}

func (f *fakeRemote) ListReports(_ context.Context, studentID string) ([]school.Report, error) {
	return f.reports[studentID], f.err
}

func (f *fakeRemote) CreateReport(_ context.Context, rp school.Report) (school.Report, error) {
	if f.err != nil {
		return school.Report{}, f.err
	}
	rp.ID = f.nextID
	return rp, nil
}

func (f *fakeRemote) UpdateReport(context.Context, school.Report) error { return f.err }

func (f *fakeRemote) DeleteReport(_ context.Context, studentID, id string) error {
	if f.err == nil {
		f.deleted = append(f.deleted, "reports/"+studentID+"/"+id)
	}
	return f.err
}

func (f *fakeRemote) FetchStudentReport(context.Context, string) (school.StudentReport, error) {
	return f.aggregate, f.err
}

// captureMail records messages instead of sending them.
type captureMail struct {
	sent []*core.EmailMessage
}

var _ core.EmailService = (*captureMail)(nil)

func (m *captureMail) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func setup(t *testing.T) (*school.Service, school.Repository, *fakeRemote, *captureMail) {
	db := testutil.OpenDB(t)
	repo := localstore.NewSchoolRepository(db)
	remote := &fakeRemote{
		adaptations: make(map[string][]school.Adaptation),
		reports:     make(map[string][]school.Report),
	}
	mailer := &captureMail{}
	svc := school.NewService(repo, remote, mailer, testutil.NewLogger())
	return svc, repo, remote, mailer
}

var (
	coordinator = user.User{ID: "1", Name: "Maria Souza", Email: "coordenador@escola.com", Role: user.RoleCoordinator}
	teacher     = user.User{ID: "2", Name: "Carlos Andrade", Email: "professor@escola.com", Role: user.RoleTeacher}
)

func Test_Service_CreateStudent(t *testing.T) {
	ctx := context.Background()
	ns := school.NewStudent{
		Name:               "Ana Beatriz Lima",
		Course:             "Ensino Fundamental II",
		Class:              "7B",
		BirthDate:          "2012-03-14",
		RegistrationNumber: "2024-0107",
		GuardianName:       "Rute Lima",
		GuardianContact:    "RUTE.LIMA@example.com",
	}

	t.Run("remote down still saves locally", func(t *testing.T) {
		svc, repo, remote, _ := setup(t)
		remote.err = errRemoteDown

		st, synced, err := svc.CreateStudent(ctx, coordinator, ns)
		require.NoError(t, err)
		assert.False(t, synced)
		assert.NotEmpty(t, st.ID) // locally assigned
		assert.Equal(t, "Ana Beatriz Lima", st.Name)
		assert.Equal(t, "rute.lima@example.com", st.GuardianContact)
		assert.Equal(t, coordinator.ID, st.CreatedBy)
		assert.False(t, st.CreatedAt.IsZero())

		stored, err := repo.GetStudentByID(st.ID)
		require.NoError(t, err)
		assert.Equal(t, st, stored)
	})

	t.Run("remote id is threaded into the local record", func(t *testing.T) {
		svc, repo, remote, _ := setup(t)
		remote.nextID = "srv-9"

		st, synced, err := svc.CreateStudent(ctx, coordinator, ns)
		require.NoError(t, err)
		assert.True(t, synced)
		assert.Equal(t, "srv-9", st.ID)

		_, err = repo.GetStudentByID("srv-9")
		assert.NoError(t, err)
	})

	t.Run("invalid payload", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		_, _, err := svc.CreateStudent(ctx, coordinator, school.NewStudent{Name: "Ana"})
		assert.Error(t, err)
	})
}

func Test_Service_ListStudents(t *testing.T) {
	ctx := context.Background()
	svc, repo, remote, _ := setup(t)

	local := testutil.CreateStudent(t, repo, "Julia Prado", "Ensino Fundamental I", "2C", "2024-0301")
	shared := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")
	remote.students = []school.Student{
		{ID: shared.ID, Name: "Ana B. Lima (stale)", Course: "Ensino Fundamental II", Class: "7B", RegistrationNumber: "2024-0107"},
		{ID: "r-1", Name: "Pedro Henrique Costa", Course: "Ensino Fundamental II", Class: "8A", RegistrationNumber: "2024-0212"},
	}

	students, err := svc.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, shared, students[0]) // local copy wins, remote position kept
	assert.Equal(t, "r-1", students[1].ID)
	assert.Equal(t, local, students[2])

	t.Run("remote failure degrades to the local set", func(t *testing.T) {
		remote.err = errRemoteDown
		students, err := svc.ListStudents(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []school.Student{local, shared}, students)
	})
}

func Test_Service_GetStudent(t *testing.T) {
	ctx := context.Background()
	svc, repo, remote, _ := setup(t)

	local := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")
	remote.students = []school.Student{
		{ID: local.ID, Name: "stale copy"},
		{ID: "r-1", Name: "Pedro Henrique Costa"},
	}

	got, err := svc.GetStudent(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, local, got) // local precedence

	got, err = svc.GetStudent(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Pedro Henrique Costa", got.Name)

	_, err = svc.GetStudent(ctx, "nope")
	assert.ErrorIs(t, err, school.ErrNotFound)

	remote.err = errRemoteDown
	_, err = svc.GetStudent(ctx, "r-1")
	assert.ErrorIs(t, err, school.ErrNotFound)
}

func Test_Service_UpdateStudent(t *testing.T) {
	ctx := context.Background()
	svc, repo, remote, _ := setup(t)
	remote.err = errRemoteDown

	st := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")

	got, synced, err := svc.UpdateStudent(ctx, coordinator, st.ID, school.UpdateStudent{Class: "7C"})
	require.NoError(t, err)
	assert.False(t, synced)
	assert.Equal(t, "7C", got.Class)
	assert.Equal(t, st.Name, got.Name) // untouched fields survive
	assert.Equal(t, coordinator.ID, got.UpdatedBy)
	require.NotNil(t, got.UpdatedAt)

	_, _, err = svc.UpdateStudent(ctx, coordinator, "nope", school.UpdateStudent{Class: "7C"})
	assert.ErrorIs(t, err, school.ErrNotFound)
}

func Test_Service_DeleteStudent_cascades(t *testing.T) {
	ctx := context.Background()
	svc, repo, remote, _ := setup(t)
	remote.err = errRemoteDown // the local delete must not depend on the remote

	st := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")
	testutil.CreateAdaptation(t, repo, st.ID, "Tempo estendido")
	testutil.CreateReport(t, repo, st.ID, "Matemática", school.ResultPositive)

	found, synced, err := svc.DeleteStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, synced)

	_, err = repo.GetStudentByID(st.ID)
	assert.ErrorIs(t, err, school.ErrNotFound)
	adapts, _ := repo.QueryAdaptationsByStudent(st.ID)
	assert.Empty(t, adapts)
	reports, _ := repo.QueryReportsByStudent(st.ID)
	assert.Empty(t, reports)

	found, _, err = svc.DeleteStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Service_CreateReport(t *testing.T) {
	ctx := context.Background()
	svc, repo, remote, _ := setup(t)
	remote.nextID = "srv-r1"

	st := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")

	rp, synced, err := svc.CreateReport(ctx, teacher, school.NewReport{
		StudentID:   st.ID,
		Subject:     "Matemática",
		Date:        "2024-03-08",
		Result:      school.ResultPositive,
		Description: "Boa resposta às atividades adaptadas",
	})
	require.NoError(t, err)
	assert.True(t, synced)
	assert.Equal(t, "srv-r1", rp.ID)
	assert.Equal(t, teacher.ID, rp.TeacherID)
	assert.Equal(t, teacher.Name, rp.TeacherName)

	t.Run("invalid result", func(t *testing.T) {
		_, _, err := svc.CreateReport(ctx, teacher, school.NewReport{
			StudentID:   st.ID,
			Subject:     "Matemática",
			Date:        "2024-03-08",
			Result:      "meh",
			Description: "x",
		})
		assert.Error(t, err)
	})
}

func Test_Service_DeleteAdaptation_usesParentPath(t *testing.T) {
	ctx := context.Background()
	svc, repo, remote, _ := setup(t)

	st := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")
	ad := testutil.CreateAdaptation(t, repo, st.ID, "Tempo estendido")

	found, synced, err := svc.DeleteAdaptation(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, synced)
	// the parent id was read before the local delete and handed to the remote
	assert.Equal(t, []string{"adaptations/" + st.ID + "/" + ad.ID}, remote.deleted)
}

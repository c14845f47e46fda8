package school_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/school"
	testutil "github.com/incluso/backend/tests"
)

func Test_Service_StudentReport(t *testing.T) {
	ctx := context.Background()

	t.Run("merges the remote aggregate with local records", func(t *testing.T) {
		svc, repo, remote, _ := setup(t)

		st := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")
		localAd := testutil.CreateAdaptation(t, repo, st.ID, "Tempo estendido")
		localRp := testutil.CreateReport(t, repo, st.ID, "Matemática", school.ResultPositive)

		remote.aggregate = school.StudentReport{
			Student:     school.Student{ID: st.ID, Name: "stale copy"},
			Adaptations: []school.Adaptation{{ID: "r-a1", StudentID: st.ID, Description: "Material ampliado"}},
			Reports:     []school.Report{{ID: localRp.ID, StudentID: st.ID, Subject: "Matemática", Result: school.ResultNeutral}},
		}

		agg, err := svc.StudentReport(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, st, agg.Student) // local copy takes precedence
		assert.ElementsMatch(t, []school.Adaptation{
			{ID: "r-a1", StudentID: st.ID, Description: "Material ampliado"},
			localAd,
		}, agg.Adaptations)
		require.Len(t, agg.Reports, 1)
		assert.Equal(t, localRp, agg.Reports[0]) // local wins on shared id
	})

	t.Run("remote failure degrades to local records", func(t *testing.T) {
		svc, repo, remote, _ := setup(t)
		remote.err = errRemoteDown

		st := testutil.CreateStudent(t, repo, "Ana Beatriz Lima", "Ensino Fundamental II", "7B", "2024-0107")
		ad := testutil.CreateAdaptation(t, repo, st.ID, "Tempo estendido")

		agg, err := svc.StudentReport(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, st, agg.Student)
		assert.Equal(t, []school.Adaptation{ad}, agg.Adaptations)
		assert.Empty(t, agg.Reports)
	})

	t.Run("remote-only student", func(t *testing.T) {
		svc, _, remote, _ := setup(t)
		remote.aggregate = school.StudentReport{Student: school.Student{ID: "r-1", Name: "Pedro Henrique Costa"}}

		agg, err := svc.StudentReport(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, "Pedro Henrique Costa", agg.Student.Name)
	})

	t.Run("unknown to both stores", func(t *testing.T) {
		svc, _, remote, _ := setup(t)
		remote.err = errRemoteDown

		_, err := svc.StudentReport(ctx, "nope")
		assert.ErrorIs(t, err, school.ErrNotFound)
	})
}

func Test_Service_EmailStudentReport(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the summary to the guardian", func(t *testing.T) {
		svc, repo, _, mailer := setup(t)

		st, err := repo.CreateStudent(school.Student{
			Name:               "Ana Beatriz Lima",
			Course:             "Ensino Fundamental II",
			Class:              "7B",
			BirthDate:          "2012-03-14",
			RegistrationNumber: "2024-0107",
			GuardianName:       "Rute Lima",
			GuardianContact:    "rute.lima@example.com",
		})
		require.NoError(t, err)
		testutil.CreateAdaptation(t, repo, st.ID, "Tempo estendido")
		testutil.CreateReport(t, repo, st.ID, "Matemática", school.ResultPositive)

		require.NoError(t, svc.EmailStudentReport(ctx, st.ID))
		require.Len(t, mailer.sent, 1)

		msg := mailer.sent[0]
		require.Len(t, msg.To, 1)
		assert.Equal(t, "rute.lima@example.com", msg.To[0].Address)
		assert.Equal(t, "Acompanhamento de Ana Beatriz Lima", msg.Subject)
		assert.True(t, strings.Contains(msg.Body, "Tempo estendido"))
		assert.True(t, strings.Contains(msg.Body, "Matemática"))
	})

	t.Run("no guardian contact on record", func(t *testing.T) {
		svc, repo, _, mailer := setup(t)

		st := testutil.CreateStudent(t, repo, "Pedro Henrique Costa", "Ensino Fundamental II", "8A", "2024-0212")

		err := svc.EmailStudentReport(ctx, st.ID)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Empty(t, mailer.sent)
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, _, remote, _ := setup(t)
		remote.err = errRemoteDown

		assert.ErrorIs(t, svc.EmailStudentReport(ctx, "nope"), school.ErrNotFound)
	})
}

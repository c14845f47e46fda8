package school

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/incluso/backend/core"
)

// StudentReport assembles a student's full view: the remote aggregate
// (empty pieces on any remote failure) merged with the local store's
// records, keyed by id with local entries winning. It only fails when
// the student is unknown to both stores or the local store itself errors.
func (svc *Service) StudentReport(ctx context.Context, studentID string) (StudentReport, error) {
	agg, err := svc.remote.FetchStudentReport(ctx, studentID)
	if err != nil {
		svc.log.Debug("school: remote report aggregate unavailable", err)
		agg = StudentReport{}
	}

	if st, err := svc.repo.GetStudentByID(studentID); err == nil {
		agg.Student = st // local copy takes precedence on read
	} else if agg.Student.ID == "" {
		return StudentReport{}, ErrNotFound
	}

	localAdapts, err := svc.repo.QueryAdaptationsByStudent(studentID)
	if err != nil {
		return StudentReport{}, err
	}
	localReports, err := svc.repo.QueryReportsByStudent(studentID)
	if err != nil {
		return StudentReport{}, err
	}

	agg.Adaptations = mergeAdaptations(agg.Adaptations, localAdapts)
	agg.Reports = mergeReports(agg.Reports, localReports)
	return agg, nil
}

// EmailStudentReport sends a plain-text summary of the assembled report
// to the student's guardian contact.
func (svc *Service) EmailStudentReport(ctx context.Context, studentID string) error {
	agg, err := svc.StudentReport(ctx, studentID)
	if err != nil {
		return err
	}
	if agg.Student.GuardianContact == "" {
		return core.NewValidationError(
			fmt.Errorf("student %s has no guardian contact", agg.Student.ID),
			core.FieldError{Field: "guardianContact", Error: "no guardian contact on record"},
		)
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: agg.Student.GuardianName, Address: agg.Student.GuardianContact}},
		Subject: "Acompanhamento de " + agg.Student.Name,
		Body:    renderReportSummary(agg),
	}
	svc.mail.SendMessages(msg)
	return nil
}

func renderReportSummary(agg StudentReport) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "Aluno(a): %s\n", agg.Student.Name)
	fmt.Fprintf(b, "Curso: %s / Turma: %s\n", agg.Student.Course, agg.Student.Class)
	fmt.Fprintf(b, "Matrícula: %s\n\n", agg.Student.RegistrationNumber)

	fmt.Fprintf(b, "Adaptações curriculares (%d):\n", len(agg.Adaptations))
	for _, ad := range agg.Adaptations {
		fmt.Fprintf(b, "  - [%s] %s (%s)\n", ad.Date, ad.Description, ad.Justification)
	}

	fmt.Fprintf(b, "\nRelatórios dos professores (%d):\n", len(agg.Reports))
	for _, rp := range agg.Reports {
		fmt.Fprintf(b, "  - [%s] %s, %s (%s): %s\n", rp.Date, rp.Subject, rp.TeacherName, rp.Result, rp.Description)
	}
	return b.String()
}

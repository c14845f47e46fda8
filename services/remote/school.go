package remotesvc

import (
	"context"
	"net/http"
	"sync"

	"github.com/incluso/backend/core/school"
)

var _ school.Remote = (*Client)(nil) // interface compliance check

// Students

func (c *Client) ListStudents(ctx context.Context) ([]school.Student, error) {
	b, err := c.request(ctx, http.MethodGet, "/students", "", nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	records, err := b.List("students")
	if err != nil {
		return nil, err
	}
	students := make([]school.Student, 0, len(records))
	for _, m := range records {
		students = append(students, studentFromRecord(m))
	}
	return students, nil
}

func (c *Client) CreateStudent(ctx context.Context, st school.Student) (school.Student, error) {
	b, err := c.request(ctx, http.MethodPost, "/students", "", st)
	if err != nil {
		return school.Student{}, err
	}
	return studentFromRecord(unwrapRecord(b, "student")), nil
}

func (c *Client) UpdateStudent(ctx context.Context, st school.Student) error {
	_, err := c.request(ctx, http.MethodPut, "/students/"+st.ID, "", st)
	return err
}

func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "/students/"+id, "", nil)
	if IsNotFound(err) {
		return nil // already gone remotely
	}
	return err
}

// Adaptations

func (c *Client) ListAdaptations(ctx context.Context, studentID string) ([]school.Adaptation, error) {
	b, err := c.request(ctx, http.MethodGet, "/adaptations/"+studentID, "", nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	records, err := b.List("adaptations")
	if err != nil {
		return nil, err
	}
	adapts := make([]school.Adaptation, 0, len(records))
	for _, m := range records {
		adapts = append(adapts, adaptationFromRecord(m))
	}
	return adapts, nil
}

func (c *Client) CreateAdaptation(ctx context.Context, ad school.Adaptation) (school.Adaptation, error) {
	b, err := c.request(ctx, http.MethodPost, "/adaptations", "", ad)
	if err != nil {
		return school.Adaptation{}, err
	}
	return adaptationFromRecord(unwrapRecord(b, "adaptation")), nil
}

// UpdateAdaptation tries the flat path and, when the API nests the
// resource under its parent, retries {studentId}/{id}.
func (c *Client) UpdateAdaptation(ctx context.Context, ad school.Adaptation) error {
	_, err := c.request(ctx, http.MethodPut, "/adaptations/"+ad.ID, "", ad)
	if IsNotFound(err) && ad.StudentID != "" {
		_, err = c.request(ctx, http.MethodPut, "/adaptations/"+ad.StudentID+"/"+ad.ID, "", ad)
	}
	return err
}

func (c *Client) DeleteAdaptation(ctx context.Context, studentID, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "/adaptations/"+id, "", nil)
	if IsNotFound(err) && studentID != "" {
		_, err = c.request(ctx, http.MethodDelete, "/adaptations/"+studentID+"/"+id, "", nil)
	}
	if IsNotFound(err) {
		return nil
	}
	return err
}

// Reports

func (c *Client) ListReports(ctx context.Context, studentID string) ([]school.Report, error) {
	b, err := c.request(ctx, http.MethodGet, "/reports/"+studentID, "", nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	records, err := b.List("reports")
	if err != nil {
		return nil, err
	}
	reports := make([]school.Report, 0, len(records))
	for _, m := range records {
		reports = append(reports, reportFromRecord(m))
	}
	return reports, nil
}

func (c *Client) CreateReport(ctx context.Context, rp school.Report) (school.Report, error) {
	b, err := c.request(ctx, http.MethodPost, "/reports", "", rp)
	if err != nil {
		return school.Report{}, err
	}
	return reportFromRecord(unwrapRecord(b, "report")), nil
}

func (c *Client) UpdateReport(ctx context.Context, rp school.Report) error {
	_, err := c.request(ctx, http.MethodPut, "/reports/"+rp.ID, "", rp)
	if IsNotFound(err) && rp.StudentID != "" {
		_, err = c.request(ctx, http.MethodPut, "/reports/"+rp.StudentID+"/"+rp.ID, "", rp)
	}
	return err
}

func (c *Client) DeleteReport(ctx context.Context, studentID, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "/reports/"+id, "", nil)
	if IsNotFound(err) && studentID != "" {
		_, err = c.request(ctx, http.MethodDelete, "/reports/"+studentID+"/"+id, "", nil)
	}
	if IsNotFound(err) {
		return nil
	}
	return err
}

// Aggregate

// FetchStudentReport fetches the remote aggregate for one student.
// Some backends answer /reports/{studentId} with the full aggregate,
// others with a bare list of whatever entity they index there; a bare
// list is classified by its first record's fields and the two missing
// pieces are fetched in parallel. Failed follow-ups degrade to empty.
func (c *Client) FetchStudentReport(ctx context.Context, studentID string) (school.StudentReport, error) {
	var agg school.StudentReport

	b, err := c.request(ctx, http.MethodGet, "/reports/"+studentID, "", nil)
	if err != nil {
		if IsNotFound(err) {
			return agg, nil
		}
		return agg, err
	}

	if m, ok := b.Map(); ok && hasAggregateShape(m) {
		if sm, ok := m["student"].(map[string]interface{}); ok {
			agg.Student = studentFromRecord(sm)
		}
		for _, rec := range toRecords(asArray(m["adaptations"])) {
			agg.Adaptations = append(agg.Adaptations, adaptationFromRecord(rec))
		}
		for _, rec := range toRecords(asArray(m["reports"])) {
			agg.Reports = append(agg.Reports, reportFromRecord(rec))
		}
		return agg, nil
	}

	records, err := b.List("reports")
	if err != nil {
		return agg, err
	}

	needStudent, needAdapts, needReports := true, true, true
	switch classifyRecords(records) {
	case "reports":
		for _, m := range records {
			agg.Reports = append(agg.Reports, reportFromRecord(m))
		}
		needReports = false
	case "adaptations":
		for _, m := range records {
			agg.Adaptations = append(agg.Adaptations, adaptationFromRecord(m))
		}
		needAdapts = false
	case "students":
		for _, m := range records {
			if st := studentFromRecord(m); st.ID == studentID {
				agg.Student = st
				needStudent = false
				break
			}
		}
	}

	// complete the aggregate; order of completion does not matter, the
	// merge downstream is keyed
	var wg sync.WaitGroup
	if needStudent {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if st, err := c.fetchStudent(ctx, studentID); err == nil {
				agg.Student = st
			}
		}()
	}
	if needAdapts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if adapts, err := c.ListAdaptations(ctx, studentID); err == nil {
				agg.Adaptations = adapts
			}
		}()
	}
	if needReports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reports, err := c.ListReports(ctx, studentID); err == nil {
				agg.Reports = reports
			}
		}()
	}
	wg.Wait()

	return agg, nil
}

func (c *Client) fetchStudent(ctx context.Context, id string) (school.Student, error) {
	b, err := c.request(ctx, http.MethodGet, "/students/"+id, "", nil)
	if err != nil {
		return school.Student{}, err
	}
	return studentFromRecord(unwrapRecord(b, "student")), nil
}

func hasAggregateShape(m map[string]interface{}) bool {
	for _, key := range []string{"student", "adaptations", "reports"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// classifyRecords guesses which entity a bare list holds from the
// field set of its first record.
func classifyRecords(records []map[string]interface{}) string {
	if len(records) == 0 {
		return ""
	}
	first := records[0]
	if _, ok := first["result"]; ok {
		return "reports"
	}
	if _, ok := first["justification"]; ok {
		return "adaptations"
	}
	if _, ok := first["course"]; ok {
		return "students"
	}
	if _, ok := first["registrationNumber"]; ok {
		return "students"
	}
	return ""
}

func asArray(v interface{}) []interface{} {
	arr, _ := v.([]interface{})
	return arr
}

// unwrapRecord returns the response object itself, or the entity nested
// under its name ({"student": {...}}) when the API wraps single records.
func unwrapRecord(b body, entity string) map[string]interface{} {
	m, ok := b.Map()
	if !ok {
		return nil
	}
	if inner, ok := m[entity].(map[string]interface{}); ok {
		return inner
	}
	return m
}

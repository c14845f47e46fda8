package remotesvc

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

// Field-level normalization for remote records. Ids may arrive as
// numbers or strings depending on the backend; numbers are stringified
// so id threading works either way.

func fieldString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			return v
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func fieldTime(m map[string]interface{}, key string) time.Time {
	s, _ := m[key].(string)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func fieldTimePtr(m map[string]interface{}, key string) *time.Time {
	if t := fieldTime(m, key); !t.IsZero() {
		return &t
	}
	return nil
}

func studentFromRecord(m map[string]interface{}) school.Student {
	return school.Student{
		ID:                 fieldString(m, "id", "_id"),
		Name:               fieldString(m, "name"),
		Course:             fieldString(m, "course"),
		Class:              fieldString(m, "class"),
		BirthDate:          fieldString(m, "birthDate"),
		RegistrationNumber: fieldString(m, "registrationNumber"),
		GuardianName:       fieldString(m, "guardianName"),
		GuardianContact:    fieldString(m, "guardianContact"),
		CreatedAt:          fieldTime(m, "createdAt"),
		CreatedBy:          fieldString(m, "createdBy"),
		UpdatedAt:          fieldTimePtr(m, "updatedAt"),
		UpdatedBy:          fieldString(m, "updatedBy"),
	}
}

func adaptationFromRecord(m map[string]interface{}) school.Adaptation {
	return school.Adaptation{
		ID:            fieldString(m, "id", "_id"),
		StudentID:     fieldString(m, "studentId"),
		Description:   fieldString(m, "description"),
		Justification: fieldString(m, "justification"),
		Date:          fieldString(m, "date"),
		CreatedAt:     fieldTime(m, "createdAt"),
		CreatedBy:     fieldString(m, "createdBy"),
		UpdatedAt:     fieldTimePtr(m, "updatedAt"),
	}
}

func reportFromRecord(m map[string]interface{}) school.Report {
	return school.Report{
		ID:          fieldString(m, "id", "_id"),
		StudentID:   fieldString(m, "studentId"),
		TeacherID:   fieldString(m, "teacherId"),
		TeacherName: fieldString(m, "teacherName"),
		Subject:     fieldString(m, "subject"),
		Date:        fieldString(m, "date"),
		Result:      fieldString(m, "result"),
		Description: fieldString(m, "description"),
		CreatedAt:   fieldTime(m, "createdAt"),
		UpdatedAt:   fieldTimePtr(m, "updatedAt"),
	}
}

func userFromRecord(m map[string]interface{}) user.User {
	return user.User{
		ID:        fieldString(m, "id", "_id"),
		Email:     fieldString(m, "email"),
		Name:      fieldString(m, "name"),
		Role:      normalizeRole(fieldString(m, "role")),
		CreatedAt: fieldTime(m, "createdAt"),
	}
}

// normalizeRole maps the remote API's pt-BR role names onto ours.
func normalizeRole(role string) string {
	switch strings.ToLower(role) {
	case "coordenador", "coordenadora", user.RoleCoordinator:
		return user.RoleCoordinator
	case "professor", "professora", user.RoleTeacher:
		return user.RoleTeacher
	}
	return strings.ToLower(role)
}

package school

import (
	"time"

	"github.com/incluso/backend/core"
)

// Report results (kept in pt-BR, as stored by every deployment to date)
const (
	ResultPositive = "positivo"
	ResultNeutral  = "neutro"
	ResultNegative = "negativo"
)

var AllResults = []string{ResultPositive, ResultNeutral, ResultNegative}

type Student struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Course             string     `json:"course"`
	Class              string     `json:"class"`
	BirthDate          string     `json:"birthDate"` // ISO date, as sent by the remote API
	RegistrationNumber string     `json:"registrationNumber"`
	GuardianName       string     `json:"guardianName,omitempty"`
	GuardianContact    string     `json:"guardianContact,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"` // UTC
	CreatedBy          string     `json:"createdBy,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"` // UTC
	UpdatedBy          string     `json:"updatedBy,omitempty"`
}

// Adaptation is one curricular adaptation applied to a student.
type Adaptation struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"studentId"`
	Description   string     `json:"description"`
	Justification string     `json:"justification"`
	Date          string     `json:"date"` // ISO date
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Report is a teacher's follow-up note on a student.
type Report struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId"`
	TeacherID   string     `json:"teacherId"`
	TeacherName string     `json:"teacherName"`
	Subject     string     `json:"subject"`
	Date        string     `json:"date"` // ISO date
	Result      string     `json:"result"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// StudentReport is the assembled view of a student: the record itself
// plus every adaptation and teacher report known locally or remotely.
type StudentReport struct {
	Student     Student      `json:"student"`
	Adaptations []Adaptation `json:"adaptations"`
	Reports     []Report     `json:"reports"`
}

// Payloads

type NewStudent struct {
	Name               string `json:"name" validate:"required,notblank"`
	Course             string `json:"course" validate:"required,notblank"`
	Class              string `json:"class" validate:"required,notblank"`
	BirthDate          string `json:"birthDate" validate:"required"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,notblank"`
	GuardianName       string `json:"guardianName"`
	GuardianContact    string `json:"guardianContact" validate:"omitempty,email"`
}

func (ns NewStudent) Validate() error { return core.Validate.Struct(ns) }

type UpdateStudent struct {
	Name               string `json:"name"`
	Course             string `json:"course"`
	Class              string `json:"class"`
	BirthDate          string `json:"birthDate"`
	RegistrationNumber string `json:"registrationNumber"`
	GuardianName       string `json:"guardianName"`
	GuardianContact    string `json:"guardianContact" validate:"omitempty,email"`
}

func (us UpdateStudent) Validate() error { return core.Validate.Struct(us) }

type NewAdaptation struct {
	StudentID     string `json:"studentId" validate:"required,notblank"`
	Description   string `json:"description" validate:"required,notblank"`
	Justification string `json:"justification" validate:"required,notblank"`
	Date          string `json:"date" validate:"required"`
}

func (na NewAdaptation) Validate() error { return core.Validate.Struct(na) }

type UpdateAdaptation struct {
	Description   string `json:"description"`
	Justification string `json:"justification"`
	Date          string `json:"date"`
}

func (ua UpdateAdaptation) Validate() error { return core.Validate.Struct(ua) }

type NewReport struct {
	StudentID   string `json:"studentId" validate:"required,notblank"`
	Subject     string `json:"subject" validate:"required,notblank"`
	Date        string `json:"date" validate:"required"`
	Result      string `json:"result" validate:"required,reportresult"`
	Description string `json:"description" validate:"required,notblank"`
}

func (nr NewReport) Validate() error { return core.Validate.Struct(nr) }

type UpdateReport struct {
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Result      string `json:"result" validate:"omitempty,reportresult"`
	Description string `json:"description"`
}

func (ur UpdateReport) Validate() error { return core.Validate.Struct(ur) }

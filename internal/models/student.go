package models

// Student represents a learner registered in the institution. Optional
// fields are stored as empty strings rather than NULLs.
type Student struct {
	ID          int64  `db:"id" json:"id"`
	USN         string `db:"usn" json:"usn"`
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	Phone       string `db:"phone" json:"phone"`
	Class       string `db:"class" json:"class"`
	Department  string `db:"department" json:"department"`
	ParentName  string `db:"parent_name" json:"parent_name"`
	ParentPhone string `db:"parent_phone" json:"parent_phone"`
	ParentEmail string `db:"parent_email" json:"parent_email"`
}

// StudentFilter narrows a student listing. Empty values and the literal
// "All" mean no filtering on that field.
type StudentFilter struct {
	Class      string
	Department string
}

// Wanted matches the filter sentinel convention used across listings.
func (f StudentFilter) Wanted(value string) bool {
	return value != "" && value != "All"
}

// StudentRef is a compact student reference for selection widgets.
type StudentRef struct {
	ID   int64  `db:"id" json:"id"`
	USN  string `db:"usn" json:"usn"`
	Name string `db:"name" json:"name"`
}

// ClassDepartmentOptions carries distinct filter values for listings.
type ClassDepartmentOptions struct {
	Classes     []string `json:"classes"`
	Departments []string `json:"departments"`
}

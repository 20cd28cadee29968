package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// AttendanceRecord is a single marked day for one student. Records are
// insert-only: re-marking an existing (student, date) pair is a conflict,
// never an overwrite.
type AttendanceRecord struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
}

// AttendanceEvent is a history row joined with student metadata.
type AttendanceEvent struct {
	StudentName string           `db:"name" json:"student_name"`
	Class       string           `db:"class" json:"class"`
	Department  string           `db:"department" json:"department"`
	Date        time.Time        `db:"date" json:"date"`
	Status      AttendanceStatus `db:"status" json:"status"`
}

// AttendanceSummary is a per-student rollup. Percentage is 0 when no days
// have been marked.
type AttendanceSummary struct {
	TotalDays  int     `db:"total_days" json:"total_days"`
	Present    int     `db:"present_count" json:"present"`
	Absent     int     `db:"absent_count" json:"absent"`
	Percentage float64 `json:"percentage"`
}

// BulkMarkResult tallies a bulk attendance pass. Rows that already existed
// are counted, not treated as failures.
type BulkMarkResult struct {
	Inserted      int `json:"inserted"`
	AlreadyMarked int `json:"already_marked"`
}

// DepartmentAttendance is one row of the dashboard's per-department
// breakdown for a selected date. Departments with no marked students still
// appear with zero counts.
type DepartmentAttendance struct {
	Department    string `db:"department" json:"department"`
	TotalStudents int    `db:"total_students" json:"total_students"`
	Present       int    `db:"present" json:"present"`
	Absent        int    `db:"absent" json:"absent"`
}

// StudentAttendanceReport is one row of the class/department report.
type StudentAttendanceReport struct {
	StudentID  int64   `db:"id" json:"student_id"`
	Name       string  `db:"name" json:"name"`
	Class      string  `db:"class" json:"class"`
	Department string  `db:"department" json:"department"`
	TotalDays  int     `db:"total_days" json:"total_days"`
	Present    int     `db:"present_count" json:"present"`
	Absent     int     `db:"absent_count" json:"absent"`
	Percentage float64 `json:"percentage"`
}

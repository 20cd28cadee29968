package models

import "time"

// Mark is one exam result for a student in a subject. The schema allows
// multiple entries per (student, subject, exam_type) so results can be
// re-entered after a re-grade.
type Mark struct {
	ID            int64      `db:"id" json:"id"`
	StudentID     int64      `db:"student_id" json:"student_id"`
	SubjectID     int64      `db:"subject_id" json:"subject_id"`
	ExamType      string     `db:"exam_type" json:"exam_type"`
	MarksObtained float64    `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks      float64    `db:"max_marks" json:"max_marks"`
	ExamDate      *time.Time `db:"exam_date" json:"exam_date,omitempty"`
	Remarks       string     `db:"remarks" json:"remarks"`
}

// MarkDetail is a mark joined with student and subject metadata for display.
type MarkDetail struct {
	Mark
	StudentName string `db:"student_name" json:"student_name"`
	USN         string `db:"usn" json:"usn"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	Course      string `db:"course" json:"course"`
	Semester    int    `db:"semester" json:"semester"`
}

// StudentMarkHistory is one exam entry in a student's report.
type StudentMarkHistory struct {
	SubjectName   string     `db:"subject_name" json:"subject_name"`
	Course        string     `db:"course" json:"course"`
	Semester      int        `db:"semester" json:"semester"`
	ExamType      string     `db:"exam_type" json:"exam_type"`
	MarksObtained float64    `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks      float64    `db:"max_marks" json:"max_marks"`
	ExamDate      *time.Time `db:"exam_date" json:"exam_date,omitempty"`
	Remarks       *string    `db:"remarks" json:"remarks,omitempty"`
}

// BulkMarksResult tallies a bulk marks pass. Positions lacking either score
// are skipped, not failed.
type BulkMarksResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

package models

// Subject is a course unit taught in one semester of a program. The
// (name, course, semester) triple is unique.
type Subject struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Course      string `db:"course" json:"course"`
	Semester    int    `db:"semester" json:"semester"`
	Description string `db:"description" json:"description"`
}

// SubjectFilter narrows a subject listing by equality. Zero values mean no
// filtering on that field.
type SubjectFilter struct {
	Course   string
	Semester int
}

// SubjectRef is a compact subject reference for selection widgets.
type SubjectRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

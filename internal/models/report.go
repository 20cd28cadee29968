package models

// DashboardSummary is the landing-page rollup.
type DashboardSummary struct {
	SelectedDate     string                 `json:"selected_date"`
	TotalStudents    int                    `json:"total_students"`
	TotalAttendance  int                    `json:"total_attendance"`
	PresentCount     int                    `json:"present_count"`
	AbsentCount      int                    `json:"absent_count"`
	OverallPercent   float64                `json:"overall_percent"`
	DeptAttendance   []DepartmentAttendance `json:"dept_attendance"`
	RecentAttendance []AttendanceEvent      `json:"recent_attendance"`
}

// StudentReport scopes attendance, marks and task history to one student.
type StudentReport struct {
	Student    Student              `json:"student"`
	Attendance AttendanceSummary    `json:"attendance"`
	Marks      []StudentMarkHistory `json:"marks"`
	Tasks      []StudentTaskHistory `json:"tasks"`
}

// Command seed fills a development database with sample students and
// subjects so the API can be exercised without manual data entry. It is
// idempotent: rows that already exist are skipped.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/campushq/college-adp-api/internal/models"
	"github.com/campushq/college-adp-api/internal/repository"
	"github.com/campushq/college-adp-api/pkg/config"
	"github.com/campushq/college-adp-api/pkg/database"
	"github.com/campushq/college-adp-api/pkg/logger"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall seed timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := database.Migrate(ctx, db, logr); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	students := repository.NewStudentRepository(db)
	subjects := repository.NewSubjectRepository(db)

	var inserted, skipped int
	for _, s := range sampleStudents() {
		student := s
		if err := students.Create(ctx, &student); err != nil {
			if err == repository.ErrDuplicate {
				skipped++
				continue
			}
			log.Fatalf("failed to seed student %s: %v", student.USN, err)
		}
		inserted++
	}
	log.Printf("students: %d inserted, %d already present", inserted, skipped)

	inserted, skipped = 0, 0
	for _, s := range sampleSubjects() {
		subject := s
		if err := subjects.Create(ctx, &subject); err != nil {
			if err == repository.ErrDuplicate {
				skipped++
				continue
			}
			log.Fatalf("failed to seed subject %s: %v", subject.Name, err)
		}
		inserted++
	}
	log.Printf("subjects: %d inserted, %d already present", inserted, skipped)
}

func sampleStudents() []models.Student {
	return []models.Student{
		{USN: "1CR21BC001", Name: "Asha Rao", Email: "asha.rao@example.com", Class: "1A", Department: "Commerce"},
		{USN: "1CR21BC002", Name: "Ravi Kumar", Email: "ravi.kumar@example.com", Class: "1A", Department: "Commerce"},
		{USN: "1CR21SC001", Name: "Meera Iyer", Email: "meera.iyer@example.com", Class: "2B", Department: "Science"},
		{USN: "1CR21SC002", Name: "Arjun Nair", Email: "arjun.nair@example.com", Class: "2B", Department: "Science"},
		{USN: "1CR21AR001", Name: "Fatima Khan", Email: "fatima.khan@example.com", Class: "3C", Department: "Arts"},
	}
}

func sampleSubjects() []models.Subject {
	return []models.Subject{
		{Name: "Financial Accounting", Course: "BCom", Semester: 1},
		{Name: "Business Economics", Course: "BCom", Semester: 1},
		{Name: "Corporate Law", Course: "BCom", Semester: 3},
		{Name: "Physics I", Course: "BSc", Semester: 1},
		{Name: "Organic Chemistry", Course: "BSc", Semester: 3},
		{Name: "World History", Course: "BA", Semester: 1},
	}
}

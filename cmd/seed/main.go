package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medware/hospital-overbook/internal/db"
)

var departments = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Oncology",
	"Emergency",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctors := makeDoctors(40)

	if err := seedAppointments(context.Background(), pool, doctors, 600); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}
	if err := seedWaitlist(context.Background(), pool, doctors, 150); err != nil {
		log.Fatalf("seed waitlist: %v", err)
	}

	log.Println("seed complete")
}

type doctor struct {
	name       string
	department string
}

func makeDoctors(count int) []doctor {
	doctors := make([]doctor, 0, count)
	for i := 0; i < count; i++ {
		doctors = append(doctors, doctor{
			name:       "Dr. " + gofakeit.Name(),
			department: departments[gofakeit.Number(0, len(departments)-1)],
		})
	}
	return doctors
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors []doctor, count int) error {
	log.Printf("seeding %d appointments", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for i := 0; i < count; i++ {
		d := doctors[gofakeit.Number(0, len(doctors)-1)]

		// Business-hour slots across the next two weeks.
		day := gofakeit.Number(0, 13)
		hour := gofakeit.Number(7, 18)
		slot := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.Local).AddDate(0, 0, day)

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, doctor_name, patient_name, department, date_time, overbooked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, false, now(), now())
		`, uuid.New(), d.name, gofakeit.Name(), d.department, slot)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}

func seedWaitlist(ctx context.Context, pool *pgxpool.Pool, doctors []doctor, count int) error {
	log.Printf("seeding %d waitlist entries", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		d := doctors[gofakeit.Number(0, len(doctors)-1)]

		// About a third of patients wait for a specific doctor.
		var doctorName *string
		if gofakeit.Number(0, 2) == 0 {
			doctorName = &d.name
		}

		email := gofakeit.Email()
		_, err := tx.Exec(ctx, `
			INSERT INTO waitlist_entries (id, department, doctor_name, patient_name, patient_email, priority, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'waiting', now(), now())
		`, uuid.New(), d.department, doctorName, gofakeit.Name(), email, gofakeit.Number(0, 5))
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("waitlist seeded")
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/agendafacil/agenda-service/internal/db"
	"github.com/agendafacil/agenda-service/internal/slot"
)

var consultationHours = []int{8, 9, 10, 11, 14, 15, 16, 17}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	days := flag.Int("days", 14, "how many days ahead to create slots for")
	bookRatio := flag.Float64("book-ratio", 0.3, "fraction of seeded slots to pre-book with fake patients")
	flag.Parse()

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

	store := slot.NewPgStore(pool)
	gofakeit.Seed(time.Now().UnixNano())

	created, booked := 0, 0
	start := time.Now().AddDate(0, 0, 1)

	for day := 0; day < *days; day++ {
		date := start.AddDate(0, 0, day)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		for _, hour := range consultationHours {
			at := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.Local)

			s, err := store.Insert(context.Background(), at)
			if err != nil {
				if errors.Is(err, slot.ErrDuplicateSlot) {
					continue
				}
				log.Fatalf("insert slot %s: %v", at, err)
			}
			created++

			if gofakeit.Float64Range(0, 1) < *bookRatio {
				modality := slot.ModalityInPerson
				if gofakeit.Bool() {
					modality = slot.ModalityOnline
				}

				ok, err := store.Claim(context.Background(), s.ScheduledAt, gofakeit.Name(), fakePhone(), modality)
				if err != nil {
					log.Fatalf("claim slot %s: %v", at, err)
				}
				if ok {
					booked++
				}
			}
		}
	}

	log.Printf("seed complete: %d slots created, %d pre-booked", created, booked)
}

// fakePhone builds a Brazilian-looking mobile number with area code.
func fakePhone() string {
	return gofakeit.Numerify("859########")
}

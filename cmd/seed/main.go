package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository"
)

// Наполняет базу демо-данными для dev-окружения:
// врачи со слотами на ближайшие две недели и небольшой прайс-лист.

var specialties = []string{
	"Терапевт",
	"Кардиолог",
	"Невролог",
	"Эндокринолог",
	"Гастроэнтеролог",
	"Офтальмолог",
	"ЛОР",
	"Дерматолог",
}

var visitTimes = []string{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	_ = godotenv.Load(".env")
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedSlots(ctx, pool, 12); err != nil {
		log.Fatalf("seed slots: %v", err)
	}
	if err := seedServices(ctx, pool); err != nil {
		log.Fatalf("seed services: %v", err)
	}

	log.Println("seed complete")
}

func seedSlots(ctx context.Context, pool *pgxpool.Pool, doctors int) error {
	log.Printf("seeding slots for %d doctors", doctors)

	slotRepo := repository.NewSlotRepository(pool)
	today := time.Now().Truncate(24 * time.Hour)

	for i := 0; i < doctors; i++ {
		doctorID := fmt.Sprintf("D%02d", i+1)
		doctorName := gofakeit.LastName() + " " + gofakeit.FirstName()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		for day := 1; day <= 14; day++ {
			date := today.AddDate(0, 0, day)
			for _, visitTime := range visitTimes {
				// Прореживаем расписание, чтобы оно выглядело живым
				if gofakeit.Number(0, 2) == 0 {
					continue
				}

				slot := &model.Slot{
					SlotID:     fmt.Sprintf("%s-%s-%s", doctorID, date.Format("20060102"), visitTime[:2]+visitTime[3:]),
					DoctorID:   doctorID,
					DoctorName: doctorName,
					Specialty:  specialty,
					VisitDate:  date,
					VisitTime:  visitTime,
					Timezone:   "Europe/Moscow",
					Status:     model.SlotStatusFree,
				}

				if err := slotRepo.Create(ctx, slot); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) error {
	log.Println("seeding services")

	services := []struct {
		code  string
		name  string
		price int
		prep  string
	}{
		{"B01", "Общий анализ крови", 450, "Сдавать натощак, утром. Накануне избегать жирной пищи."},
		{"B02", "Биохимический анализ крови", 1200, "Строго натощак, 8–12 часов голода."},
		{"B03", "Глюкоза крови", 300, "Натощак, утром. Не чистить зубы сладкой пастой."},
		{"U01", "Общий анализ мочи", 350, "Средняя порция утренней мочи в стерильный контейнер."},
		{"H01", "ТТГ (тиреотропный гормон)", 600, "Утром натощак, накануне исключить стресс и нагрузки."},
		{"G01", "УЗИ брюшной полости", 1800, "За 3 дня исключить газообразующие продукты, натощак."},
		{"E01", "ЭКГ с расшифровкой", 900, ""},
	}

	for _, s := range services {
		_, err := pool.Exec(ctx, `
			INSERT INTO services (code, name, price_rub, prep_notes)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO UPDATE SET name = $2, price_rub = $3, prep_notes = $4
		`, s.code, s.name, s.price, s.prep)
		if err != nil {
			return err
		}
	}

	return nil
}

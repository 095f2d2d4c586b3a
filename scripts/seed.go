package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mdsetiawan/facility-directory/internal/adapters/database"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	"github.com/mdsetiawan/facility-directory/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				reviews,
				facilities,
				facility_types,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	typeRepo := database.NewFacilityTypeAdapter(pgClient)
	facilityRepo := database.NewFacilityAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	now := time.Now()

	types := []*entities.FacilityType{
		{
			ID:   uuid.New().String(),
			Name: "Pendidikan",
			AllowedSubFacilities: []string{
				"Perpustakaan", "Laboratorium", "Lapangan Olahraga", "Kantin", "Aula",
			},
		},
		{
			ID:   uuid.New().String(),
			Name: "Kesehatan",
			AllowedSubFacilities: []string{
				"IGD", "Rawat Inap", "Apotek", "Laboratorium", "Ambulans",
			},
		},
		{
			ID:   uuid.New().String(),
			Name: "Pemerintah",
			AllowedSubFacilities: []string{
				"Layanan Administrasi", "Ruang Tunggu", "Parkir",
			},
		},
		{
			ID:   uuid.New().String(),
			Name: "Keibadatan",
			AllowedSubFacilities: []string{
				"Tempat Wudhu", "Parkir", "Aula",
			},
		},
	}

	for _, t := range types {
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := typeRepo.Create(ctx, t); err != nil {
			log.Printf("Warning: failed to seed type %s: %v", t.Name, err)
		} else {
			log.Printf("Seeded facility type %s", t.Name)
		}
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := &entities.User{
		ID:           uuid.New().String(),
		Username:     "admin",
		Email:        "admin@facility-directory.local",
		PasswordHash: string(hash),
		Role:         entities.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Printf("Warning: failed to seed admin user: %v", err)
	} else {
		log.Println("Seeded admin user admin@facility-directory.local")
	}

	facilities := []*entities.Facility{
		{
			ID:        uuid.New().String(),
			TypeID:    types[0].ID,
			Name:      "SMA Negeri 1 Yogyakarta",
			OpenTime:  "07:00",
			CloseTime: "15:00",
			Address:   "Jl. HOS Cokroaminoto No.10, Yogyakarta",
			Location: entities.Location{
				Latitude:  -7.7828,
				Longitude: 110.3608,
			},
			Description:   "Sekolah menengah atas negeri dengan fasilitas lengkap.",
			SubFacilities: []string{"Perpustakaan", "Laboratorium", "Lapangan Olahraga"},
		},
		{
			ID:        uuid.New().String(),
			TypeID:    types[1].ID,
			Name:      "RSUP Dr. Sardjito",
			OpenTime:  "00:00",
			CloseTime: "23:59",
			Address:   "Jl. Kesehatan No.1, Sleman",
			Location: entities.Location{
				Latitude:  -7.7686,
				Longitude: 110.3745,
			},
			Description:   "Rumah sakit umum pusat rujukan wilayah DIY dan Jawa Tengah.",
			SubFacilities: []string{"IGD", "Rawat Inap", "Apotek"},
		},
		{
			ID:        uuid.New().String(),
			TypeID:    types[3].ID,
			Name:      "Masjid Gedhe Kauman",
			OpenTime:  "04:00",
			CloseTime: "22:00",
			Address:   "Jl. Kauman, Yogyakarta",
			Location: entities.Location{
				Latitude:  -7.8039,
				Longitude: 110.3621,
			},
			Description:   "Masjid raya bersejarah di sisi barat Alun-Alun Utara.",
			SubFacilities: []string{"Tempat Wudhu", "Parkir"},
		},
	}

	for _, f := range facilities {
		f.CreatedAt = now
		f.UpdatedAt = now
		if err := facilityRepo.Create(ctx, f); err != nil {
			log.Printf("Warning: failed to seed facility %s: %v", f.Name, err)
		} else {
			log.Printf("Seeded facility %s", f.Name)
		}
	}

	log.Println("Seeding complete")
}

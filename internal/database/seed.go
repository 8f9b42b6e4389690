package database

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

// SeedDemoUsers creates one account per role for demo environments.
// Existing accounts are left alone.
func SeedDemoUsers(st store.Store) error {
	demo := []struct {
		email string
		name  string
		role  models.Role
	}{
		{"patient@example.com", "Amit Sharma", models.RolePatient},
		{"hospital@example.com", "Apollo Hospitals Mumbai", models.RoleHospital},
		{"insurer@example.com", "HDFC ERGO General Insurance", models.RoleInsurer},
		{"admin@example.com", "BharatCare Admin", models.RoleAdmin},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, d := range demo {
		if _, err := st.GetUserByEmail(d.email); err == nil {
			continue
		}
		u := &models.User{
			Email:    d.email,
			Password: string(hash),
			Name:     d.name,
			Role:     d.role,
		}
		if err := st.CreateUser(u); err != nil {
			if apperr.IsKind(err, apperr.KindDuplicate) {
				continue
			}
			return err
		}
		slog.Info("demo user seeded", "email", d.email, "role", d.role)
	}
	return nil
}

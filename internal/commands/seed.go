package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// SeedData is the layout of the seed file.
type SeedData struct {
	Users      []SeedUser   `yaml:"users"`
	Attendance []SeedRecord `yaml:"attendance"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SeedRecord struct {
	Email    string `yaml:"email"`
	Date     string `yaml:"date"`
	CheckIn  string `yaml:"checkIn"`
	CheckOut string `yaml:"checkOut"`
}

// SeedResult counts what was inserted; existing rows are skipped.
type SeedResult struct {
	Users   int
	Records int
}

type SeedUsers interface {
	Create(ctx context.Context, u entity.User) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
}

type SeedRecords interface {
	Create(ctx context.Context, a entity.Attendance) (entity.Attendance, error)
}

// LoadSeed reads and decodes a seed file.
func LoadSeed(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, errors.Wrap(err, "reading seed file")
	}

	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, errors.Wrap(err, "decoding seed file")
	}

	return data, nil
}

// Seed inserts the users and records of data. It can be run repeatedly.
func Seed(ctx context.Context, data SeedData, users SeedUsers, records SeedRecords, log *slog.Logger) (SeedResult, error) {
	var result SeedResult
	ids := make(map[string]int, len(data.Users))

	for _, su := range data.Users {
		role := strings.ToLower(su.Role)
		if role == "" {
			role = auth.RoleEmployee
		}
		if !auth.ValidRole(role) {
			return result, errors.Errorf("seed user %s: unknown role %q", su.Email, su.Role)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return result, errors.Wrap(err, "hashing password")
		}

		u, err := users.Create(ctx, entity.User{
			Name:     su.Name,
			Email:    su.Email,
			Password: string(hash),
			Role:     role,
		})
		switch {
		case err == nil:
			result.Users++
		case errors.Is(err, postgres.ErrDuplicate):
			if u, err = users.GetByEmail(ctx, su.Email); err != nil {
				return result, errors.Wrapf(err, "seed user %s", su.Email)
			}
		default:
			return result, errors.Wrapf(err, "seed user %s", su.Email)
		}

		ids[strings.ToLower(su.Email)] = u.ID
	}

	for _, sr := range data.Attendance {
		rec, err := sr.entity(ids)
		if err != nil {
			return result, err
		}

		_, err = records.Create(ctx, rec)
		switch {
		case err == nil:
			result.Records++
		case errors.Is(err, postgres.ErrDuplicate):
			log.Info("seed record exists", "email", sr.Email, "date", sr.Date)
		default:
			return result, errors.Wrapf(err, "seed record %s %s", sr.Email, sr.Date)
		}
	}

	return result, nil
}

func (sr SeedRecord) entity(ids map[string]int) (entity.Attendance, error) {
	userID, ok := ids[strings.ToLower(sr.Email)]
	if !ok {
		return entity.Attendance{}, errors.Errorf("seed record %s: unknown user", sr.Email)
	}

	day, err := date.ParseDate(sr.Date)
	if err != nil {
		return entity.Attendance{}, errors.Wrapf(err, "seed record %s", sr.Email)
	}

	rec := entity.Attendance{UserID: userID, WorkDay: day}

	if sr.CheckIn != "" {
		t, err := entity.ParseTimeOfDay(sr.CheckIn)
		if err != nil {
			return entity.Attendance{}, err
		}
		rec.CheckIn = &t
	}
	if sr.CheckOut != "" {
		if rec.CheckIn == nil {
			return entity.Attendance{}, errors.Errorf("seed record %s %s: check-out without check-in", sr.Email, sr.Date)
		}
		t, err := entity.ParseTimeOfDay(sr.CheckOut)
		if err != nil {
			return entity.Attendance{}, err
		}
		rec.CheckOut = &t
	}

	return rec, nil
}

// AngelaMos | 2026
// seed.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// SeedAccount is one account the seeder wants to exist.
type SeedAccount struct {
	Name  string
	Email string
	Role  Role
}

// SeedAccounts returns perRole accounts for every role, named
// "<Role> <n>" with address "<role><n>@example.com".
func SeedAccounts(perRole int) []SeedAccount {
	accounts := make([]SeedAccount, 0, perRole*len(Roles))
	for _, role := range Roles {
		for n := 1; n <= perRole; n++ {
			accounts = append(accounts, SeedAccount{
				Name:  fmt.Sprintf("%s %d", role, n),
				Email: fmt.Sprintf("%s%d@example.com", strings.ToLower(string(role)), n),
				Role:  role,
			})
		}
	}
	return accounts
}

// Seed inserts the missing seed accounts directly through the repository.
// No welcome email is sent. Existing addresses are left untouched, so it
// is safe to rerun.
func Seed(
	ctx context.Context,
	repo Repository,
	hasher PasswordHasher,
	logger *slog.Logger,
	password string,
	perRole int,
) (int, error) {
	passwordHash, err := hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	created := 0
	for _, account := range SeedAccounts(perRole) {
		exists, err := repo.ExistsByEmail(ctx, account.Email)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", account.Email, err)
		}
		if exists {
			logger.DebugContext(ctx, "seed account exists", "email", account.Email)
			continue
		}

		u := &User{
			Name:         account.Name,
			Email:        account.Email,
			PasswordHash: passwordHash,
			Role:         account.Role,
			Active:       true,
		}
		if err := repo.Create(ctx, u); err != nil {
			return created, fmt.Errorf("seed %s: %w", account.Email, err)
		}

		logger.InfoContext(ctx, "seed account created",
			"user_id", u.ID,
			"email", u.Email,
			"role", u.Role,
		)
		created++
	}

	return created, nil
}

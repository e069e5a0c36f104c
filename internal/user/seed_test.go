// AngelaMos | 2026
// seed_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAccounts(t *testing.T) {
	accounts := SeedAccounts(2)
	require.Len(t, accounts, 2*len(Roles))

	assert.Equal(t, SeedAccount{
		Name:  "Administrator 1",
		Email: "administrator1@example.com",
		Role:  RoleAdministrator,
	}, accounts[0])

	seen := map[string]bool{}
	for _, a := range accounts {
		assert.False(t, seen[a.Email], "duplicate seed email %s", a.Email)
		seen[a.Email] = true
	}
}

func TestSeed_Idempotent(t *testing.T) {
	repo := newMemoryRepository()
	repo.seed("Existing", "manager1@example.com", RoleManager)

	created, err := Seed(t.Context(), repo, prefixHasher{}, discardLogger(), "password123", 1)
	require.NoError(t, err)
	assert.Equal(t, len(Roles)-1, created)
	assert.Equal(t, len(Roles), repo.count())

	existing, err := repo.GetByEmail(t.Context(), "manager1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Existing", existing.Name)

	admin, err := repo.GetByEmail(t.Context(), "administrator1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:password123", admin.PasswordHash)
	assert.True(t, admin.Active)

	created, err = Seed(t.Context(), repo, prefixHasher{}, discardLogger(), "password123", 1)
	require.NoError(t, err)
	assert.Zero(t, created)
}

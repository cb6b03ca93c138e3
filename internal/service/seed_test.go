package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_EmptyStore(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	res, err := env.seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(baselineBooks), res.BooksCreated)
	assert.Equal(t, len(baselineUsers), res.UsersCreated)
	assert.Equal(t, len(baselineUsers), res.ReviewsCreated)

	admin, err := env.users.FindByEmail(ctx, baselineUsers[0].Input.Email)
	require.NoError(t, err)
	require.NotNil(t, admin)

	full, err := env.users.FindOne(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, full.Library, baselineUsers[0].LibrarySize)
	require.Len(t, full.Reviews, 1)
	assert.Equal(t, full.Library[0].BookID, full.Reviews[0].BookID)

	_, err = env.users.Authenticate(ctx, baselineUsers[0].Input.Email, baselineUsers[0].Input.Password)
	assert.NoError(t, err)
}

func TestSeeder_Idempotent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.seeder.Seed(ctx)
	require.NoError(t, err)

	res, err := env.seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.BooksCreated)
	assert.Zero(t, res.UsersCreated)

	books, err := env.books.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, books, len(baselineBooks))

	users, err := env.users.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(baselineUsers))
}

func TestSeeder_OnlyMissingTables(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	existing := env.createBook(t, "Already Here")

	res, err := env.seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.BooksCreated)
	assert.Equal(t, len(baselineUsers), res.UsersCreated)

	admin, err := env.users.FindByEmail(ctx, baselineUsers[0].Input.Email)
	require.NoError(t, err)
	full, err := env.users.FindOne(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{existing.ID}, full.BookIDs())
}

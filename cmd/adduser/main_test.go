package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"expense_tracker/internal/repository"
	"expense_tracker/internal/repository/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun_Success(t *testing.T) {
	t.Setenv("DB_PATH", "")
	dbPath := filepath.Join(t.TempDir(), "test_success.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-user", "testuser", "-email", "test@example.com", "-password", "secret", "-db", dbPath}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, stderr))
	assert.Contains(t, stdout.String(), "User testuser created successfully")

	conn, err := db.InitDB(dbPath)
	require.NoError(t, err)
	defer conn.Close()

	u, err := repository.NewUserRepository(conn).GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "testuser", u.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
}

func TestRun_DuplicateEmail(t *testing.T) {
	t.Setenv("DB_PATH", "")
	dbPath := filepath.Join(t.TempDir(), "test_duplicate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-user", "testuser", "-email", "dup@example.com", "-password", "secret", "-db", dbPath}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, stderr), "first run should succeed")

	err := run(args, new(bytes.Buffer), stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_PromptsForPassword(t *testing.T) {
	t.Setenv("DB_PATH", "")
	dbPath := filepath.Join(t.TempDir(), "test_prompt.db")
	stdout := new(bytes.Buffer)

	args := []string{"-user", "piped", "-email", "piped@example.com", "-db", dbPath}
	require.NoError(t, run(args, strings.NewReader("from-stdin\n"), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "User piped created successfully")
}

func TestRun_EmptyPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_empty.db")
	args := []string{"-user", "u", "-email", "u@example.com", "-db", dbPath}

	err := run(args, strings.NewReader("\n"), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	err := run([]string{"-user", "only"}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage: adduser")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlot/carlot/internal/repository/sqlite"
)

func TestRun_CreatesAdminInSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.db")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-driver", "sqlite", "-sqlite-path", path,
		"-username", "root", "-password", "s3cret", "-format", "json",
	}, os.Stdin, &out)
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "root", got.Username)
	assert.True(t, got.IsAdmin)

	store, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.GetUserByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, got.UserID, user.ID)
}

func TestRun_PasswordFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("piped-pw\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var out bytes.Buffer
	err = run(context.Background(), []string{
		"-driver", "sqlite", "-sqlite-path", filepath.Join(t.TempDir(), "pipe.db"), "-username", "ops",
	}, r, &out)
	require.NoError(t, err)
	assert.NotEmpty(t, out.String())
}

func TestRun_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"memory driver", []string{"-driver", "memory", "-password", "x"}},
		{"bad format", []string{"-driver", "sqlite", "-sqlite-path", filepath.Join(t.TempDir(), "f.db"), "-password", "x", "-format", "xml"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, os.Stdin, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestRun_DuplicateAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.db")
	args := []string{"-driver", "sqlite", "-sqlite-path", path, "-username", "root", "-password", "pw"}

	require.NoError(t, run(context.Background(), args, os.Stdin, &bytes.Buffer{}))
	err := run(context.Background(), args, os.Stdin, &bytes.Buffer{})
	assert.Error(t, err)
}

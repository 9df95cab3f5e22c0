package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"serve", "migrate"}, names)
	require.NotNil(t, cmd.RunE)
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("AUTH_STORE_DRIVER", "sqlite")
	t.Setenv("AUTH_DATABASE_FILE", filepath.Join(t.TempDir(), "auth.db"))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"migrate"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "migrations applied (sqlite)")
}

func TestMigrateCommandRejectsBadConfig(t *testing.T) {
	t.Setenv("AUTH_STORE_DRIVER", "postgres")
	t.Setenv("AUTH_DATABASE_URL", "")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate"})

	require.ErrorContains(t, cmd.Execute(), "AUTH_DATABASE_URL")
}

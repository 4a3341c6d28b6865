package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshashank20/foodexpiry-tracker/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "production") // skip .env lookup
	t.Setenv("TIMEZONE", "UTC")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNormalizeCmd(t *testing.T) {
	out, err := run(t, "normalize", "03/09/25", "25/13/2024", "15-06-99", "29/02/2024")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"03/09/25", "2025-03-09"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"25/13/2024", "unknown"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"15-06-99", "1999-06-15"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"29/02/2024", "2024-02-29"}, strings.Fields(lines[3]))
}

func TestNormalizeCmd_TieBreak(t *testing.T) {
	out, err := run(t, "normalize", "--tie-break", "day", "03/09/25")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-09-03")

	_, err = run(t, "normalize", "--tie-break", "coin", "03/09/25")
	assert.Error(t, err)
}

func TestClassifyCmd(t *testing.T) {
	out, err := run(t, "classify", "--today", "2025-01-10", "2025-01-09", "2025-01-11", "2025-01-20", "soon")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "expired")
	assert.Contains(t, lines[1], "(critical)")
	assert.Contains(t, lines[2], "1d left")
	assert.Contains(t, lines[2], "expiring_tomorrow")
	assert.Contains(t, lines[3], "fresh")
	assert.Equal(t, []string{"soon", "unknown", "unknown", "unknown", "Unknown", "-"}, strings.Fields(lines[4]))
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := run(t, "token", "u42", "--email", "me@example.com")
	require.NoError(t, err)

	tokens, err := auth.NewTokens("cli-secret")
	require.NoError(t, err)
	claims, err := tokens.Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u42", claims.UserID())
	assert.Equal(t, "me@example.com", claims.Email)
}

func TestSweepCmd_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "sweep", "--days-ahead", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

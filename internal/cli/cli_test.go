package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BariVakhidov/academyhub/internal/cli"
	"github.com/BariVakhidov/academyhub/internal/config"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	out    bytes.Buffer
	errOut bytes.Buffer
	cli    *cli.CLI
}

func newHarness(input string) *harness {
	cfg := config.Default()
	cfg.ClientID = "test-" + gofakeit.UUID()

	h := &harness{}
	h.cli = cli.New(strings.NewReader(input), &h.out, &h.errOut, cli.WithConfig(cfg), cli.WithLogger(sl.Discard()))

	return h
}

func (h *harness) run(args ...string) error {
	return h.cli.Run(context.Background(), args)
}

func TestLogin_Succeeds(t *testing.T) {
	h := newHarness("")

	require.NoError(t, h.run("login", "-u", "admin", "-p", "password123A!"))

	assert.Contains(t, h.out.String(), "Login Successful: Welcome back, admin!")
	assert.Contains(t, h.out.String(), "navigated to /home")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness("")

	err := h.run("login", "-u", "admin", "-p", "password123B!")

	var authErr *login.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 4, authErr.RemainingAttempts)
	assert.Contains(t, h.out.String(), "Invalid credentials. 4 attempts remaining.")
	assert.NotContains(t, h.out.String(), "navigated")
}

func TestLogin_ValidationFailed(t *testing.T) {
	h := newHarness("")

	err := h.run("login", "-u", "ab", "-p", "short")

	var validationErr *login.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Results, 2)
	assert.Contains(t, h.out.String(), "Validation Error: Please fix the following issues:")
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	h := newHarness("password123A!\n")

	require.NoError(t, h.run("login", "-u", "admin", "--password-stdin"))
	assert.Contains(t, h.out.String(), "Login Successful")
}

func TestStatus_FreshRecord(t *testing.T) {
	h := newHarness("")

	require.NoError(t, h.run("status"))

	out := h.out.String()
	assert.Contains(t, out, "Remaining attempts")
	assert.Contains(t, out, "idle")
}

func TestBranches_OneShot(t *testing.T) {
	h := newHarness("")

	require.NoError(t, h.run("branches", "list", "--category", "Girls"))
	assert.Contains(t, h.out.String(), "Jeddah Girls")
	assert.Contains(t, strings.ToLower(h.out.String()), "1 branches")

	err := h.run("branches", "list", "--sort", "budget")
	require.Error(t, err)
}

func TestAgeGroupsExport_ToFile(t *testing.T) {
	h := newHarness("")
	path := filepath.Join(t.TempDir(), "groups.csv")

	require.NoError(t, h.run("agegroups", "export", "--status", "InActive", "-o", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Name,Min Age,Max Age,Activity,Status,Participants,Created Date", lines[0])
	assert.Contains(t, h.out.String(), "exported 4 age groups")
}

func TestConsole_GuardsAndFlow(t *testing.T) {
	input := strings.Join([]string{
		"dashboard",
		"login -u admin -p wrongPass1!",
		"status",
		"login -u admin -p password123A!",
		`agegroups create --name "Tiny Tennis" --min-age 4 --max-age 6 --activity 5`,
		`agegroups list --search "tiny tennis"`,
		"branches stats",
		"dashboard",
		"logout",
		"agegroups list",
		"console",
		"exit",
		"status",
	}, "\n")
	h := newHarness(input)

	require.NoError(t, h.run("console"))

	out := h.out.String()
	errOut := h.errOut.String()

	assert.Contains(t, out, "Invalid credentials. 4 attempts remaining.")
	assert.Contains(t, out, "navigated to /home")
	assert.Contains(t, out, "academyhub/home> ")
	assert.Contains(t, out, "Tiny Tennis")
	assert.Contains(t, out, "Tennis")
	assert.Contains(t, out, "Monthly growth")
	assert.Contains(t, out, "8.5%")
	assert.Contains(t, out, "logged out")

	assert.Equal(t, 2, strings.Count(errOut, cli.ErrLoginRequired.Error()))
	assert.Contains(t, errOut, "console is already running")
}

func TestConsole_UsersAddThenLogin(t *testing.T) {
	username := "coach_" + gofakeit.LetterN(6)
	input := strings.Join([]string{
		"login -u admin -p password123A!",
		"users add -u " + username + " -p weak",
		"users add -u " + username + " -p Str0ngPass!",
		"logout",
		"login -u " + username + " -p Str0ngPass!",
	}, "\n")
	h := newHarness(input)

	require.NoError(t, h.run("console"))

	assert.Contains(t, h.errOut.String(), "Password must be at least 8 characters")
	assert.Contains(t, h.out.String(), "registered "+username)
	assert.Contains(t, h.out.String(), "Welcome back, "+username+"!")
}

func TestConsole_UnterminatedQuote(t *testing.T) {
	h := newHarness(`agegroups list --search "open` + "\n")

	require.NoError(t, h.run("console"))
	assert.Contains(t, strings.ToLower(h.errOut.String()), "unterminated double-quoted string")
}

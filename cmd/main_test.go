package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chief-of-staff-client/internal/usecase"
)

func TestReadPassword(t *testing.T) {
	p, err := readPassword(strings.NewReader("s3cret\r\nignored\n"))
	require.NoError(t, err)
	require.Equal(t, "s3cret", p)

	p, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	require.Equal(t, "no-newline", p)
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"login", "register", "logout", "google-login", "send", "status"} {
		require.Contains(t, names, want)
	}
	for _, flag := range []string{"profile", "storage", "data-dir"} {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestSendRejectsOutOfRangeQuick(t *testing.T) {
	rootCmd.SetArgs([]string{"send", "--quick", "9"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); flagQuick = 0 })
	err := rootCmd.Execute()
	require.ErrorContains(t, err, "--quick must be between 1 and 4")
}

func TestFlowExit(t *testing.T) {
	cases := []struct {
		code usecase.ErrorCode
		want int
	}{
		{code: usecase.ErrorInvalidInput, want: 2},
		{code: usecase.ErrorRejected, want: 1},
		{code: usecase.ErrorTransport, want: 3},
		{code: usecase.ErrorStorage, want: 3},
	}
	for _, tc := range cases {
		err := fmt.Errorf("login: %w", &usecase.Error{Code: tc.code, Reason: "r"})
		require.Equal(t, exitError{code: tc.want}, flowExit(err), tc.code)
	}
	require.Equal(t, exitError{code: 1}, flowExit(errors.New("plain")))
}

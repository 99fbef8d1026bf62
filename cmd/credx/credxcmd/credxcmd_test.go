/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credxcmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd, err := Cmd()
	require.NoError(t, err)

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err = cmd.Execute()

	return out.String(), err
}

func TestCmdContents(t *testing.T) {
	cmd, err := Cmd()
	require.NoError(t, err)

	require.Equal(t, "credx", cmd.Use)
	require.Equal(t, "Anonymous credentials tool", cmd.Short)

	checkFlagPropertiesCorrect(t, cmd, schemeFlagName, schemeFlagUsage, scheme.BLS12381)
	checkFlagPropertiesCorrect(t, cmd, logLevelFlagName, logLevelFlagUsage, "")

	demo, _, err := cmd.Find([]string{"demo"})
	require.NoError(t, err)
	require.Equal(t, "demo", demo.Use)

	checkFlagPropertiesCorrect(t, demo, databaseTypeFlagName, databaseTypeFlagUsage, databaseTypeMemOption)
	checkFlagPropertiesCorrect(t, demo, databaseTimeoutFlagName, databaseTimeoutFlagUsage, "")
	checkFlagPropertiesCorrect(t, demo, ageFlagName, ageFlagUsage, "28")
}

func checkFlagPropertiesCorrect(t *testing.T, cmd *cobra.Command, flagName, flagUsage, expectedVal string) {
	t.Helper()

	flag := cmd.Flag(flagName)

	require.NotNil(t, flag)
	require.Equal(t, flagName, flag.Name)
	require.Equal(t, flagUsage, flag.Usage)
	require.Equal(t, expectedVal, flag.Value.String())
}

func TestNonceCmd(t *testing.T) {
	out, err := execute(t, "nonce")
	require.NoError(t, err)

	n, err := nonce.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	require.NoError(t, n.Validate())

	again, err := execute(t, "nonce")
	require.NoError(t, err)
	require.NotEqual(t, out, again)
}

func TestDemoCmd(t *testing.T) {
	t.Run("mem store", func(t *testing.T) {
		out, err := execute(t, "demo")
		require.NoError(t, err)
		require.Contains(t, out, "presentation verified: name=Alex")
	})

	t.Run("every scheme", func(t *testing.T) {
		for _, name := range scheme.Names() {
			out, err := execute(t, "demo", "--"+schemeFlagName, name)
			require.NoError(t, err, name)
			require.Contains(t, out, name)
		}
	})

	t.Run("leveldb store", func(t *testing.T) {
		dir := t.TempDir()

		_, err := execute(t, "demo",
			"--"+databaseTypeFlagName, databaseTypeLevelDBOption,
			"--"+databasePathFlagName, filepath.Join(dir, "db"),
			"--"+databaseTimeoutFlagName, "1")
		require.NoError(t, err)
	})

	t.Run("leveldb without path", func(t *testing.T) {
		_, err := execute(t, "demo", "--"+databaseTypeFlagName, databaseTypeLevelDBOption)
		require.Error(t, err)
		require.Contains(t, err.Error(), "requires "+databasePathFlagName)
	})

	t.Run("unsupported database type", func(t *testing.T) {
		_, err := execute(t, "demo", "--"+databaseTypeFlagName, "couchdb")
		require.Error(t, err)
		require.Contains(t, err.Error(), `database type "couchdb" is not supported`)
	})

	t.Run("database type from environment", func(t *testing.T) {
		t.Setenv(databaseTypeEnvKey, "mysql")

		_, err := execute(t, "demo")
		require.Error(t, err)
		require.Contains(t, err.Error(), `database type "mysql" is not supported`)
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv(databaseTypeEnvKey, "mysql")

		_, err := execute(t, "demo", "--"+databaseTypeFlagName, databaseTypeMemOption)
		require.NoError(t, err)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		_, err := execute(t, "demo", "--"+databaseTimeoutFlagName, "soon")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse db timeout")
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := execute(t, "demo", "--"+schemeFlagName, "cl/rsa")
		require.Error(t, err)
	})

	t.Run("underage holder", func(t *testing.T) {
		_, err := execute(t, "demo", "--"+ageFlagName, "17")
		require.Error(t, err)
		require.True(t, errors.Is(err, anoncreds.ErrUnsatisfiablePredicate))
	})
}

func TestVerifyCmd(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()

	_, err := execute(t, "demo", "--"+outFlagName, first)
	require.NoError(t, err)

	_, err = execute(t, "demo", "--"+outFlagName, second)
	require.NoError(t, err)

	verify := func(reqDir, presDir, ledgerDir string) (string, error) {
		return execute(t, "verify",
			"--"+requestFlagName, filepath.Join(reqDir, requestFile),
			"--"+presentationFlagName, filepath.Join(presDir, presentationFile),
			"--"+ledgerFlagName, filepath.Join(ledgerDir, ledgerFile))
	}

	t.Run("success", func(t *testing.T) {
		out, err := verify(first, first, first)
		require.NoError(t, err)
		require.Contains(t, out, "presentation verified")
	})

	t.Run("presentation for another request", func(t *testing.T) {
		_, err := verify(second, first, first)
		require.Error(t, err)
		require.True(t, errors.Is(err, anoncreds.ErrPresentationInvalid))
	})

	t.Run("ledger of another issuance", func(t *testing.T) {
		_, err := verify(first, first, second)
		require.Error(t, err)
		require.True(t, errors.Is(err, anoncreds.ErrPresentationInvalid))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := verify(first, filepath.Join(first, "missing"), first)
		require.Error(t, err)
	})

	t.Run("missing flags", func(t *testing.T) {
		_, err := execute(t, "verify")
		require.Error(t, err)
		require.Contains(t, err.Error(), "required flag")
	})
}

func TestLogLevel(t *testing.T) {
	t.Cleanup(func() { log.SetLevel("", log.INFO) })

	t.Run("valid", func(t *testing.T) {
		_, err := execute(t, "nonce", "--"+logLevelFlagName, "DEBUG")
		require.NoError(t, err)
		require.Equal(t, log.DEBUG, log.GetLevel("credx"))
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "warning")

		_, err := execute(t, "nonce")
		require.NoError(t, err)
		require.Equal(t, log.WARNING, log.GetLevel("credx"))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := execute(t, "nonce", "--"+logLevelFlagName, "INVALID")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log level")
	})
}

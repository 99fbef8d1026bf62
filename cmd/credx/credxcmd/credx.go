/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credxcmd holds the credx commands.
package credxcmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
	"github.com/hyperledger/aries-anoncreds-go/pkg/storage"
	"github.com/hyperledger/aries-anoncreds-go/pkg/storage/leveldb"
	"github.com/hyperledger/aries-anoncreds-go/pkg/storage/mem"
)

const (
	envPrefix = "CREDX"

	schemeFlagName  = "scheme"
	schemeEnvKey    = "CREDX_SCHEME"
	schemeFlagUsage = "Signature scheme backend." +
		" Alternatively, this can be set with the following environment variable: " + schemeEnvKey

	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "CREDX_LOG_LEVEL"
	logLevelFlagUsage = "Log level. Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL]. Defaults to INFO." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	databaseTypeFlagName  = "database-type"
	databaseTypeEnvKey    = "CREDX_DATABASE_TYPE"
	databaseTypeFlagUsage = "The type of database to journal revocation registries in." +
		" Supported options: mem, leveldb." +
		" Alternatively, this can be set with the following environment variable: " + databaseTypeEnvKey

	databasePathFlagName  = "database-path"
	databasePathEnvKey    = "CREDX_DATABASE_PATH"
	databasePathFlagUsage = "Directory of the leveldb database." +
		" Alternatively, this can be set with the following environment variable: " + databasePathEnvKey

	databaseTimeoutFlagName  = "database-timeout"
	databaseTimeoutEnvKey    = "CREDX_DATABASE_TIMEOUT"
	databaseTimeoutFlagUsage = "Total time in seconds to wait until the database is available before giving up." +
		" Default: " + databaseTimeoutDefault + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + databaseTimeoutEnvKey
	databaseTimeoutDefault = "30"

	databaseTypeMemOption     = "mem"
	databaseTypeLevelDBOption = "leveldb"
)

var logger = log.New("credx")

//nolint:gochecknoglobals
var supportedStorageProviders = map[string]func(path string) (storage.Provider, error){
	databaseTypeMemOption: func(string) (storage.Provider, error) {
		return mem.NewProvider(), nil
	},
	databaseTypeLevelDBOption: func(path string) (storage.Provider, error) {
		if path == "" {
			return nil, fmt.Errorf("%s requires %s", databaseTypeLevelDBOption, databasePathFlagName)
		}

		return leveldb.NewProvider(path), nil
	},
}

type dbParam struct {
	dbType  string
	path    string
	timeout uint64
}

// Cmd returns the credx root command.
func Cmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "credx",
		Short: "Anonymous credentials tool",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	rootCmd.PersistentFlags().String(schemeFlagName, scheme.BLS12381, schemeFlagUsage)
	rootCmd.PersistentFlags().String(logLevelFlagName, "", logLevelFlagUsage)

	rootCmd.AddCommand(nonceCmd(), demoCmd(), verifyCmd())

	return rootCmd, nil
}

// config resolves flags first and CREDX_ environment variables second.
func config(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if err := setLogLevel(v.GetString(logLevelFlagName)); err != nil {
		return nil, err
	}

	return v, nil
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

func getDBParam(v *viper.Viper) (*dbParam, error) {
	p := &dbParam{
		dbType: v.GetString(databaseTypeFlagName),
		path:   v.GetString(databasePathFlagName),
	}

	if p.dbType == "" {
		p.dbType = databaseTypeMemOption
	}

	timeout := v.GetString(databaseTimeoutFlagName)
	if timeout == "" || timeout == "0" {
		timeout = databaseTimeoutDefault
	}

	t, err := strconv.ParseUint(timeout, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db timeout %s: %w", timeout, err)
	}

	p.timeout = t

	return p, nil
}

func createStoreProvider(p *dbParam) (storage.Provider, error) {
	provider, supported := supportedStorageProviders[p.dbType]
	if !supported {
		return nil, fmt.Errorf("database type %q is not supported, run with --help to see the available options",
			p.dbType)
	}

	return provider(p.path)
}

// retryOpen calls open until it succeeds, once a second for at most timeout seconds.
func retryOpen(timeout uint64, open func() error) error {
	return backoff.RetryNotify(
		open,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), timeout),
		func(retryErr error, t time.Duration) {
			logger.Warnf("failed to open the registry journal, will sleep for %s before trying again : %s", t, retryErr)
		},
	)
}

func addDBFlags(cmd *cobra.Command) {
	cmd.Flags().String(databaseTypeFlagName, databaseTypeMemOption, databaseTypeFlagUsage)
	cmd.Flags().String(databasePathFlagName, "", databasePathFlagUsage)
	cmd.Flags().String(databaseTimeoutFlagName, "", databaseTimeoutFlagUsage)
}

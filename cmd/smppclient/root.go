package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flags holds the values every subcommand reads once viper has merged
// flags, SMPPCLIENT_*-prefixed environment variables, and an optional
// config file, in that order of precedence.
var flags = struct {
	addr             string
	systemID         string
	password         string
	systemType       string
	bindType         string
	enquireLinkTimer time.Duration
	transactionTimer time.Duration
	verbose          bool
}{}

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "smppclient",
	Short: "Bind, submit and unbind against an SMPP v3.4 SMSC",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("addr", "localhost:2775", "SMSC host:port to dial")
	pf.String("system-id", "", "system_id presented on bind")
	pf.String("password", "", "password presented on bind")
	pf.String("system-type", "", "system_type presented on bind")
	pf.String("bind-type", "transceiver", "transmitter, receiver or transceiver")
	pf.Duration("enquire-link-timer", 60*time.Second, "idle period before a keepalive probe is sent")
	pf.Duration("transaction-timer", 2*time.Second, "deadline for a request to receive its response")
	pf.BoolP("verbose", "v", false, "log at debug level")

	v.SetEnvPrefix("SMPPCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigName("smppclient")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	rootCmd.AddCommand(sendCmd)
}

func bindFlags(cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	flags.addr = v.GetString("addr")
	flags.systemID = v.GetString("system-id")
	flags.password = v.GetString("password")
	flags.systemType = v.GetString("system-type")
	flags.bindType = v.GetString("bind-type")
	flags.enquireLinkTimer = v.GetDuration("enquire-link-timer")
	flags.transactionTimer = v.GetDuration("transaction-timer")
	flags.verbose = v.GetBool("verbose")
	return nil
}

func newLogger() zerolog.Logger {
	if !flags.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultTimeoutSeconds = 10
	defaultConcurrency    = 2
	defaultRateLimit      = 5
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Audit AuditRuntimeConfig
}

// AuditRuntimeConfig consolidates flag-driven settings for the audit command.
type AuditRuntimeConfig struct {
	Concurrency int
	RateLimit   int
	TimeoutSecs int
	UserAgent   string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Audit: AuditRuntimeConfig{
			Concurrency: defaultConcurrency,
			RateLimit:   defaultRateLimit,
			TimeoutSecs: defaultTimeoutSeconds,
		},
	}
}

// applyConfigDefaults merges config file values into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("audit.timeout_secs") {
		applyIntDefault(auditCmd.Flags(), "timeout", viper.GetInt("audit.timeout_secs"), func(v int) {
			cliConfig.Audit.TimeoutSecs = v
		})
	}

	if viper.IsSet("audit.concurrency") {
		applyIntDefault(auditCmd.Flags(), "concurrency", viper.GetInt("audit.concurrency"), func(v int) {
			cliConfig.Audit.Concurrency = v
		})
	}

	if viper.IsSet("audit.rate_limit") {
		applyIntDefault(auditCmd.Flags(), "rate-limit", viper.GetInt("audit.rate_limit"), func(v int) {
			cliConfig.Audit.RateLimit = v
		})
	}

	if viper.IsSet("audit.user_agent") {
		ua := viper.GetString("audit.user_agent")
		cliConfig.Audit.UserAgent = ua
		setStringFlagIfUnset(auditCmd.Flags(), "user-agent", ua)
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}

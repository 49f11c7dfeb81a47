package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		runAddress   string
		baseURL      string
		token        string
		plan         string
		ledgerFile   string
		revenueShare float64
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				runAddress:   "localhost:8080",
				baseURL:      "https://api.myplatform.io",
				token:        "demo_token",
				plan:         "free",
				ledgerFile:   "sales.csv",
				revenueShare: 0.10,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"RUN_ADDRESS":        "localhost:9999",
				"PLATFORM_BASE_URL":  "http://platform.test",
				"PLATFORM_API_TOKEN": "env-token",
				"DEFAULT_PLAN":       "gold",
				"LEDGER_FILE":        "/tmp/env.csv",
				"REVENUE_SHARE":      "0.25",
			},
			flags: []string{},
			want: want{
				runAddress:   "localhost:9999",
				baseURL:      "http://platform.test",
				token:        "env-token",
				plan:         "gold",
				ledgerFile:   "/tmp/env.csv",
				revenueShare: 0.25,
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-a", "localhost:7777",
				"-p", "http://flag.test",
				"-t", "flag-token",
				"-n", "silver",
				"-l", "/tmp/flag.csv",
				"-s", "0.15",
			},
			want: want{
				runAddress:   "localhost:7777",
				baseURL:      "http://flag.test",
				token:        "flag-token",
				plan:         "silver",
				ledgerFile:   "/tmp/flag.csv",
				revenueShare: 0.15,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"RUN_ADDRESS":       "env:9000",
				"PLATFORM_BASE_URL": "http://env.test",
				"LEDGER_FILE":       "/tmp/env-wins.csv",
			},
			flags: []string{
				"-a", "flag:8000",
				"-p", "http://flag.test",
				"-l", "/tmp/flag-loses.csv",
			},
			want: want{
				runAddress:   "env:9000",
				baseURL:      "http://env.test",
				token:        "demo_token",
				plan:         "free",
				ledgerFile:   "/tmp/env-wins.csv",
				revenueShare: 0.10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.runAddress, cfg.RunAddress)
			assert.Equal(t, tt.want.baseURL, cfg.PlatformBaseURL)
			assert.Equal(t, tt.want.token, cfg.PlatformAPIToken)
			assert.Equal(t, tt.want.plan, cfg.DefaultPlan)
			assert.Equal(t, tt.want.ledgerFile, cfg.LedgerFile)
			assert.InDelta(t, tt.want.revenueShare, cfg.RevenueShare, 1e-9)
		})
	}
}

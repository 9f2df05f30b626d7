package main

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"

	"github.com/rusq/wipemydiscord/internal/discord"
)

func Test_parseCmdLine(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		env       map[string]string
		want      Params
		wantUsage bool
		wantErr   bool
	}{
		{
			name: "positional arguments",
			args: []string{"secret", "42", "100"},
			want: Params{Token: "secret", UserID: 42, ChannelID: 100, BaseURL: discord.DefaultBaseURL},
		},
		{
			name: "flags",
			args: []string{"-delay", "500ms", "-dry", "-api", "http://localhost/api", "secret", "42", "100"},
			want: Params{Token: "secret", UserID: 42, ChannelID: 100, BaseURL: "http://localhost/api", Delay: 500 * time.Millisecond, DryRun: true},
		},
		{
			name: "delay from environment",
			args: []string{"secret", "42", "100"},
			env:  map[string]string{"WIPE_DELAY": "2s"},
			want: Params{Token: "secret", UserID: 42, ChannelID: 100, BaseURL: discord.DefaultBaseURL, Delay: 2 * time.Second},
		},
		{
			name: "extra arguments are ignored",
			args: []string{"secret", "42", "100", "extra"},
			want: Params{Token: "secret", UserID: 42, ChannelID: 100, BaseURL: discord.DefaultBaseURL},
		},
		{
			name:      "no arguments",
			args:      []string{},
			wantUsage: true,
		},
		{
			name:      "two arguments",
			args:      []string{"secret", "42"},
			wantUsage: true,
		},
		{
			name:      "invalid user id",
			args:      []string{"secret", "me", "100"},
			wantUsage: true,
		},
		{
			name:      "invalid channel id",
			args:      []string{"secret", "42", "-1"},
			wantUsage: true,
		},
		{
			name:      "dry and interactive",
			args:      []string{"-dry", "-i", "secret", "42", "100"},
			wantUsage: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-unknown", "secret", "42", "100"},
			wantErr: true,
		},
		{
			name: "version does not need arguments",
			args: []string{"-v"},
			want: Params{Version: true, BaseURL: discord.DefaultBaseURL},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WIPE_DELAY", "")
			t.Setenv("DEBUG", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			got, err := parseCmdLine(fs, tt.args)
			if tt.wantUsage {
				assert.True(t, errors.Is(err, errUsage), "want usage error, got: %v", err)
				return
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("parseCmdLine() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_parseID(t *testing.T) {
	got, err := parseID("user_id", "1234567890123456789")
	assert.NoError(t, err)
	assert.Equal(t, snowflake.ID(1234567890123456789), got)

	_, err = parseID("user_id", "0")
	assert.ErrorIs(t, err, errUsage)
	_, err = parseID("user_id", "")
	assert.ErrorIs(t, err, errUsage)
}

package setup_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/plottwist/internal/ai"
	"github.com/myrjola/plottwist/internal/setup"
	"github.com/myrjola/plottwist/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func lookupEnv(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg setup.Config)
		wantErr error
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg setup.Config) {
				require.Equal(t, "localhost:4000", cfg.Addr)
				require.Equal(t, 5, cfg.MaxRounds)
				require.Equal(t, setup.ProviderGemini, cfg.AIProvider)
				require.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
				require.Equal(t, 60*time.Second, cfg.AITimeout)
				require.Equal(t, "https://mockurl.com", cfg.ImageBaseURL)
				require.Empty(t, cfg.GeminiAPIKey)
				require.Empty(t, cfg.PprofAddr)
				require.Equal(t, time.Minute, cfg.MysteryCacheTTL)
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"PLOTTWIST_MAX_ROUNDS":  "7",
				"PLOTTWIST_AI_PROVIDER": "openai",
				"OPENAI_API_KEY":        "sk-test",
				"PLOTTWIST_AI_TIMEOUT":  "5s",
			},
			check: func(t *testing.T, cfg setup.Config) {
				require.Equal(t, 7, cfg.MaxRounds)
				require.Equal(t, setup.ProviderOpenAI, cfg.AIProvider)
				require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
				require.Equal(t, 5*time.Second, cfg.AITimeout)
			},
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"PLOTTWIST_AI_PROVIDER": "llama"},
			wantErr: setup.ErrUnknownProvider,
		},
		{
			name:    "zero rounds",
			env:     map[string]string{"PLOTTWIST_MAX_ROUNDS": "0"},
			wantErr: setup.ErrInvalidConfig,
		},
		{
			name:    "zero cache size",
			env:     map[string]string{"PLOTTWIST_MYSTERY_CACHE_SIZE": "0"},
			wantErr: setup.ErrInvalidConfig,
		},
		{
			name:    "zero cache ttl",
			env:     map[string]string{"PLOTTWIST_MYSTERY_CACHE_TTL": "0s"},
			wantErr: setup.ErrInvalidConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := setup.LoadConfig(lookupEnv(tt.env))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		env           map[string]string
		wantAvailable bool
	}{
		{
			name:          "no credentials",
			env:           map[string]string{"PLOTTWIST_SQLITE_URL": ":memory:"},
			wantAvailable: false,
		},
		{
			name: "openai credentials",
			env: map[string]string{
				"PLOTTWIST_SQLITE_URL":  ":memory:",
				"PLOTTWIST_AI_PROVIDER": "openai",
				"OPENAI_API_KEY":        "sk-test",
			},
			wantAvailable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cfg, err := setup.LoadConfig(lookupEnv(tt.env))
			require.NoError(t, err)

			app, err := setup.New(ctx, cfg, testhelpers.NewLogger(io.Discard))
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, app.Close()) })

			require.Equal(t, tt.wantAvailable, app.Gateway.Available())
			styles, err := app.ArtStyles.List(ctx)
			require.NoError(t, err)
			require.Len(t, styles, 14)

			if !tt.wantAvailable {
				_, err = app.Game.GetOrCreateTodaysMystery(ctx)
				require.ErrorIs(t, err, ai.ErrGatewayUnavailable)
			}
		})
	}
}

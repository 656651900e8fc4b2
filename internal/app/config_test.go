package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDerivedDefaults_PushURLFromBaseURL(t *testing.T) {
	cases := map[string]struct {
		base string
		want string
	}{
		"http":           {base: "http://localhost:8080", want: "ws://localhost:8080/ws/orders"},
		"https":          {base: "https://shop.example.com", want: "wss://shop.example.com/ws/orders"},
		"trailing slash": {base: "http://localhost:8080/", want: "ws://localhost:8080/ws/orders"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Config{BaseURL: tc.base, StateDir: t.TempDir()}
			require.NoError(t, cfg.applyDerivedDefaults())
			assert.Equal(t, tc.want, cfg.PushURL)
		})
	}
}

func TestApplyDerivedDefaults_ExplicitPushURLKept(t *testing.T) {
	cfg := Config{
		BaseURL:  "http://localhost:8080",
		PushURL:  "wss://events.example.com/ws/orders",
		StateDir: t.TempDir(),
	}
	require.NoError(t, cfg.applyDerivedDefaults())
	assert.Equal(t, "wss://events.example.com/ws/orders", cfg.PushURL)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantConfig(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		host    string
		port    int
		useTLS  bool
		wantErr bool
	}{
		{name: "default grpc port", url: "http://localhost", host: "localhost", port: 6334},
		{name: "explicit port", url: "http://qdrant:7334", host: "qdrant", port: 7334},
		{name: "https enables tls", url: " https://cloud.qdrant.io:6334 ", host: "cloud.qdrant.io", port: 6334, useTLS: true},
		{name: "missing scheme", url: "localhost:6334", wantErr: true},
		{name: "empty", url: "", wantErr: true},
		{name: "bad port", url: "http://qdrant:grpc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := qdrantConfig(tt.url, "secret")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.host, cfg.Host)
			assert.Equal(t, tt.port, cfg.Port)
			assert.Equal(t, tt.useTLS, cfg.UseTLS)
			assert.Equal(t, "secret", cfg.APIKey)
		})
	}
}

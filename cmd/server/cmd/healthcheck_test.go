package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPerformHealthcheck(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		body         interface{}
		wantExitCode int
		wantStatus   string
	}{
		{
			name:         "healthy server",
			statusCode:   http.StatusOK,
			body:         healthResponse{Status: "healthy", Checks: map[string]string{"database": "pass"}},
			wantExitCode: 0,
			wantStatus:   "healthy",
		},
		{
			name:         "degraded server",
			statusCode:   http.StatusOK,
			body:         healthResponse{Status: "degraded"},
			wantExitCode: 1,
			wantStatus:   "degraded",
		},
		{
			name:         "unhealthy server",
			statusCode:   http.StatusServiceUnavailable,
			body:         healthResponse{Status: "unhealthy"},
			wantExitCode: 1,
			wantStatus:   "unhealthy",
		},
		{
			name:         "invalid response body",
			statusCode:   http.StatusOK,
			body:         "not json",
			wantExitCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if str, ok := tt.body.(string); ok {
					fmt.Fprint(w, str)
				} else {
					_ = json.NewEncoder(w).Encode(tt.body)
				}
			}))
			defer server.Close()

			healthcheckTimeout = 5
			result := performHealthcheck(server.URL)

			require.Equal(t, tt.wantExitCode, result.ExitCode)
			if tt.wantStatus != "" {
				require.Equal(t, tt.wantStatus, result.Status)
			}
			if tt.wantExitCode != 0 {
				require.Error(t, result.Err)
			} else {
				require.NoError(t, result.Err)
			}
		})
	}
}

func TestPerformHealthcheckUnreachable(t *testing.T) {
	healthcheckTimeout = 1

	result := performHealthcheck("http://127.0.0.1:1/health")
	require.Equal(t, 1, result.ExitCode)
	require.Error(t, result.Err)
}

func TestDetermineHealthcheckURL(t *testing.T) {
	t.Run("explicit flag wins", func(t *testing.T) {
		healthcheckURL = "http://example.com/health"
		defer func() { healthcheckURL = "" }()

		require.Equal(t, "http://example.com/health", determineHealthcheckURL())
	})

	t.Run("SERVER_PORT picks the port", func(t *testing.T) {
		healthcheckURL = ""
		t.Setenv("SERVER_PORT", "9000")

		require.Equal(t, "http://localhost:9000/health", determineHealthcheckURL())
	})

	t.Run("defaults to 8080", func(t *testing.T) {
		healthcheckURL = ""
		t.Setenv("SERVER_PORT", "")

		require.Equal(t, "http://localhost:8080/health", determineHealthcheckURL())
	})
}

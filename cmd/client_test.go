package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlapi/cli/internal/config"
	"sqlapi/cli/internal/sqlexec"
)

// newAccountServer fakes the token and statement endpoints of one account.
func newAccountServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token-request", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "rt", r.PostForm.Get("refresh_token"))
		_, _ = w.Write([]byte(`{"access_token":"at","expires_in":600}`))
	})
	mux.HandleFunc("/api/v2/statements", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"statementHandle":"h-1"}`))
	})
	mux.HandleFunc("/api/v2/statements/h-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"statementHandle":"h-1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"statementHandle":"h-1","resultSetMetaData":{"numRows":1,"rowType":[{"name":"CURRENT_USER()","type":"TEXT"}]},"data":[["ALICE"]]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func TestBuildSessionRunsStatements(t *testing.T) {
	srv, polls := newAccountServer(t)

	s, err := buildSession(config.Config{
		BaseURL:      srv.URL,
		OAuth:        config.OAuth{ClientID: "cid", ClientSecret: "cs", RefreshToken: "rt"},
		Timeout:      time.Minute,
		HTTPTimeout:  5 * time.Second,
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, s.endpoints.BaseURL)

	res, err := s.exec.Execute(context.Background(), whoamiSQL, time.Minute, sqlexec.Overrides{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, [][]any{{"ALICE"}}, res.Data)
	assert.EqualValues(t, 2, atomic.LoadInt32(polls))
}

func TestConfigPairsMaskSecrets(t *testing.T) {
	pairs := configPairs(config.Config{
		Account: "acme",
		OAuth:   config.OAuth{ClientID: "cid", ClientSecret: "super-secret-value", RefreshToken: "ver:1-hint:refresh-token-value"},
	}, "https://acme.snowflakecomputing.com", "/tmp/sqlapi/config.json")

	var joined strings.Builder
	for _, p := range pairs {
		joined.WriteString(p[0] + "=" + p[1] + "\n")
	}
	out := joined.String()

	assert.NotContains(t, out, "super-secret-value")
	assert.NotContains(t, out, "refresh-token-value")
	assert.Contains(t, out, "client secret=***alue")
	assert.Contains(t, out, "database=(not set)")
}

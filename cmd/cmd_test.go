package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/crossover/config"
	"github.com/s0up4200/crossover/filter"
)

const apiRoot = "https://rickandmortyapi.com/api"

func characterJSON(id int, name string, episodes ...int) string {
	refs := make([]string, len(episodes))
	for i, ep := range episodes {
		refs[i] = fmt.Sprintf("%q", fmt.Sprintf("%s/episode/%d", apiRoot, ep))
	}
	return fmt.Sprintf(`{"id":%d,"name":%q,"status":"Alive","species":"Human","episode":[%s]}`, id, name, strings.Join(refs, ","))
}

func episodeJSON(id int, code string, cast ...int) string {
	refs := make([]string, len(cast))
	for i, ch := range cast {
		refs[i] = fmt.Sprintf("%q", fmt.Sprintf("%s/character/%d", apiRoot, ch))
	}
	return fmt.Sprintf(`{"id":%d,"name":"Episode %d","air_date":"December 2, 2013","episode":%q,"characters":[%s]}`, id, id, code, strings.Join(refs, ","))
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	rick := characterJSON(1, "Rick Sanchez", 1, 2)
	morty := characterJSON(2, "Morty Smith", 2, 3)
	ep1 := episodeJSON(1, "S01E01", 1)
	ep2 := episodeJSON(2, "S01E02", 1, 2)
	ep3 := episodeJSON(3, "S01E03", 2)

	routes := map[string]string{
		"/character?page=1": `{"info":{"count":2,"pages":1,"next":null,"prev":null},"results":[` + rick + "," + morty + `]}`,
		"/character/1":      rick,
		"/character/2":      morty,
		"/character/1,2":    "[" + rick + "," + morty + "]",
		"/episode/1,2":      "[" + ep1 + "," + ep2 + "]",
		"/episode/2,1":      "[" + ep2 + "," + ep1 + "]",
		"/episode/2,3":      "[" + ep2 + "," + ep3 + "]",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.RequestURI()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"There is nothing here"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()

	content := fmt.Sprintf(`api:
  base_url: %s
  retries: 0
  breaker:
    enabled: false
filter:
  presets:
    mortys: 'contains(Name, "morty")'
logging:
  level: error
`, baseURL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetFlags() {
	cfgFile = ""
	charPage = 1
	charName = ""
	charStatus = ""
	charWhere = ""
	charPreset = ""
	charInteractive = false
	charDetails = false
	compareDetails = false
	episodeCast = true
	episodeWorkers = 4
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCharactersCommand(t *testing.T) {
	server := newFakeAPI(t)
	path := writeConfig(t, server.URL)

	out, _, err := execute(t, "", "characters", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Characters (page 1 of 1, 2 total):")
	assert.Contains(t, out, "├── #1 Rick Sanchez [Alive]")
	assert.Contains(t, out, "╰── #2 Morty Smith [Alive]")
}

func TestCharactersCommandFilters(t *testing.T) {
	server := newFakeAPI(t)
	path := writeConfig(t, server.URL)

	t.Run("where", func(t *testing.T) {
		out, _, err := execute(t, "", "characters", "--config", path, "--where", "episode:1")
		require.NoError(t, err)
		assert.Contains(t, out, "#1 Rick Sanchez")
		assert.NotContains(t, out, "Morty Smith")
	})

	t.Run("preset", func(t *testing.T) {
		out, _, err := execute(t, "", "characters", "--config", path, "--preset", "mortys")
		require.NoError(t, err)
		assert.Contains(t, out, "#2 Morty Smith")
		assert.NotContains(t, out, "Rick Sanchez")
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, _, err := execute(t, "", "characters", "--config", path, "--preset", "nope")
		require.ErrorIs(t, err, filter.ErrPresetNotFound)
		assert.Contains(t, err.Error(), `"nope" (available: mortys)`)
	})

	t.Run("preset name is case-insensitive", func(t *testing.T) {
		out, _, err := execute(t, "", "characters", "--config", path, "--preset", "MORTYS")
		require.NoError(t, err)
		assert.Contains(t, out, "#2 Morty Smith")
	})

	t.Run("unknown field in where", func(t *testing.T) {
		_, _, err := execute(t, "", "characters", "--config", path, "--where", "Nickname")
		require.Error(t, err)
		var cerr *filter.CompilationError
		assert.ErrorAs(t, err, &cerr)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, _, err := execute(t, "", "characters", "--config", path, "--status", "zombie")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid status")
	})
}

func TestCharactersCommandFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	path := writeConfig(t, server.URL)

	out, _, err := execute(t, "", "characters", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch characters")
	assert.Contains(t, out, "Failed to fetch characters. Press r to retry.")
}

func TestCharactersInteractiveSelection(t *testing.T) {
	server := newFakeAPI(t)
	path := writeConfig(t, server.URL)

	out, notices, err := execute(t, "a 1\nb 1\nb 2\nq\n", "characters", "--config", path, "--interactive")
	require.NoError(t, err)

	assert.Contains(t, notices, "Rick Sanchez is already selected in Character #1")
	assert.Contains(t, out, "Character #1: Rick Sanchez (#1)")
	assert.Contains(t, out, "Only Rick Sanchez (2):")
	assert.Contains(t, out, "Character #2: Morty Smith (#2)")
	assert.Contains(t, out, "Shared (1):\n╰── S01E02 Episode 2")
	assert.Contains(t, out, "Only Morty Smith (1):\n╰── S01E03 Episode 3")
}

func TestCompareCommand(t *testing.T) {
	server := newFakeAPI(t)
	path := writeConfig(t, server.URL)

	t.Run("two characters", func(t *testing.T) {
		out, _, err := execute(t, "", "compare", "--config", path, "1", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Only Rick Sanchez (1):\n╰── S01E01 Episode 1")
		assert.Contains(t, out, "Shared (1):\n╰── S01E02 Episode 2")
		assert.Contains(t, out, "Only Morty Smith (1):\n╰── S01E03 Episode 3")
	})

	t.Run("one character", func(t *testing.T) {
		out, _, err := execute(t, "", "compare", "--config", path, "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Character #2: (empty)")
		assert.Contains(t, out, "Only Morty Smith (2):\n├── S01E02 Episode 2\n╰── S01E03 Episode 3")
		assert.NotContains(t, out, "Shared")
	})

	t.Run("same character twice", func(t *testing.T) {
		out, notices, err := execute(t, "", "compare", "--config", path, "1", "1")
		require.NoError(t, err)
		assert.Contains(t, notices, "Rick Sanchez is already selected in Character #1")
		assert.Contains(t, out, "Character #2: (empty)")
		assert.Contains(t, out, "Only Rick Sanchez (2):")
	})

	t.Run("unknown character", func(t *testing.T) {
		_, _, err := execute(t, "", "compare", "--config", path, "404")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get character 404")
	})

	t.Run("invalid id", func(t *testing.T) {
		_, _, err := execute(t, "", "compare", "--config", path, "rick")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid character id: rick")
	})
}

func TestEpisodeCommand(t *testing.T) {
	server := newFakeAPI(t)
	path := writeConfig(t, server.URL)

	out, _, err := execute(t, "", "episode", "--config", path, "2", "1")
	require.NoError(t, err)

	first := strings.Index(out, "S01E01 Episode 1")
	second := strings.Index(out, "S01E02 Episode 2")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, out, "Cast (2):\n├── Rick Sanchez [Alive]\n╰── Morty Smith [Alive]")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("crossover %s (built %s)\n", appVersion, appBuildTime), out)
}

func TestSetupLogger(t *testing.T) {
	previous := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "trace", want: zerolog.TraceLevel},
		{level: "DEBUG", want: zerolog.DebugLevel},
		{level: "warn", want: zerolog.WarnLevel},
		{level: "", want: zerolog.InfoLevel},
		{level: "verbose", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogger(config.LoggingConfig{Level: tt.level, Format: "json"})
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

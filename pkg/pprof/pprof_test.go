package pprof

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-metrics/internal/testutil"
	"github.com/graph-metrics/pkg/errors"
)

func TestParseProfileTypes(t *testing.T) {
	types, err := ParseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileTypes(), types)

	types, err = ParseProfileTypes("CPU, heap ,mutex")
	require.NoError(t, err)
	assert.Equal(t, []ProfileType{ProfileCPU, ProfileHeap, ProfileMutex}, types)

	_, err = ParseProfileTypes("cpu,threads")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigError, errors.GetErrorCode(err))
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, (&Config{Mode: "socket"}).Validate())
	assert.Error(t, (&Config{Mode: ModeFile}).Validate())
	assert.Error(t, (&Config{Mode: ModeHTTP}).Validate())
	assert.NoError(t, (&Config{Mode: ModeFile, OutputDir: "/tmp/p"}).Validate())
	assert.NoError(t, (&Config{Mode: ModeHTTP, Addr: ":6060"}).Validate())
}

func TestSession_FileMode(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pprof")
	s, err := Start(Config{
		Mode:      ModeFile,
		Profiles:  []ProfileType{ProfileCPU, ProfileHeap, ProfileGoroutine},
		OutputDir: dir,
	}, testutil.NewRecordingLogger())
	require.NoError(t, err)

	files, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "cpu.pprof"),
		filepath.Join(dir, "heap.pprof"),
		filepath.Join(dir, "goroutine.pprof"),
	}, files)

	for _, f := range files[1:] {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestSession_HTTPMode(t *testing.T) {
	s, err := Start(Config{Mode: ModeHTTP, Addr: "127.0.0.1:0"}, testutil.NewRecordingLogger())
	require.NoError(t, err)
	defer s.Stop()

	resp, err := http.Get("http://" + s.Addr() + "/debug/pprof/goroutine?debug=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "goroutine")
}

//go:build e2e

package e2e

import (
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hyperengineering/cdusync/pkg/cduclient"
)

// cdusyncServer manages a running `cdusync serve` process.
type cdusyncServer struct {
	cmd     *exec.Cmd
	dataDir string
	address string
	apiKey  string
	logFile *os.File
}

// startCdusync launches the server over a SQLite remote store in dataDir
// and waits for it to become healthy. Configuration is env-only.
func startCdusync(t *testing.T, dataDir string) *cdusyncServer {
	t.Helper()

	if cdusyncBin == "" {
		t.Skip("cdusync binary not available (set CDUSYNC_BIN or add to PATH)")
	}

	port := freePort(t)
	s := &cdusyncServer{
		dataDir: dataDir,
		address: fmt.Sprintf("127.0.0.1:%d", port),
		apiKey:  "e2e-test-api-key",
	}

	lf, err := os.OpenFile(filepath.Join(dataDir, "cdusync.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	s.logFile = lf

	s.cmd = exec.Command(cdusyncBin, "serve")
	s.cmd.Env = append(s.env(), fmt.Sprintf("CDU_PORT=%d", port))
	s.cmd.Stdout = lf
	s.cmd.Stderr = lf
	if err := s.cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start cdusync: %v", err)
	}
	t.Cleanup(s.stop)

	if err := s.waitHealthy(10 * time.Second); err != nil {
		t.Fatalf("cdusync not healthy: %v", err)
	}
	return s
}

// env is the process environment shared by the server and CLI runs.
func (s *cdusyncServer) env() []string {
	return append(os.Environ(),
		"CDU_CONFIG_PATH="+filepath.Join(s.dataDir, "nonexistent.yaml"),
		"CDU_MODE=remote",
		"CDU_REMOTE_DRIVER=sqlite",
		"CDU_REMOTE_DSN="+s.dbPath(),
		"CDU_SNAPSHOT_PATH="+filepath.Join(s.dataDir, "cdu_data.json"),
		"CDU_API_KEY="+s.apiKey,
		"CDU_USER_ID=e2e-user",
		"CDU_LOG_LEVEL=debug",
	)
}

func (s *cdusyncServer) dbPath() string {
	return filepath.Join(s.dataDir, "remote.db")
}

func (s *cdusyncServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
		s.cmd = nil
	}
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
}

func (s *cdusyncServer) baseURL() string {
	return "http://" + s.address
}

func (s *cdusyncServer) client(t *testing.T) *cduclient.Client {
	t.Helper()
	c, err := cduclient.New(cduclient.Config{BaseURL: s.baseURL(), APIKey: s.apiKey})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

// runCLI runs a cdusync subcommand with the server's environment.
func (s *cdusyncServer) runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(cdusyncBin, args...)
	cmd.Env = s.env()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// countRows opens the remote SQLite file directly.
func (s *cdusyncServer) countRows(t *testing.T, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		t.Fatalf("open remote DB: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func (s *cdusyncServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := s.baseURL() + "/api/v1/health"

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("cdusync not healthy after %s", timeout)
}

// freePort returns a free TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

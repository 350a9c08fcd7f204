//go:build e2e

package e2e

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// portfolioServer manages a running portfolio server process.
type portfolioServer struct {
	cmd     *exec.Cmd
	address string
	logFile string
}

// portfolioEnv configures the binary entirely through the environment.
func portfolioEnv(dataDir string, extra ...string) []string {
	env := append(os.Environ(),
		"PORTFOLIO_CONFIG_PATH="+filepath.Join(dataDir, "nonexistent.yaml"),
		"PORTFOLIO_DB_PATH="+filepath.Join(dataDir, "content.db"),
		"PORTFOLIO_CMS_PROVIDER=sqlite",
		"PORTFOLIO_IMAGE_PROVIDER=none",
		"PORTFOLIO_LOG_FORMAT=json",
	)
	return append(env, extra...)
}

// runPortfolio runs a one-shot CLI command and returns its combined output.
func runPortfolio(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(portfolioBin, args...)
	cmd.Env = portfolioEnv(dataDir)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// startPortfolio launches the server on dataDir and waits for it to become healthy.
func startPortfolio(t *testing.T, dataDir string, extraEnv ...string) *portfolioServer {
	t.Helper()
	requirePortfolio(t)

	port := freePort(t)
	address := fmt.Sprintf("127.0.0.1:%d", port)
	logFile := filepath.Join(dataDir, "portfolio.log")

	cmd := exec.Command(portfolioBin)
	cmd.Env = portfolioEnv(dataDir, append(extraEnv, fmt.Sprintf("PORTFOLIO_PORT=%d", port))...)

	lf, err := os.Create(logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	cmd.Stdout = lf
	cmd.Stderr = lf

	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start portfolio: %v", err)
	}

	s := &portfolioServer{cmd: cmd, address: address, logFile: logFile}
	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		logs, _ := os.ReadFile(logFile)
		t.Fatalf("portfolio not healthy: %v\n%s", err, logs)
	}
	return s
}

func (s *portfolioServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
	}
}

func (s *portfolioServer) baseURL() string {
	return "http://" + s.address
}

func (s *portfolioServer) waitHealthy(timeout time.Duration) error {
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
	return fmt.Errorf("timed out after %v waiting for %s", timeout, url)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

package e2e

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

const (
	TEST_LOCKFILE_TIMEOUT     = 30 * time.Second
	TEST_NOTIFICATION_TIMEOUT = 90 * time.Second
)

var (
	readyLine    = regexp.MustCompile(`is running at (http://\S+)`)
	sentLine     = regexp.MustCompile(`Notification sent.*id=(note_evening_\d+)`)
	lockfileName = "softworkday-daemon.lock"
)

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("SOFTWORKDAY_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	t.Logf("Using bin dir: %s", binDir)

	cliPath := filepath.Join(binDir, "softworkday")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Fatalf("CLI binary not found at %s. Please build it first.", cliPath)
	}

	// Create temp home for isolation
	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	t.Logf("Running test in temp dir: %s", tempDir)

	var cleanEnv []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "SOFTWORKDAY_") {
			cleanEnv = append(cleanEnv, e)
		}
	}
	cleanEnv = append(cleanEnv,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("SOFTWORKDAY_DATA_DIR=%s", dataDir),
		fmt.Sprintf("SOFTWORKDAY_EXPORT_DIR=%s", filepath.Join(tempDir, "exports")),
		"SOFTWORKDAY_NOTIFIER_SINK=log",
		"SOFTWORKDAY_SERVER_ADDR=127.0.0.1:0",
	)

	// 2. Initialize CLI
	t.Log("Initializing CLI...")
	runCmd(t, cliPath, cleanEnv, "init")

	// 3. Start Daemon (Background)
	t.Log("Starting daemon...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	daemonCmd := exec.CommandContext(ctx, cliPath, "serve")
	daemonCmd.Env = cleanEnv
	daemonCmd.Dir = tempDir
	daemonCmd.Cancel = func() error { return daemonCmd.Process.Signal(os.Interrupt) }

	stdoutPipe, err := daemonCmd.StdoutPipe()
	if err != nil {
		t.Fatalf("Failed to get stdout pipe: %v", err)
	}
	stderrPipe, err := daemonCmd.StderrPipe()
	if err != nil {
		t.Fatalf("Failed to get stderr pipe: %v", err)
	}
	var stderrBuf bytes.Buffer

	if err := daemonCmd.Start(); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}
	defer func() {
		cancel()
		if err := daemonCmd.Wait(); err != nil {
			t.Logf("Daemon process exited with error: %v", err)
		}
		if t.Failed() {
			t.Logf("Daemon Stderr: %s", stderrBuf.String())
		}
	}()

	baseURLCh := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(stdoutPipe)
		for scanner.Scan() {
			if m := readyLine.FindStringSubmatch(scanner.Text()); m != nil {
				baseURLCh <- m[1]
			}
		}
	}()

	sentCh := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(io.TeeReader(stderrPipe, &stderrBuf))
		for scanner.Scan() {
			// Keep draining so the daemon never blocks on a full pipe.
			if m := sentLine.FindStringSubmatch(scanner.Text()); m != nil {
				select {
				case sentCh <- m[1]:
				default:
				}
			}
		}
	}()

	// 4. Wait for Lockfile (Daemon Ready)
	lockfilePath := filepath.Join(dataDir, lockfileName)
	t.Logf("Waiting for lockfile at %s", lockfilePath)
	waitForFile(t, lockfilePath, TEST_LOCKFILE_TIMEOUT)

	var baseURL string
	select {
	case baseURL = <-baseURLCh:
	case <-time.After(TEST_LOCKFILE_TIMEOUT):
		t.Fatal("Daemon never reported its address")
	}
	t.Logf("Daemon is ready at %s", baseURL)

	// 5. Move the evening check-in to the next minute; the daemon reconciles
	// through its control API.
	evening := time.Now().Add(time.Minute).Format("15:04")
	t.Logf("Scheduling evening check-in for %s", evening)
	runCmd(t, cliPath, cleanEnv, "schedule", "set", "--evening", evening)

	// 6. Monitor Logs for the Notification
	t.Log("Waiting for notification logs...")
	var id string
	select {
	case id = <-sentCh:
		t.Logf("Notification %s sent", id)
	case <-time.After(TEST_NOTIFICATION_TIMEOUT):
		t.Fatalf("Timed out waiting for notification log message")
	}

	// 7. Open the detail view the notification links to
	res, err := http.Get(baseURL + "/?m=" + id + "&utm_source=notification")
	if err != nil {
		t.Fatalf("Failed to open detail view: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if !strings.Contains(string(body), `data-view="detail"`) {
		t.Errorf("Detail view not rendered:\n%s", body)
	}

	// 8. The synthesized message is archived under the notification id
	out := runCmd(t, cliPath, cleanEnv, "archive", "list")
	if !strings.Contains(out, id) {
		t.Errorf("archive list does not contain %s:\n%s", id, out)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func waitForFile(t *testing.T, path string, timeout time.Duration) {
	start := time.Now()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for file: %s", path)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/softworkday/internal/constants"
)

var findProcessFunc = ps.FindProcess

// ErrNotRunning is returned when no live daemon owns the lockfile.
var ErrNotRunning = errors.New("softworkday daemon is not running")

// defaultHost is assumed for lockfiles that carry no host field.
const defaultHost = "127.0.0.1"

// Info is the content of a validated lockfile.
type Info struct {
	Port   int
	PID    int
	Secret string
	Host   string
}

// BaseURL is the address of the daemon's HTTP shell.
func (i Info) BaseURL() string {
	host := i.Host
	if host == "" {
		host = defaultHost
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(i.Port))
}

// DialHost returns the host clients should connect to for a listener bound
// to ip. Wildcard binds map to the loopback address of the same family.
func DialHost(ip net.IP) string {
	switch {
	case ip == nil:
		return defaultHost
	case ip.IsUnspecified() && ip.To4() == nil:
		return net.IPv6loopback.String()
	case ip.IsUnspecified():
		return defaultHost
	}
	return ip.String()
}

// LockfilePath returns the lockfile location inside the data directory.
func LockfilePath(dataDir string) string {
	return filepath.Join(dataDir, constants.DaemonLockfileName)
}

// NewSecret returns a fresh shared secret for the control API.
func NewSecret() string {
	return uuid.NewString()
}

// WriteLockfile records port|pid|secret|host for the current process,
// readable only by the owner.
func WriteLockfile(dataDir, host string, port int, secret string) (string, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	path := LockfilePath(dataDir)
	content := fmt.Sprintf("%d|%d|%s|%s", port, os.Getpid(), secret, host)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write lockfile: %w", err)
	}
	return path, nil
}

// RemoveLockfile deletes the lockfile if it still belongs to this process.
func RemoveLockfile(path string) error {
	info, err := parseLockfile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.PID != os.Getpid() {
		return nil
	}
	return os.Remove(path)
}

// Find reads the lockfile in dataDir and checks that its process is a live
// softworkday daemon.
func Find(dataDir string) (Info, error) {
	return findAndValidateDaemon(LockfilePath(dataDir))
}

func findAndValidateDaemon(lockfilePath string) (Info, error) {
	info, err := parseLockfile(lockfilePath)
	if errors.Is(err, os.ErrNotExist) {
		return Info{}, ErrNotRunning
	}
	if err != nil {
		return Info{}, err
	}

	process, err := findProcessFunc(info.PID)
	if err != nil || process == nil {
		return Info{}, fmt.Errorf("%w: stale lockfile (pid %d)", ErrNotRunning, info.PID)
	}
	if !strings.HasPrefix(process.Executable(), constants.DaemonExecutable) {
		return Info{}, fmt.Errorf("%w: process with PID %d is not %s (is %s)", ErrNotRunning, info.PID, constants.DaemonExecutable, process.Executable())
	}
	return info, nil
}

func parseLockfile(path string) (Info, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 && len(parts) != 4 {
		return Info{}, errors.New("lockfile is malformed")
	}

	if strings.TrimSpace(parts[0]) == "" {
		return Info{}, errors.New("port in lockfile is empty")
	}
	port, err := strconv.Atoi(parts[0])
	if err != nil {
		return Info{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return Info{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Info{}, errors.New("invalid process ID in lockfile")
	}

	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return Info{}, errors.New("secret in lockfile is empty")
	}

	info := Info{Port: port, PID: pid, Secret: secret, Host: defaultHost}
	if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
		info.Host = strings.TrimSpace(parts[3])
	}
	return info, nil
}

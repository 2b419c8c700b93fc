package nvim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neovim/go-client/nvim"
)

// ListenAddressEnv names the socket of the running Neovim instance.
const ListenAddressEnv = "NVIM_LISTEN_ADDRESS"

// ErrNoInstance is returned when no Neovim address is configured.
var ErrNoInstance = errors.New("no running Neovim instance ($" + ListenAddressEnv + " is not set)")

// client is the subset of *nvim.Nvim the manager needs.
type client interface {
	Buffers() ([]nvim.Buffer, error)
	BufferName(buffer nvim.Buffer) (string, error)
	Command(cmd string) error
	Close() error
}

// Manager reloads buffers of rewritten files in a running Neovim instance.
type Manager struct {
	nvim client
}

// New connects to the Neovim instance at $NVIM_LISTEN_ADDRESS.
func New() (*Manager, error) {
	addr := os.Getenv(ListenAddressEnv)
	if addr == "" {
		return nil, ErrNoInstance
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	return &Manager{nvim: v}, nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// ReloadBuffers makes Neovim re-read every path that is open in a buffer.
// Paths without a buffer are neither reloaded nor failed.
func (m *Manager) ReloadBuffers(paths []string) (reloaded, failed []string) {
	buffers, err := m.bufferNames()
	if err != nil {
		return nil, append([]string(nil), paths...)
	}

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			failed = append(failed, path)
			continue
		}
		b, ok := buffers[absPath]
		if !ok {
			continue
		}
		if err := m.nvim.Command(fmt.Sprintf("checktime %d", b)); err != nil {
			failed = append(failed, path)
			continue
		}
		reloaded = append(reloaded, path)
	}
	return reloaded, failed
}

// bufferNames maps the full name of every buffer to its handle. Names are
// compared literally; bufnr() would treat [id] directories as patterns.
func (m *Manager) bufferNames() (map[string]nvim.Buffer, error) {
	bufs, err := m.nvim.Buffers()
	if err != nil {
		return nil, err
	}
	names := make(map[string]nvim.Buffer, len(bufs))
	for _, b := range bufs {
		name, err := m.nvim.BufferName(b)
		if err != nil || name == "" {
			continue
		}
		names[filepath.Clean(name)] = b
	}
	return names, nil
}

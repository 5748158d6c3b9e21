package cries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// DefaultBaseURL hosts one .ogg cry per national dex number.
const DefaultBaseURL = "https://raw.githubusercontent.com/FerdigVibes/Gen_1-5_Animated_Sprites/main/"

// candidateBinaries in preference order; the first one on PATH wins.
var candidateBinaries = []string{"afplay", "paplay", "mpv", "ffplay", "mpg123"}

// Detect finds a usable system audio player. A tracker without one simply
// runs silent; callers treat the error as informational.
func Detect(forceBinary string) (string, error) {
	if forceBinary != "" {
		if _, err := exec.LookPath(forceBinary); err != nil {
			return "", fmt.Errorf("%s not found in PATH", forceBinary)
		}
		return forceBinary, nil
	}
	for _, bin := range candidateBinaries {
		if _, err := exec.LookPath(bin); err == nil {
			return bin, nil
		}
	}
	return "", errors.New("no supported audio player found")
}

type Options struct {
	BaseURL  string
	CacheDir string
	Binary   string
	Muted    bool
}

// Player downloads and plays creature cries. Playback failures never block a
// toggle; the worst case is silence.
type Player struct {
	baseURL  string
	cacheDir string
	binary   string
	client   *http.Client

	mu     sync.Mutex
	muted  bool
	active *exec.Cmd
}

func New(opts Options) *Player {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Player{
		baseURL:  opts.BaseURL,
		cacheDir: opts.CacheDir,
		binary:   opts.Binary,
		client:   &http.Client{Timeout: 10 * time.Second},
		muted:    opts.Muted,
	}
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// SetMuted flips the preference and, when muting, stops whatever cry is
// playing right now.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if muted {
		p.stopActiveLocked()
	}
}

// Play fetches (or reuses) the cry for dex and starts playback, stopping any
// cry already playing. Muted or dex-less items are a silent no-op.
func (p *Player) Play(ctx context.Context, dex int) error {
	if dex <= 0 || p.binary == "" {
		return nil
	}
	p.mu.Lock()
	if p.muted {
		p.mu.Unlock()
		return nil
	}
	p.stopActiveLocked()
	p.mu.Unlock()

	path, err := p.fetch(ctx, dex)
	if err != nil {
		return err
	}

	cmd := exec.Command(p.binary, playbackArgs(p.binary, path)...)
	if err := cmd.Start(); err != nil {
		return err
	}

	p.mu.Lock()
	p.active = cmd
	p.mu.Unlock()
	go func() { _ = cmd.Wait() }()
	return nil
}

func (p *Player) stopActiveLocked() {
	if p.active != nil && p.active.Process != nil {
		_ = p.active.Process.Kill()
	}
	p.active = nil
}

// CryURL resolves the remote document for a dex number.
func (p *Player) CryURL(dex int) string {
	return fmt.Sprintf("%s%d.ogg", p.baseURL, dex)
}

// CachePath is where a fetched cry lives on disk.
func (p *Player) CachePath(dex int) string {
	return filepath.Join(p.cacheDir, fmt.Sprintf("%d.ogg", dex))
}

func (p *Player) fetch(ctx context.Context, dex int) (string, error) {
	path := p.CachePath(dex)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.CryURL(dex), nil)
	if err != nil {
		return "", err
	}
	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch cry %d: unexpected status %s", dex, res.Status)
	}

	tmp, err := os.CreateTemp(p.cacheDir, "cry-*.ogg")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, res.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

func playbackArgs(binary, path string) []string {
	switch binary {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	case "mpv":
		return []string{"--no-video", "--really-quiet", path}
	case "mpg123":
		return []string{"-q", path}
	default:
		return []string{path}
	}
}

// Package receiver listens for tracking datagrams and records them in a
// pose.Store.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cfoust/mocap/pkg/osc"
	"github.com/cfoust/mocap/pkg/pose"

	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
)

const (
	DEFAULT_PORT          = 7000
	DEFAULT_POLL_INTERVAL = 33 * time.Millisecond
	DEFAULT_BUFFER_SIZE   = 1024
	// How long a read may wait before the socket counts as drained.
	DRAIN_TIMEOUT = time.Millisecond
)

var ErrLaunch = errors.New("could not launch profile")

type State int

const (
	Stopped State = iota
	Starting
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	}
	return "unknown"
}

type QuitConfig struct {
	// Send the quit message to the tracking application on Stop.
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type ProfileConfig struct {
	// Open the profile at Path on Start.
	Launch bool   `yaml:"launch"`
	Path   string `yaml:"path"`
}

type Config struct {
	Port         int           `yaml:"port"`
	PollInterval time.Duration `yaml:"pollInterval"`
	BufferSize   int           `yaml:"bufferSize"`
	Quit         QuitConfig    `yaml:"quit"`
	Profile      ProfileConfig `yaml:"profile"`
}

func DefaultConfig() Config {
	return Config{
		Port:         DEFAULT_PORT,
		PollInterval: DEFAULT_POLL_INTERVAL,
		BufferSize:   DEFAULT_BUFFER_SIZE,
		Quit: QuitConfig{
			Port: DEFAULT_PORT,
		},
	}
}

type Option func(*Receiver)

func WithSocketFactory(factory SocketFactory) Option {
	return func(r *Receiver) {
		r.sockets = factory
	}
}

func WithLauncher(launcher Launcher) Option {
	return func(r *Receiver) {
		r.launcher = launcher
	}
}

// Receiver owns the listening socket and the goroutine that drains it.
type Receiver struct {
	config   Config
	store    *pose.Store
	sockets  SocketFactory
	launcher Launcher
	faults   *rate.Limiter

	mutex  deadlock.Mutex
	state  State
	socket Socket
	cancel context.CancelFunc
	done   chan struct{}
}

func New(config Config, store *pose.Store, options ...Option) *Receiver {
	if config.PollInterval <= 0 {
		config.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DEFAULT_BUFFER_SIZE
	}

	r := &Receiver{
		config:   config,
		store:    store,
		sockets:  UDPSocketFactory{},
		launcher: SystemLauncher{},
		faults:   rate.NewLimiter(rate.Every(time.Second), 5),
		state:    Stopped,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

func (r *Receiver) Logger() zerolog.Logger {
	return log.With().Str("service", "receiver").Int("port", r.config.Port).Logger()
}

func (r *Receiver) State() State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

// LocalAddr returns the bound address, or nil when not running.
func (r *Receiver) LocalAddr() net.Addr {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.socket == nil {
		return nil
	}
	return r.socket.LocalAddr()
}

// Done is closed once the worker goroutine has exited. It is already closed
// if the receiver was never started.
func (r *Receiver) Done() <-chan struct{} {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.done == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return r.done
}

// Start binds the socket and starts draining it. Calling Start on a receiver
// that is already running does nothing.
func (r *Receiver) Start() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state != Stopped {
		return nil
	}
	r.state = Starting

	logger := r.Logger()

	socket, err := r.sockets.ListenUDP("udp4", &net.UDPAddr{
		IP:   net.IPv4zero,
		Port: r.config.Port,
	})
	if err != nil {
		r.state = Stopped
		return fmt.Errorf("could not listen on port %d: %w", r.config.Port, err)
	}

	r.store.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go r.poll(ctx, socket, done)

	profile := r.config.Profile
	if profile.Launch && profile.Path != "" {
		err := r.launcher.Launch(profile.Path)
		if err != nil {
			cancel()
			socket.Close()
			r.done = done
			r.state = Stopped
			return fmt.Errorf("%w %s: %w", ErrLaunch, profile.Path, err)
		}
		logger.Info().Str("profile", profile.Path).Msg("launched profile")
	}

	r.socket = socket
	r.cancel = cancel
	r.done = done
	r.state = Running

	logger.Info().Str("address", socket.LocalAddr().String()).Msg("listening")
	return nil
}

// Stop cancels the worker and closes the socket without waiting for the
// worker to exit. It is safe to call at any time.
func (r *Receiver) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state == Stopped {
		return
	}

	logger := r.Logger()

	r.cancel()
	if err := r.socket.Close(); err != nil {
		logger.Debug().Err(err).Msg("failed to close socket")
	}
	r.socket = nil
	r.cancel = nil

	if r.config.Quit.Enabled {
		if err := osc.SendQuit(r.config.Quit.Port); err != nil {
			logger.Debug().Err(err).Msg("failed to send quit message")
		}
	}

	r.state = Stopped
	logger.Info().Msg("stopped")
}

func (r *Receiver) poll(ctx context.Context, socket Socket, done chan struct{}) {
	defer close(done)

	buffer := make([]byte, r.config.BufferSize)
	for {
		r.drain(ctx, socket, buffer)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.config.PollInterval):
		}
	}
}

// drain handles every datagram that is already waiting on the socket.
func (r *Receiver) drain(ctx context.Context, socket Socket, buffer []byte) {
	for ctx.Err() == nil {
		err := socket.SetReadDeadline(time.Now().Add(DRAIN_TIMEOUT))
		if err != nil {
			r.fault(ctx, err)
			return
		}

		n, _, err := socket.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return
			}
			r.fault(ctx, err)
			return
		}

		r.handle(buffer[:n])
	}
}

func (r *Receiver) handle(data []byte) {
	update := osc.Decode(data)
	if opt.IsNone(update) {
		if r.faults.Allow() {
			logger := r.Logger()
			logger.Debug().Int("size", len(data)).Msg("ignored datagram")
		}
		return
	}

	r.store.Apply(update.Value)
}

func (r *Receiver) fault(ctx context.Context, err error) {
	// Closing the socket on Stop fails the pending read.
	if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
		return
	}

	if !r.faults.Allow() {
		return
	}

	logger := r.Logger()
	logger.Warn().Err(err).Msg("failed to read datagram")
}

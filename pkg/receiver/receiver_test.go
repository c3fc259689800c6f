package receiver

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/cfoust/mocap/pkg/geom"
	"github.com/cfoust/mocap/pkg/osc"
	"github.com/cfoust/mocap/pkg/pose"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wait = 2 * time.Second

func testConfig() Config {
	config := DefaultConfig()
	config.Port = 0
	config.PollInterval = 5 * time.Millisecond
	return config
}

func port(t *testing.T, r *Receiver) int {
	addr, ok := r.LocalAddr().(*net.UDPAddr)
	require.True(t, ok)
	return addr.Port
}

func send(t *testing.T, port int, message *goosc.Message) {
	client := goosc.NewClient(osc.LOCALHOST, port)
	require.NoError(t, client.Send(message))
}

func hasBone(store *pose.Store, name string) bool {
	_, ok := store.Snapshot().Find(name)
	return ok
}

func TestReceive(t *testing.T) {
	store := pose.NewStore()
	r := New(testConfig(), store)
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Equal(t, Running, r.State())

	send(t, port(t, r), osc.PoseMessage(
		"Head",
		geom.NewVector(1, 2, 3),
		geom.Identity(),
	))

	require.Eventually(t, func() bool {
		return hasBone(store, "Head")
	}, wait, 5*time.Millisecond)

	bone, _ := store.Snapshot().Find("Head")
	require.NotNil(t, bone.Location)
	require.NotNil(t, bone.Rotation)
	assert.Equal(t, pose.Vector{X: 1, Y: 2, Z: 3}, *bone.Location)

	// A frame without float arguments stops tracking the bone.
	send(t, port(t, r), goosc.NewMessage("Head"))
	require.Eventually(t, func() bool {
		return !hasBone(store, "Head")
	}, wait, 5*time.Millisecond)
}

func TestOversizedDatagram(t *testing.T) {
	store := pose.NewStore()
	config := testConfig()
	r := New(config, store)
	require.NoError(t, r.Start())
	defer r.Stop()

	data := frame(t, "Hip", geom.NewVector(0, 1, 0))
	data = append(data, make([]byte, 3*config.BufferSize)...)
	require.Greater(t, len(data), config.BufferSize)

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: port(t, r),
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(data)
	require.NoError(t, err)

	// Only the first BufferSize bytes are read, which still hold the frame.
	require.Eventually(t, func() bool {
		return hasBone(store, "Hip")
	}, wait, 5*time.Millisecond)
	assert.Equal(t, Running, r.State())
}

func TestStopNeverStarted(t *testing.T) {
	r := New(testConfig(), pose.NewStore())
	assert.NotPanics(t, r.Stop)
	assert.Equal(t, Stopped, r.State())

	select {
	case <-r.Done():
	default:
		t.Fatal("done should be closed")
	}
}

func TestStopTwice(t *testing.T) {
	r := New(testConfig(), pose.NewStore())
	require.NoError(t, r.Start())

	r.Stop()
	assert.NotPanics(t, r.Stop)

	select {
	case <-r.Done():
	case <-time.After(wait):
		t.Fatal("worker did not exit")
	}
	assert.Nil(t, r.LocalAddr())
}

func TestStartIsIdempotent(t *testing.T) {
	r := New(testConfig(), pose.NewStore())
	require.NoError(t, r.Start())
	defer r.Stop()

	addr := r.LocalAddr()
	require.NoError(t, r.Start())
	assert.Equal(t, addr, r.LocalAddr())
}

func TestPortInUse(t *testing.T) {
	first := New(testConfig(), pose.NewStore())
	require.NoError(t, first.Start())
	defer first.Stop()

	config := testConfig()
	config.Port = port(t, first)
	second := New(config, pose.NewStore())

	err := second.Start()
	require.Error(t, err)
	assert.Equal(t, Stopped, second.State())
	assert.Nil(t, second.LocalAddr())

	select {
	case <-second.Done():
	default:
		t.Fatal("no worker should be running")
	}

	assert.Equal(t, Running, first.State())
}

func TestRestart(t *testing.T) {
	store := pose.NewStore()
	r := New(testConfig(), store)
	require.NoError(t, r.Start())

	send(t, port(t, r), osc.LocationMessage("Hip", geom.NewVector(0, 1, 0)))
	require.Eventually(t, func() bool {
		return hasBone(store, "Hip")
	}, wait, 5*time.Millisecond)

	r.Stop()
	<-r.Done()

	require.NoError(t, r.Start())
	defer r.Stop()

	// Starting again begins with an empty store.
	assert.False(t, hasBone(store, "Hip"))
}

func TestQuitOnStop(t *testing.T) {
	companion, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer companion.Close()

	config := testConfig()
	config.Quit = QuitConfig{
		Enabled: true,
		Port:    companion.LocalAddr().(*net.UDPAddr).Port,
	}

	r := New(config, pose.NewStore())
	require.NoError(t, r.Start())
	r.Stop()

	require.NoError(t, companion.SetReadDeadline(time.Now().Add(wait)))
	buffer := make([]byte, 64)
	n, _, err := companion.ReadFromUDP(buffer)
	require.NoError(t, err)
	assert.Equal(t, osc.QuitPayload, buffer[:n])
}

func TestLaunchProfile(t *testing.T) {
	var launched string
	config := testConfig()
	config.Profile = ProfileConfig{Launch: true, Path: "skeleton.nimate"}

	r := New(config, pose.NewStore(), WithLauncher(LauncherFunc(func(path string) error {
		launched = path
		return nil
	})))
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Equal(t, "skeleton.nimate", launched)
}

func TestLaunchFailure(t *testing.T) {
	config := testConfig()
	config.Profile = ProfileConfig{Launch: true, Path: "skeleton.nimate"}

	r := New(config, pose.NewStore(), WithLauncher(LauncherFunc(func(path string) error {
		return errors.New("no opener")
	})))

	err := r.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLaunch)
	assert.Equal(t, Stopped, r.State())
	assert.Nil(t, r.LocalAddr())

	select {
	case <-r.Done():
	case <-time.After(wait):
		t.Fatal("worker did not exit")
	}
}

func TestLaunchSkippedWithoutPath(t *testing.T) {
	config := testConfig()
	config.Profile = ProfileConfig{Launch: true}

	r := New(config, pose.NewStore(), WithLauncher(LauncherFunc(func(path string) error {
		t.Fatal("launcher should not run")
		return nil
	})))
	require.NoError(t, r.Start())
	r.Stop()
}

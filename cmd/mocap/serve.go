package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/cfoust/mocap/pkg/config"
	"github.com/cfoust/mocap/pkg/monitor"
	"github.com/cfoust/mocap/pkg/pose"
	"github.com/cfoust/mocap/pkg/receiver"
	"github.com/cfoust/mocap/pkg/rig"
	"github.com/cfoust/mocap/pkg/scene"
	"github.com/cfoust/mocap/pkg/utils"

	"github.com/rs/zerolog/log"
)

// runFrames drives the updater at a fixed rate and publishes the pose after
// every tick while someone is listening.
func runFrames(
	ctx context.Context,
	rate int,
	updater *rig.Updater,
	store *pose.Store,
	snapshots *utils.Topic[pose.Snapshot],
) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updater.Tick()

			if snapshots.Subscribers() > 0 {
				snapshots.Publish(store.Snapshot())
			}
		}
	}
}

func serveCommand(configs []string) error {
	settings, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf(
			"failed to load configuration, please specify one with the %s environment variable: %w",
			config.ENV_CONFIG,
			err,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := pose.NewStore()
	skeleton := scene.Humanoid()
	updater := rig.NewUpdater(store, skeleton, settings.Rig.Options)

	listener := receiver.New(settings.Receiver, store)
	err = listener.Start()
	if err != nil {
		return err
	}

	snapshots := utils.NewTopic[pose.Snapshot]()

	errc := make(chan error, 1)
	if settings.Monitor.Enabled {
		monitorListener, err := net.Listen(
			"tcp",
			fmt.Sprintf("0.0.0.0:%d", settings.Monitor.Port),
		)
		if err != nil {
			listener.Stop()
			return fmt.Errorf("could not start monitor: %w", err)
		}

		server := monitor.NewServer(snapshots, store.Snapshot)
		go func() {
			errc <- server.Serve(ctx, monitorListener)
		}()
	}

	frames := make(chan struct{})
	go func() {
		runFrames(ctx, settings.Frame.Rate, updater, store, snapshots)
		close(frames)
	}()

	log.Info().
		Int("rate", settings.Frame.Rate).
		Bool("keepOriginal", settings.Rig.KeepOriginal).
		Bool("useRoot", settings.Rig.UseRoot).
		Msg("driving skeleton")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("failed to serve monitor")
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	cancel()
	<-frames
	listener.Stop()

	if settings.Rig.ResetOnStop {
		updater.Reset()
		log.Info().Msg("restored original pose")
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/cfoust/mocap/pkg/geom"
	"github.com/cfoust/mocap/pkg/osc"
	"github.com/cfoust/mocap/pkg/scene"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/rs/zerolog/log"
)

// syntheticFrame returns one message per skeleton bone with every joint
// swinging slowly around its own axis. Only the hip moves.
func syntheticFrame(elapsed time.Duration) []*goosc.Message {
	seconds := elapsed.Seconds()
	bones := scene.HumanoidBones()
	messages := make([]*goosc.Message, 0, len(bones))

	for i, bone := range bones {
		phase := float64(i) * 0.4
		angle := float32(0.3 * math.Sin(seconds*2+phase))

		axis := geom.NewVector(1, 0, 0)
		if i%2 == 1 {
			axis = geom.Forward
		}
		rotation := geom.AxisAngle(angle, axis)

		if bone == "Hip" {
			location := geom.NewVector(
				float32(0.2*math.Sin(seconds)),
				1,
				float32(0.2*math.Cos(seconds)),
			)
			messages = append(messages, osc.PoseMessage(bone, location, rotation))
			continue
		}

		messages = append(messages, osc.QuaternionMessage(bone, rotation))
	}

	return messages
}

func sendCommand(host string, port int, rate int, duration time.Duration) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", rate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	client := goosc.NewClient(host, port)
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	log.Info().
		Str("host", host).
		Int("port", port).
		Int("rate", rate).
		Msg("sending synthetic skeleton")

	start := time.Now()
	frames := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("frames", frames).Msg("done")
			return nil
		case <-sigs:
			log.Info().Int("frames", frames).Msg("interrupted")
			return nil
		case <-ticker.C:
			for _, message := range syntheticFrame(time.Since(start)) {
				if err := client.Send(message); err != nil {
					return fmt.Errorf("failed to send frame: %w", err)
				}
			}
			frames++
		}
	}
}

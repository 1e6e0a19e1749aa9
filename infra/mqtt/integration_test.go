package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/batlife/core/runstore"
)

// startMosquitto launches a disposable broker and returns its URL.
func startMosquitto(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	conf := t.TempDir() + "/mosquitto.conf"
	require.NoError(t, os.WriteFile(conf, []byte("listener 1883\nallow_anonymous true\n"), 0o644))
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			Files: []tc.ContainerFile{{
				HostFilePath:      conf,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
			WaitingFor: wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestPublisher_Mosquitto(t *testing.T) {
	if os.Getenv("BATLIFE_E2E") != "1" {
		t.Skip("set BATLIFE_E2E=1 to run against a mosquitto container")
	}
	broker := startMosquitto(t)

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	require.True(t, sub.Connect().WaitTimeout(5*time.Second))
	defer sub.Disconnect(100)
	tok := sub.Subscribe("batlife/test", 1, func(_ paho.Client, m paho.Message) {
		received <- m.Payload()
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	pub, err := NewPublisher(Config{Broker: broker, Topic: "batlife/test", QoS: 1})
	require.NoError(t, err)
	defer pub.Disconnect()

	rec := runstore.RunRecord{ID: "run-1", Strategy: "greedy", SOH: []float64{1, 0.999}}
	require.NoError(t, pub.PublishRun(context.Background(), rec))

	select {
	case payload := <-received:
		var got runstore.RunRecord
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, "run-1", got.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

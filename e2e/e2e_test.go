package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/relplan/app"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/publish"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
	"github.com/kilianp07/relplan/infra/metrics"
	"github.com/kilianp07/relplan/infra/mqtt"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// startInflux starts an initialized InfluxDB 2.7 container and returns its
// base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// startMosquitto spins up a broker accepting anonymous clients.
func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func problem(t *testing.T) search.Problem {
	t.Helper()
	tasks := make([]model.Task, 20)
	for i := range tasks {
		tasks[i] = model.Task{ID: i, Name: fmt.Sprintf("E2E-%d", i+1), Cost: float64(45 * (1 + i%6)), Priority: 1 + i%8}
	}
	tasks[7].Dependencies = []int{3}
	g, err := model.NewGraph(tasks)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	return search.Problem{
		Graph:    g,
		Releases: model.Calendar{{WorkingDays: 2}, {WorkingDays: 2}},
		Workers:  []model.WorkerSpec{{Name: "ann", Efficiency: 1}, {Name: "bob", Efficiency: 1.3}},
	}
}

// Test_E2E_PlanPipeline runs one genetic search through the service and
// checks that the run summary reached InfluxDB and that one retained plan
// per worker is available on the broker.
func Test_E2E_PlanPipeline(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(ctx) //nolint:errcheck
	mqttCont, brokerURL := startMosquitto(ctx, t)
	defer mqttCont.Terminate(ctx) //nolint:errcheck

	sink := metrics.NewInfluxSinkWithFallback(metrics.InfluxConfig{URL: influxURL, Token: influxToken, Org: influxOrg, Bucket: influxBucket})
	if _, ok := sink.(*metrics.InfluxSink); !ok {
		t.Fatalf("influx health check failed")
	}
	pub, err := mqtt.NewPublisher(mqtt.Config{Broker: brokerURL, ClientID: "e2e-publisher", TopicPrefix: "e2e/plans", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}

	svc := app.NewService(app.Deps{Store: runlog.NewMemoryStore(), Sink: sink, Publisher: pub})
	alg, err := search.New(search.Config{Algorithm: search.AlgGenetic, Seed: 5, PopulationSize: 20, Generations: 10})
	if err != nil {
		t.Fatalf("algorithm: %v", err)
	}
	out, err := svc.Plan(ctx, problem(t), alg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	n, err := cli.CountRecords(ctx, "planning_run", out.Result.RunID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if n == 0 {
		t.Fatalf("no planning_run point for %s", out.Result.RunID)
	}

	got := make(chan publish.WorkerPlan, 4)
	opts := paho.NewClientOptions().AddBroker(brokerURL).SetClientID("e2e-reader")
	reader := paho.NewClient(opts)
	if tok := reader.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("reader connect: %v", tok.Error())
	}
	defer reader.Disconnect(100)
	tok := reader.Subscribe("e2e/plans/+", 1, func(_ paho.Client, m paho.Message) {
		var p publish.WorkerPlan
		if json.Unmarshal(m.Payload(), &p) == nil {
			got <- p
		}
	})
	if tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}
	seen := map[string]bool{}
	for len(seen) < 2 {
		select {
		case p := <-got:
			if p.RunID != out.Result.RunID {
				t.Fatalf("plan from unexpected run %s", p.RunID)
			}
			seen[p.Worker] = true
		case <-time.After(10 * time.Second):
			t.Fatalf("retained plans not received, got %v", seen)
		}
	}
}

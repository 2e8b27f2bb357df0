package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/xtding233/refine-backend/internal/api/dto"
	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/refine"
	"github.com/xtding233/refine-backend/internal/service"
	"github.com/xtding233/refine-backend/internal/table"
)

type fixedTables struct{ t *table.Table }

func (f fixedTables) Current() *table.Table { return f.t }

func ptr[T any](v T) *T { return &v }

func newClient(t *testing.T) *Client {
	c, _ := newClientAndSim(t)
	return c
}

func newClientAndSim(t *testing.T) (*Client, *service.Simulator) {
	t.Helper()
	entry := func(c float64, p int, price int64) *table.RawEntry {
		return &table.RawEntry{Chance: ptr(c), Protection: ptr(p), Price: map[string]int64{"weapon": price, "armor": price}}
	}
	tbl, err := table.Build(table.RawConfig{
		Version:  "rpc-test",
		Fallback: entry(0.1, 10, 100000),
		Levels:   map[int]*table.RawEntry{9: entry(0.3, 6, 60000), 10: entry(0.25, 8, 100000)},
	})
	if err != nil {
		t.Fatal(err)
	}
	market, err := pricing.NewMarket(pricing.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	sim := service.NewSimulator(service.SimulatorDeps{Tables: fixedTables{tbl}, Market: market, DefaultRuns: 50})

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	Register(gs, NewServer(sim, nil))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn), sim
}

func TestSimulateOverGRPC(t *testing.T) {
	c := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := c.Simulate(ctx, dto.SimulateRequest{
		InitialLevel: 8, TargetLevel: 10, Equipment: "armor", Runs: ptr(100), Seed: ptr(dto.Seed(3)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TableVersion != "rpc-test" || resp.Completed != 100 || resp.ID == "" {
		t.Fatalf("unexpected response header: %+v", resp)
	}
	if resp.Min.FinalLevel != 10 || resp.Max.FinalLevel != 10 {
		t.Fatalf("protected runs must reach the target: min %d max %d", resp.Min.FinalLevel, resp.Max.FinalLevel)
	}
	if resp.Min.Costs.Total > resp.Average.Total || resp.Average.Total > resp.Max.Costs.Total {
		t.Fatalf("average %d outside [%d,%d]", resp.Average.Total, resp.Min.Costs.Total, resp.Max.Costs.Total)
	}

	again, err := c.Simulate(ctx, dto.SimulateRequest{
		InitialLevel: 8, TargetLevel: 10, Equipment: "armor", Runs: ptr(100), Seed: ptr(dto.Seed(3)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if again.Average != resp.Average {
		t.Fatalf("seeded batches differ: %+v vs %+v", again.Average, resp.Average)
	}
}

func TestRunOnceOverGRPC(t *testing.T) {
	c := newClient(t)
	resp, err := c.RunOnce(context.Background(), dto.SimulateRequest{
		InitialLevel: 9, TargetLevel: 10, Equipment: "weapon", Seed: ptr(dto.Seed(1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Run.Attempts) != resp.Run.Tries || resp.Run.FinalLevel != 10 {
		t.Fatalf("unexpected run: %+v", resp.Run)
	}
}

func TestInvalidArgument(t *testing.T) {
	c := newClient(t)
	for _, req := range []dto.SimulateRequest{
		{InitialLevel: 5, TargetLevel: 5, Equipment: "armor"},
		{InitialLevel: 1, TargetLevel: 2, Equipment: "boots"},
		{InitialLevel: 1, TargetLevel: 2, Equipment: "armor", Runs: ptr(0)},
	} {
		_, err := c.Simulate(context.Background(), req)
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("%+v: got %v, want InvalidArgument", req, err)
		}
	}
}

func TestLargeSeedSurvivesTransport(t *testing.T) {
	c, sim := newClientAndSim(t)
	const seed = uint64(1<<60 + 1) // not representable as float64

	got, err := c.Simulate(context.Background(), dto.SimulateRequest{
		InitialLevel: 8, TargetLevel: 10, Equipment: "armor", Runs: ptr(30), Seed: ptr(dto.Seed(seed)),
	})
	if err != nil {
		t.Fatal(err)
	}
	want, err := sim.Simulate(context.Background(), service.Input{
		Params: refine.Params{InitialLevel: 8, TargetLevel: 10, Category: refine.Armor, DefaultProtection: true},
		Runs:   30,
		Seed:   ptr(seed),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Average.Total != want.Result.Average.Total || got.Min.Costs.Total != want.Result.Min.Costs.Total {
		t.Fatalf("seed changed in transit: got avg %d min %d, want avg %d min %d",
			got.Average.Total, got.Min.Costs.Total, want.Result.Average.Total, want.Result.Min.Costs.Total)
	}
}

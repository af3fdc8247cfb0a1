// Feature Hub E2E Load Benchmark
//
// This benchmark is designed to answer the questions we actually care about in production:
// - What is the p50/p95/p99 server-render latency under concurrent load?
// - How fast does a live session reach its first synced state?
// - How much allocation + GC work does that load generate?
//
// It runs the real feature hub App and drives N concurrent clients. Each client
// iteration requests a server-rendered page, then opens a live WebSocket session
// and waits for the initial replace message that syncs the feature app subtree.
//
// This is intentionally "browserless" (no DOM). It measures:
// GET → provider lookup → loader mount → render → unmount → response, and
// WS dial → upgrade → session mount → initial replace → client decode
//
// Run:
//   cd benchmark/e2e_load
//   go run . -clients=200 -duration=30s -rps=5 -apps=8 -items=50
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	featurehub "github.com/JorgeRod2594/feature-hub"
	. "github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

func main() {
	var (
		clients  = flag.Int("clients", 100, "number of concurrent clients")
		duration = flag.Duration("duration", 15*time.Second, "how long to run the load test")
		rps      = flag.Float64("rps", 2, "target page views/sec per client (best-effort, response-gated)")
		apps     = flag.Int("apps", 4, "number of distinct feature app modules (affects manager cache spread)")
		items    = flag.Int("items", 50, "list items rendered per feature app (affects render cost)")
	)
	flag.Parse()

	if *clients <= 0 {
		log.Fatal("-clients must be > 0")
	}
	if *duration <= 0 {
		log.Fatal("-duration must be > 0")
	}
	if *rps <= 0 {
		log.Fatal("-rps must be > 0")
	}
	if *apps <= 0 {
		log.Fatal("-apps must be > 0")
	}
	if *items < 0 {
		log.Fatal("-items must be >= 0")
	}

	// Reduce incidental variability a bit.
	debug.SetGCPercent(100)

	pages := make([]featurehub.Page, *apps)
	paths := make([]string, *apps)
	for i := range pages {
		pages[i] = featurehub.Page{
			Path:  fmt.Sprintf("/app-%d", i),
			Title: fmt.Sprintf("Bench App %d", i),
			Src:   fmt.Sprintf("bench/app-%d.json", i),
		}
		paths[i] = pages[i].Path
	}

	app := featurehub.New(featurehub.Config{
		Loader: benchLoader(*items),
		Pages:  pages,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		// Keep the host quiet; only the report goes to stdout.
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	defer app.Close()

	// Settle every definition up front so the run measures steady state,
	// not first-load warmup.
	app.PreloadPages()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	httpServer := &http.Server{Handler: app}
	go func() {
		_ = httpServer.Serve(ln)
	}()
	defer func() {
		_ = httpServer.Shutdown(context.Background())
	}()

	baseURL := "http://" + ln.Addr().String()
	wsURL := "ws://" + ln.Addr().String() + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	ssr := newSampleSet()
	live := newSampleSet()

	var (
		totalViews  atomic.Uint64
		totalErrors atomic.Uint64
	)

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()

	var wg sync.WaitGroup
	wg.Add(*clients)
	for i := 0; i < *clients; i++ {
		clientID := i
		go func() {
			defer wg.Done()
			err := runClient(ctx, baseURL, wsURL, clientID, *rps, paths, ssr, live, &totalViews)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				totalErrors.Add(1)
			}
		}()
	}

	wg.Wait()
	ssr.close()
	live.close()

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	total := totalViews.Load()
	errs := totalErrors.Load()
	runSeconds := math.Max(0.001, (*duration).Seconds())

	fmt.Println("=== Feature Hub E2E Load Benchmark ===")
	fmt.Printf("Clients: %d\n", *clients)
	fmt.Printf("Duration: %s\n", (*duration).String())
	fmt.Printf("Target per-client rate: %.2f views/s\n", *rps)
	fmt.Printf("Feature apps: %d\n", *apps)
	fmt.Printf("Items per app: %d\n", *items)
	fmt.Printf("Total page views: %d\n", total)
	fmt.Printf("Errors: %d\n", errs)
	fmt.Printf("Throughput: %.1f views/s\n", float64(total)/runSeconds)
	fmt.Println()

	printLatencies("SSR (request sent → full document received)", ssr.sorted())
	printLatencies("Live sync (WS dial → first replace decoded)", live.sorted())

	fmt.Println("Go runtime / GC (process-wide):")
	fmt.Printf("  alloc:     %.2f MB\n", float64(after.TotalAlloc-before.TotalAlloc)/(1024*1024))
	fmt.Printf("  heap_live: %.2f MB\n", float64(after.HeapAlloc)/(1024*1024))
	fmt.Printf("  num_gc:    %d\n", after.NumGC-before.NumGC)
	fmt.Printf("  gc_pause:  %s (total)\n", time.Duration(after.PauseTotalNs-before.PauseTotalNs))
	fmt.Printf("  gc_pause:  %s (avg)\n", avgPause(after, before))
	fmt.Printf("  gc_cpu:    %.2f%%\n", 100*cpuFraction(afterMetrics, beforeMetrics))
	fmt.Printf("  allocs:    %.2f M objects\n", float64(afterMetrics.heapAllocsObjects-beforeMetrics.heapAllocsObjects)/1_000_000)
}

func printLatencies(label string, latencies []time.Duration) {
	if len(latencies) == 0 {
		fmt.Printf("%s: no samples recorded.\n", label)
		fmt.Println()
		return
	}
	fmt.Printf("%s:\n", label)
	fmt.Printf("  min: %s\n", latencies[0])
	fmt.Printf("  p50: %s\n", percentile(latencies, 0.50))
	fmt.Printf("  p95: %s\n", percentile(latencies, 0.95))
	fmt.Printf("  p99: %s\n", percentile(latencies, 0.99))
	fmt.Printf("  max: %s\n", latencies[len(latencies)-1])
	fmt.Println()
}

// sampleSet collects latency samples off the hot path.
type sampleSet struct {
	ch      chan time.Duration
	done    chan struct{}
	mu      sync.Mutex
	samples []time.Duration
}

func newSampleSet() *sampleSet {
	set := &sampleSet{
		ch:   make(chan time.Duration, 1024),
		done: make(chan struct{}),
	}
	go func() {
		defer close(set.done)
		for d := range set.ch {
			set.mu.Lock()
			set.samples = append(set.samples, d)
			set.mu.Unlock()
		}
	}()
	return set
}

func (set *sampleSet) add(d time.Duration) {
	set.ch <- d
}

func (set *sampleSet) close() {
	close(set.ch)
	<-set.done
}

func (set *sampleSet) sorted() []time.Duration {
	set.mu.Lock()
	out := append([]time.Duration(nil), set.samples...)
	set.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds float64
	cpuGCSeconds    float64

	heapAllocsBytes   uint64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:bytes"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:bytes":
			out.heapAllocsBytes = s.Value.Uint64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

func runClient(
	ctx context.Context,
	baseURL string,
	wsURL string,
	clientID int,
	rps float64,
	paths []string,
	ssr *sampleSet,
	live *sampleSet,
	totalViews *atomic.Uint64,
) error {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	period := time.Duration(float64(time.Second) / rps)
	var seq int

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		pagePath := paths[(clientID+seq)%len(paths)]
		seq++

		start := time.Now()

		if err := fetchPage(ctx, httpClient, baseURL+pagePath); err != nil {
			return fmt.Errorf("page %s: %w", pagePath, err)
		}
		ssr.add(time.Since(start))

		wsStart := time.Now()
		if err := syncLiveSession(ctx, wsURL, pagePath); err != nil {
			return fmt.Errorf("live %s: %w", pagePath, err)
		}
		live.add(time.Since(wsStart))

		totalViews.Add(1)

		// Best-effort pacing. We intentionally gate on response to measure real queueing/tail behavior.
		elapsed := time.Since(start)
		if sleep := period - elapsed; sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

// fetchPage requests one server-rendered page and verifies the response
// carries a feature app container.
func fetchPage(ctx context.Context, client *http.Client, pageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "data-feature-src") {
		return fmt.Errorf("document has no feature app container")
	}
	return nil
}

// syncLiveSession opens a live session for the page and waits for the
// initial replace that syncs the feature app subtree, then closes
// cleanly.
func syncLiveSession(ctx context.Context, wsURL, pagePath string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"?page="+url.QueryEscape(pagePath), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}

	// The session pushes an initial replace right after mount; one read
	// is normally enough.
	for {
		var msg struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			HTML string `json:"html"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		if msg.Type != "replace" {
			continue
		}
		if msg.ID == "" || !strings.Contains(msg.HTML, "bench-app") {
			return fmt.Errorf("replace does not carry the feature app markup")
		}
		break
	}

	// Part on good terms so the server sees a clean close.
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}

// benchLoader resolves every source to a synthetic definition whose
// instances render an item list sized by -items. Loads are instant;
// the benchmark measures serving, not fetching.
func benchLoader(items int) featurehub.ModuleLoaderFunc {
	return func(ctx context.Context, src string) (*featurehub.Definition, error) {
		name := strings.TrimSuffix(strings.TrimPrefix(src, "bench/"), ".json")
		return &featurehub.Definition{
			Name:    name,
			Version: "bench",
			Create: func(env featurehub.Env) (featurehub.FeatureApp, error) {
				return newBenchApp(name, items), nil
			},
		}, nil
	}
}

// benchApp renders a small but non-trivial subtree: a heading plus an
// item list, so per-render cost scales with -items.
type benchApp struct {
	name  string
	items []string
}

func newBenchApp(name string, itemCount int) *benchApp {
	items := make([]string, itemCount)
	for i := range items {
		items[i] = fmt.Sprintf("Item %d", i)
	}
	return &benchApp{name: name, items: items}
}

func (a *benchApp) Render() *VNode {
	nodes := make([]*VNode, 0, len(a.items))
	for _, it := range a.items {
		nodes = append(nodes, Li(it))
	}
	return Div(Props{"class": "bench-app"},
		H2(a.name),
		Ul(nodes),
	)
}

// README: Benchmark test cases for the quote API; includes HTTP, DB, Redis, and performance checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// set by the quote create case, read by the get/verify cases
	quoteID    string
	quoteTotal float64
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

type quoteResp struct {
	ID        string `json:"id"`
	Breakdown struct {
		Total          float64 `json:"total"`
		Tier           string  `json:"tier"`
		FallbackReason string  `json:"fallbackReason"`
	} `json:"breakdown"`
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

// quotePayload prices a Louvre -> Opera sedan ride tomorrow morning.
func quotePayload() map[string]any {
	return map[string]any{
		"vehicleId": "sedan",
		"pickup":    map[string]any{"address": "Musée du Louvre, Paris", "lat": 48.8606, "lng": 2.3376},
		"dropoff":   map[string]any{"address": "Opéra Garnier, Paris", "lat": 48.8720, "lng": 2.3316},
		"date":      time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		"time":      "10:00",
		"luggage":   1,
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	quotes := base + "/api/widgets/" + r.cfg.WidgetID + "/quotes"
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "DB reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "Redis reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "Apply schema and demo widget seed",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				for _, path := range []string{r.cfg.MigrationPath, r.cfg.SeedPath} {
					sql, err := os.ReadFile(path)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					for _, s := range splitSQL(string(sql)) {
						if _, err := r.db.Exec(ctx, s); err != nil {
							return Result{Status: "FAIL", Note: path + ": " + err.Error()}
						}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "Tables from migrations/0001_init.sql exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),

		// Quotes
		{
			Name:  "Quote: create (valid)",
			Focus: "Quote persisted with a positive total",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.do(ctx, http.MethodPost, quotes, quotePayload())
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				var q quoteResp
				if err := json.Unmarshal(body, &q); err != nil {
					return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
				}
				if q.ID == "" || q.Breakdown.Total <= 0 {
					return Result{Status: "FAIL", Latency: latency, Note: string(body)}
				}
				r.quoteID, r.quoteTotal = q.ID, q.Breakdown.Total
				note := fmt.Sprintf("total=%.2f tier=%s", q.Breakdown.Total, q.Breakdown.Tier)
				if q.Breakdown.FallbackReason != "" {
					note += " fallback=" + q.Breakdown.FallbackReason
				}
				return Result{Status: "PASS", Latency: latency, Note: note}
			},
		},

		httpCase("Quote: missing fields -> 400", quotes, map[string]any{}, []int{400}, nil),

		httpCase("Quote: unknown widget -> 404", base+"/api/widgets/no-such-widget/quotes", quotePayload(), []int{404}, nil),

		httpCase("Quote: unknown vehicle -> base fee", quotes, func() map[string]any {
			p := quotePayload()
			p["vehicleId"] = "hovercraft"
			return p
		}(), []int{201}, nil),

		httpCase("Quote: promo code", quotes, func() map[string]any {
			p := quotePayload()
			p["promoCode"] = "welcome10"
			return p
		}(), []int{201}, nil),

		{
			Name:  "Quote: get by id",
			Focus: "Stored quote readable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.quoteID == "" {
					return Result{Status: "SKIP", Note: "no quote created"}
				}
				status, body, latency, err := r.do(ctx, http.MethodGet, base+"/api/quotes/"+r.quoteID, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				var q quoteResp
				if status != http.StatusOK || json.Unmarshal(body, &q) != nil || q.ID != r.quoteID {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name:  "Quote: verify matching total",
			Focus: "Server-side price check accepts the quoted total",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.verify(ctx, r.quoteTotal, true)
			},
		},
		{
			Name:  "Quote: verify tampered total",
			Focus: "Server-side price check rejects a lowered total",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.verify(ctx, r.quoteTotal-1, false)
			},
		},
		httpCaseMethod("Quote: get unknown -> 404", http.MethodGet, base+"/api/quotes/does-not-exist", nil, []int{404}, nil),

		// Zones
		httpCaseMethod("Zones: lookup Louvre", http.MethodGet, base+"/api/widgets/"+r.cfg.WidgetID+"/zones?lat=48.8606&lng=2.3376", nil, []int{200}, nil),
		httpCaseMethod("Zones: missing coords -> 400", http.MethodGet, base+"/api/widgets/"+r.cfg.WidgetID+"/zones", nil, []int{400}, nil),

		httpCaseMethod("Metrics: exposed", http.MethodGet, base+"/metrics", nil, []int{200}, []int{404}),

		{
			Name:  "Concurrency: identical quotes agree",
			Focus: "Parallel quotes for the same trip price identically",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentQuotes(ctx, r, quotes)
			},
		},

		manualCase("Error: maps provider down -> base fee", "unset the maps API key and check tier=fallback"),
		manualCase("Error: Redis down -> quote not stored", "stop Redis and check create returns 500"),

		// Performance
		{
			Name:  "Perf: quote throughput",
			Focus: "Sustained quote creation",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, quotes, quotePayload())
			},
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, time.Since(start), err
}

func (r *Runner) verify(ctx context.Context, total float64, wantValid bool) Result {
	if r.quoteID == "" {
		return Result{Status: "SKIP", Note: "no quote created"}
	}
	status, body, latency, err := r.do(ctx, http.MethodPost, r.cfg.BaseURL+"/api/quotes/"+r.quoteID+"/verify", map[string]any{"total": total})
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	var v struct {
		Valid bool `json:"valid"`
	}
	if status != http.StatusOK || json.Unmarshal(body, &v) != nil {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	if v.Valid != wantValid {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("valid=%v", v.Valid)}
	}
	return Result{Status: "PASS", Latency: latency}
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			status, _, latency, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			if contains(pendingStatuses, status) {
				return Result{Status: "PENDING", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

func concurrentQuotes(ctx context.Context, r *Runner, url string) Result {
	payload := quotePayload()
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	totals := make(map[float64]int)
	failed := 0

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, _, err := r.do(ctx, http.MethodPost, url, payload)
			var q quoteResp
			mu.Lock()
			defer mu.Unlock()
			if err != nil || status != http.StatusCreated || json.Unmarshal(body, &q) != nil {
				failed++
				return
			}
			totals[math.Round(q.Breakdown.Total*100)/100]++
		}()
	}
	wg.Wait()

	if failed > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("failed=%d", failed)}
	}
	if len(totals) != 1 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("distinct totals=%v", totals)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("requests=%d", r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// verify replays nothing: it loads the published prediction table and
// scores every stored forecast against the value actually observed one
// horizon later.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	"github.com/supneo2025-ops/vwap-prediction/internal/repository"
	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
	"github.com/supneo2025-ops/vwap-prediction/pkg/kvstore"
)

type horizonStats struct {
	matched   int
	unmatched int
	absBU     float64
	absSD     float64
	absNet    float64
	worstNet  float64
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	tolerance := flag.Duration("tolerance", time.Minute, "max distance between forecast target and observed row")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	store, err := kvstore.NewRedisStore(
		kvstore.WithAddr(cfg.Sink.Redis.Addr),
		kvstore.WithAuth(cfg.Sink.Redis.Password, cfg.Sink.Redis.DB),
		kvstore.WithPrefix(cfg.Sink.Redis.Prefix),
	)
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}
	defer store.Close()

	sink := repository.NewStoreSink(store, repository.SinkKeys{
		Predictions: cfg.Sink.Keys.Predictions,
		Latest:      cfg.Sink.Keys.Latest,
		Rates:       cfg.Sink.Keys.Rates,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := sink.LoadRows(ctx)
	if err != nil {
		log.Fatalf("load rows failed: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("no published rows found, run a replay first")
		os.Exit(1)
	}

	stats := score(rows, *tolerance)
	report(len(rows), stats)
}

// score matches each forecast to the first row observed at or after its
// target time on the recess-free timeline.
func score(rows []models.PublishedRow, tolerance time.Duration) map[int]*horizonStats {
	sort.Slice(rows, func(i, j int) bool { return rows[i].EffectiveTime < rows[j].EffectiveTime })

	times := make([]int64, len(rows))
	for i, r := range rows {
		times[i] = r.EffectiveTime
	}

	stats := make(map[int]*horizonStats)
	for _, row := range rows {
		for _, f := range row.Forecasts {
			st := stats[f.HorizonMin]
			if st == nil {
				st = &horizonStats{}
				stats[f.HorizonMin] = st
			}

			target := row.EffectiveTime + int64(f.HorizonMin)*60_000
			idx := sort.Search(len(times), func(i int) bool { return times[i] >= target })
			if idx == len(times) || times[idx]-target > tolerance.Milliseconds() {
				st.unmatched++
				continue
			}

			actual := rows[idx]
			st.matched++
			st.absBU += math.Abs(f.BU - actual.BU)
			st.absSD += math.Abs(f.SD - actual.SD)
			netErr := math.Abs(f.Net - actual.Net)
			st.absNet += netErr
			if netErr > st.worstNet {
				st.worstNet = netErr
			}
		}
	}
	return stats
}

func report(rowCount int, stats map[int]*horizonStats) {
	horizons := make([]int, 0, len(stats))
	for h := range stats {
		horizons = append(horizons, h)
	}
	sort.Ints(horizons)

	fmt.Printf("rows: %d\n", rowCount)
	for _, h := range horizons {
		st := stats[h]
		fmt.Printf("horizon %dm: matched=%d unmatched=%d", h, st.matched, st.unmatched)
		if st.matched > 0 {
			n := float64(st.matched)
			fmt.Printf(" mae_bu=%.4f mae_sd=%.4f mae_net=%.4f worst_net=%.4f",
				st.absBU/n, st.absSD/n, st.absNet/n, st.worstNet)
		}
		fmt.Println()
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.LoadWithEnv(path)
}

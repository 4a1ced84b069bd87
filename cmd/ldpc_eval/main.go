// Command ldpc_eval runs a Monte-Carlo AWGN/BPSK benchmark over the
// ldpc core across a set of (n, k) configurations and Es/N0 points,
// reporting block- and bit-error rates for sum-product and min-sum
// decoding, and optionally a RaptorQ erasure-channel comparison point.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	mrand "math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/oblrl/ldpcbench/fec"
	"github.com/oblrl/ldpcbench/ldpc"
)

type scheme string

const (
	schemeSumProduct scheme = "sum-product"
	schemeMinSum     scheme = "min-sum"
)

type config struct {
	N, K int
}

func parseConfigs(s string) ([]config, error) {
	parts := strings.Split(s, ";")
	out := make([]config, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var n, k int
		if _, err := fmt.Sscanf(p, "%d,%d", &n, &k); err != nil {
			return nil, fmt.Errorf("bad config %q: %w", p, err)
		}
		out = append(out, config{N: n, K: k})
	}
	return out, nil
}

func parseEsNos(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad esno %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

type agg struct {
	Blocks      int64
	BlockErrors int64
	BitErrors   int64
	EncodeNanos int64
	DecodeNanos int64
}

type jsonRecord struct {
	Scheme   string  `json:"scheme"`
	N        int     `json:"n"`
	K        int     `json:"k"`
	EsNo     float64 `json:"esno"`
	Blocks   int64   `json:"blocks"`
	BlockErr int64   `json:"block_errors"`
	BitErr   int64   `json:"bit_errors"`
	BlockFER float64 `json:"block_error_rate"`
	BitBER   float64 `json:"bit_error_rate"`
	EncMS    int64   `json:"enc_ms_total"`
	DecMS    int64   `json:"dec_ms_total"`
}

func (r *jsonRecord) MarshalJSONObject(enc *gojay.Encoder) {
	enc.AddStringKey("scheme", r.Scheme)
	enc.AddIntKey("n", r.N)
	enc.AddIntKey("k", r.K)
	enc.AddFloatKey("esno", r.EsNo)
	enc.AddInt64Key("blocks", r.Blocks)
	enc.AddInt64Key("block_errors", r.BlockErr)
	enc.AddInt64Key("bit_errors", r.BitErr)
	enc.AddFloatKey("block_error_rate", r.BlockFER)
	enc.AddFloatKey("bit_error_rate", r.BitBER)
	enc.AddInt64Key("enc_ms_total", r.EncMS)
	enc.AddInt64Key("dec_ms_total", r.DecMS)
}

func (r *jsonRecord) IsNil() bool { return r == nil }

type jsonRecords []*jsonRecord

func (rs jsonRecords) MarshalJSONArray(enc *gojay.Encoder) {
	for _, r := range rs {
		enc.AddObject(r)
	}
}

func (rs jsonRecords) IsNil() bool { return rs == nil }

var (
	metricBlocksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ldpc_eval_blocks_total",
		Help: "Total blocks decoded, by scheme and configuration.",
	}, []string{"scheme", "config"})
	metricDecodeSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ldpc_eval_decode_seconds",
		Help:    "Per-block decode latency, by scheme.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scheme"})
)

func init() {
	prometheus.MustRegister(metricBlocksTotal, metricDecodeSeconds)
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

// channel synthesizes one BPSK/AWGN LLR vector for codeword cw at the
// given Es/N0 (linear, not dB), matching the reference decoder's
// sufficient statistic: llr = (1-2*bit) * N(4*EsN0, sqrt(8*EsN0)).
func channel(cw []byte, esNo float64, rng *mrand.Rand) []float64 {
	mean := 4 * esNo
	stddev := math.Sqrt(8 * esNo)
	out := make([]float64, len(cw))
	for i, b := range cw {
		sign := 1.0
		if b != 0 {
			sign = -1.0
		}
		out[i] = sign * (mean + stddev*rng.NormFloat64())
	}
	return out
}

func runOne(c *ldpc.Code, cfg ldpc.DecoderConfig, esNo float64, nIter int, rng *mrand.Rand) (blockErr bool, bitErrs int, encDur, decDur time.Duration) {
	info := make([]byte, c.K())
	for i := range info {
		info[i] = byte(rng.Intn(2))
	}

	encStart := time.Now()
	cw, err := c.Encode(info)
	encDur = time.Since(encStart)
	if err != nil {
		fatalf("encode: %v", err)
	}

	llrIn := channel(cw, esNo, rng)

	decStart := time.Now()
	llrOut, satisfied, err := c.Decode(llrIn, nIter, cfg)
	decDur = time.Since(decStart)
	if err != nil {
		fatalf("decode: %v", err)
	}

	decoded := ldpc.HardDecision(llrOut)
	for i, b := range decoded[:c.K()] {
		if b != info[i] {
			bitErrs++
		}
	}
	blockErr = !satisfied || bitErrs > 0
	return blockErr, bitErrs, encDur, decDur
}

func main() {
	var (
		cfgStr    = flag.String("configs", "80,40;120,60;100,80", "semicolon-separated list of N,K pairs")
		esnoStr   = flag.String("esno", "0.5,0.72,1.0", "comma-separated list of Es/N0 (linear) points")
		blocks    = flag.Int("blocks", 200, "blocks per (scheme,config,esno)")
		nIter     = flag.Int("iters", 20, "decoder iterations")
		which     = flag.String("scheme", "all", "which scheme to run: sum-product|min-sum|all")
		workers   = flag.Int("workers", 4, "concurrent trial workers per configuration")
		seed      = flag.Int64("seed", 42, "random seed")
		jsonPath  = flag.String("json", "", "optional path to write a JSON report")
		compareRQ = flag.Bool("compare-rq", false, "also report a RaptorQ erasure-channel comparison point")
		rqRepair  = flag.Int("rq-repair", 8, "number of RaptorQ repair symbols for the comparison point")
	)
	flag.Parse()

	cfgs, err := parseConfigs(*cfgStr)
	if err != nil {
		fatalf("%v", err)
	}
	esnos, err := parseEsNos(*esnoStr)
	if err != nil {
		fatalf("%v", err)
	}

	runSumProduct := *which == "all" || *which == string(schemeSumProduct)
	runMinSum := *which == "all" || *which == string(schemeMinSum)

	var schemes []scheme
	if runSumProduct {
		schemes = append(schemes, schemeSumProduct)
	}
	if runMinSum {
		schemes = append(schemes, schemeMinSum)
	}

	var records jsonRecords

	for _, cfg := range cfgs {
		r := cfg.N - cfg.K
		rowDeg := make([]int, r)
		for i := range rowDeg {
			rowDeg[i] = 6
		}
		colDeg := make([]int, cfg.N)
		for i := range colDeg {
			colDeg[i] = 3
		}

		code := ldpc.NewCode(0, 0)
		seedRng := mrand.New(mrand.NewSource(*seed))
		if err := code.Random(r, cfg.N, rowDeg, colDeg, seedRng); err != nil {
			fatalf("build code N=%d K=%d: %v", cfg.N, cfg.K, err)
		}
		if err := code.CreateEncoder(); err != nil {
			fatalf("create encoder N=%d K=%d: %v", cfg.N, cfg.K, err)
		}

		for _, esNo := range esnos {
			for _, sch := range schemes {
				dcfg := ldpc.DefaultDecoderConfig()
				dcfg.MinSum = sch == schemeMinSum

				a := &agg{}
				var g errgroup.Group
				g.SetLimit(*workers)
				for block := int64(0); block < int64(*blocks); block++ {
					block := block
					g.Go(func() error {
						rng := mrand.New(mrand.NewSource(*seed + block + 1))
						blockErr, bitErrs, encDur, decDur := runOne(code, dcfg, esNo, *nIter, rng)
						atomic.AddInt64(&a.Blocks, 1)
						if blockErr {
							atomic.AddInt64(&a.BlockErrors, 1)
						}
						atomic.AddInt64(&a.BitErrors, int64(bitErrs))
						atomic.AddInt64(&a.EncodeNanos, encDur.Nanoseconds())
						atomic.AddInt64(&a.DecodeNanos, decDur.Nanoseconds())
						metricBlocksTotal.WithLabelValues(string(sch), fmt.Sprintf("%d,%d", cfg.N, cfg.K)).Inc()
						metricDecodeSeconds.WithLabelValues(string(sch)).Observe(decDur.Seconds())
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					fatalf("trial group: %v", err)
				}

				fer := float64(a.BlockErrors) / float64(a.Blocks)
				ber := float64(a.BitErrors) / float64(a.Blocks*int64(cfg.K))
				fmt.Printf("scheme=%s N=%d K=%d esno=%.3f blocks=%d FER=%.4f BER=%.6f\n",
					sch, cfg.N, cfg.K, esNo, a.Blocks, fer, ber)

				records = append(records, &jsonRecord{
					Scheme:   string(sch),
					N:        cfg.N,
					K:        cfg.K,
					EsNo:     esNo,
					Blocks:   a.Blocks,
					BlockErr: a.BlockErrors,
					BitErr:   a.BitErrors,
					BlockFER: fer,
					BitBER:   ber,
					EncMS:    a.EncodeNanos / int64(time.Millisecond),
					DecMS:    a.DecodeNanos / int64(time.Millisecond),
				})
			}
		}
	}

	if *compareRQ {
		runRaptorQComparison(cfgs[0], *rqRepair)
	}

	if *jsonPath != "" {
		if err := ensureDir(*jsonPath); err != nil {
			fatalf("ensure json dir: %v", err)
		}
		buf, err := gojay.MarshalJSONArray(records)
		if err != nil {
			fatalf("marshal json: %v", err)
		}
		if err := os.WriteFile(*jsonPath, buf, 0o644); err != nil {
			fatalf("write json: %v", err)
		}
	}
}

// runRaptorQComparison is a scale reference, not an LDPC result: it
// shows the block-error behavior of a fountain code at a comparable N
// so a reader can see how the two schemes' failure curves differ.
func runRaptorQComparison(cfg config, repair int) {
	const packetSize = 64
	data := make([]byte, cfg.K*packetSize)
	rng := mrand.New(mrand.NewSource(7))
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}

	n := cfg.K + repair
	packets, err := fec.RaptorQEncodeBlock(data, n, cfg.K, packetSize)
	if err != nil {
		fatalf("raptorq encode: %v", err)
	}

	// Drop exactly `repair` symbols to exercise the erasure-recovery
	// boundary rather than the trivially-successful all-packets case.
	recv := packets[repair:]
	decoded, ok := fec.RaptorQDecodeBytes(recv, n, cfg.K, packetSize, len(data))
	fmt.Printf("raptorq-compare K=%d N=%d repair=%d recovered=%v\n", cfg.K, n, repair, ok && len(decoded) == len(data))
}

package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/synth"
)

type topCandidate struct {
	Eval       int                `json:"eval"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

type fitConfig struct {
	reference  []float64
	sampleRate int
	note       int
	velocity   int
	gate       float64
	duration   float64

	seed       int64
	maxEvals   int
	timeBudget float64
	pop        int
	workers    int
	topK       int
}

type fitState struct {
	mu          sync.Mutex
	bestScore   float64
	bestMetrics analysis.Metrics
	bestPos     []float64
	top         []topCandidate
}

type fitResult struct {
	settings synth.Settings
	metrics  analysis.Metrics
	top      []topCandidate
	evals    int
	elapsed  float64
}

// renderCandidate renders the fit note with the candidate settings, matched
// in length to the reference.
func renderCandidate(s synth.Settings, cfg *fitConfig) []float64 {
	totalFrames := int(cfg.duration * float64(cfg.sampleRate))
	gateFrame := int(cfg.gate * float64(cfg.sampleRate))
	if gateFrame > totalFrames {
		gateFrame = totalFrames
	}

	eng := synth.NewEngine(cfg.sampleRate, s)
	eng.NoteOn(cfg.note, cfg.velocity)

	const blockSize = 256
	out := make([]float64, 0, totalFrames)
	block := make([]float32, blockSize)
	released := false
	for rendered := 0; rendered < totalFrames; {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		if !released && rendered >= gateFrame {
			eng.NoteOff(cfg.note)
			released = true
		}
		eng.Render(block[:n])
		for _, v := range block[:n] {
			out = append(out, float64(v))
		}
		rendered += n
	}
	return out
}

// optimize runs independent mayfly searches across workers, sharing one
// evaluation budget and one best-so-far state.
func optimize(cfg *fitConfig) (fitResult, error) {
	defs := knobDefs()
	state := &fitState{bestScore: math.Inf(1)}
	var evals int64

	deadline := time.Now().Add(time.Duration(cfg.timeBudget * float64(time.Second)))
	start := time.Now()

	// Score the default settings first so the result is never worse than
	// doing nothing.
	seedPos := positionFromSettings(synth.DefaultSettings(), defs)
	evaluate(seedPos, defs, cfg, state, int(atomic.AddInt64(&evals, 1)))

	itersPerWorker := maxInt(1, cfg.maxEvals/(cfg.workers*2*cfg.pop))

	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			mcfg := mayfly.NewDefaultConfig()
			mcfg.ProblemSize = len(defs)
			mcfg.LowerBound = 0.0
			mcfg.UpperBound = 1.0
			mcfg.MaxIterations = itersPerWorker
			mcfg.NPop = cfg.pop
			mcfg.NPopF = cfg.pop
			mcfg.NC = 2 * cfg.pop
			mcfg.NM = maxInt(1, int(math.Round(0.05*float64(cfg.pop))))
			mcfg.Rand = rand.New(rand.NewSource(cfg.seed + int64(worker)*7919))
			mcfg.ObjectiveFunc = func(pos []float64) float64 {
				if time.Now().After(deadline) {
					return currentBest(state) + 1.0
				}
				n := atomic.AddInt64(&evals, 1)
				if n > int64(cfg.maxEvals) {
					return currentBest(state) + 1.0
				}
				return evaluate(pos, defs, cfg, state, int(n))
			}
			if _, err := runMayfly(mcfg); err != nil {
				fmt.Printf("worker %d: %v\n", worker, err)
			}
		}(w)
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.bestPos == nil {
		return fitResult{}, fmt.Errorf("no candidate evaluated")
	}
	return fitResult{
		settings: settingsFromPosition(state.bestPos, defs),
		metrics:  state.bestMetrics,
		top:      append([]topCandidate(nil), state.top...),
		evals:    int(atomic.LoadInt64(&evals)),
		elapsed:  time.Since(start).Seconds(),
	}, nil
}

// evaluate scores one candidate position. evalNum is the caller's value of
// the shared evaluation counter and is carried into the report as-is.
func evaluate(pos []float64, defs []knobDef, cfg *fitConfig, state *fitState, evalNum int) float64 {
	s := settingsFromPosition(pos, defs)
	candidate := renderCandidate(s, cfg)
	m := analysis.Compare(cfg.reference, candidate, cfg.sampleRate)

	state.mu.Lock()
	if m.Score < state.bestScore {
		state.bestScore = m.Score
		state.bestMetrics = m
		state.bestPos = append([]float64(nil), pos...)
	}
	state.top = appendTop(state.top, cfg.topK, evalNum, m, defs, pos)
	state.mu.Unlock()
	return m.Score
}

func currentBest(state *fitState) float64 {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.bestScore
}

func appendTop(top []topCandidate, topK, eval int, m analysis.Metrics, defs []knobDef, pos []float64) []topCandidate {
	top = append(top, topCandidate{
		Eval:       eval,
		Score:      m.Score,
		Similarity: m.Similarity,
		Knobs:      knobMap(pos, defs),
	})
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if len(top) > topK {
		top = top[:topK]
	}
	return top
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

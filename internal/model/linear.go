package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/oddsmith/internal/models"
)

// minTrainingSamples is the floor below which training refuses to run
const minTrainingSamples = 50

// featureCount is the width of the normalized input row
const featureCount = 13

// TrainingSample is one labeled contest for supervised training
type TrainingSample struct {
	Features models.FeatureVector
	HomeWin  bool
}

// TrainResult summarizes a completed training run
type TrainResult struct {
	Samples      int     `json:"samples"`
	Epochs       int     `json:"epochs"`
	BestAccuracy float64 `json:"best_accuracy"`
}

// LinearModel is the trainable logistic scorer: a bias plus one weight per
// normalized feature, squashed through the sigmoid
type LinearModel struct {
	bias    float64
	weights []float64
	trained bool
	version string
	rng     *rand.Rand
}

// NewLinearModel creates a linear model with randomized small weights.
// seed 0 draws from the clock; trained coefficients are therefore not
// bit-reproducible across runs.
func NewLinearModel(seed int64) *LinearModel {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	weights := make([]float64, featureCount)
	for i := range weights {
		weights[i] = (rng.Float64() - 0.5) * 0.1
	}

	return &LinearModel{
		bias:    (rng.Float64() - 0.5) * 0.1,
		weights: weights,
		version: "linear-v1",
		rng:     rng,
	}
}

// Name returns the strategy name
func (m *LinearModel) Name() string { return "linear" }

// Version returns the model version tag
func (m *LinearModel) Version() string { return m.version }

// Trained reports whether the model has completed a training run
func (m *LinearModel) Trained() bool { return m.trained }

// Predict scores the normalized features and squashes through the sigmoid
func (m *LinearModel) Predict(f models.FeatureVector) Outcome {
	return outcomeFromHomeProb(sigmoid(m.score(normalize(f))))
}

// Train runs per-sample stochastic gradient updates for up to maxEpochs
// passes, keeping the best in-sample weights and stopping after patience
// epochs without an accuracy improvement. Fewer than 50 labeled samples is
// an explicit failure.
func (m *LinearModel) Train(samples []TrainingSample, learningRate float64, maxEpochs, patience int) (TrainResult, error) {
	if len(samples) < minTrainingSamples {
		return TrainResult{Samples: len(samples)}, fmt.Errorf(
			"%w: %d labeled samples, need %d", models.ErrInsufficientData, len(samples), minTrainingSamples)
	}
	if learningRate <= 0 {
		return TrainResult{}, fmt.Errorf("learning rate must be positive")
	}

	rows := make([][]float64, len(samples))
	labels := make([]float64, len(samples))
	for i, s := range samples {
		rows[i] = normalize(s.Features)
		if s.HomeWin {
			labels[i] = 1
		}
	}

	bestBias := m.bias
	bestWeights := append([]float64(nil), m.weights...)
	bestAccuracy := m.accuracy(rows, labels)
	sinceImprovement := 0
	epochs := 0

	order := m.rng.Perm(len(rows))
	for epoch := 0; epoch < maxEpochs; epoch++ {
		epochs = epoch + 1
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, idx := range order {
			p := sigmoid(m.score(rows[idx]))
			err := labels[idx] - p
			m.bias += learningRate * err
			for j, x := range rows[idx] {
				m.weights[j] += learningRate * err * x
			}
		}

		acc := m.accuracy(rows, labels)
		if acc > bestAccuracy {
			bestAccuracy = acc
			bestBias = m.bias
			copy(bestWeights, m.weights)
			sinceImprovement = 0
		} else {
			sinceImprovement++
			if sinceImprovement >= patience {
				break
			}
		}
	}

	m.bias = bestBias
	copy(m.weights, bestWeights)
	m.trained = true
	m.version = trainedVersion(len(samples), bestBias, bestWeights)

	return TrainResult{
		Samples:      len(samples),
		Epochs:       epochs,
		BestAccuracy: bestAccuracy,
	}, nil
}

// trainedVersion derives a stable tag from the fitted coefficients so
// retraining on identical data produces a recognizable version.
func trainedVersion(samples int, bias float64, weights []float64) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d:%.12f", samples, bias)
	for _, w := range weights {
		fmt.Fprintf(&buf, ":%.12f", w)
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, buf.Bytes())
	return fmt.Sprintf("linear-v1-%s", id.String()[:8])
}

func (m *LinearModel) score(row []float64) float64 {
	score := m.bias
	for i, w := range m.weights {
		score += w * row[i]
	}
	return score
}

func (m *LinearModel) accuracy(rows [][]float64, labels []float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	correct := 0
	for i, row := range rows {
		p := sigmoid(m.score(row))
		if (p >= 0.5) == (labels[i] >= 0.5) {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

// linearWeights is the serialized coefficient format
type linearWeights struct {
	Version string    `json:"version"`
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// MarshalWeights serializes the trained coefficients
func (m *LinearModel) MarshalWeights() ([]byte, error) {
	if !m.trained {
		return nil, models.ErrNotTrained
	}
	return json.Marshal(linearWeights{
		Version: m.version,
		Bias:    m.bias,
		Weights: m.weights,
	})
}

// UnmarshalWeights loads previously trained coefficients
func (m *LinearModel) UnmarshalWeights(data []byte) error {
	var lw linearWeights
	if err := json.Unmarshal(data, &lw); err != nil {
		return fmt.Errorf("failed to parse model weights: %w", err)
	}
	if len(lw.Weights) != featureCount {
		return fmt.Errorf("weight count mismatch: got %d, want %d", len(lw.Weights), featureCount)
	}
	m.version = lw.Version
	m.bias = lw.Bias
	m.weights = append([]float64(nil), lw.Weights...)
	m.trained = true
	return nil
}

// normalize flattens a feature vector into comparable ranges: win
// percentages as-is, differentials and advantages as signed deviations
// roughly in [-1, 1]
func normalize(f models.FeatureVector) []float64 {
	marginHome := f.HomeAvgScored - f.HomeAvgConceded
	marginAway := f.AwayAvgScored - f.AwayAvgConceded
	scale := math.Max(1, (f.HomeAvgScored+f.AwayAvgScored)/2)

	return []float64{
		f.HomeWinPct,
		f.AwayWinPct,
		f.HomeHomeWinPct,
		f.AwayAwayWinPct,
		f.HomeRecentForm,
		f.AwayRecentForm,
		f.RecentFormDiff(),
		f.WinPctDiff(),
		f.RoleSplitDiff(),
		f.HeadToHeadDiff(),
		clamp(f.RestAdvantage, -1, 1),
		streakDiff(f) / (2 * streakClamp),
		clamp((marginHome-marginAway)/scale, -1, 1),
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

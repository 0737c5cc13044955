package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/models"
)

// separableSamples builds a labeled set where the home side wins exactly
// when its win percentage is the higher one
func separableSamples(n int) []TrainingSample {
	samples := make([]TrainingSample, 0, n)
	for i := 0; i < n; i++ {
		homePct := float64(i%11) / 10.0
		fv := neutralFeatures()
		fv.HomeWinPct = homePct
		fv.AwayWinPct = 1.0 - homePct
		fv.HomeRecentForm = homePct
		fv.AwayRecentForm = 1.0 - homePct
		samples = append(samples, TrainingSample{
			Features: fv,
			HomeWin:  homePct > 0.5,
		})
	}
	return samples
}

func TestTrainRejectsSmallSamples(t *testing.T) {
	m := NewLinearModel(1)

	_, err := m.Train(separableSamples(49), 0.05, 100, 10)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.False(t, m.Trained())
}

func TestTrainRejectsBadLearningRate(t *testing.T) {
	m := NewLinearModel(1)

	_, err := m.Train(separableSamples(100), 0, 100, 10)
	assert.Error(t, err)
}

func TestTrainLearnsSeparableData(t *testing.T) {
	m := NewLinearModel(1)

	result, err := m.Train(separableSamples(220), 0.1, 300, 30)
	require.NoError(t, err)
	assert.True(t, m.Trained())
	assert.Equal(t, 220, result.Samples)
	assert.Greater(t, result.BestAccuracy, 0.8)

	// a lopsided matchup should lean the right way after training
	strong := neutralFeatures()
	strong.HomeWinPct = 0.9
	strong.AwayWinPct = 0.1
	strong.HomeRecentForm = 0.9
	strong.AwayRecentForm = 0.1
	out := m.Predict(strong)
	assert.Equal(t, models.SelectionHome, out.PredictedWinner)

	weak := neutralFeatures()
	weak.HomeWinPct = 0.1
	weak.AwayWinPct = 0.9
	weak.HomeRecentForm = 0.1
	weak.AwayRecentForm = 0.9
	out = m.Predict(weak)
	assert.Equal(t, models.SelectionAway, out.PredictedWinner)
}

func TestPredictionsStayClamped(t *testing.T) {
	m := NewLinearModel(1)
	_, err := m.Train(separableSamples(220), 0.1, 300, 30)
	require.NoError(t, err)

	fv := neutralFeatures()
	fv.HomeWinPct = 1.0
	fv.AwayWinPct = 0.0
	out := m.Predict(fv)

	assert.GreaterOrEqual(t, out.HomeProb, MinConfidence)
	assert.LessOrEqual(t, out.HomeProb, MaxConfidence)
	assert.InDelta(t, 1.0, out.HomeProb+out.AwayProb, 1e-12)
}

func TestMarshalWeightsRequiresTraining(t *testing.T) {
	m := NewLinearModel(1)

	_, err := m.MarshalWeights()
	assert.ErrorIs(t, err, models.ErrNotTrained)
}

func TestWeightsRoundTrip(t *testing.T) {
	trained := NewLinearModel(1)
	_, err := trained.Train(separableSamples(220), 0.1, 300, 30)
	require.NoError(t, err)

	data, err := trained.MarshalWeights()
	require.NoError(t, err)

	restored := NewLinearModel(2)
	require.NoError(t, restored.UnmarshalWeights(data))
	assert.True(t, restored.Trained())
	assert.Equal(t, trained.Version(), restored.Version())

	fv := neutralFeatures()
	fv.HomeWinPct = 0.7
	fv.AwayWinPct = 0.3
	assert.Equal(t, trained.Predict(fv), restored.Predict(fv))
}

func TestUnmarshalWeightsRejectsWrongWidth(t *testing.T) {
	m := NewLinearModel(1)
	err := m.UnmarshalWeights([]byte(`{"version":"linear-v1","bias":0.1,"weights":[1,2,3]}`))
	assert.Error(t, err)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/logger"
	"github.com/yourusername/oddsmith/internal/model"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
)

func trainerConfig() config.ModelConfig {
	return config.ModelConfig{
		Kind:              "linear",
		LearningRate:      0.05,
		MaxEpochs:         100,
		EarlyStopPatience: 10,
	}
}

func seedSeason(t *testing.T, repo *repository.MemoryContestRepository, n int) {
	t.Helper()
	teams := []string{"Hawks", "Crows", "Bisons", "Otters"}
	start := time.Date(2025, 1, 5, 19, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		home := teams[i%len(teams)]
		away := teams[(i+1+i/len(teams))%len(teams)]
		if home == away {
			away = teams[(i+2)%len(teams)]
		}

		homeScore, awayScore := 100, 94
		if home == "Crows" || away == "Hawks" {
			homeScore, awayScore = 91, 103
		}

		require.NoError(t, repo.Create(context.Background(), &models.Contest{
			ID:             uuid.New(),
			Sport:          "basketball_nba",
			HomeTeam:       home,
			AwayTeam:       away,
			ScheduledStart: start.Add(time.Duration(i) * 12 * time.Hour),
			HomeScore:      &homeScore,
			AwayScore:      &awayScore,
			Status:         models.ContestStatusCompleted,
		}))
	}
}

func TestTrainPersistsWeights(t *testing.T) {
	contests := repository.NewMemoryContestRepository()
	weights := repository.NewMemoryModelRepository()
	seedSeason(t, contests, 150)

	trainer := NewTrainer(trainerConfig(), contests, weights, logger.NewNop())
	result, err := trainer.Train(context.Background(),
		"basketball_nba",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Samples, 50)

	version, err := weights.LatestVersion(context.Background())
	require.NoError(t, err)

	data, err := weights.LoadWeights(context.Background(), version)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestTrainFailsOnThinHistory(t *testing.T) {
	contests := repository.NewMemoryContestRepository()
	weights := repository.NewMemoryModelRepository()
	seedSeason(t, contests, 20)

	trainer := NewTrainer(trainerConfig(), contests, weights, logger.NewNop())
	_, err := trainer.Train(context.Background(),
		"basketball_nba",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = weights.LatestVersion(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLoadPredictorHeuristic(t *testing.T) {
	p, err := LoadPredictor(context.Background(),
		config.ModelConfig{Kind: "heuristic"},
		repository.NewMemoryModelRepository(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "heuristic", p.Name())
}

func TestLoadPredictorFallsBackWithoutWeights(t *testing.T) {
	p, err := LoadPredictor(context.Background(),
		trainerConfig(),
		repository.NewMemoryModelRepository(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "heuristic", p.Name())
}

func TestLoadPredictorRestoresTrainedLinearModel(t *testing.T) {
	contests := repository.NewMemoryContestRepository()
	weights := repository.NewMemoryModelRepository()
	seedSeason(t, contests, 150)

	trainer := NewTrainer(trainerConfig(), contests, weights, logger.NewNop())
	_, err := trainer.Train(context.Background(),
		"basketball_nba",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	p, err := LoadPredictor(context.Background(), trainerConfig(), weights, logger.NewNop())
	require.NoError(t, err)
	require.Equal(t, "linear", p.Name())

	linear, ok := p.(*model.LinearModel)
	require.True(t, ok)
	assert.True(t, linear.Trained())
}

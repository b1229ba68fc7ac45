package cron

import (
	"os"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"k8s.io/client-go/kubernetes"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/internal/logger"
)

type mockKubernetesInterface struct {
	kubernetes.Interface
	mock.Mock
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	log := getLogger()
	k8s := &mockKubernetesInterface{}

	// Act
	cm := NewCronManager(cfg, log, k8s, nil)

	// Assert
	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, k8s, cm.k8s)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_StartCron(t *testing.T) {
	// Set environment variable for testing
	os.Setenv("CRON_SCHEDULE_WARMUP_SEND", "0 0 * * * *")
	os.Setenv("CRON_SCHEDULE_WARMUP_RESCUE", "0 30 * * * *")
	defer os.Unsetenv("CRON_SCHEDULE_WARMUP_SEND")
	defer os.Unsetenv("CRON_SCHEDULE_WARMUP_RESCUE")

	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(cfg, log, k8s, nil)

	// Create a mock cron for testing
	mockCron := cronv3.New(cronv3.WithSeconds())

	// Act - register jobs manually
	sendID, err := mockCron.AddFunc("0 0 * * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["warmup_send"] = sendID

	rescueID, err := mockCron.AddFunc("0 30 * * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["warmup_rescue"] = rescueID

	cm.cron = mockCron

	// Assert
	assert.NotNil(t, cm.cron)
	assert.Equal(t, 2, len(cm.jobIDs))
}

func TestCronManager_Stop(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(cfg, log, k8s, nil)

	// Create a mock cron for testing
	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	// Act
	cm.Stop()

	// Assert
	select {
	case <-cm.stopCh:
		// Channel is closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_SplitsKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg := loadConfig()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadConfig_NoBrokersDisablesPublishing(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	cfg := loadConfig()
	assert.Empty(t, cfg.KafkaBrokers)
}

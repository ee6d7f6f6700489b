package kafka_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/BariVakhidov/academyhub/internal/kafka"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p := kafka.NewProducer([]string{"localhost:29092"}, "login_outcomes")

	assert.Equal(t, "login_outcomes", p.Topic())
	require.NoError(t, p.Close())
}

func TestPublish_Broker(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS is not set")
	}

	p := kafka.NewProducer(strings.Split(brokers, ","), "login_outcomes_test")
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	require.NoError(t, p.Publish(ctx, []byte("auth_failed"), []byte(gofakeit.Sentence(5))))
}

package publisher

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher("localhost:6379", 0, "test_stream_articles", 100)
	defer publisher.Close()

	// Create a subscriber to verify the event was published
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	err = client.XGroupCreateMkStream(ctx, "test_stream_articles", "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		panic(err)
	}

	messages := make(chan string, 1)

	go func() {
		message, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{"test_stream_articles", ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    0,
		}).Result()
		assert.NoError(t, err)
		messages <- message[0].Messages[0].Values["article"].(string)
	}()

	time.Sleep(100 * time.Millisecond)

	err = publisher.PublishArticle(ctx, ArticleEvent{
		NewsID:     42,
		Website:    "Hindu Tamil",
		Category:   "Tamilnadu",
		Title:      "சென்னை செய்தி",
		ArticleURL: "https://example.com/news/42",
	})
	assert.NoError(t, err)

	select {
	case msg := <-messages:
		var event ArticleEvent
		assert.NoError(t, json.Unmarshal([]byte(msg), &event))
		assert.Equal(t, int64(42), event.NewsID)
		assert.Equal(t, "சென்னை செய்தி", event.Title)
	case <-time.After(1 * time.Second):
		t.Error("Timed out waiting for message")
	}

	assert.NoError(t, publisher.TrimStream(ctx))
}

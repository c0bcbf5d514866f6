package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"speedlog/internal/models"
	"speedlog/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamTable(t *testing.T) *store.CSVStore {
	t.Helper()
	schema := store.DefaultSchema()
	st := store.NewCSVStore(filepath.Join(t.TempDir(), "metrics.csv"), schema)
	InitHistoryService(st, NewChartRenderer(schema))
	t.Cleanup(func() { historyService = nil })
	return st
}

func drain(client *StreamClient) []StreamMessage {
	var msgs []StreamMessage
	for {
		select {
		case msg := <-client.Send:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestRowStream_Poll(t *testing.T) {
	ctx := context.Background()
	st := newStreamTable(t)
	now := time.Now().Truncate(time.Second)
	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 1, Datetime: now.Add(-time.Hour)}))

	hub := InitRowStream(time.Hour)
	client := NewStreamClient("test")
	hub.Register(client)
	assert.Equal(t, 1, hub.Clients())

	// the first poll records rows that existed before the stream started
	hub.Poll(ctx)
	assert.Empty(t, drain(client))

	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 42, Datetime: now}))
	hub.Poll(ctx)
	msgs := drain(client)
	require.Len(t, msgs, 1)
	assert.Equal(t, "row", msgs[0].Type)
	require.NotNil(t, msgs[0].Row)
	assert.Equal(t, 42.0, msgs[0].Row.DownloadMbps)

	// same row is not sent twice
	hub.Poll(ctx)
	assert.Empty(t, drain(client))
}

func TestRowStream_PollSendsEveryRowBetweenPolls(t *testing.T) {
	ctx := context.Background()
	st := newStreamTable(t)
	hub := InitRowStream(time.Hour)
	client := NewStreamClient("test")
	hub.Register(client)
	hub.Poll(ctx)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 10, Datetime: now}))
	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 20, Datetime: now}))
	hub.Poll(ctx)

	msgs := drain(client)
	require.Len(t, msgs, 2)
	assert.Equal(t, 10.0, msgs[0].Row.DownloadMbps)
	assert.Equal(t, 20.0, msgs[1].Row.DownloadMbps)
}

func TestRowStream_SubscribeSendsLatestOnce(t *testing.T) {
	ctx := context.Background()
	st := newStreamTable(t)
	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 7, Datetime: time.Now()}))

	hub := InitRowStream(time.Hour)
	client := NewStreamClient("test")
	require.NoError(t, hub.Subscribe(ctx, client))
	hub.Poll(ctx)
	hub.Poll(ctx)

	msgs := drain(client)
	require.Len(t, msgs, 1)
	assert.Equal(t, 7.0, msgs[0].Row.DownloadMbps)
}

func TestRowStream_SubscribeAfterUndeliveredAppend(t *testing.T) {
	ctx := context.Background()
	st := newStreamTable(t)
	now := time.Now().Truncate(time.Second)
	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 1, Datetime: now}))

	hub := InitRowStream(time.Hour)
	hub.Poll(ctx)

	// appended after the last poll but before the client connects
	require.NoError(t, st.Append(ctx, models.MetricRow{DownloadMbps: 2, Datetime: now.Add(time.Minute)}))
	client := NewStreamClient("late")
	require.NoError(t, hub.Subscribe(ctx, client))
	hub.Poll(ctx)

	msgs := drain(client)
	require.Len(t, msgs, 2)
	assert.Equal(t, 1.0, msgs[0].Row.DownloadMbps)
	assert.Equal(t, 2.0, msgs[1].Row.DownloadMbps)
}

func TestRowStream_SubscribeEmptyTable(t *testing.T) {
	ctx := context.Background()
	newStreamTable(t)
	hub := InitRowStream(time.Hour)
	client := NewStreamClient("test")
	require.NoError(t, hub.Subscribe(ctx, client))
	assert.Empty(t, drain(client))
	assert.Equal(t, 1, hub.Clients())
}

func TestRowStream_SubscribeWithoutTable(t *testing.T) {
	historyService = nil
	hub := InitRowStream(time.Hour)
	assert.Error(t, hub.Subscribe(context.Background(), NewStreamClient("test")))
	assert.Equal(t, 0, hub.Clients())
}

func TestRowStream_UnregisterClosesQueue(t *testing.T) {
	hub := InitRowStream(time.Hour)
	client := NewStreamClient("a")
	hub.Register(client)

	hub.Send("a", StreamMessage{Type: "pong"})
	hub.Unregister("a")
	hub.Unregister("a")
	assert.Equal(t, 0, hub.Clients())

	msg, ok := <-client.Send
	assert.True(t, ok)
	assert.Equal(t, "pong", msg.Type)
	_, ok = <-client.Send
	assert.False(t, ok)

	// sending to a gone client is a no-op
	hub.Send("a", StreamMessage{Type: "pong"})
	hub.Broadcast(StreamMessage{Type: "row"})
}

func TestRowStream_FullQueueDropsMessages(t *testing.T) {
	hub := InitRowStream(time.Hour)
	client := &StreamClient{ID: "slow", Send: make(chan StreamMessage, 1)}
	hub.Register(client)

	hub.Broadcast(StreamMessage{Type: "row"})
	hub.Broadcast(StreamMessage{Type: "row"})
	assert.Len(t, client.Send, 1)
}

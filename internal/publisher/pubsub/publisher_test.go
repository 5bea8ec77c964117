package pubsub

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type runAnnouncement struct {
	RunID string `json:"run_id"`
}

func (r runAnnouncement) Attributes() map[string]string {
	return map[string]string{"run_id": r.RunID}
}

func newTestPublisher(t *testing.T) (*Publisher, *pstest.Server) {
	t.Helper()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	_, err = client.CreateTopic(ctx, "runs")
	require.NoError(t, err)

	pub := New(client)
	t.Cleanup(func() { _ = pub.Close() })
	return pub, srv
}

func TestPublish(t *testing.T) {
	t.Parallel()

	pub, srv := newTestPublisher(t)

	id, err := pub.Publish(context.Background(), "runs", runAnnouncement{RunID: "run-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"run_id":"run-1"}`, string(msgs[0].Data))
	assert.Equal(t, "run-1", msgs[0].Attributes["run_id"])
	assert.Equal(t, "application/json", msgs[0].Attributes["content_type"])
}

func TestPublishUnknownTopic(t *testing.T) {
	t.Parallel()

	pub, _ := newTestPublisher(t)
	_, err := pub.Publish(context.Background(), "missing", runAnnouncement{RunID: "r"})
	require.Error(t, err)
}

func TestPublishValidation(t *testing.T) {
	t.Parallel()

	var nilPub *Publisher
	_, err := nilPub.Publish(context.Background(), "runs", 1)
	require.Error(t, err)
	require.NoError(t, nilPub.Close())

	pub, _ := newTestPublisher(t)
	_, err = pub.Publish(context.Background(), "", 1)
	require.Error(t, err)
	_, err = pub.Publish(context.Background(), "runs", make(chan int))
	require.Error(t, err)
}

func TestDialRequiresProject(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), "")
	require.Error(t, err)
}

package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

type recordingPublisher struct {
	keys []string
	jobs []EmailJob
}

func (r *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	r.keys = append(r.keys, key)
	r.jobs = append(r.jobs, v.(EmailJob))
	return nil
}

func TestQueueMailer(t *testing.T) {
	t.Parallel()
	pub := &recordingPublisher{}
	m := NewQueueMailer(pub, "Shop", "no-reply@shop.io")
	u := models.User{Email: "ann@mail.io", FirstName: "Ann", LastName: "Lee"}

	require.NoError(t, m.SendWelcome(context.Background(), u, ""))
	require.NoError(t, m.SendPasswordReset(context.Background(), u, "tmp-123"))

	assert.Equal(t, []string{KeyWelcome, KeyPasswordReset}, pub.keys)
	assert.Equal(t, "Ann Lee", pub.jobs[0].Name)
	assert.Empty(t, pub.jobs[0].TempPassword)
	assert.Equal(t, "tmp-123", pub.jobs[1].TempPassword)
	assert.Equal(t, "no-reply@shop.io", pub.jobs[1].FromAddress)
}

func TestLogMailerHidesPassword(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	m := LogMailer{Log: logging.NewWithWriter(&buf, "info")}

	require.NoError(t, m.SendPasswordReset(context.Background(), models.User{Email: "a@b.io"}, "super-secret"))
	assert.Contains(t, buf.String(), "password_reset")
	assert.NotContains(t, buf.String(), "super-secret")
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Ann", displayName(models.User{FirstName: "Ann"}))
	assert.Equal(t, "annie", displayName(models.User{Username: "annie"}))
	assert.Equal(t, "a@b.io", displayName(models.User{Email: "a@b.io"}))
}

package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threadURL = "https://www.reddit.com/r/test/comments/abc123/title/"

func TestReplyRun(t *testing.T) {
	t.Run("rewrites host and submits through tab order", func(t *testing.T) {
		page := newFakePage()
		store := &memStore{}
		sleeps := &sleepLog{}
		o := NewOrchestrator(&fakeProvider{page: page}, testOptions(store, sleeps), nopLogger())

		err := o.reply.Run(context.Background(), page, threadURL, "Nice post!")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"navigate https://old.reddit.com/r/test/comments/abc123/title/",
			"waitselector " + replyBoxSelector,
			"click " + replyBoxSelector,
			"type",
			"press Tab",
			"press Enter",
		}, page.inputActions())
		assert.Equal(t, []string{"Nice post!"}, page.typed)
		assert.Equal(t, []time.Duration{5 * time.Second, time.Second, 500 * time.Millisecond}, sleeps.waits)

		// the result is captured even when nothing failed
		assert.Equal(t, []string{ArtifactAfterReply}, store.names())
	})

	t.Run("old host is left alone", func(t *testing.T) {
		page := newFakePage()
		o := NewOrchestrator(&fakeProvider{page: page}, testOptions(&memStore{}, &sleepLog{}), nopLogger())

		require.NoError(t, o.reply.Run(context.Background(), page, "https://old.reddit.com/r/go/comments/x1/t/", "hi"))
		assert.Equal(t, "navigate https://old.reddit.com/r/go/comments/x1/t/", page.inputActions()[0])
	})

	t.Run("missing reply box", func(t *testing.T) {
		page := newFakePage()
		cause := errors.New("waiting for selector `textarea[data-event-action=\"comment\"]` failed: timeout 10000ms exceeded")
		page.errs["waitselector"] = cause
		store := &memStore{}
		o := NewOrchestrator(&fakeProvider{page: page}, testOptions(store, &sleepLog{}), nopLogger())

		err := o.reply.Run(context.Background(), page, threadURL, "hi")

		var replyErr *ReplyError
		require.ErrorAs(t, err, &replyErr)
		assert.Equal(t, "locate", replyErr.Stage)
		assert.Equal(t, cause.Error(), err.Error())
		assert.Equal(t, []string{ArtifactReplyBoxNotFound}, store.names())
		assert.Equal(t, 1, page.screenshots)
	})

	failures := []struct {
		name  string
		step  string
		stage string
	}{
		{name: "navigation fails", step: "navigate", stage: "navigate"},
		{name: "click fails", step: "click", stage: "submit"},
		{name: "typing fails", step: "type", stage: "submit"},
		{name: "submit fails", step: "press", stage: "submit"},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage()
			cause := errors.New("boom")
			page.errs[tt.step] = cause
			store := &memStore{}
			o := NewOrchestrator(&fakeProvider{page: page}, testOptions(store, &sleepLog{}), nopLogger())

			err := o.reply.Run(context.Background(), page, threadURL, "hi")

			var replyErr *ReplyError
			require.ErrorAs(t, err, &replyErr)
			assert.Equal(t, tt.stage, replyErr.Stage)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, []string{ArtifactPostReplyFailed}, store.names())
			assert.Equal(t, 1, page.screenshots)
		})
	}

	t.Run("confirmation waits for the posted text", func(t *testing.T) {
		page := newFakePage()
		opts := testOptions(&memStore{}, &sleepLog{})
		opts.Timing.ReplyConfirm = 20 * time.Second
		o := NewOrchestrator(&fakeProvider{page: page}, opts, nopLogger())

		require.NoError(t, o.reply.Run(context.Background(), page, threadURL, "hello"))
		actions := page.inputActions()
		assert.Equal(t, "waiteval [hello]", actions[len(actions)-1])
	})

	t.Run("confirmation failure is a reply error", func(t *testing.T) {
		page := newFakePage()
		page.errs["waiteval"] = errors.New("timeout")
		store := &memStore{}
		opts := testOptions(store, &sleepLog{})
		opts.Timing.ReplyConfirm = 20 * time.Second
		o := NewOrchestrator(&fakeProvider{page: page}, opts, nopLogger())

		err := o.reply.Run(context.Background(), page, threadURL, "hello")

		var replyErr *ReplyError
		require.ErrorAs(t, err, &replyErr)
		assert.Equal(t, "confirm", replyErr.Stage)
		assert.Equal(t, []string{ArtifactAfterReply}, store.names())
		assert.Equal(t, 1, page.screenshots)
	})
}

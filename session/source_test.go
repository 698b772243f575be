package session

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxLatestWins(t *testing.T) {

	mb := NewMailbox()

	first := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second := image.NewRGBA(image.Rect(0, 0, 2, 2))

	mb.Put(first)
	mb.Put(second)

	img, err := mb.Next(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, img)
	assert.EqualValues(t, 1, mb.Dropped())
}

func TestMailboxWaitsForFrame(t *testing.T) {

	mb := NewMailbox()
	want := image.NewRGBA(image.Rect(0, 0, 4, 4))

	go func() {
		time.Sleep(10 * time.Millisecond)
		mb.Put(want)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	img, err := mb.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, want, img)
}

func TestMailboxClose(t *testing.T) {

	mb := NewMailbox()
	pending := image.NewRGBA(image.Rect(0, 0, 1, 1))

	mb.Put(pending)
	mb.Close()

	// frames after close are discarded
	mb.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))

	img, err := mb.Next(context.Background())
	require.NoError(t, err)
	assert.Same(t, pending, img)

	_, err = mb.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMailboxContextCancel(t *testing.T) {

	mb := NewMailbox()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mb.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOfferReplacesPending(t *testing.T) {

	ch := make(chan Report, 1)

	assert.False(t, offer(ch, Report{LastAction: "first"}))
	assert.True(t, offer(ch, Report{LastAction: "second"}))

	r := <-ch
	assert.Equal(t, "second", r.LastAction)
}

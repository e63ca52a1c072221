package intake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Diwan1337/quantum-ocr-bot/internal/ocr"
	"github.com/Diwan1337/quantum-ocr-bot/internal/state"
)

type fakeExtractor struct {
	scores map[string]int
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (map[string]int, error) {
	f.calls++

	return f.scores, f.err
}

type fakeUpserter struct {
	mu    sync.Mutex
	err   error
	calls []upsertCall
}

type upsertCall struct {
	userID    int64
	scores    map[string]int
	studentID string
}

func (f *fakeUpserter) UpsertScores(_ context.Context, userID int64, scores map[string]int, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, upsertCall{userID: userID, scores: scores, studentID: studentID})

	return f.err
}

func (f *fakeUpserter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

type fakeNotifier struct {
	texts       []string
	editOptions int
}

func (f *fakeNotifier) SendText(_ context.Context, _ int64, text string) error {
	f.texts = append(f.texts, text)

	return nil
}

func (f *fakeNotifier) SendEditOptions(_ context.Context, _ int64) error {
	f.editOptions++

	return nil
}

func newTestWorker(ex *fakeExtractor, up *fakeUpserter, n *fakeNotifier) (*Worker, *state.Store) {
	logger := zerolog.Nop()
	store := state.NewStore()

	return NewWorker(NewQueue(), ex, up, n, store, &logger), store
}

func tempTaskFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "task.jpg")
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))

	return path
}

func TestProcess_HappyPath(t *testing.T) {
	ex := &fakeExtractor{scores: map[string]int{"math": 88}}
	up := &fakeUpserter{}
	n := &fakeNotifier{}
	w, store := newTestWorker(ex, up, n)

	path := tempTaskFile(t)
	w.process(context.Background(), Task{UserID: 42, StudentID: "S1", FilePath: path})

	require.NoFileExists(t, path)
	require.Equal(t, []upsertCall{{userID: 42, scores: map[string]int{"math": 88}, studentID: "S1"}}, up.calls)
	require.Equal(t, 1, n.editOptions)

	require.Contains(t, n.texts, msgRecognized+"math: 88")
	require.Contains(t, n.texts, msgScoresConfirmed)
	require.Contains(t, n.texts, msgReviewInstructions)

	sess := store.Get(42)
	require.True(t, sess.InstructionsSent)
	require.Equal(t, state.StageAwaitingExternalScreenshot, sess.Stage)
}

func TestProcess_InstructionsSentOnlyOnce(t *testing.T) {
	ex := &fakeExtractor{scores: map[string]int{"math": 88}}
	up := &fakeUpserter{}
	n := &fakeNotifier{}
	w, _ := newTestWorker(ex, up, n)

	w.process(context.Background(), Task{UserID: 42, FilePath: tempTaskFile(t)})
	w.process(context.Background(), Task{UserID: 42, FilePath: tempTaskFile(t)})

	instructions := 0
	alreadySaved := 0

	for _, text := range n.texts {
		switch text {
		case msgReviewInstructions:
			instructions++
		case msgFeedbackAlreadySaved:
			alreadySaved++
		}
	}

	require.Equal(t, 1, instructions)
	require.Equal(t, 1, alreadySaved)
}

func TestProcess_EmptyMappingStillReconciles(t *testing.T) {
	ex := &fakeExtractor{scores: map[string]int{}}
	up := &fakeUpserter{}
	n := &fakeNotifier{}
	w, _ := newTestWorker(ex, up, n)

	path := tempTaskFile(t)
	w.process(context.Background(), Task{UserID: 42, StudentID: "S1", FilePath: path})

	require.NoFileExists(t, path)
	require.Len(t, up.calls, 1)
	require.Contains(t, n.texts, msgNothingRecognized)
}

func TestProcess_CleanupOnEveryExitPath(t *testing.T) {
	tests := []struct {
		name string
		ex   *fakeExtractor
		up   *fakeUpserter
		want string
	}{
		{
			name: "image load error",
			ex:   &fakeExtractor{err: fmt.Errorf("%w: bad file", ocr.ErrImageLoad)},
			up:   &fakeUpserter{},
			want: msgImageUnreadable,
		},
		{
			name: "recognition error",
			ex:   &fakeExtractor{err: fmt.Errorf("%w: backend crashed", ocr.ErrRecognition)},
			up:   &fakeUpserter{},
			want: msgCheckFailed,
		},
		{
			name: "record store error",
			ex:   &fakeExtractor{scores: map[string]int{"math": 80}},
			up:   &fakeUpserter{err: errors.New("quota exceeded")},
			want: msgStoreError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			w, _ := newTestWorker(tt.ex, tt.up, n)

			path := tempTaskFile(t)
			w.process(context.Background(), Task{UserID: 42, FilePath: path})

			require.NoFileExists(t, path)
			require.Contains(t, n.texts, tt.want)
		})
	}
}

func TestProcess_ErrorDoesNotSendFollowUp(t *testing.T) {
	ex := &fakeExtractor{err: fmt.Errorf("%w: boom", ocr.ErrRecognition)}
	n := &fakeNotifier{}
	w, store := newTestWorker(ex, &fakeUpserter{}, n)

	w.process(context.Background(), Task{UserID: 42, FilePath: tempTaskFile(t)})

	require.NotContains(t, n.texts, msgReviewInstructions)
	require.Zero(t, n.editOptions)
	require.False(t, store.Get(42).InstructionsSent)
}

func TestRun_DrainsQueueUntilCanceled(t *testing.T) {
	ex := &fakeExtractor{scores: map[string]int{"math": 88}}
	up := &fakeUpserter{}
	n := &fakeNotifier{}

	logger := zerolog.Nop()
	store := state.NewStore()
	q := NewQueue()
	w := NewWorker(q, ex, up, n, store, &logger)

	q.Enqueue(Task{UserID: 1, FilePath: tempTaskFile(t)})
	q.Enqueue(Task{UserID: 2, FilePath: tempTaskFile(t)})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return up.callCount() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestFormatScores(t *testing.T) {
	require.Equal(t, "", formatScores(nil))
	require.Equal(t, "math: 88", formatScores(map[string]int{"math": 88}))
	require.Equal(t, "inf: 92, math: 88, rus: 95", formatScores(map[string]int{"rus": 95, "math": 88, "inf": 92}))
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scribe/internal/blobstore"
	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/progress"
	"scribe/internal/services"
	"scribe/internal/services/source"
	"scribe/internal/services/stt"
	"scribe/internal/store"
	"scribe/internal/transcript"
)

// Deps bundles the collaborators a Runner needs.
type Deps struct {
	Store    *store.Store
	Blobs    BlobStore
	Resolver Resolver
	EngineA  stt.Engine
	EngineB  stt.Engine
	Editor   Editor
	Media    Media
	Sink     *progress.Sink
	Logger   *slog.Logger
}

// Runner executes transcription jobs.
type Runner struct {
	store    *store.Store
	blobs    BlobStore
	resolver Resolver
	engineA  stt.Engine
	engineB  stt.Engine
	editor   Editor
	media    Media
	sink     *progress.Sink
	logger   *slog.Logger

	workDir        string
	segmentSeconds int
	maxAttempts    int
	now            func() time.Time
}

// NewRunner constructs a Runner from configuration and dependencies.
func NewRunner(cfg *config.Config, deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	segmentSeconds := cfg.Pipeline.SegmentSeconds
	if segmentSeconds <= 0 {
		segmentSeconds = 150
	}
	maxAttempts := cfg.Pipeline.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Runner{
		store:          deps.Store,
		blobs:          deps.Blobs,
		resolver:       deps.Resolver,
		engineA:        deps.EngineA,
		engineB:        deps.EngineB,
		editor:         deps.Editor,
		media:          deps.Media,
		sink:           deps.Sink,
		logger:         logger,
		workDir:        cfg.Paths.WorkDir,
		segmentSeconds: segmentSeconds,
		maxAttempts:    maxAttempts,
		now:            time.Now,
	}
}

// Run executes one job to completion. The job ends either completed with a
// saved transcript or failed with a recorded error message; both outcomes
// append a terminal progress event.
func (r *Runner) Run(ctx context.Context, jobID string) error {
	started := r.now()
	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}

	ctx = services.WithJobID(ctx, job.ID)
	log := r.logger.With(logging.String(logging.FieldJobID, job.ID))

	if err := r.store.MarkRunning(ctx, job.ID); err != nil {
		return err
	}
	log.Info("job started", logging.String("source_url", job.SourceURL))

	runErr := r.run(ctx, log, job, started)
	if runErr == nil {
		return nil
	}

	// Failure bookkeeping must survive a canceled job context.
	detached := context.WithoutCancel(ctx)
	if err := r.store.MarkFailed(detached, job.ID, runErr.Error()); err != nil {
		log.Error("mark job failed", logging.Error(err))
	}
	if err := r.sink.Publish(detached, job.ID, msgGeneralError(runErr.Error()), true); err != nil {
		log.Error("publish failure event", logging.Error(err))
	}
	log.Error("job failed", logging.Error(runErr))
	return runErr
}

func (r *Runner) run(ctx context.Context, log *slog.Logger, job *store.Job, started time.Time) error {
	if err := r.sink.Publish(ctx, job.ID, msgResolving, false); err != nil {
		return err
	}

	if _, err := source.ExtractVideoID(job.SourceURL); err != nil {
		r.notify(ctx, job.ID, msgNoVideoID)
		return err
	}

	resolved, err := r.resolver.Resolve(ctx, job.SourceURL)
	if err != nil {
		r.notify(ctx, job.ID, msgResolveFailed(err.Error()))
		return err
	}
	title := resolved.Title
	if title == "" {
		title = "Untitled Video"
	}
	if err := r.store.SetTitle(ctx, job.ID, title); err != nil {
		return err
	}
	log.Info("source resolved", logging.String("title", title), logging.String("video_id", resolved.VideoID))

	if err := r.sink.Publish(ctx, job.ID, msgDownloading, false); err != nil {
		return err
	}
	localPath := filepath.Join(r.workDir, fmt.Sprintf("full_audio_%s.mp3", job.ID))
	if err := r.stageAudio(ctx, resolved.AudioURL, localPath); err != nil {
		r.notify(ctx, job.ID, msgDownloadFailed(err.Error()))
		return err
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			log.Warn("remove staged audio", logging.Error(err))
		}
	}()

	fullKey := blobstore.FullAudioKey(job.ID)
	if err := r.uploadFile(ctx, fullKey, localPath); err != nil {
		r.notify(ctx, job.ID, msgDownloadFailed(err.Error()))
		return err
	}
	// The full-audio artifact is removed on every exit path, success or not.
	detached := context.WithoutCancel(ctx)
	defer func() {
		if err := r.blobs.Delete(detached, fullKey); err != nil {
			log.Error("delete full audio artifact", logging.String("key", fullKey), logging.Error(err))
		}
	}()

	if err := r.sink.Publish(ctx, job.ID, msgProbing, false); err != nil {
		return err
	}
	duration, err := r.media.ProbeDuration(ctx, localPath)
	if err != nil {
		r.notify(ctx, job.ID, msgProbeFailed(err.Error()))
		return err
	}
	if err := r.store.SetDuration(ctx, job.ID, duration); err != nil {
		return err
	}
	log.Info("duration probed", logging.Float64("seconds", duration))

	segments := PlanSegments(duration, r.segmentSeconds)
	if len(segments) == 0 {
		return services.Wrap(services.ErrExtraction, "pipeline", "plan", "no segments planned", nil)
	}
	if err := r.sink.Publish(ctx, job.ID, msgSegmentCount(len(segments)), false); err != nil {
		return err
	}
	if err := r.sink.Publish(ctx, job.ID, msgTranscribeStart, false); err != nil {
		return err
	}

	texts := make([]string, 0, len(segments))
	skipped := 0
	for _, segment := range segments {
		result, err := r.runSegment(ctx, log, job, segment, len(segments), localPath)
		if err != nil {
			return err
		}
		if !result.Ok() {
			skipped++
			continue
		}
		texts = append(texts, result.Value())
	}
	if len(texts) == 0 {
		r.notify(ctx, job.ID, msgNoSegmentsDone)
		return services.Wrap(services.ErrEngine, "pipeline", "segments", "no segments transcribed", nil)
	}
	if skipped > 0 {
		log.Warn("segments abandoned", logging.Int("count", skipped), logging.Int("total", len(segments)))
	}

	if err := r.store.MarkSessionCompleted(ctx, job.SessionID); err != nil {
		log.Warn("mark session completed", logging.String("session_id", job.SessionID), logging.Error(err))
	}

	if err := r.sink.Publish(ctx, job.ID, msgAssembling, false); err != nil {
		return err
	}
	combined := transcript.Combine(texts)
	if err := r.sink.Publish(ctx, job.ID, msgCombined, false); err != nil {
		return err
	}

	elapsed := r.now().Sub(started)
	final := transcript.Render(title, combined, elapsed)
	if err := r.store.SaveFinalTranscript(ctx, job.ID, final); err != nil {
		return err
	}
	if err := r.store.MarkCompleted(ctx, job.ID); err != nil {
		return err
	}
	if err := r.sink.Publish(ctx, job.ID, final, true); err != nil {
		return err
	}
	log.Info("job completed", logging.Duration("elapsed", elapsed), logging.Int("segments", len(segments)))
	return nil
}

// runSegment processes one window within the attempt budget. Attempts cover
// the whole extract-transcribe-edit chain so a retry always starts from fresh
// audio. An exhausted budget abandons the segment without failing the job;
// only extraction errors, non-retryable errors, and cancellation abort it.
func (r *Runner) runSegment(ctx context.Context, log *slog.Logger, job *store.Job, segment Segment, total int, sourcePath string) (services.Result, error) {
	number := segment.Index + 1
	key := blobstore.SegmentKey(job.ID, segment.Index)
	segCtx := services.WithSegment(ctx, segment.Index)

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		text, err := r.attemptSegment(segCtx, job, segment, number, total, key, sourcePath)
		if err == nil {
			return services.Text(text), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return services.Empty(), err
		}
		if errors.Is(err, services.ErrExtraction) || !services.IsRetryable(err) {
			return services.Empty(), err
		}
		log.Warn("segment attempt failed",
			logging.Int(logging.FieldSegment, number),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
	}

	log.Warn("segment abandoned",
		logging.Int(logging.FieldSegment, number),
		logging.Int("attempts", r.maxAttempts),
		logging.Error(lastErr),
	)
	return services.Empty(), nil
}

func (r *Runner) attemptSegment(ctx context.Context, job *store.Job, segment Segment, number, total int, key, sourcePath string) (string, error) {
	segPath := filepath.Join(r.workDir, key)
	if err := r.media.ExtractSegment(ctx, sourcePath, segment.StartSec, segment.DurationSec, segPath); err != nil {
		return "", err
	}
	defer os.Remove(segPath)

	if err := r.uploadFile(ctx, key, segPath); err != nil {
		return "", err
	}
	// The segment artifact is removed whether the attempt succeeds or not.
	detached := context.WithoutCancel(ctx)
	defer func() {
		if err := r.blobs.Delete(detached, key); err != nil {
			r.logger.Error("delete segment artifact", logging.String("key", key), logging.Error(err))
		}
	}()

	r.notify(ctx, job.ID, msgEngineAWorking(number, total))
	resultA, err := r.engineA.Transcribe(ctx, key)
	if err != nil {
		r.notify(ctx, job.ID, msgEngineAFailed(number, total))
		return "", err
	}
	if !resultA.Ok() {
		r.notify(ctx, job.ID, msgEngineAFailed(number, total))
		return "", services.Wrap(services.ErrEngine, "pipeline", "segment", "empty transcript", nil)
	}

	r.notify(ctx, job.ID, msgEngineBWorking(number, total))
	resultB, err := r.engineB.Transcribe(ctx, key)
	if err != nil {
		r.notify(ctx, job.ID, msgEngineBFailed(number, total))
		return "", err
	}
	if !resultB.Ok() {
		r.notify(ctx, job.ID, msgEngineBEmpty(number, total))
		return "", services.Wrap(services.ErrEngine, "pipeline", "segment", "empty transcript", nil)
	}

	r.notify(ctx, job.ID, msgEditing(number, total))
	edited, err := r.editor.Reconcile(ctx, resultB.Value(), resultA.Value())
	if err != nil {
		r.notify(ctx, job.ID, msgEditFailed(number, total))
		return "", err
	}
	if !edited.Ok() {
		r.notify(ctx, job.ID, msgEditFailed(number, total))
		return "", services.Wrap(services.ErrEdit, "pipeline", "segment", "empty edit", nil)
	}

	r.notify(ctx, job.ID, msgSegmentReady(number, total))
	return edited.Value(), nil
}

// stageAudio downloads the resolved audio into a local work file.
func (r *Runner) stageAudio(ctx context.Context, audioURL, destPath string) error {
	body, err := r.resolver.Fetch(ctx, audioURL)
	if err != nil {
		return err
	}
	defer body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return services.Wrap(services.ErrExtraction, "pipeline", "stage", destPath, err)
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(destPath)
		return services.Wrap(services.ErrSourceUnavailable, "pipeline", "stage", "download audio", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(destPath)
		return services.Wrap(services.ErrExtraction, "pipeline", "stage", destPath, err)
	}
	return nil
}

func (r *Runner) uploadFile(ctx context.Context, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrExtraction, "pipeline", "upload", path, err)
	}
	defer file.Close()
	return r.blobs.Put(ctx, key, "audio/mpeg", file)
}

// notify publishes a non-terminal progress event. A failed append is logged
// but does not abort the step it annotates.
func (r *Runner) notify(ctx context.Context, jobID, content string) {
	if err := r.sink.Publish(ctx, jobID, content, false); err != nil {
		r.logger.Warn("publish progress event", logging.String(logging.FieldJobID, jobID), logging.Error(err))
	}
}

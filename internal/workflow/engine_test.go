package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vrtravel/reconcli/internal/api"
	"github.com/vrtravel/reconcli/internal/events"
	"github.com/vrtravel/reconcli/internal/models"
	"github.com/vrtravel/reconcli/internal/store"
)

// detailResult is one scripted response from GetSceneDetail. The last
// entry repeats once the script is exhausted.
type detailResult struct {
	detail *api.SceneDetail
	err    error
}

// fakeAPI scripts the remote surface for engine tests.
type fakeAPI struct {
	mu sync.Mutex

	createScene *api.Scene
	createErr   error
	listScenes  []api.Scene
	listErr     error
	uploadScene *api.Scene
	uploadErr   error
	deleteScene *api.Scene
	deleteErr   error
	runErr      error
	readiness   *api.Readiness
	readyErr    error
	details     []detailResult

	createCalls int
	uploadCalls int
	runCalls    int
	detailCalls int

	uploadPaths []string
	uploadGate  chan struct{} // if set, UploadImages blocks until closed
	onDetail    func(call int)
}

func (f *fakeAPI) CreateScene(ctx context.Context, name, description string) (*api.Scene, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createScene, nil
}

func (f *fakeAPI) UserScenes(ctx context.Context) ([]api.Scene, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listScenes, nil
}

func (f *fakeAPI) GetSceneDetail(ctx context.Context, sceneID string) (*api.SceneDetail, error) {
	f.mu.Lock()
	f.detailCalls++
	call := f.detailCalls
	i := call - 1
	if i >= len(f.details) {
		i = len(f.details) - 1
	}
	res := f.details[i]
	hook := f.onDetail
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return res.detail, res.err
}

func (f *fakeAPI) CheckReadiness(ctx context.Context, sceneID string) (*api.Readiness, error) {
	if f.readyErr != nil {
		return nil, f.readyErr
	}
	return f.readiness, nil
}

func (f *fakeAPI) UploadImages(ctx context.Context, sceneID string, paths []string) (*api.Scene, error) {
	f.mu.Lock()
	f.uploadCalls++
	f.uploadPaths = paths
	gate := f.uploadGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadScene, nil
}

func (f *fakeAPI) DeleteImage(ctx context.Context, sceneID, filename string) (*api.Scene, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return f.deleteScene, nil
}

func (f *fakeAPI) RunPipeline(ctx context.Context, sceneID string) error {
	f.mu.Lock()
	f.runCalls++
	f.mu.Unlock()
	return f.runErr
}

func (f *fakeAPI) calls() (create, upload, run, detail int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.uploadCalls, f.runCalls, f.detailCalls
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Scene{}, &models.PendingFile{}, &models.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func newTestEngine(t *testing.T, f *fakeAPI) (*Engine, *store.Store, *events.Bus, *bytes.Buffer) {
	t.Helper()
	s := openTestStore(t)
	bus := events.NewBus()
	out := &bytes.Buffer{}
	e, err := New(Opts{
		API:                f,
		Store:              s,
		Bus:                bus,
		PollInterval:       time.Millisecond,
		MaxTransientErrors: 3,
		Out:                out,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, s, bus, out
}

// sceneScript builds the standard happy-path fake: create returns s1
// idle, upload returns s1 uploaded with two images.
func sceneScript() *fakeAPI {
	return &fakeAPI{
		createScene: &api.Scene{ID: "s1", Name: "MyScene", Status: models.SceneStatusIdle},
		uploadScene: &api.Scene{ID: "s1", Name: "MyScene", Status: models.SceneStatusUploaded, ImageCount: 2},
	}
}

func detailAt(progress int, status, message string) detailResult {
	return detailResult{detail: &api.SceneDetail{
		Scene: api.Scene{ID: "s1", Name: "MyScene", Status: status, Progress: progress, ProgressMessage: message},
	}}
}

func TestNew_Validation(t *testing.T) {
	s := openTestStore(t)
	bus := events.NewBus()
	if _, err := New(Opts{Store: s, Bus: bus}); err == nil {
		t.Error("expected error for missing API")
	}
	if _, err := New(Opts{API: &fakeAPI{}, Bus: bus}); err == nil {
		t.Error("expected error for missing store")
	}
	if _, err := New(Opts{API: &fakeAPI{}, Store: s}); err == nil {
		t.Error("expected error for missing bus")
	}
}

func TestStartFullWorkflow_Success(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{
		detailAt(10, models.SceneStatusColmapProcessing, "estimating poses"),
		detailAt(55, models.SceneStatusReconProcessing, "training"),
		detailAt(100, models.SceneStatusCompleted, "done"),
	}
	e, s, _, _ := newTestEngine(t, f)

	scene, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg", "b.jpg"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if scene.Status != models.SceneStatusCompleted || scene.Progress != 100 {
		t.Errorf("scene = %s/%d, want completed/100", scene.Status, scene.Progress)
	}

	cached, err := s.Scene("s1")
	if err != nil {
		t.Fatalf("cached scene: %v", err)
	}
	if cached.Status != models.SceneStatusCompleted {
		t.Errorf("cached status = %s, want completed", cached.Status)
	}

	wf := s.Workflow()
	if wf.Phase != store.PhaseDone {
		t.Errorf("phase = %q, want done", wf.Phase)
	}
	if wf.Reconstruction != nil {
		t.Error("Reconstruction snapshot not cleared on done")
	}
	if wf.IsCreatingScene || wf.IsUploadingImages || wf.IsRunningReconstruction {
		t.Errorf("in-progress flags not cleared: %+v", wf)
	}

	create, upload, run, _ := f.calls()
	if create != 1 || upload != 1 || run != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", create, upload, run)
	}
}

func TestStartFullWorkflow_SingleActiveRun(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{detailAt(100, models.SceneStatusCompleted, "done")}
	f.uploadGate = make(chan struct{})
	e, _, _, _ := newTestEngine(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
		done <- err
	}()

	// Wait for the first run to reach the upload suspension point.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, upload, _, _ := f.calls(); upload == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first run never reached upload")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := e.StartFullWorkflow(context.Background(), "Second", "", []string{"c.jpg"})
	if !errors.Is(err, ErrRunActive) {
		t.Fatalf("second start = %v, want ErrRunActive", err)
	}
	if create, _, _, _ := f.calls(); create != 1 {
		t.Errorf("createCalls = %d, want second intent to issue no call", create)
	}

	close(f.uploadGate)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if e.Active() {
		t.Error("run still active after completion")
	}
}

func TestStartFullWorkflow_CreateFailure(t *testing.T) {
	f := &fakeAPI{createErr: &api.Error{Status: 500, Message: "server error"}}
	e, s, _, _ := newTestEngine(t, f)

	_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error = %T, want *Error", err)
	}
	if werr.Phase != store.PhaseCreatingScene {
		t.Errorf("Phase = %q, want creating_scene", werr.Phase)
	}

	wf := s.Workflow()
	if wf.Phase != store.PhaseFailed {
		t.Errorf("phase = %q, want failed", wf.Phase)
	}
	if !strings.Contains(wf.Error, "server error") {
		t.Errorf("Error = %q, want server message", wf.Error)
	}
	if wf.IsCreatingScene {
		t.Error("IsCreatingScene still set after failure")
	}

	scenes, _ := s.Scenes()
	if len(scenes) != 0 {
		t.Errorf("len(scenes) = %d, want no scene cached", len(scenes))
	}
	if _, upload, run, _ := f.calls(); upload != 0 || run != 0 {
		t.Errorf("later phases invoked after create failure: upload=%d run=%d", upload, run)
	}
}

func TestStartFullWorkflow_UploadFailureShortCircuits(t *testing.T) {
	f := sceneScript()
	f.uploadErr = &api.Error{Status: 500, Message: "upload exploded"}
	e, s, _, _ := newTestEngine(t, f)

	_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error = %T, want *Error", err)
	}
	if werr.Phase != store.PhaseUploadingImages {
		t.Errorf("Phase = %q, want uploading_images", werr.Phase)
	}

	// The reconstruction trigger must never fire after an upload failure.
	if _, _, run, detail := f.calls(); run != 0 || detail != 0 {
		t.Errorf("reconstruction invoked after upload failure: run=%d detail=%d", run, detail)
	}

	// The created scene survives for a later manual retry.
	if _, err := s.Scene("s1"); err != nil {
		t.Errorf("created scene dropped from cache: %v", err)
	}
}

func TestStartFullWorkflow_FailurePublishesBothEvents(t *testing.T) {
	f := sceneScript()
	f.uploadErr = &api.Error{Status: 500, Message: "upload exploded"}
	e, _, bus, _ := newTestEngine(t, f)

	var got []events.Event
	bus.Subscribe(func(ev events.Event) { got = append(got, ev) })

	_, _ = e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})

	if len(got) != 2 {
		t.Fatalf("len(events) = %d, want operation failure then workflow failed", len(got))
	}
	if got[0].Type != events.TypeOperationFailure || got[1].Type != events.TypeWorkflowFailed {
		t.Errorf("event types = %s, %s", got[0].Type, got[1].Type)
	}
	if got[0].Message != got[1].Message {
		t.Errorf("messages differ: %q vs %q", got[0].Message, got[1].Message)
	}
	if got[0].Op != OpUploadImages {
		t.Errorf("Op = %q, want upload_images", got[0].Op)
	}
}

func TestStartFullWorkflow_CancelDuringPolling(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{
		detailAt(40, models.SceneStatusReconProcessing, "training"),
		detailAt(80, models.SceneStatusReconProcessing, "training"),
	}
	e, s, _, _ := newTestEngine(t, f)

	f.onDetail = func(call int) {
		if call == 1 {
			e.Cancel()
		}
	}

	_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, want ErrCancelled", err)
	}

	wf := s.Workflow()
	if wf.Phase != store.PhaseCancelled {
		t.Errorf("phase = %q, want cancelled", wf.Phase)
	}
	if wf.Reconstruction != nil {
		t.Error("Reconstruction snapshot not cleared on cancel")
	}

	// The tick that raced the cancel is discarded: the cached scene keeps
	// its pre-cancel state from the upload response.
	cached, err := s.Scene("s1")
	if err != nil {
		t.Fatalf("cached scene: %v", err)
	}
	if cached.Status != models.SceneStatusUploaded {
		t.Errorf("cached status = %s, want uploaded (poll result discarded)", cached.Status)
	}
	if _, _, _, detail := f.calls(); detail != 1 {
		t.Errorf("detailCalls = %d, want polling stopped after cancel", detail)
	}
}

func TestCancel_NoActiveRunIsNoop(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{detailAt(100, models.SceneStatusCompleted, "done")}
	e, s, _, _ := newTestEngine(t, f)

	if e.Cancel() {
		t.Error("Cancel() = true with no run")
	}

	if _, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if e.Cancel() {
		t.Error("Cancel() = true after run finished")
	}
	if got := s.Workflow().Phase; got != store.PhaseDone {
		t.Errorf("phase = %q, want done untouched by late cancel", got)
	}
}

func TestStartFullWorkflow_TransientPollError(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{
		{err: &api.Error{Message: "network error: connection refused"}},
		detailAt(100, models.SceneStatusCompleted, "done"),
	}
	e, s, _, out := newTestEngine(t, f)

	scene, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if scene.Status != models.SceneStatusCompleted {
		t.Errorf("status = %s, want completed despite transient error", scene.Status)
	}
	if got := strings.Count(out.String(), "Status check failed"); got != 1 {
		t.Errorf("transient log entries = %d, want exactly 1", got)
	}
	if s.Workflow().Phase != store.PhaseDone {
		t.Errorf("phase = %q, want done", s.Workflow().Phase)
	}
}

func TestStartFullWorkflow_TransientErrorsBounded(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{
		{err: &api.Error{Message: "network error: connection refused"}},
	}
	e, s, _, _ := newTestEngine(t, f)

	_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error = %T, want *Error after retry budget", err)
	}
	if werr.Phase != store.PhaseReconstructing {
		t.Errorf("Phase = %q, want reconstructing", werr.Phase)
	}
	if _, _, _, detail := f.calls(); detail != 3 {
		t.Errorf("detailCalls = %d, want retry budget of 3", detail)
	}
	if s.Workflow().Phase != store.PhaseFailed {
		t.Errorf("phase = %q, want failed", s.Workflow().Phase)
	}
}

func TestStartFullWorkflow_ServerReportedFailure(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{
		detailAt(30, models.SceneStatusColmapProcessing, "estimating poses"),
		detailAt(30, models.SceneStatusFailed, "not enough image overlap"),
	}
	e, s, _, _ := newTestEngine(t, f)

	_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error = %T, want *Error", err)
	}
	if !strings.Contains(werr.Err.Error(), "not enough image overlap") {
		t.Errorf("error = %v, want server message", werr.Err)
	}

	cached, _ := s.Scene("s1")
	if cached.Status != models.SceneStatusFailed {
		t.Errorf("cached status = %s, want server failed state", cached.Status)
	}
}

func TestStartFullWorkflow_MonotonicProgress(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{
		detailAt(10, models.SceneStatusColmapProcessing, "poses"),
		detailAt(55, models.SceneStatusReconProcessing, "training"),
		detailAt(55, models.SceneStatusReconProcessing, "training"),
		detailAt(80, models.SceneStatusReconProcessing, "training"),
		detailAt(100, models.SceneStatusCompleted, "done"),
	}
	e, _, bus, _ := newTestEngine(t, f)

	var progress []int
	bus.Subscribe(func(ev events.Event) {
		if ev.Type == events.TypeProgress {
			progress = append(progress, ev.Progress)
		}
	})

	if _, err := e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(progress) == 0 {
		t.Fatal("no progress events published")
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress decreased: %v", progress)
		}
	}
	// Unchanged progress produces no duplicate event.
	if len(progress) != 4 {
		t.Errorf("len(progress) = %d, want 4 distinct snapshots", len(progress))
	}
	if progress[len(progress)-1] != 100 {
		t.Errorf("final progress = %d, want 100", progress[len(progress)-1])
	}
}

func TestStartFullWorkflow_NoImages(t *testing.T) {
	f := sceneScript()
	e, _, _, _ := newTestEngine(t, f)

	_, err := e.StartFullWorkflow(context.Background(), "MyScene", "", nil)
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("error = %v, want ErrNoImages", err)
	}
	if create, _, _, _ := f.calls(); create != 0 {
		t.Errorf("createCalls = %d, want no remote call without images", create)
	}
}

func TestStartFullWorkflow_DrainsPendingFiles(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{detailAt(100, models.SceneStatusCompleted, "done")}
	e, s, _, _ := newTestEngine(t, f)

	dir := t.TempDir()
	p := filepath.Join(dir, "a.jpg")
	os.WriteFile(p, []byte("a"), 0o644)
	if _, err := s.AddPendingFiles([]string{p}); err != nil {
		t.Fatalf("add pending: %v", err)
	}

	if _, err := e.StartFullWorkflow(context.Background(), "MyScene", "", nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	f.mu.Lock()
	got := f.uploadPaths
	f.mu.Unlock()
	if len(got) != 1 || got[0] != p {
		t.Errorf("uploadPaths = %v, want pending file path", got)
	}

	pending, _ := s.PendingFiles()
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want cleared after upload", len(pending))
	}
}

func TestRunReconstruction_ReadinessShortCircuit(t *testing.T) {
	f := &fakeAPI{readiness: &api.Readiness{SceneID: "s1", HasImages: false}}
	e, _, _, _ := newTestEngine(t, f)

	_, err := e.RunReconstruction(context.Background(), "s1")
	if err == nil {
		t.Fatal("expected error for scene without images")
	}
	if _, _, run, _ := f.calls(); run != 0 {
		t.Errorf("runCalls = %d, want no trigger after failed readiness", run)
	}
}

func TestRunReconstruction_Success(t *testing.T) {
	f := &fakeAPI{
		readiness: &api.Readiness{SceneID: "s1", HasImages: true, CanRunColmap: true},
		details: []detailResult{
			detailAt(50, models.SceneStatusReconProcessing, "training"),
			detailAt(100, models.SceneStatusCompleted, "done"),
		},
	}
	e, s, _, _ := newTestEngine(t, f)

	scene, err := e.RunReconstruction(context.Background(), "s1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if scene.Status != models.SceneStatusCompleted {
		t.Errorf("status = %s, want completed", scene.Status)
	}
	if s.Workflow().Phase != store.PhaseDone {
		t.Errorf("phase = %q, want done", s.Workflow().Phase)
	}
	if _, _, run, _ := f.calls(); run != 1 {
		t.Errorf("runCalls = %d, want 1", run)
	}
}

func TestRunReconstruction_RespectsActiveRun(t *testing.T) {
	f := sceneScript()
	f.details = []detailResult{detailAt(100, models.SceneStatusCompleted, "done")}
	f.uploadGate = make(chan struct{})
	e, _, _, _ := newTestEngine(t, f)

	done := make(chan struct{})
	go func() {
		_, _ = e.StartFullWorkflow(context.Background(), "MyScene", "", []string{"a.jpg"})
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, upload, _, _ := f.calls(); upload == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never reached upload")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := e.RunReconstruction(context.Background(), "s1"); !errors.Is(err, ErrRunActive) {
		t.Errorf("error = %v, want ErrRunActive", err)
	}
	close(f.uploadGate)
	<-done
}

func TestFetchScenes_ReplacesCache(t *testing.T) {
	f := &fakeAPI{listScenes: []api.Scene{
		{ID: "s1", Name: "A", Status: models.SceneStatusCompleted},
		{ID: "s2", Name: "B", Status: models.SceneStatusIdle},
	}}
	e, s, _, _ := newTestEngine(t, f)

	if err := s.UpsertScene(&models.Scene{ID: "stale", Name: "Gone"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	scenes, err := e.FetchScenes(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("len(scenes) = %d, want 2", len(scenes))
	}
	if _, err := s.Scene("stale"); !errors.Is(err, store.ErrSceneNotFound) {
		t.Error("stale scene survived refresh")
	}
}

func TestFetchSceneByID(t *testing.T) {
	f := &fakeAPI{details: []detailResult{
		detailAt(70, models.SceneStatusReconProcessing, "training"),
	}}
	e, s, _, _ := newTestEngine(t, f)

	scene, err := e.FetchSceneByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if scene.Progress != 70 {
		t.Errorf("progress = %d, want 70", scene.Progress)
	}
	cached, err := s.Scene("s1")
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	if cached.Status != models.SceneStatusReconProcessing {
		t.Errorf("cached status = %s", cached.Status)
	}
}

func TestCreateScene_Standalone(t *testing.T) {
	f := &fakeAPI{createScene: &api.Scene{ID: "s9", Name: "Solo", Status: models.SceneStatusIdle}}
	e, s, _, _ := newTestEngine(t, f)

	scene, err := e.CreateScene(context.Background(), "Solo", "desc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if scene.ID != "s9" {
		t.Errorf("ID = %s, want server-assigned s9", scene.ID)
	}
	current, err := s.CurrentScene()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != "s9" {
		t.Errorf("current = %s, want new scene selected", current.ID)
	}
}

func TestCreateScene_FailurePublishes(t *testing.T) {
	f := &fakeAPI{createErr: &api.Error{Status: 401, Message: "Unauthorized"}}
	e, s, bus, _ := newTestEngine(t, f)

	var got []events.Event
	bus.Subscribe(func(ev events.Event) { got = append(got, ev) })

	if _, err := e.CreateScene(context.Background(), "Solo", ""); err == nil {
		t.Fatal("expected error")
	}
	if len(got) != 1 || got[0].Type != events.TypeOperationFailure {
		t.Fatalf("events = %+v, want one operation failure", got)
	}
	if s.Workflow().Error == "" {
		t.Error("store error not recorded")
	}
}

func TestUploadImages_Standalone(t *testing.T) {
	f := &fakeAPI{uploadScene: &api.Scene{ID: "s1", Status: models.SceneStatusUploaded, ImageCount: 3}}
	e, s, _, _ := newTestEngine(t, f)

	scene, err := e.UploadImages(context.Background(), "s1", []string{"a.jpg", "b.jpg", "c.jpg"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if scene.ImageCount != 3 {
		t.Errorf("ImageCount = %d, want 3", scene.ImageCount)
	}
	if got := s.Workflow().UploadProgress; got != 100 {
		t.Errorf("UploadProgress = %d, want 100", got)
	}
}

func TestDeleteImage(t *testing.T) {
	f := &fakeAPI{deleteScene: &api.Scene{ID: "s1", Status: models.SceneStatusUploaded, ImageCount: 1}}
	e, s, _, _ := newTestEngine(t, f)

	scene, err := e.DeleteImage(context.Background(), "s1", "a.jpg")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if scene.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1", scene.ImageCount)
	}
	if _, err := s.Scene("s1"); err != nil {
		t.Errorf("updated scene not cached: %v", err)
	}
}

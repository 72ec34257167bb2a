package store

// Phase is a stage of the active workflow run. The empty string means idle.
type Phase string

const (
	PhaseCreatingScene   Phase = "creating_scene"
	PhaseUploadingImages Phase = "uploading_images"
	PhaseReconstructing  Phase = "reconstructing"
	PhaseDone            Phase = "done"
	PhaseFailed          Phase = "failed"
	PhaseCancelled       Phase = "cancelled"
)

// Progress is a reconstruction progress snapshot.
type Progress struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Step     string `json:"step"`
}

// WorkflowState is the observable projection of the current workflow run.
// Values are copies; mutating a snapshot does not touch the store.
type WorkflowState struct {
	Phase                   Phase     `json:"phase,omitempty"`
	IsCreatingScene         bool      `json:"isCreatingScene"`
	IsUploadingImages       bool      `json:"isUploadingImages"`
	IsRunningReconstruction bool      `json:"isRunningReconstruction"`
	IsFetchingScenes        bool      `json:"isFetchingScenes"`
	UploadProgress          int       `json:"uploadProgress"`
	Reconstruction          *Progress `json:"reconstruction,omitempty"`
	Error                   string    `json:"error,omitempty"`
}

// StepForProgress maps a progress percentage to its coarse pipeline step.
// The partition of [0,100] is monotonic and non-overlapping.
func StepForProgress(progress int) string {
	switch {
	case progress <= 5:
		return "Starting"
	case progress <= 30:
		return "Pose estimation"
	case progress <= 50:
		return "Pose estimation complete"
	case progress <= 75:
		return "Splat training"
	case progress < 100:
		return "Finalizing"
	default:
		return "Complete"
	}
}

// Workflow returns a copy of the current workflow projection.
func (s *Store) Workflow() WorkflowState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf := s.wf
	if s.wf.Reconstruction != nil {
		p := *s.wf.Reconstruction
		wf.Reconstruction = &p
	}
	return wf
}

// SetPhase records the run's current phase tag.
func (s *Store) SetPhase(p Phase) {
	s.mu.Lock()
	s.wf.Phase = p
	s.mu.Unlock()
}

// SetCreating toggles the create-scene in-progress flag.
func (s *Store) SetCreating(v bool) {
	s.mu.Lock()
	s.wf.IsCreatingScene = v
	s.mu.Unlock()
}

// SetUploading toggles the upload in-progress flag. Starting an upload
// resets its progress counter.
func (s *Store) SetUploading(v bool) {
	s.mu.Lock()
	s.wf.IsUploadingImages = v
	if v {
		s.wf.UploadProgress = 0
	}
	s.mu.Unlock()
}

// SetReconstructing toggles the reconstruction in-progress flag.
func (s *Store) SetReconstructing(v bool) {
	s.mu.Lock()
	s.wf.IsRunningReconstruction = v
	s.mu.Unlock()
}

// SetFetching toggles the scene-list refresh flag.
func (s *Store) SetFetching(v bool) {
	s.mu.Lock()
	s.wf.IsFetchingScenes = v
	s.mu.Unlock()
}

// SetUploadProgress records coarse upload progress in [0,100].
func (s *Store) SetUploadProgress(progress int) {
	s.mu.Lock()
	s.wf.UploadProgress = clamp(progress)
	s.mu.Unlock()
}

// SetReconstructionProgress records a reconstruction progress snapshot.
// Progress is monotonic within a run: a report lower than the last one is
// ignored so out-of-order polls can never walk the bar backwards.
func (s *Store) SetReconstructionProgress(progress int, message string) {
	p := clamp(progress)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wf.Reconstruction != nil && p < s.wf.Reconstruction.Progress {
		return
	}
	s.wf.Reconstruction = &Progress{
		Progress: p,
		Message:  message,
		Step:     StepForProgress(p),
	}
}

// ClearReconstructionProgress drops the progress snapshot.
func (s *Store) ClearReconstructionProgress() {
	s.mu.Lock()
	s.wf.Reconstruction = nil
	s.mu.Unlock()
}

// SetError records a workflow-level error message.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	s.wf.Error = message
	s.mu.Unlock()
}

// ClearError resets the error field.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.wf.Error = ""
	s.mu.Unlock()
}

// ResetWorkflow clears all in-progress flags and progress counters. The
// phase tag is preserved so a terminal tag stays observable; pass a new
// phase via SetPhase when starting the next run.
func (s *Store) ResetWorkflow() {
	s.mu.Lock()
	phase := s.wf.Phase
	s.wf = WorkflowState{Phase: phase}
	s.mu.Unlock()
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

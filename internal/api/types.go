package api

import "time"

// Scene is the server's representation of a reconstruction job.
type Scene struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	OwnerID         string    `json:"ownerId"`
	ImageFilenames  []string  `json:"imageFilenames,omitempty"`
	ImageCount      int       `json:"imageCount"`
	ColmapPath      string    `json:"colmapOutputPath,omitempty"`
	PlyFilePath     string    `json:"plyFilePath,omitempty"`
	Status          string    `json:"status"`
	Progress        int       `json:"progress"`
	ProgressMessage string    `json:"progressMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SceneDetail is the polling payload from GET /scenes/detail/{id}. It is a
// Scene plus the fields only the detail endpoint reports.
type SceneDetail struct {
	Scene
	CurrentStep   string `json:"currentStep,omitempty"`
	ColmapID      string `json:"colmapId,omitempty"`
	HasColmap     bool   `json:"hasColmap"`
	ModelFilePath string `json:"modelFilePath,omitempty"`
	HasModel      bool   `json:"hasModel"`
}

// Readiness is the pre-flight check payload from GET /scenes/{id}/check.
type Readiness struct {
	SceneID              string `json:"sceneId"`
	Name                 string `json:"name"`
	HasImages            bool   `json:"hasImages"`
	ImageCount           int    `json:"imageCount"`
	HasColmap            bool   `json:"hasColmap"`
	ColmapPath           string `json:"colmapPath,omitempty"`
	HasModel             bool   `json:"hasModel"`
	ModelID              string `json:"modelId,omitempty"`
	CanRunColmap         bool   `json:"canRunColmap"`
	CanRunReconstruction bool   `json:"canRunReconstruction"`
	Status               string `json:"status"`
	NextStep             string `json:"nextStep,omitempty"`
}

// User is the minimal profile returned by the auth endpoints.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// LoginResult is the payload returned by POST /auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

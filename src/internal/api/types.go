package api

import "github.com/maksimkurb/fbx-go/src/internal/resources"

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// HealthResponse reports whether the gateway holds a session.
type HealthResponse struct {
	Healthy  bool `json:"healthy"`
	LoggedIn bool `json:"logged_in"`
}

// SessionResponse describes the session of the gateway.
type SessionResponse struct {
	AppID       string   `json:"app_id"`
	LoggedIn    bool     `json:"logged_in"`
	Permissions []string `json:"permissions"`
}

// DownloadsResponse lists the download tasks.
type DownloadsResponse struct {
	Downloads []resources.DownloadTask `json:"downloads"`
}

// AddDownloadRequest is the body of POST /api/v1/downloads.
type AddDownloadRequest struct {
	URLs        []string `json:"urls" validate:"required,min=1,dive,url"`
	DownloadDir string   `json:"download_dir,omitempty"`
	Username    string   `json:"username,omitempty"`
	Password    string   `json:"password,omitempty"`
	Recursive   bool     `json:"recursive,omitempty"`
}

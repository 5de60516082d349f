package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RoomProvider is the external conferencing service the session lifecycle
// calls into. Failures are surfaced immediately; retry policy belongs to the
// caller since room creation is not guaranteed idempotent.
type RoomProvider interface {
	CreateRoom(ctx context.Context, sessionID int64) (string, error)
	GetRecording(ctx context.Context, sessionID int64) (*string, error)
}

type HTTPRoomProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPRoomProvider(baseURL, apiKey string, timeout time.Duration) *HTTPRoomProvider {
	return &HTTPRoomProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPRoomProvider) CreateRoom(ctx context.Context, sessionID int64) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"name": roomName(sessionID),
	})
	if err != nil {
		return "", fmt.Errorf("marshal room payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/rooms", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build room request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("create room: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response struct {
		JoinURL string `json:"join_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode room response: %w", err)
	}
	if response.JoinURL == "" {
		return "", fmt.Errorf("join url missing from room response")
	}
	return response.JoinURL, nil
}

// GetRecording returns nil without error when the provider has no recording
// for the session.
func (p *HTTPRoomProvider) GetRecording(ctx context.Context, sessionID int64) (*string, error) {
	url := fmt.Sprintf("%s/v1/rooms/%s/recording", p.baseURL, roomName(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build recording request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("get recording: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response struct {
		RecordingURL string `json:"recording_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode recording response: %w", err)
	}
	if response.RecordingURL == "" {
		return nil, nil
	}
	return &response.RecordingURL, nil
}

func roomName(sessionID int64) string {
	return fmt.Sprintf("live-session-%d", sessionID)
}

package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/lacandula/weather-dashboard/internal/store"
)

// APIClient talks to the backend annotation API on behalf of the dashboard.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client against the backend base URL.
func NewAPIClient(httpClient *http.Client, baseURL string) *APIClient {
	return &APIClient{baseURL: baseURL, client: httpClient}
}

// --- history ---

func (a *APIClient) ListHistory(ctx context.Context) ([]store.HistoryEntry, error) {
	var entries []store.HistoryEntry
	if err := a.getJSON(ctx, "/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *APIClient) RecordHistory(ctx context.Context, cityRaw, description string) error {
	return a.sendJSON(ctx, http.MethodPost, "/history",
		map[string]string{"city": cityRaw, "description": description})
}

func (a *APIClient) DeleteHistory(ctx context.Context, id uint) error {
	return a.send(ctx, http.MethodDelete, fmt.Sprintf("/history/%d", id), "", nil)
}

// --- notes ---

func (a *APIClient) NotesForCity(ctx context.Context, cityRaw string) ([]store.Note, error) {
	var body struct {
		Notes []store.Note `json:"notes"`
	}
	if err := a.getJSON(ctx, "/notes/"+url.PathEscape(cityRaw), &body); err != nil {
		return nil, err
	}
	return body.Notes, nil
}

func (a *APIClient) CreateNote(ctx context.Context, cityRaw, text string) error {
	return a.sendJSON(ctx, http.MethodPost, "/notes",
		map[string]string{"city": cityRaw, "note": text})
}

func (a *APIClient) UpdateNote(ctx context.Context, id uint, text string) error {
	return a.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/notes/%d", id),
		map[string]string{"note": text})
}

func (a *APIClient) DeleteNote(ctx context.Context, id uint) error {
	return a.send(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), "", nil)
}

// --- images and photos ---

func (a *APIClient) UploadNoteImage(ctx context.Context, noteID uint, filename string, r io.Reader) (string, error) {
	return a.upload(ctx, fmt.Sprintf("/notes/%d/images", noteID), "image", filename, r)
}

func (a *APIClient) NoteImages(ctx context.Context, noteID uint) ([]store.NoteImage, error) {
	var body struct {
		Images []store.NoteImage `json:"images"`
	}
	if err := a.getJSON(ctx, fmt.Sprintf("/notes/%d/images", noteID), &body); err != nil {
		return nil, err
	}
	return body.Images, nil
}

func (a *APIClient) DeleteNoteImage(ctx context.Context, id uint) error {
	return a.send(ctx, http.MethodDelete, fmt.Sprintf("/images/%d", id), "", nil)
}

func (a *APIClient) PhotosForCity(ctx context.Context, cityRaw string) ([]store.CityPhoto, error) {
	var body struct {
		Photos []store.CityPhoto `json:"photos"`
	}
	if err := a.getJSON(ctx, "/cities/"+url.PathEscape(cityRaw)+"/photos", &body); err != nil {
		return nil, err
	}
	return body.Photos, nil
}

func (a *APIClient) UploadCityPhoto(ctx context.Context, cityRaw, filename string, r io.Reader) (string, error) {
	return a.upload(ctx, "/cities/"+url.PathEscape(cityRaw)+"/photos", "photo", filename, r)
}

func (a *APIClient) DeleteCityPhoto(ctx context.Context, id uint) error {
	return a.send(ctx, http.MethodDelete, fmt.Sprintf("/photos/%d", id), "", nil)
}

// --- plumbing ---

func (a *APIClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s failed: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *APIClient) sendJSON(ctx context.Context, method, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return a.send(ctx, method, path, "application/json", bytes.NewReader(raw))
}

func (a *APIClient) send(ctx context.Context, method, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s failed: status %d", path, resp.StatusCode)
	}
	return nil
}

func (a *APIClient) upload(ctx context.Context, path, field, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload %s failed: status %d", path, resp.StatusCode)
	}

	var body struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.ImageURL, nil
}

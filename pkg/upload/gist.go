package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jordanwei/bipcal/pkg/model"
)

const (
	gistAPI         = "https://api.github.com/gists"
	gistFileName    = "bip-daily-calendar.ics"
	gistDescription = "BIP Calendar - Auto-updated task calendar"
	gistIDFile      = "gist_id.txt"
)

// GistDestination publishes the ICS file as a GitHub gist so subscribers
// get a stable raw URL. The gist is created on first upload; its ID is
// remembered in the data dir and reused afterwards.
type GistDestination struct {
	Token   string
	DataDir string

	api    string
	client *http.Client
}

func NewGistDestination(token, dataDir string) *GistDestination {
	return &GistDestination{
		Token:   token,
		DataDir: dataDir,
		api:     gistAPI,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GistDestination) Name() string { return "gist" }

func (g *GistDestination) Upload(path string, _ []model.ScheduledSlot) error {
	if g.Token == "" {
		return fmt.Errorf("GITHUB_GIST_TOKEN not set")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read calendar: %w", err)
	}

	if id := g.loadGistID(); id != "" {
		err := g.request(http.MethodPatch, g.api+"/"+id, content, nil)
		if err == nil {
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		// Stale ID: fall through and create a fresh gist.
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := g.request(http.MethodPost, g.api, content, &created); err != nil {
		return err
	}
	return g.saveGistID(created.ID)
}

func (g *GistDestination) request(method, url string, calendar []byte, out any) error {
	payload := map[string]any{
		"description": gistDescription,
		"files": map[string]any{
			gistFileName: map[string]string{"content": string(calendar)},
		},
	}
	if method == http.MethodPost {
		payload["public"] = true
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+g.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{status: resp.StatusCode, body: string(msg)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("github api: status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	api, ok := err.(*apiError)
	return ok && api.status == http.StatusNotFound
}

func (g *GistDestination) gistIDPath() string {
	return filepath.Join(g.DataDir, gistIDFile)
}

func (g *GistDestination) loadGistID() string {
	if id := os.Getenv("GITHUB_GIST_ID"); id != "" {
		return id
	}
	data, err := os.ReadFile(g.gistIDPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (g *GistDestination) saveGistID(id string) error {
	if err := os.MkdirAll(g.DataDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(g.gistIDPath(), []byte(id), 0o644)
}

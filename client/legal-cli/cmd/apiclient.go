package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	httpclient "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/http"
)

var errNotLoggedIn = errors.New("not logged in, run `legal-cli login` first")

// apiClient talks to the REST API and refreshes the access token once on 401.
type apiClient struct {
	baseURL string
	http    *httpclient.Client
	tokens  tokens
	save    func(tokens) error
}

func newAPIClient(baseURL string, t tokens, save func(tokens) error) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.NewClient(2*time.Minute, nil),
		tokens:  t,
		save:    save,
	}
}

// apiError is a non-2xx answer with the server's "error" message.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type folder struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Chats []chat `json:"chats"`
}

type chat struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Folder       uint   `json:"folder"`
	MessageCount int64  `json:"message_count"`
}

type message struct {
	ID        uint      `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

type document struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	SegmentsIndexed int    `json:"segments_indexed"`
	IndexStatus     string `json:"index_status"`
}

func (c *apiClient) Register(username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.call(http.MethodPost, "/api/register/", body, nil, false)
}

func (c *apiClient) Login(username, password string) (tokens, error) {
	var res struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.call(http.MethodPost, "/api/login/", body, &res, false); err != nil {
		return tokens{}, err
	}
	c.tokens = tokens{Access: res.Access, Refresh: res.Refresh, Username: res.User.Username, Role: res.User.Role}
	return c.tokens, c.save(c.tokens)
}

func (c *apiClient) Folders() ([]folder, error) {
	var out []folder
	return out, c.call(http.MethodGet, "/api/folders/", nil, &out, true)
}

func (c *apiClient) CreateFolder(name string) (folder, error) {
	var out folder
	return out, c.call(http.MethodPost, "/api/folders/", map[string]string{"name": name}, &out, true)
}

func (c *apiClient) CreateChat(folderID uint, name string) (chat, error) {
	var out chat
	body := map[string]interface{}{"folder_id": folderID, "name": name}
	return out, c.call(http.MethodPost, "/api/chats/", body, &out, true)
}

func (c *apiClient) Ask(chatID uint, question string) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	body := map[string]interface{}{"chat_id": chatID, "question": question}
	return out.Answer, c.call(http.MethodPost, "/api/chat/", body, &out, true)
}

func (c *apiClient) History(chatID uint) ([]message, error) {
	var out []message
	return out, c.call(http.MethodGet, fmt.Sprintf("/api/chats/%d/history/", chatID), nil, &out, true)
}

func (c *apiClient) Upload(path, title string) (document, error) {
	var out document
	err := c.withAuth(func() (*http.Response, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.WriteField("title", title); err != nil {
			return nil, err
		}
		fw, err := mw.CreateFormFile("file_path", filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, f); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/admin/upload/", &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return c.send(req, true)
	}, &out)
	return out, err
}

func (c *apiClient) call(method, path string, body, out interface{}, auth bool) error {
	do := func() (*http.Response, error) {
		var r io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			r = bytes.NewReader(data)
		}
		req, err := http.NewRequest(method, c.baseURL+path, r)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.send(req, auth)
	}
	if !auth {
		resp, err := do()
		if err != nil {
			return err
		}
		return decode(resp, out)
	}
	return c.withAuth(do, out)
}

func (c *apiClient) send(req *http.Request, auth bool) (*http.Response, error) {
	if auth {
		if c.tokens.Access == "" {
			return nil, errNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+c.tokens.Access)
	}
	return c.http.Do(req)
}

// withAuth runs do and, on 401 with a refresh token at hand, refreshes the
// access token and runs do once more.
func (c *apiClient) withAuth(do func() (*http.Response, error), out interface{}) error {
	resp, err := do()
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized || c.tokens.Refresh == "" {
		return decode(resp, out)
	}
	resp.Body.Close()

	if err := c.refresh(); err != nil {
		return fmt.Errorf("session expired, log in again: %w", err)
	}
	resp, err = do()
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *apiClient) refresh() error {
	var res struct {
		Access string `json:"access"`
	}
	if err := c.call(http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": c.tokens.Refresh}, &res, false); err != nil {
		return err
	}
	c.tokens.Access = res.Access
	return c.save(c.tokens)
}

func decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

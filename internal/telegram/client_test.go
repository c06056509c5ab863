package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTEST_TOKEN/getMe" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		writeJSON(t, w, APIResponse[User]{
			OK:     true,
			Result: User{ID: 123, IsBot: true, FirstName: "MarkBot", Username: "mark_bot"},
		})
	}))
	defer srv.Close()

	user, err := NewClient("TEST_TOKEN", srv.URL).GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if user.ID != 123 || user.Username != "mark_bot" {
		t.Errorf("GetMe() = %+v", user)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(t, w, APIResponse[json.RawMessage]{
			OK:          false,
			ErrorCode:   429,
			Description: "Too Many Requests",
			Parameters:  &ResponseParameters{RetryAfter: 5},
		})
	}))
	defer srv.Close()

	_, err := NewClient("T", srv.URL).SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != 429 || apiErr.RetryAfter != 5 {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "retry after 5s") {
		t.Errorf("Error() = %q", apiErr.Error())
	}
}

func TestSendMessage_JSONBody(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 7}})
	}))
	defer srv.Close()

	msg, err := NewClient("T", srv.URL).SendMessage(context.Background(), SendMessageRequest{ChatID: 42, Text: "hello"})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if msg.MessageID != 7 {
		t.Errorf("MessageID = %d, want 7", msg.MessageID)
	}
	if got.ChatID != 42 || got.Text != "hello" {
		t.Errorf("request = %+v", got)
	}
}

func TestSendPhoto_Multipart(t *testing.T) {
	photo := []byte("\x89PNG fake bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botT/sendPhoto" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if v := r.FormValue("chat_id"); v != "-1001" {
			t.Errorf("chat_id = %q", v)
		}
		if v := r.FormValue("caption"); v != "done" {
			t.Errorf("caption = %q", v)
		}
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != string(photo) {
			t.Errorf("photo bytes = %q", data)
		}
		if hdr.Filename != "watermarked.png" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 9}})
	}))
	defer srv.Close()

	if _, err := NewClient("T", srv.URL).SendPhoto(context.Background(), -1001, photo, "done"); err != nil {
		t.Fatalf("SendPhoto() error: %v", err)
	}
}

func TestGetFileAndFileURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req getFileRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.FileID != "abc" {
			t.Errorf("file_id = %q", req.FileID)
		}
		writeJSON(t, w, APIResponse[File]{OK: true, Result: File{FileID: "abc", FilePath: "photos/file_1.jpg"}})
	}))
	defer srv.Close()

	c := NewClient("T", srv.URL+"/")
	f, err := c.GetFile(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetFile() error: %v", err)
	}
	if want := srv.URL + "/file/botT/photos/file_1.jpg"; c.FileURL(f.FilePath) != want {
		t.Errorf("FileURL = %q, want %q", c.FileURL(f.FilePath), want)
	}
}

func TestWebhookMethods(t *testing.T) {
	var calls []string
	var setReq SetWebhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/setWebhook") {
			_ = json.NewDecoder(r.Body).Decode(&setReq)
		}
		writeJSON(t, w, APIResponse[bool]{OK: true, Result: true})
	}))
	defer srv.Close()

	c := NewClient("T", srv.URL)
	if err := c.SetWebhook(context.Background(), SetWebhookRequest{URL: "https://example.com/hook", SecretToken: "s3"}); err != nil {
		t.Fatalf("SetWebhook() error: %v", err)
	}
	if err := c.DeleteWebhook(context.Background(), true); err != nil {
		t.Fatalf("DeleteWebhook() error: %v", err)
	}
	if err := c.DeleteMessage(context.Background(), 1, 2); err != nil {
		t.Fatalf("DeleteMessage() error: %v", err)
	}

	want := []string{"/botT/setWebhook", "/botT/deleteWebhook", "/botT/deleteMessage"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if setReq.URL != "https://example.com/hook" || setReq.SecretToken != "s3" {
		t.Errorf("setWebhook request = %+v", setReq)
	}
}

func TestRequestErrorRedactsToken(t *testing.T) {
	c := NewClient("123:SECRET", "http://127.0.0.1:1")
	_, err := c.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "SECRET") {
		t.Errorf("error leaks token: %v", err)
	}
}

func TestDefaultAPIURL(t *testing.T) {
	c := NewClient("T", "")
	if got := c.FileURL("x"); got != DefaultAPIURL+"/file/botT/x" {
		t.Errorf("FileURL = %q", got)
	}
}

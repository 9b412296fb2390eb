package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"complaint-desk/internal/model"
	"complaint-desk/internal/store"

	"github.com/gorilla/websocket"
)

type fixture struct {
	srv *Server
	st  *store.Store
	ts  *httptest.Server
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "desk.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if _, err := st.CreateUser(ctx, "admin@example.com", "Admin", "adminpw", true); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := st.CreateUser(ctx, "ana@example.com", "Ana", "anapw", false); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := st.CreateUser(ctx, "ben@example.com", "Ben", "benpw", false); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	srv, err := New(Config{Secret: "test-secret"}, st, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return fixture{srv: srv, st: st, ts: ts}
}

// session is an http.Client with its own cookie jar.
type session struct {
	t    *testing.T
	base string
	c    *http.Client
}

func (f fixture) session(t *testing.T) *session {
	t.Helper()
	jar, _ := cookiejar.New(nil)
	return &session{t: t, base: f.ts.URL, c: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (f fixture) login(t *testing.T, email, password string) *session {
	t.Helper()
	s := f.session(t)
	if code, body := s.post("/login", map[string]string{"email": email, "password": password}); code != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, code, body)
	}
	return s
}

func (s *session) post(path string, body any) (int, map[string]any) {
	s.t.Helper()
	var rd *bytes.Reader
	if raw, ok := body.(string); ok {
		rd = bytes.NewReader([]byte(raw))
	} else {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	resp, err := s.c.Post(s.base+path, "application/json", rd)
	if err != nil {
		s.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (s *session) get(path string) (int, map[string]any) {
	s.t.Helper()
	resp, err := s.c.Get(s.base + path)
	if err != nil {
		s.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (f fixture) seedComplaint(t *testing.T, email, text string) model.Complaint {
	t.Helper()
	c, err := f.st.CreateComplaint(context.Background(), model.User{Email: email}, text)
	if err != nil {
		t.Fatalf("seed complaint: %v", err)
	}
	return c
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := f.session(t)

	if code, body := s.post("/login", map[string]string{"email": "ana@example.com"}); code != http.StatusBadRequest || body["message"] != msgMissingCredentials {
		t.Fatalf("expected 400 missing credentials, got %d %v", code, body)
	}
	if code, body := s.post("/login", map[string]string{"email": "ana@example.com", "password": "nope"}); code != http.StatusUnauthorized || body["message"] != msgInvalidCredentials {
		t.Fatalf("expected 401, got %d %v", code, body)
	}
	if code, body := s.get("/api/complaints"); code != http.StatusUnauthorized || body["success"] != false {
		t.Fatalf("expected 401 without session, got %d %v", code, body)
	}
}

func TestSignup_DuplicateAndLogout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := f.session(t)

	code, body := s.post("/signup", map[string]string{"email": "new@example.com", "password": "pw"})
	if code != http.StatusOK {
		t.Fatalf("signup: %d %v", code, body)
	}
	if code, _ := s.get("/api/complaints"); code != http.StatusOK {
		t.Fatalf("expected session after signup, got %d", code)
	}
	if code, body := f.session(t).post("/signup", map[string]string{"email": "ana@example.com", "password": "pw"}); code != http.StatusConflict || body["message"] != msgEmailRegistered {
		t.Fatalf("expected 409, got %d %v", code, body)
	}
	if code, _ := s.post("/logout", nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code, _ := s.get("/api/complaints"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", code)
	}
}

func TestListComplaints_ScopedByRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedComplaint(t, "ana@example.com", "Ana's first complaint")
	f.seedComplaint(t, "ben@example.com", "Ben's first complaint")

	_, body := f.login(t, "ana@example.com", "anapw").get("/api/complaints")
	if list := body["complaints"].([]any); len(list) != 1 {
		t.Fatalf("expected user to see only own complaint, got %d", len(list))
	}
	_, body = f.login(t, "admin@example.com", "adminpw").get("/api/complaints")
	if list := body["complaints"].([]any); len(list) != 2 {
		t.Fatalf("expected admin to see all complaints, got %d", len(list))
	}
}

func TestSubmitComplaint(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ana := f.login(t, "ana@example.com", "anapw")

	if code, body := ana.post("/submit_complaint_ajax", map[string]string{"complaint": "   "}); code != http.StatusBadRequest || body["message"] != msgComplaintEmpty {
		t.Fatalf("expected empty rejection, got %d %v", code, body)
	}
	if code, body := ana.post("/submit_complaint_ajax", map[string]string{"complaint": "too short"}); code != http.StatusBadRequest || body["message"] != msgComplaintTooShort {
		t.Fatalf("expected short rejection, got %d %v", code, body)
	}
	code, body := ana.post("/submit_complaint_ajax", map[string]string{"complaint": "  The heating is off in room 4  "})
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("submit: %d %v", code, body)
	}
	c := body["complaint"].(map[string]any)
	if c["complaint"] != "The heating is off in room 4" || c["user_email"] != "ana@example.com" || c["resolved"] != false {
		t.Fatalf("unexpected complaint %v", c)
	}

	admin := f.login(t, "admin@example.com", "adminpw")
	if code, body := admin.post("/submit_complaint_ajax", map[string]string{"complaint": "Admins should not file these"}); code != http.StatusForbidden || body["message"] != msgAdminsCannotSubmit {
		t.Fatalf("expected 403 for admin, got %d %v", code, body)
	}
}

func TestUpdateComplaint_Rules(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := f.seedComplaint(t, "ana@example.com", "Original complaint text")
	ana := f.login(t, "ana@example.com", "anapw")
	ben := f.login(t, "ben@example.com", "benpw")

	cases := []struct {
		name    string
		s       *session
		body    any
		code    int
		message string
	}{
		{"no data", ana, "", http.StatusBadRequest, msgNoData},
		{"missing id", ana, map[string]string{"complaint": "Long enough text here"}, http.StatusBadRequest, msgMissingFields},
		{"too short", ana, map[string]string{"complaint_id": c.ID, "complaint": "short"}, http.StatusBadRequest, msgComplaintTooShort},
		{"not found", ana, map[string]string{"complaint_id": "nope", "complaint": "Long enough text here"}, http.StatusNotFound, msgNotFound},
		{"not owner", ben, map[string]string{"complaint_id": c.ID, "complaint": "Ben tries to edit this"}, http.StatusForbidden, msgPermissionDenied},
		{"owner", ana, map[string]string{"complaint_id": c.ID, "complaint": "Edited complaint text"}, http.StatusOK, "Complaint updated successfully"},
	}
	for _, tc := range cases {
		code, body := tc.s.post("/update_complaint", tc.body)
		if code != tc.code || body["message"] != tc.message {
			t.Fatalf("%s: expected %d %q, got %d %v", tc.name, tc.code, tc.message, code, body)
		}
	}

	got, _ := f.st.GetComplaint(context.Background(), c.ID)
	if got.Text != "Edited complaint text" {
		t.Fatalf("expected stored edit, got %q", got.Text)
	}

	// Admins may edit any complaint, and re-saving the same text succeeds.
	admin := f.login(t, "admin@example.com", "adminpw")
	for i := 0; i < 2; i++ {
		if code, body := admin.post("/update_complaint", map[string]string{"complaint_id": c.ID, "complaint": "Admin cleaned up text"}); code != http.StatusOK {
			t.Fatalf("admin update %d: %d %v", i, code, body)
		}
	}
}

func TestDeleteComplaint_Rules(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := f.seedComplaint(t, "ana@example.com", "Complaint to delete")
	ana := f.login(t, "ana@example.com", "anapw")
	ben := f.login(t, "ben@example.com", "benpw")

	if code, body := ana.post("/delete_complaint", map[string]string{}); code != http.StatusBadRequest || body["message"] != msgMissingID {
		t.Fatalf("expected missing id, got %d %v", code, body)
	}
	if code, body := ben.post("/delete_complaint", map[string]string{"complaint_id": c.ID}); code != http.StatusForbidden || body["message"] != msgPermissionDenied {
		t.Fatalf("expected 403, got %d %v", code, body)
	}
	if code, body := ana.post("/delete_complaint", map[string]string{"complaint_id": c.ID}); code != http.StatusOK || body["message"] != "Complaint deleted successfully" {
		t.Fatalf("delete: %d %v", code, body)
	}
	if code, body := ana.post("/delete_complaint", map[string]string{"complaint_id": c.ID}); code != http.StatusNotFound || body["message"] != msgNotFound {
		t.Fatalf("expected 404 after delete, got %d %v", code, body)
	}
}

func TestToggleStatus_Rules(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	c := f.seedComplaint(t, "ana@example.com", "Complaint to resolve")
	ana := f.login(t, "ana@example.com", "anapw")
	admin := f.login(t, "admin@example.com", "adminpw")

	if code, body := ana.post("/toggle_complaint_status", map[string]string{"complaint_id": c.ID, "status": "resolved"}); code != http.StatusForbidden || body["message"] != msgAdminRequired {
		t.Fatalf("expected 403 for non-admin, got %d %v", code, body)
	}
	if code, body := admin.post("/toggle_complaint_status", map[string]string{"complaint_id": c.ID, "status": "done"}); code != http.StatusBadRequest || body["message"] != msgInvalidRequest {
		t.Fatalf("expected invalid request, got %d %v", code, body)
	}
	if code, body := admin.post("/toggle_complaint_status", map[string]string{"complaint_id": "nope", "status": "resolved"}); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %v", code, body)
	}
	if code, body := admin.post("/toggle_complaint_status", map[string]string{"complaint_id": c.ID, "status": "resolved"}); code != http.StatusOK || body["message"] != "Complaint resolved successfully" {
		t.Fatalf("resolve: %d %v", code, body)
	}
	got, _ := f.st.GetComplaint(context.Background(), c.ID)
	if !got.Resolved || got.ResolvedBy == nil || *got.ResolvedBy != "admin@example.com" {
		t.Fatalf("expected resolved by admin, got %+v", got)
	}
	if code, body := admin.post("/toggle_complaint_status", map[string]string{"complaint_id": c.ID, "status": "pending"}); code != http.StatusOK || body["message"] != "Complaint reopened successfully" {
		t.Fatalf("reopen: %d %v", code, body)
	}
}

func TestSession_RejectsTamperedCookie(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	other, err := New(Config{Secret: "other-secret"}, f.st, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := other.issueSession(rec, model.User{Email: "admin@example.com", IsAdmin: true}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	forged := rec.Result().Cookies()[0]

	req, _ := http.NewRequest(http.MethodGet, f.ts.URL+"/api/complaints", nil)
	req.AddCookie(forged)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected forged session to be rejected, got %d", resp.StatusCode)
	}

	rec = httptest.NewRecorder()
	if err := f.srv.issueSession(rec, model.User{Email: "ana@example.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	token := rec.Result().Cookies()[0].Value
	if _, err := f.srv.parseSession(token); err != nil {
		t.Fatalf("expected fresh session to parse: %v", err)
	}
	f.srv.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, err := f.srv.parseSession(token); err == nil {
		t.Fatalf("expected expired session to be rejected")
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}

func TestWebsocket_BroadcastsChanges(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ana := f.login(t, "ana@example.com", "anapw")

	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	hdr := http.Header{}
	for _, ck := range ana.c.Jar.Cookies(mustURL(t, f.ts.URL)) {
		hdr.Add("Cookie", ck.String())
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, hdr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.srv.hub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	code, body := ana.post("/submit_complaint_ajax", map[string]string{"complaint": "Live feed should see this"})
	if code != http.StatusOK {
		t.Fatalf("submit: %d %v", code, body)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	id := body["complaint"].(map[string]any)["_id"]
	if ev.Type != EventChanged || ev.Data.Kind != ChangeCreated || ev.Data.ID != id {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestWebsocket_RequiresSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected dial without session to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake, got %+v", resp)
	}
}

func TestListComplaints_CompressesLargeResponses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	for i := 0; i < 40; i++ {
		f.seedComplaint(t, "ana@example.com", fmt.Sprintf("Complaint number %d about the broken heating", i))
	}
	admin := f.login(t, "admin@example.com", "adminpw")

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/api/complaints", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	// Setting the header by hand disables the transport's transparent
	// decompression, so the encoding stays visible.
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := admin.c.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", got)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var out struct {
		Complaints []model.Complaint `json:"complaints"`
	}
	if err := json.NewDecoder(zr).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Complaints) != 40 {
		t.Fatalf("expected 40 complaints, got %d", len(out.Complaints))
	}

	// The plain client path still decodes transparently.
	if code, body := admin.get("/api/complaints"); code != http.StatusOK || len(body["complaints"].([]any)) != 40 {
		t.Fatalf("plain list: %d", code)
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()
	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"https://LOCALHOST:8080", true},
		{"http://localhost:8080.evil.com", false},
		{"http://evil.com/http://localhost:8080", false},
		{"http://localhost:9090", false},
		{"null", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "http://localhost:8080/ws", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := sameOrigin(r); got != tc.want {
			t.Fatalf("origin %q: got %v want %v", tc.origin, got, tc.want)
		}
	}
}

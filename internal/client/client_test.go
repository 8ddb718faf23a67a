package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type rpcCall struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments"`
	Tag       int64           `json:"tag"`
}

type fakeDaemon struct {
	mu        sync.Mutex
	sessionID string
	conflicts int
	calls     []rpcCall
	reply     func(call rpcCall) (string, any)
}

func (d *fakeDaemon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.URL.Path != rpcPath || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get(sessionHeader) != d.sessionID {
		d.conflicts++
		w.Header().Set(sessionHeader, d.sessionID)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("<h1>409: Conflict</h1>"))
		return
	}
	var call rpcCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d.calls = append(d.calls, call)
	result, args := "success", any(nil)
	if d.reply != nil {
		result, args = d.reply(call)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "arguments": args, "tag": call.Tag})
}

func newTestClient(t *testing.T, daemon *fakeDaemon) *Client {
	t.Helper()
	server := httptest.NewServer(daemon)
	t.Cleanup(server.Close)
	return NewWithBaseURL(server.URL+"/", "", "")
}

func TestClientRenewsSessionOn409(t *testing.T) {
	daemon := &fakeDaemon{sessionID: "abc"}
	c := newTestClient(t, daemon)

	if err := c.TorrentStart(context.Background(), []int{1, 2}); err != nil {
		t.Fatalf("TorrentStart: %v", err)
	}
	if c.SessionID() != "abc" || daemon.conflicts != 1 {
		t.Fatalf("expected one handshake, got session=%q conflicts=%d", c.SessionID(), daemon.conflicts)
	}
	if err := c.TorrentStop(context.Background(), []int{1}); err != nil {
		t.Fatalf("TorrentStop: %v", err)
	}
	if daemon.conflicts != 1 {
		t.Fatalf("expected cached session id to be reused, conflicts=%d", daemon.conflicts)
	}
	if len(daemon.calls) != 2 || daemon.calls[0].Method != "torrent-start" || daemon.calls[1].Method != "torrent-stop" {
		t.Fatalf("unexpected calls: %#v", daemon.calls)
	}
	if string(daemon.calls[0].Arguments) != `{"ids":[1,2]}` {
		t.Fatalf("unexpected arguments: %s", daemon.calls[0].Arguments)
	}

	daemon.mu.Lock()
	daemon.sessionID = "rotated"
	daemon.mu.Unlock()
	if err := c.TorrentVerify(context.Background(), []int{1}); err != nil {
		t.Fatalf("TorrentVerify after rotation: %v", err)
	}
	if c.SessionID() != "rotated" {
		t.Fatalf("expected rotated session id, got %q", c.SessionID())
	}
}

func TestClientTorrentGetDecodesTable(t *testing.T) {
	daemon := &fakeDaemon{reply: func(call rpcCall) (string, any) {
		return "success", map[string]any{
			"torrents": []any{
				[]any{"id", "name", "status"},
				[]any{1, "alpha", 4},
				[]any{2, "beta", 0},
			},
			"removed": []int{9},
		}
	}}
	c := newTestClient(t, daemon)
	result, err := c.TorrentGetRecent(context.Background(), []string{"id", "name", "status"})
	if err != nil {
		t.Fatalf("TorrentGetRecent: %v", err)
	}
	if len(result.Torrents) != 2 || string(result.Torrents[1]["name"]) != `"beta"` {
		t.Fatalf("unexpected torrents: %#v", result.Torrents)
	}
	if len(result.Removed) != 1 || result.Removed[0] != 9 {
		t.Fatalf("unexpected removed: %#v", result.Removed)
	}
	var req struct {
		IDs    string   `json:"ids"`
		Format string   `json:"format"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(daemon.calls[0].Arguments, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.IDs != RecentlyActive || req.Format != "table" || len(req.Fields) != 3 {
		t.Fatalf("unexpected request: %#v", req)
	}
}

func TestClientTorrentGetAllOmitsIDs(t *testing.T) {
	daemon := &fakeDaemon{reply: func(call rpcCall) (string, any) {
		return "success", map[string]any{"torrents": []any{map[string]any{"id": 3, "name": "obj"}}}
	}}
	c := newTestClient(t, daemon)
	result, err := c.TorrentGet(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("TorrentGet: %v", err)
	}
	if len(result.Torrents) != 1 || string(result.Torrents[0]["id"]) != "3" {
		t.Fatalf("unexpected torrents: %#v", result.Torrents)
	}
	if strings.Contains(string(daemon.calls[0].Arguments), `"ids"`) {
		t.Fatalf("expected ids to be omitted: %s", daemon.calls[0].Arguments)
	}
}

func TestClientReportsRPCFailure(t *testing.T) {
	daemon := &fakeDaemon{reply: func(call rpcCall) (string, any) {
		return "invalid or corrupt torrent file", nil
	}}
	c := newTestClient(t, daemon)
	_, err := c.TorrentAdd(context.Background(), AddRequest{URL: "http://example.org/x.torrent"})
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Method != "torrent-add" {
		t.Fatalf("expected RPCError, got %v", err)
	}
}

func TestClientReportsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"result":"success","arguments":{"version":"4.0.5","rpc-version":17}}`))
	}))
	defer server.Close()

	_, err := NewWithBaseURL(server.URL, "admin", "wrong").SessionGet(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	session, err := NewWithBaseURL(server.URL, "admin", "secret").SessionGet(context.Background())
	if err != nil {
		t.Fatalf("SessionGet: %v", err)
	}
	if session.Version != "4.0.5" || session.RPCVersion != 17 {
		t.Fatalf("unexpected session: %#v", session)
	}
}

func TestClientTorrentAddNormalizesHash(t *testing.T) {
	daemon := &fakeDaemon{reply: func(call rpcCall) (string, any) {
		return "success", map[string]any{"torrent-duplicate": map[string]any{"id": 4, "name": "dup", "hashString": "h"}}
	}}
	c := newTestClient(t, daemon)
	hash := strings.Repeat("AB", 20)
	added, err := c.TorrentAdd(context.Background(), AddRequest{URL: hash, Paused: true})
	if err != nil {
		t.Fatalf("TorrentAdd: %v", err)
	}
	if !added.Duplicate || added.ID != 4 {
		t.Fatalf("unexpected add result: %#v", added)
	}
	var req map[string]any
	_ = json.Unmarshal(daemon.calls[0].Arguments, &req)
	if req["filename"] != "magnet:?xt=urn:btih:"+strings.ToLower(hash) || req["paused"] != true {
		t.Fatalf("unexpected add request: %#v", req)
	}
}

func TestClientActionRequiresIDs(t *testing.T) {
	c := NewWithBaseURL("http://127.0.0.1:1", "", "")
	if err := c.TorrentStart(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty ids")
	}
	if err := c.QueueMove(context.Background(), QueueDirection("sideways"), []int{1}); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func TestDecodeAPIErrorStripsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html><body><h1>403: Forbidden</h1><p>Unauthorized IP Address.</p></body></html>"))
	}))
	defer server.Close()
	_, err := NewWithBaseURL(server.URL, "", "").SessionStats(context.Background())
	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 api error, got %v", err)
	}
	if apiErr.Message != "403: Forbidden Unauthorized IP Address." {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestDecodeTorrentRowsSkipsMalformedEntries(t *testing.T) {
	rows, skipped, err := decodeTorrentRows(json.RawMessage(`[{"id":1,"name":"a"},5,null,{"id":3,"name":"c"}]`))
	if err != nil {
		t.Fatalf("object format: %v", err)
	}
	if skipped != 2 || len(rows) != 2 || string(rows[0]["id"]) != "1" || string(rows[1]["id"]) != "3" {
		t.Fatalf("unexpected object rows %#v (skipped %d)", rows, skipped)
	}

	rows, skipped, err = decodeTorrentRows(json.RawMessage(`[["id","name"],[1,"a"],"oops",[3,"c"]]`))
	if err != nil {
		t.Fatalf("table format: %v", err)
	}
	if skipped != 1 || len(rows) != 2 || string(rows[1]["name"]) != `"c"` {
		t.Fatalf("unexpected table rows %#v (skipped %d)", rows, skipped)
	}
}

func TestDecodeTorrentRowsRejectsBadHeader(t *testing.T) {
	if _, _, err := decodeTorrentRows(json.RawMessage(`[[1,2],[1,"a"]]`)); err == nil {
		t.Fatalf("expected header error")
	}
	if _, _, err := decodeTorrentRows(json.RawMessage(`{"id":1}`)); err == nil {
		t.Fatalf("expected error for a non-list payload")
	}
}

func TestClientTorrentGetKeepsGoodRowsAroundBadOnes(t *testing.T) {
	daemon := &fakeDaemon{reply: func(call rpcCall) (string, any) {
		return "success", map[string]any{
			"torrents": []any{
				[]any{"id", "name"},
				[]any{1, "alpha"},
				"oops",
				[]any{3, "gamma"},
			},
		}
	}}
	c := newTestClient(t, daemon)
	result, err := c.TorrentGet(context.Background(), nil, []string{"id", "name"})
	if err != nil {
		t.Fatalf("TorrentGet: %v", err)
	}
	if len(result.Torrents) != 2 || result.Skipped != 1 {
		t.Fatalf("expected 2 rows and 1 skipped, got %d and %d", len(result.Torrents), result.Skipped)
	}
}

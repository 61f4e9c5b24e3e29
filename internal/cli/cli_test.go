package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/httpapi"
)

// fakeMojang serves a single known player, Notch, with one previous name.
func fakeMojang(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/profiles/minecraft/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(strings.TrimPrefix(r.URL.Path, "/users/profiles/minecraft/"), "notch") {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch"}`))
	})
	mux.HandleFunc("/user/profiles/069a79f444e94726a5befca90e38aaf5/names", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Notch_"},{"name":"Notch","changedToAt":0}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// runCLI executes the root command with isolated config and data dirs.
func runCLI(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("ALIASES_API_URL", apiURL)
	cfgFile, jsonFlag, verbose = "", false, false

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLookupCmd_Plain(t *testing.T) {
	api := fakeMojang(t)

	out, err := runCLI(t, api.URL, "lookup", "--format", "plain", "Notch")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	for _, want := range []string{
		"Notch (January 01 1970 00:00:00)",
		strings.Repeat("-", len("Notch")+18),
		"Notch_ (" + chat.MsgOriginal + ")",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLookupCmd_InvalidUsernameExitsZero(t *testing.T) {
	api := fakeMojang(t)

	out, err := runCLI(t, api.URL, "lookup", "--format", "plain", "nobody")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if strings.TrimSpace(out) != chat.MsgInvalidUsername {
		t.Errorf("output = %q, want %q", out, chat.MsgInvalidUsername)
	}
}

func TestLookupCmd_JSON(t *testing.T) {
	api := fakeMojang(t)

	out, err := runCLI(t, api.URL, "lookup", "--json", "Notch")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	var resp httpapi.LookupResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("failed to parse output: %v\n%s", err, out)
	}
	if resp.Outcome != "report" {
		t.Errorf("outcome = %q, want report", resp.Outcome)
	}
	if resp.UUID != "069a79f4-44e9-4726-a5be-fca90e38aaf5" {
		t.Errorf("uuid = %q", resp.UUID)
	}
	if len(resp.Previous) != 1 || resp.Previous[0].Name != "Notch_" {
		t.Errorf("previous = %+v", resp.Previous)
	}
}

func TestLookupCmd_RequiresUsername(t *testing.T) {
	if _, err := runCLI(t, "http://127.0.0.1:1", "lookup"); err == nil {
		t.Error("expected error without username")
	}
}

func TestLookupCmd_BadFormat(t *testing.T) {
	api := fakeMojang(t)
	if _, err := runCLI(t, api.URL, "lookup", "--format", "html", "Notch"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPermCmds(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) string {
		t.Helper()
		t.Setenv("XDG_CONFIG_HOME", dir)
		t.Setenv("XDG_DATA_HOME", dir)
		cfgFile, jsonFlag, verbose = "", false, false

		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	if out := run("perm", "set", "Notch", "aliases.use", "deny"); !strings.Contains(out, "Denied aliases.use for Notch") {
		t.Errorf("set output = %q", out)
	}
	if out := run("perm", "list", "notch"); !strings.Contains(out, "aliases.use") || !strings.Contains(out, "deny") {
		t.Errorf("list output = %q", out)
	}
	run("perm", "unset", "NOTCH", "aliases.use")
	if out := run("perm", "list", "notch"); !strings.Contains(out, "No permissions stored") {
		t.Errorf("list after unset = %q", out)
	}
}

func TestParseAllowed(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"allow", true, false},
		{"DENY", false, false},
		{"yes", true, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		got, err := parseAllowed(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAllowed(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAllowed(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

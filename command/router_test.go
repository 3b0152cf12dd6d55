package command

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goLoad "github.com/MrEthical07/goLoad"
	"github.com/MrEthical07/goLoad/dispatch"
)

const admin = "admin"

func newTestRouter(t *testing.T) (*Router, *goLoad.Engine) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	engine, err := goLoad.New().
		WithAdminIdentity(admin).
		WithEndpoints([]dispatch.Endpoint{{Name: "worker", BaseURL: srv.URL, Token: "tok"}}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return New(engine), engine
}

func seedUser(t *testing.T, r *Router, identity string) {
	t.Helper()
	reply := r.Handle(context.Background(), admin, "adduser "+identity+" tok-"+identity+" 60 1")
	if !strings.Contains(reply, "saved") {
		t.Fatalf("seed failed: %q", reply)
	}
}

func TestHelpByPrivilege(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	adminHelp := r.Handle(ctx, admin, "help")
	if !strings.Contains(adminHelp, "adduser") {
		t.Fatalf("admin help missing admin commands:\n%s", adminHelp)
	}

	seedUser(t, r, "alice")
	userHelp := r.Handle(ctx, "alice", "help")
	if strings.Contains(userHelp, "adduser") {
		t.Fatalf("principal help leaks admin commands:\n%s", userHelp)
	}
	if !strings.Contains(userHelp, "run <host>") {
		t.Fatalf("principal help missing run usage:\n%s", userHelp)
	}

	unknownHelp := r.Handle(ctx, "stranger", "help")
	if strings.Contains(unknownHelp, "run <host>") {
		t.Fatalf("unknown identity sees run usage:\n%s", unknownHelp)
	}
	if !strings.Contains(unknownHelp, "no access") {
		t.Fatalf("unknown identity help not explanatory:\n%s", unknownHelp)
	}
}

func TestRunCommand(t *testing.T) {
	r, engine := newTestRouter(t)
	ctx := context.Background()

	seedUser(t, r, "alice")

	reply := r.Handle(ctx, "alice", "run 198.51.100.7 8080 30 get")
	if !strings.Contains(reply, "run started") {
		t.Fatalf("expected run start confirmation, got %q", reply)
	}
	if !strings.Contains(reply, "GET") {
		t.Fatalf("reply missing canonical method name: %q", reply)
	}
	if engine.ActiveSessions() != 1 {
		t.Fatalf("active = %d, want 1", engine.ActiveSessions())
	}

	// Concurrency limit of 1 is now in use.
	reply = r.Handle(ctx, "alice", "run 198.51.100.7 8080 30 get")
	if !strings.Contains(reply, "quota exceeded") {
		t.Fatalf("expected quota message, got %q", reply)
	}

	reply = r.Handle(ctx, "alice", "run 198.51.100.7 8080 notanumber get")
	if !strings.Contains(reply, "not a number") {
		t.Fatalf("expected parse guidance, got %q", reply)
	}

	reply = r.Handle(ctx, "alice", "run 198.51.100.7 8080")
	if !strings.Contains(reply, "usage:") {
		t.Fatalf("expected usage line, got %q", reply)
	}

	reply = r.Handle(ctx, "stranger", "run 198.51.100.7 8080 10 get")
	if !strings.Contains(reply, "not authorized") {
		t.Fatalf("expected authorization guidance, got %q", reply)
	}
}

func TestUnknownMethodPointsAtCatalog(t *testing.T) {
	r, _ := newTestRouter(t)
	seedUser(t, r, "alice")

	reply := r.Handle(context.Background(), "alice", "run 198.51.100.7 8080 10 smurf")
	if !strings.Contains(reply, "see: methods") {
		t.Fatalf("expected catalog pointer, got %q", reply)
	}
}

func TestMethodsCommand(t *testing.T) {
	r, _ := newTestRouter(t)

	reply := r.Handle(context.Background(), admin, "methods")
	if !strings.Contains(reply, "GET") || !strings.Contains(reply, "UDP") {
		t.Fatalf("methods listing incomplete:\n%s", reply)
	}
}

func TestSessionsAndStop(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	seedUser(t, r, "alice")

	if reply := r.Handle(ctx, "alice", "sessions"); reply != "no active sessions" {
		t.Fatalf("expected empty listing, got %q", reply)
	}

	start := r.Handle(ctx, "alice", "run 198.51.100.7 8080 30 get")
	listing := r.Handle(ctx, "alice", "sessions")
	if !strings.Contains(listing, "198.51.100.7:8080") {
		t.Fatalf("listing missing target:\n%s", listing)
	}

	// Pull the session id out of the start confirmation.
	open := strings.LastIndex(start, "(session ")
	if open < 0 {
		t.Fatalf("no session id in %q", start)
	}
	id := strings.TrimSuffix(start[open+len("(session "):], ")")

	if reply := r.Handle(ctx, "stranger", "stop "+id); !strings.Contains(reply, "not authorized") {
		t.Fatalf("unknown identity stopped a session: %q", reply)
	}
	if reply := r.Handle(ctx, "alice", "stop "+id); !strings.Contains(reply, "stopped") {
		t.Fatalf("owner stop failed: %q", reply)
	}
	if reply := r.Handle(ctx, "alice", "stop "+id); !strings.Contains(reply, "see: sessions") {
		t.Fatalf("expected not-found guidance, got %q", reply)
	}
}

func TestStatusCommand(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	seedUser(t, r, "alice")

	reply := r.Handle(ctx, "alice", "status")
	if !strings.Contains(reply, "identity: alice") {
		t.Fatalf("status missing identity:\n%s", reply)
	}
	if !strings.Contains(reply, "max duration: 60s") {
		t.Fatalf("status missing duration cap:\n%s", reply)
	}
	if !strings.Contains(reply, "never expires") {
		t.Fatalf("status missing validity:\n%s", reply)
	}

	if reply := r.Handle(ctx, admin, "status"); !strings.Contains(reply, "administrator") {
		t.Fatalf("admin status wrong: %q", reply)
	}
}

func TestUserAdministration(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	reply := r.Handle(ctx, admin, "adduser bob tok-bob 120 2 30")
	if !strings.Contains(reply, "saved") {
		t.Fatalf("adduser failed: %q", reply)
	}

	users := r.Handle(ctx, admin, "users")
	if !strings.Contains(users, "bob") || !strings.Contains(users, "max 120s") {
		t.Fatalf("users listing wrong:\n%s", users)
	}
	if !strings.Contains(users, "days left") {
		t.Fatalf("expiry-days not applied:\n%s", users)
	}

	if reply := r.Handle(ctx, admin, "updateuser bob max_duration 300"); !strings.Contains(reply, "updated") {
		t.Fatalf("updateuser failed: %q", reply)
	}
	if users := r.Handle(ctx, admin, "users"); !strings.Contains(users, "max 300s") {
		t.Fatalf("update not reflected:\n%s", users)
	}

	if reply := r.Handle(ctx, admin, "updateuser bob color blue"); !strings.Contains(reply, "invalid input") {
		t.Fatalf("expected field guidance, got %q", reply)
	}

	if reply := r.Handle(ctx, admin, "deluser bob"); !strings.Contains(reply, "removed") {
		t.Fatalf("deluser failed: %q", reply)
	}
	if reply := r.Handle(ctx, admin, "deluser bob"); !strings.Contains(reply, "see: users") {
		t.Fatalf("expected not-found guidance, got %q", reply)
	}

	// Admin commands are refused for everyone else.
	seedUser(t, r, "alice")
	if reply := r.Handle(ctx, "alice", "users"); !strings.Contains(reply, "not allowed") {
		t.Fatalf("non-admin listed users: %q", reply)
	}
	if reply := r.Handle(ctx, "alice", "adduser eve tok 10 1"); !strings.Contains(reply, "not allowed") {
		t.Fatalf("non-admin added a user: %q", reply)
	}
}

func TestUnknownCommand(t *testing.T) {
	r, _ := newTestRouter(t)

	reply := r.Handle(context.Background(), admin, "frobnicate")
	if !strings.Contains(reply, "unknown command") || !strings.Contains(reply, "help") {
		t.Fatalf("expected help pointer, got %q", reply)
	}

	if reply := r.Handle(context.Background(), admin, "   "); !strings.Contains(reply, "commands:") {
		t.Fatalf("blank line should render help, got %q", reply)
	}
}

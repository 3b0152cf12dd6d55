package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	goLoad "github.com/MrEthical07/goLoad"
	"github.com/MrEthical07/goLoad/principal"
)

// Router maps command lines onto engine operations.
type Router struct {
	engine *goLoad.Engine
}

// New creates a Router over the engine.
func New(engine *goLoad.Engine) *Router {
	return &Router{engine: engine}
}

// Handle parses one command line issued by identity and returns the reply
// text. Unknown commands and engine rejections render as guidance, never
// as a failure of the router itself.
func (r *Router) Handle(ctx context.Context, identity, line string) string {
	if r == nil || r.engine == nil {
		return "service unavailable"
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return r.help(identity)
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help":
		return r.help(identity)
	case "methods":
		return r.methods()
	case "run":
		return r.run(ctx, identity, args)
	case "status":
		return r.status(identity)
	case "sessions":
		return r.sessions(ctx, identity)
	case "stop":
		return r.stop(ctx, identity, args)
	case "adduser":
		return r.addUser(ctx, identity, args)
	case "updateuser":
		return r.updateUser(ctx, identity, args)
	case "deluser":
		return r.delUser(ctx, identity, args)
	case "users":
		return r.users(identity)
	default:
		return fmt.Sprintf("unknown command %q, try: help", cmd)
	}
}

func (r *Router) help(identity string) string {
	var b strings.Builder
	b.WriteString("commands:\n")
	b.WriteString("  help\n")
	b.WriteString("  methods\n")

	if !r.engine.IsAdmin(identity) {
		if _, err := r.engine.Authorize(identity); err != nil {
			b.WriteString("you have no access yet, ask the administrator")
			return b.String()
		}
	}

	b.WriteString("  run <host> <port> <seconds> <method>\n")
	b.WriteString("  status\n")
	b.WriteString("  sessions\n")
	b.WriteString("  stop <session-id>")

	if r.engine.IsAdmin(identity) {
		b.WriteString("\nadmin commands:\n")
		b.WriteString("  users\n")
		b.WriteString("  adduser <identity> <token> <max-seconds> <max-concurrent> [expiry-days]\n")
		b.WriteString("  updateuser <identity> <token|max_duration|concurrency_limit|expiry_days> <value>\n")
		b.WriteString("  deluser <identity>")
	}
	return b.String()
}

func (r *Router) methods() string {
	methods := r.engine.Methods()
	if len(methods) == 0 {
		return "no methods loaded"
	}
	var b strings.Builder
	b.WriteString("methods:\n")
	for i, m := range methods {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %s - %s", m.Name, m.Description)
	}
	return b.String()
}

func (r *Router) run(ctx context.Context, identity string, args []string) string {
	if len(args) != 4 {
		return "usage: run <host> <port> <seconds> <method>"
	}
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Sprintf("port %q is not a number", args[1])
	}
	seconds, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Sprintf("duration %q is not a number of seconds", args[2])
	}

	result, err := r.engine.Launch(ctx, goLoad.RunRequest{
		Identity:        identity,
		Host:            args[0],
		Port:            port,
		DurationSeconds: seconds,
		Method:          args[3],
	})
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("run started: %s %s:%d for %ds on %d endpoints (session %s)",
		result.Method, result.Host, result.Port, result.DurationSeconds,
		result.Endpoints, result.SessionID)
}

func (r *Router) status(identity string) string {
	if r.engine.IsAdmin(identity) {
		return fmt.Sprintf("administrator, %d active sessions total", r.engine.ActiveSessions())
	}
	st, err := r.engine.PrincipalStatus(identity)
	if err != nil {
		return renderError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "identity: %s\n", st.Identity)
	fmt.Fprintf(&b, "max duration: %ds\n", st.MaxDurationSeconds)
	fmt.Fprintf(&b, "concurrency: %d/%d in use\n", st.ActiveSessions, st.ConcurrencyLimit)
	fmt.Fprintf(&b, "endpoints: %d\n", st.Endpoints)
	b.WriteString("access: ")
	b.WriteString(renderValidity(st.Validity))
	return b.String()
}

func (r *Router) sessions(ctx context.Context, identity string) string {
	sessions, err := r.engine.Sessions(ctx, identity)
	if err != nil {
		return renderError(err)
	}
	if len(sessions) == 0 {
		return "no active sessions"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d active:", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&b, "\n  %s  %s %s:%d  %d/%ds elapsed, %ds left  (%s)",
			s.ID, s.Method, s.Host, s.Port,
			s.ElapsedSeconds, s.DurationSeconds, s.RemainingSeconds, s.Owner)
	}
	return b.String()
}

func (r *Router) stop(ctx context.Context, identity string, args []string) string {
	if len(args) != 1 {
		return "usage: stop <session-id>"
	}
	if err := r.engine.StopRun(ctx, identity, args[0]); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("session %s stopped", args[0])
}

func (r *Router) addUser(ctx context.Context, identity string, args []string) string {
	if len(args) != 4 && len(args) != 5 {
		return "usage: adduser <identity> <token> <max-seconds> <max-concurrent> [expiry-days]"
	}
	maxDuration, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Sprintf("max-seconds %q is not a number", args[2])
	}
	limit, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Sprintf("max-concurrent %q is not a number", args[3])
	}

	rec := principal.Record{
		Token:              args[1],
		MaxDurationSeconds: maxDuration,
		ConcurrencyLimit:   limit,
	}
	if err := r.engine.UpsertPrincipal(ctx, identity, args[0], rec); err != nil {
		return renderError(err)
	}
	if len(args) == 5 {
		if err := r.engine.UpdatePrincipalField(ctx, identity, args[0], goLoad.FieldExpiryDays, args[4]); err != nil {
			return renderError(err)
		}
	}
	return fmt.Sprintf("principal %s saved", args[0])
}

func (r *Router) updateUser(ctx context.Context, identity string, args []string) string {
	if len(args) != 3 {
		return "usage: updateuser <identity> <field> <value>"
	}
	if err := r.engine.UpdatePrincipalField(ctx, identity, args[0], args[1], args[2]); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("principal %s updated", args[0])
}

func (r *Router) delUser(ctx context.Context, identity string, args []string) string {
	if len(args) != 1 {
		return "usage: deluser <identity>"
	}
	if err := r.engine.RemovePrincipal(ctx, identity, args[0]); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("principal %s removed", args[0])
}

func (r *Router) users(identity string) string {
	list, err := r.engine.Principals(identity)
	if err != nil {
		return renderError(err)
	}
	if len(list) == 0 {
		return "no principals"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d principals:", len(list))
	for _, p := range list {
		fmt.Fprintf(&b, "\n  %s  max %ds, limit %d, %d running, %s",
			p.Identity, p.MaxDurationSeconds, p.ConcurrencyLimit,
			p.ActiveSessions, renderValidity(p.Validity))
	}
	return b.String()
}

func renderValidity(v goLoad.Validity) string {
	switch {
	case v.Expired:
		return fmt.Sprintf("expired on %s", v.Expires)
	case v.Unbounded:
		return "never expires"
	default:
		return fmt.Sprintf("%d days left (until %s)", v.Days, v.Expires)
	}
}

func renderError(err error) string {
	switch {
	case errors.Is(err, goLoad.ErrUnauthorized):
		return "you are not authorized, ask the administrator for access"
	case errors.Is(err, goLoad.ErrPrincipalExpired):
		return fmt.Sprintf("your access has expired (%v)", err)
	case errors.Is(err, goLoad.ErrDurationLimitExceeded),
		errors.Is(err, goLoad.ErrConcurrencyLimitExceeded):
		return fmt.Sprintf("quota exceeded: %v", err)
	case errors.Is(err, goLoad.ErrMethodNotFound):
		return fmt.Sprintf("%v, see: methods", err)
	case errors.Is(err, goLoad.ErrSessionNotFound):
		return fmt.Sprintf("%v, see: sessions", err)
	case errors.Is(err, goLoad.ErrPrincipalNotFound):
		return fmt.Sprintf("%v, see: users", err)
	case errors.Is(err, goLoad.ErrForbidden):
		return fmt.Sprintf("not allowed: %v", err)
	case errors.Is(err, goLoad.ErrDispatchFailed):
		return fmt.Sprintf("run not started, endpoint dispatch failed: %v", err)
	case errors.Is(err, goLoad.ErrPersistFailed):
		return fmt.Sprintf("saved in memory but persistence failed: %v", err)
	case errors.Is(err, goLoad.ErrValidation):
		return fmt.Sprintf("invalid input: %v", err)
	default:
		return err.Error()
	}
}

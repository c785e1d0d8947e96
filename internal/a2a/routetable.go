package a2a

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"trpc.group/trpc-go/trpc-a2a-go/server"
)

// Route pairs an agent's projected card with the handler serving its A2A
// endpoint.
type Route struct {
	Card    server.AgentCard
	Handler http.Handler
}

// RouteTable dispatches /a2a/agent/{name}/... requests to per-agent handlers.
// The route set is an immutable snapshot behind an atomic pointer: readers
// never block, and a reconcile replaces the whole table in one swap so no
// request observes a half-updated view.
type RouteTable struct {
	basePathPrefix string
	snapshot       atomic.Pointer[map[string]Route]
}

var _ http.Handler = &RouteTable{}

// NewRouteTable builds an empty table dispatching under pathPrefix, e.g.
// "/a2a/agent".
func NewRouteTable(pathPrefix string) *RouteTable {
	t := &RouteTable{basePathPrefix: pathPrefix}
	empty := map[string]Route{}
	t.snapshot.Store(&empty)
	return t
}

// Swap atomically replaces the full route set. The caller must not mutate
// routes after handing it over.
func (t *RouteTable) Swap(routes map[string]Route) {
	if routes == nil {
		routes = map[string]Route{}
	}
	t.snapshot.Store(&routes)
}

// Get returns the route for an agent, if present.
func (t *RouteTable) Get(name string) (Route, bool) {
	route, ok := (*t.snapshot.Load())[name]
	return route, ok
}

// Routes returns the current snapshot. Callers must treat it as read-only.
func (t *RouteTable) Routes() map[string]Route {
	return *t.snapshot.Load()
}

// Cards returns the projected cards of all routed agents, sorted by name.
func (t *RouteTable) Cards() []server.AgentCard {
	routes := t.Routes()
	cards := make([]server.AgentCard, 0, len(routes))
	for _, route := range routes {
		cards = append(cards, route.Card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards
}

func (t *RouteTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, t.basePathPrefix)
	agentName, _ := popPath(path)
	if agentName == "" {
		http.Error(w, "Agent name not provided", http.StatusBadRequest)
		return
	}

	route, ok := t.Get(agentName)
	if !ok {
		http.Error(
			w,
			fmt.Sprintf("Agent %s not found", agentName),
			http.StatusNotFound,
		)
		return
	}

	route.Handler.ServeHTTP(w, r)
}

// popPath separates the first element of a path from the rest.
// It returns the first path element and the remaining path.
// If the path is empty or only contains a separator, it returns empty strings.
func popPath(path string) (firstElement, remainingPath string) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", ""
	}

	pos := strings.Index(path, "/")
	if pos == -1 {
		return path, ""
	}

	return path[:pos], path[pos+1:]
}

package a2a

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-a2a-go/server"
)

func namedHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, name)
	})
}

func routesFor(names ...string) map[string]Route {
	routes := make(map[string]Route, len(names))
	for _, name := range names {
		routes[name] = Route{
			Card:    server.AgentCard{Name: name},
			Handler: namedHandler(name),
		}
	}
	return routes
}

func TestRouteTableDispatch(t *testing.T) {
	table := NewRouteTable("/a2a/agent")
	table.Swap(routesFor("researcher", "writer"))

	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/a2a/agent/researcher/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "researcher", rec.Body.String())

	rec = httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a2a/agent/writer/.well-known/agent.json", nil))
	require.Equal(t, "writer", rec.Body.String())
}

func TestRouteTableUnknownAgent(t *testing.T) {
	table := NewRouteTable("/a2a/agent")
	table.Swap(routesFor("researcher"))

	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/a2a/agent/ghost/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Agent ghost not found")
}

func TestRouteTableMissingName(t *testing.T) {
	table := NewRouteTable("/a2a/agent")

	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/a2a/agent/", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteTableEmpty(t *testing.T) {
	table := NewRouteTable("/a2a/agent")

	rec := httptest.NewRecorder()
	table.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/a2a/agent/anyone/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteTableCardsSorted(t *testing.T) {
	table := NewRouteTable("/a2a/agent")
	table.Swap(routesFor("zebra", "alpha", "mango"))

	cards := table.Cards()
	require.Len(t, cards, 3)
	require.Equal(t, "alpha", cards[0].Name)
	require.Equal(t, "mango", cards[1].Name)
	require.Equal(t, "zebra", cards[2].Name)
}

// Requests racing a swap must see either the old or the new table, never a
// partial one.
func TestRouteTableSwapUnderLoad(t *testing.T) {
	table := NewRouteTable("/a2a/agent")
	table.Swap(routesFor("a", "b"))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rec := httptest.NewRecorder()
				table.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/a2a/agent/a/", nil))
				if rec.Code != http.StatusOK && rec.Code != http.StatusNotFound {
					t.Errorf("unexpected status %d", rec.Code)
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			table.Swap(routesFor("a", "b", "c"))
		} else {
			table.Swap(routesFor("b"))
		}
	}
	close(stop)
	wg.Wait()
}

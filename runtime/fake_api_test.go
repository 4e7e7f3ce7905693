package runtime_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aura-studio/lambdaweb/runtime"
	"github.com/gorilla/mux"
)

type fakeEvent struct {
	id      string
	arn     string
	trace   string
	payload string
}

type postedError struct {
	header  string
	Type    string `json:"errorType"`
	Message string `json:"errorMessage"`
}

// fakeRuntimeAPI serves queued events. Once the queue is empty, Next calls
// onDrain and then blocks until the client gives up.
type fakeRuntimeAPI struct {
	mu           sync.Mutex
	queue        []fakeEvent
	nextCalls    int
	responses    map[string][]byte
	errors       map[string]postedError
	initError    *postedError
	responseCode int
	onDrain      func()
	srv          *httptest.Server
}

func newFakeRuntimeAPI(t *testing.T, events ...fakeEvent) *fakeRuntimeAPI {
	t.Helper()
	f := &fakeRuntimeAPI{
		queue:        events,
		responses:    map[string][]byte{},
		errors:       map[string]postedError{},
		responseCode: http.StatusAccepted,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/2018-06-01/runtime").Subrouter()
	api.HandleFunc("/invocation/next", f.next).Methods(http.MethodGet)
	api.HandleFunc("/invocation/{id}/response", f.response).Methods(http.MethodPost)
	api.HandleFunc("/invocation/{id}/error", f.postError).Methods(http.MethodPost)
	api.HandleFunc("/init/error", f.initErr).Methods(http.MethodPost)

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRuntimeAPI) address() string {
	return strings.TrimPrefix(f.srv.URL, "http://")
}

func (f *fakeRuntimeAPI) next(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.nextCalls++
	if len(f.queue) == 0 {
		drain := f.onDrain
		f.mu.Unlock()
		if drain != nil {
			drain()
		}
		<-r.Context().Done()
		return
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	f.mu.Unlock()

	w.Header().Set("Lambda-Runtime-Aws-Request-Id", ev.id)
	w.Header().Set("Lambda-Runtime-Deadline-Ms", strconv.FormatInt(time.Now().Add(time.Minute).UnixMilli(), 10))
	w.Header().Set("Lambda-Runtime-Invoked-Function-Arn", ev.arn)
	if ev.trace != "" {
		w.Header().Set("Lambda-Runtime-Trace-Id", ev.trace)
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, ev.payload)
}

func (f *fakeRuntimeAPI) response(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	code := f.responseCode
	if code == http.StatusAccepted {
		f.responses[mux.Vars(r)["id"]] = body
	}
	f.mu.Unlock()
	w.WriteHeader(code)
}

func (f *fakeRuntimeAPI) postError(w http.ResponseWriter, r *http.Request) {
	var e postedError
	json.NewDecoder(r.Body).Decode(&e)
	e.header = r.Header.Get("Lambda-Runtime-Function-Error-Type")
	f.mu.Lock()
	f.errors[mux.Vars(r)["id"]] = e
	f.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func (f *fakeRuntimeAPI) initErr(w http.ResponseWriter, r *http.Request) {
	var e postedError
	json.NewDecoder(r.Body).Decode(&e)
	e.header = r.Header.Get("Lambda-Runtime-Function-Error-Type")
	f.mu.Lock()
	f.initError = &e
	f.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

// runUntilDrained runs e until every queued event has been handled.
func runUntilDrained(t *testing.T, f *fakeRuntimeAPI, e *runtime.Engine) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.mu.Lock()
	f.onDrain = cancel
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func (f *fakeRuntimeAPI) postedResponse(id string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.responses[id]
	return b, ok
}

func (f *fakeRuntimeAPI) postedError(id string) (postedError, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.errors[id]
	return e, ok
}

func (f *fakeRuntimeAPI) counts() (next int, responses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextCalls, len(f.responses)
}

func (f *fakeRuntimeAPI) postedInitError() *postedError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initError
}

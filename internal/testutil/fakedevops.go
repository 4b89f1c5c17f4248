package testutil

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
)

// FakeCollection is the collection name served by FakeDevOps.
const FakeCollection = "acme"

var wiqlTypePattern = regexp.MustCompile(`\[System\.WorkItemType\] = '((?:[^']|'')*)'`)

// FakeWorkItem is a work item held by FakeDevOps.
type FakeWorkItem struct {
	ID     int
	Type   domain.WorkItemType
	Fields map[string]any
}

// FakeIteration is an iteration held by FakeDevOps.
type FakeIteration struct {
	ID         string
	Name       string
	Attributes map[string]any
}

// RecordedRequest is one request received by FakeDevOps.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
	Auth   string
}

// FakeDevOps is an in-process stand-in for the remote work-tracking API.
// Operation keys match the devops operation names (list_projects,
// query_work_items, get_work_items, list_iterations).
type FakeDevOps struct {
	Server *httptest.Server
	Token  string

	mu         sync.Mutex
	projects   []string
	workItems  []FakeWorkItem
	iterations map[string][]FakeIteration
	statuses   map[string]int
	bodies     map[string]string
	delays     map[string]time.Duration
	requests   []RecordedRequest
}

// NewFakeDevOps starts a fake remote that accepts token and is closed when
// the test completes.
func NewFakeDevOps(t *testing.T, token string) *FakeDevOps {
	t.Helper()
	f := &FakeDevOps{
		Token:      token,
		iterations: make(map[string][]FakeIteration),
		statuses:   make(map[string]int),
		bodies:     make(map[string]string),
		delays:     make(map[string]time.Duration),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// Instance returns host:port of the fake, suitable as the remote instance.
func (f *FakeDevOps) Instance() string {
	u, _ := url.Parse(f.Server.URL)
	return u.Host
}

// AddProject registers a project name.
func (f *FakeDevOps) AddProject(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, name)
}

// AddWorkItem registers a work item of the given type.
func (f *FakeDevOps) AddWorkItem(id int, itemType domain.WorkItemType, title, start, finish string) {
	fields := map[string]any{"System.Title": title, "System.WorkItemType": string(itemType)}
	if start != "" {
		fields["Microsoft.VSTS.Scheduling.StartDate"] = start
	}
	if finish != "" {
		fields["Microsoft.VSTS.Scheduling.FinishDate"] = finish
	}
	f.AddRawWorkItem(FakeWorkItem{ID: id, Type: itemType, Fields: fields})
}

// AddRawWorkItem registers a work item with an arbitrary field bag.
func (f *FakeDevOps) AddRawWorkItem(item FakeWorkItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workItems = append(f.workItems, item)
}

// AddIteration registers a sprint under project.
func (f *FakeDevOps) AddIteration(project, id, name, start, finish string) {
	attrs := map[string]any{}
	if start != "" {
		attrs["startDate"] = start
	}
	if finish != "" {
		attrs["finishDate"] = finish
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.iterations[project] = append(f.iterations[project], FakeIteration{ID: id, Name: name, Attributes: attrs})
}

// FailWith makes every request for operation answer with status.
func (f *FakeDevOps) FailWith(operation string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[operation] = status
}

// RespondRaw makes operation answer 200 with a literal body.
func (f *FakeDevOps) RespondRaw(operation, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[operation] = body
}

// Delay holds every response for operation by d.
func (f *FakeDevOps) Delay(operation string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[operation] = d
}

// Requests returns a copy of the requests received so far.
func (f *FakeDevOps) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsFor returns the recorded requests whose path ends with suffix.
func (f *FakeDevOps) RequestsFor(suffix string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if strings.HasSuffix(r.Path, suffix) {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeDevOps) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   string(body),
		Auth:   r.Header.Get("Authorization"),
	})
	f.mu.Unlock()

	prefix, resource, ok := strings.Cut(r.URL.Path, "/_apis/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	segments := strings.Split(strings.TrimPrefix(prefix, "/"), "/")
	if len(segments) == 0 || segments[0] != FakeCollection {
		http.NotFound(w, r)
		return
	}
	project := ""
	if len(segments) > 1 {
		project = segments[1]
	}

	op := operationFor(r.Method, resource)
	if op == "" {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	delay := f.delays[op]
	status := f.statuses[op]
	raw, hasRaw := f.bodies[op]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if f.Token != "" && r.Header.Get("Authorization") != basicAuth(f.Token) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"injected failure"}`))
		return
	}
	if hasRaw {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	}

	switch op {
	case "list_projects":
		f.writeProjects(w)
	case "query_work_items":
		f.writeWIQL(w, body)
	case "get_work_items":
		f.writeWorkItems(w, r.URL.Query().Get("ids"))
	case "list_iterations":
		f.writeIterations(w, project)
	}
}

func operationFor(method, resource string) string {
	switch {
	case method == http.MethodGet && resource == "projects":
		return "list_projects"
	case method == http.MethodPost && resource == "wit/wiql":
		return "query_work_items"
	case method == http.MethodGet && resource == "wit/workitems":
		return "get_work_items"
	case method == http.MethodGet && resource == "work/teamsettings/iterations":
		return "list_iterations"
	}
	return ""
}

func (f *FakeDevOps) writeProjects(w http.ResponseWriter) {
	f.mu.Lock()
	value := make([]map[string]any, 0, len(f.projects))
	for i, name := range f.projects {
		value = append(value, map[string]any{
			"id":    strconv.Itoa(1000+i) + "-0000-0000-0000-000000000000",
			"name":  name,
			"state": "wellFormed",
		})
	}
	f.mu.Unlock()
	writeJSON(w, map[string]any{"count": len(value), "value": value})
}

func (f *FakeDevOps) writeWIQL(w http.ResponseWriter, body []byte) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m := wiqlTypePattern.FindStringSubmatch(req.Query)
	if m == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	itemType := domain.WorkItemType(strings.ReplaceAll(m[1], "''", "'"))

	f.mu.Lock()
	refs := []map[string]any{}
	for _, item := range f.workItems {
		if item.Type == itemType {
			refs = append(refs, map[string]any{"id": item.ID})
		}
	}
	f.mu.Unlock()
	writeJSON(w, map[string]any{"queryType": "flat", "workItems": refs})
}

func (f *FakeDevOps) writeWorkItems(w http.ResponseWriter, ids string) {
	f.mu.Lock()
	byID := make(map[int]FakeWorkItem, len(f.workItems))
	for _, item := range f.workItems {
		byID[item.ID] = item
	}
	f.mu.Unlock()

	value := []map[string]any{}
	for _, s := range strings.Split(ids, ",") {
		id, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if item, ok := byID[id]; ok {
			value = append(value, map[string]any{"id": item.ID, "rev": 1, "fields": item.Fields})
		}
	}
	writeJSON(w, map[string]any{"count": len(value), "value": value})
}

func (f *FakeDevOps) writeIterations(w http.ResponseWriter, project string) {
	f.mu.Lock()
	value := []map[string]any{}
	for _, it := range f.iterations[project] {
		value = append(value, map[string]any{
			"id":         it.ID,
			"name":       it.Name,
			"path":       project + "\\" + it.Name,
			"attributes": it.Attributes,
		})
	}
	f.mu.Unlock()
	writeJSON(w, map[string]any{"count": len(value), "value": value})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func basicAuth(token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+token))
}

package devops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
)

// maxErrorBody bounds how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Client reads planning data from one remote collection.
//
// Every list operation returns a non-nil, possibly empty slice. On failure the
// slice is empty and the error says why (ErrTimeout, ErrUnauthorized,
// ErrUnavailable, ErrUnexpectedStatus, ErrMalformedResponse), so callers that
// only look at the slice get the degrade-to-empty behavior for free.
type Client interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	QueryWorkItems(ctx context.Context, project string, itemType domain.WorkItemType) ([]domain.WorkItem, error)
	ListIterations(ctx context.Context, project string) ([]domain.Sprint, error)
	TestConnection(ctx context.Context) (bool, string)
}

// azureClient implements Client over the Azure DevOps REST API.
type azureClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client for the collection described by cfg.
func NewClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &azureClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		observer: observer,
	}
}

type listResponse[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

type rawProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	State       string `json:"state"`
}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	WorkItems []wiqlReference `json:"workItems"`
}

type wiqlReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// BuildWIQL returns the identifier query for one work item type scoped to
// the current project.
func BuildWIQL(itemType domain.WorkItemType) string {
	escaped := strings.ReplaceAll(string(itemType), "'", "''")
	return fmt.Sprintf("Select [System.Id] From WorkItems Where [System.WorkItemType] = '%s' AND [System.TeamProject] = @project", escaped)
}

func (c *azureClient) ListProjects(ctx context.Context) ([]domain.Project, error) {
	start := time.Now()
	var resp listResponse[rawProject]
	attempts, err := c.call(ctx, OpListProjects, http.MethodGet, c.cfg.BaseURL()+"/_apis/projects", nil, nil, &resp)
	if err != nil {
		c.observe(OpListProjects, "", start, attempts, 0, err)
		return []domain.Project{}, err
	}

	projects := make([]domain.Project, 0, len(resp.Value))
	for _, p := range resp.Value {
		projects = append(projects, domain.Project{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			State:       p.State,
		})
	}
	c.observe(OpListProjects, "", start, attempts, len(projects), nil)
	return projects, nil
}

func (c *azureClient) QueryWorkItems(ctx context.Context, project string, itemType domain.WorkItemType) ([]domain.WorkItem, error) {
	ids, err := c.queryIDs(ctx, project, itemType)
	if err != nil {
		return []domain.WorkItem{}, err
	}
	if len(ids) == 0 {
		return []domain.WorkItem{}, nil
	}
	return c.getWorkItems(ctx, project, ids)
}

func (c *azureClient) queryIDs(ctx context.Context, project string, itemType domain.WorkItemType) ([]int, error) {
	start := time.Now()
	var resp wiqlResponse
	body := wiqlRequest{Query: BuildWIQL(itemType)}
	attempts, err := c.call(ctx, OpQueryWorkItems, http.MethodPost, c.projectURL(project)+"/_apis/wit/wiql", nil, body, &resp)
	if err != nil {
		c.observe(OpQueryWorkItems, project, start, attempts, 0, err)
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, ref := range resp.WorkItems {
		ids = append(ids, ref.ID)
	}
	c.observe(OpQueryWorkItems, project, start, attempts, len(ids), nil)
	return ids, nil
}

func (c *azureClient) getWorkItems(ctx context.Context, project string, ids []int) ([]domain.WorkItem, error) {
	start := time.Now()
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}
	query := url.Values{"ids": {strings.Join(idStrs, ",")}}

	var resp listResponse[RawWorkItem]
	attempts, err := c.call(ctx, OpGetWorkItems, http.MethodGet, c.projectURL(project)+"/_apis/wit/workitems", query, nil, &resp)
	if err != nil {
		c.observe(OpGetWorkItems, project, start, attempts, 0, err)
		return []domain.WorkItem{}, err
	}

	items := NormalizeWorkItems(resp.Value)
	c.observe(OpGetWorkItems, project, start, attempts, len(items), nil)
	return items, nil
}

func (c *azureClient) ListIterations(ctx context.Context, project string) ([]domain.Sprint, error) {
	start := time.Now()
	var resp listResponse[RawIteration]
	attempts, err := c.call(ctx, OpListIterations, http.MethodGet, c.projectURL(project)+"/_apis/work/teamsettings/iterations", nil, nil, &resp)
	if err != nil {
		c.observe(OpListIterations, project, start, attempts, 0, err)
		return []domain.Sprint{}, err
	}

	sprints := NormalizeSprints(resp.Value)
	c.observe(OpListIterations, project, start, attempts, len(sprints), nil)
	return sprints, nil
}

func (c *azureClient) TestConnection(ctx context.Context) (bool, string) {
	return TestConnection(ctx, c)
}

// ProjectLister is the part of Client a connectivity probe needs.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// TestConnection probes the remote by listing projects. It succeeds iff at
// least one project comes back. Errors and panics are reported in the
// message and never propagated.
func TestConnection(ctx context.Context, lister ProjectLister) (ok bool, msg string) {
	defer func() {
		if p := recover(); p != nil {
			ok, msg = false, fmt.Sprintf("Exception occurred: %v", p)
		}
	}()

	projects, err := lister.ListProjects(ctx)
	switch {
	case len(projects) > 0:
		return true, fmt.Sprintf("Connection successful. Retrieved %d projects.", len(projects))
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return false, fmt.Sprintf("Exception occurred: %v", err)
	default:
		// The remote's response body stays in the call event, never in the message.
		return false, "Failed to retrieve project information"
	}
}

func (c *azureClient) projectURL(project string) string {
	return c.cfg.BaseURL() + "/" + url.PathEscape(project)
}

// authHeader encodes an empty username with the token as password.
func (c *azureClient) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+c.cfg.Token))
}

// call runs one operation under its own deadline, retrying transient
// failures. It returns the number of attempts made.
func (c *azureClient) call(ctx context.Context, op Operation, method, endpoint string, query url.Values, body, out any) (int, error) {
	timeout := c.cfg.OperationTimeout(op)
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := url.Values{}
	for k, vs := range query {
		params[k] = vs
	}
	params.Set("api-version", APIVersion(op))
	target := endpoint + "?" + params.Encode()

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling %s request: %w", op, err)
		}
		payload = data
	}

	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	attempts := 0
	for i := 0; i <= retries; i++ {
		attempts++
		lastErr = c.doRequest(callCtx, op, method, target, payload, out)
		if lastErr == nil {
			return attempts, nil
		}
		// Don't retry once the deadline has passed or the failure is permanent
		if callCtx.Err() != nil || !retryable(lastErr) {
			break
		}
	}

	if ctx.Err() != nil {
		return attempts, ctx.Err()
	}
	if callCtx.Err() != nil {
		return attempts, fmt.Errorf("%w: %s after %s", ErrTimeout, op, timeout)
	}
	return attempts, lastErr
}

func (c *azureClient) doRequest(ctx context.Context, op Operation, method, target string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", ErrUnavailable, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(data)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return &StatusError{Operation: op, Code: resp.StatusCode, Body: strings.TrimSpace(text)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

func (c *azureClient) observe(op Operation, project string, start time.Time, attempts, items int, err error) {
	c.observer.OnCallComplete(CallEvent{
		Operation: op,
		Project:   project,
		Duration:  time.Since(start),
		Attempts:  attempts,
		Items:     items,
		Success:   err == nil,
		ErrorCode: ErrorCode(err),
	})
}

func retryable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return false
}

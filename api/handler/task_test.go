package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasks/api/handler"
	"github.com/fastygo/tasks/domain"
	"github.com/fastygo/tasks/internal/infrastructure/monitor"
	"github.com/fastygo/tasks/internal/router"
	"github.com/fastygo/tasks/pkg/httpcontext"
	"github.com/fastygo/tasks/repository"
	boltRepo "github.com/fastygo/tasks/repository/bolt"
	taskUC "github.com/fastygo/tasks/usecase/task"
)

type response struct {
	status int
	body   string
}

func newServer(t *testing.T, repo repository.TaskRepository) fasthttp.RequestHandler {
	t.Helper()
	adapter := httpcontext.NewAdapter(time.Second)
	r := router.New(router.Handlers{
		Task: apiHandler.NewTaskHandler(taskUC.New(repo, nil), adapter, nil),
	})
	return r.Handler
}

func newBoltServer(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	repo, err := boltRepo.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return newServer(t, repo)
}

func do(h fasthttp.RequestHandler, method, uri, body string) response {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h(ctx)
	return response{status: ctx.Response.StatusCode(), body: string(ctx.Response.Body())}
}

func TestTaskLifecycleScenario(t *testing.T) {
	h := newBoltServer(t)
	const want = `{"id":1,"task":"buy milk","description":"2%","time":1700000000}`

	res := do(h, fasthttp.MethodPost, "/tasks/", `{"task":"buy milk","description":"2%","time":1700000000}`)
	if res.status != fasthttp.StatusOK || res.body != want {
		t.Fatalf("create: got %d %s", res.status, res.body)
	}

	res = do(h, fasthttp.MethodGet, "/tasks/1", "")
	if res.status != fasthttp.StatusOK || res.body != want {
		t.Fatalf("get: got %d %s", res.status, res.body)
	}

	res = do(h, fasthttp.MethodDelete, "/tasks/1", "")
	if res.status != fasthttp.StatusOK || res.body != `{"ok":true}` {
		t.Fatalf("delete: got %d %s", res.status, res.body)
	}

	res = do(h, fasthttp.MethodGet, "/tasks/1", "")
	if res.status != fasthttp.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d %s", res.status, res.body)
	}
	var errBody struct {
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal([]byte(res.body), &errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Detail != "Task not found" || errBody.Code != "NOT_FOUND" {
		t.Errorf("unexpected error body %+v", errBody)
	}

	res = do(h, fasthttp.MethodDelete, "/tasks/1", "")
	if res.status != fasthttp.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", res.status)
	}
}

func TestCreateIgnoresClientIDAndAllowsNullTime(t *testing.T) {
	h := newBoltServer(t)

	res := do(h, fasthttp.MethodPost, "/tasks/", `{"id":500,"task":"a","description":"b"}`)
	if res.status != fasthttp.StatusOK {
		t.Fatalf("create: got %d %s", res.status, res.body)
	}
	if res.body != `{"id":1,"task":"a","description":"b","time":null}` {
		t.Errorf("unexpected body %s", res.body)
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := newBoltServer(t)

	for _, body := range []string{
		`{"task":"a"}`,
		`{"description":"b"}`,
		`{"task":1,"description":"b"}`,
		`{"task":"a","description":"b","time":"soon"}`,
		`{"TASK":"a","DESCRIPTION":"b"}`,
		`not json`,
	} {
		res := do(h, fasthttp.MethodPost, "/tasks/", body)
		if res.status != fasthttp.StatusUnprocessableEntity {
			t.Errorf("body %s: expected 422, got %d %s", body, res.status, res.body)
		}
	}

	res := do(h, fasthttp.MethodGet, "/tasks/", "")
	if res.body != `[]` {
		t.Errorf("rejected creates must not reach storage, list returned %s", res.body)
	}
}

func TestListPagination(t *testing.T) {
	h := newBoltServer(t)
	for i := 0; i < 12; i++ {
		if res := do(h, fasthttp.MethodPost, "/tasks/", `{"task":"t","description":"d"}`); res.status != fasthttp.StatusOK {
			t.Fatalf("create: got %d %s", res.status, res.body)
		}
	}

	cases := []struct {
		uri     string
		status  int
		wantLen int
		firstID int64
	}{
		{"/tasks/", fasthttp.StatusOK, 10, 1},
		{"/tasks/?offset=10", fasthttp.StatusOK, 2, 11},
		{"/tasks/?offset=3&limit=4", fasthttp.StatusOK, 4, 4},
		{"/tasks/?limit=0", fasthttp.StatusOK, 0, 0},
		{"/tasks/?limit=100", fasthttp.StatusOK, 12, 1},
		{"/tasks/?offset=100", fasthttp.StatusOK, 0, 0},
		{"/tasks/?limit=101", fasthttp.StatusUnprocessableEntity, 0, 0},
		{"/tasks/?limit=200", fasthttp.StatusUnprocessableEntity, 0, 0},
		{"/tasks/?offset=-1", fasthttp.StatusUnprocessableEntity, 0, 0},
		{"/tasks/?limit=abc", fasthttp.StatusUnprocessableEntity, 0, 0},
	}

	for _, tc := range cases {
		res := do(h, fasthttp.MethodGet, tc.uri, "")
		if res.status != tc.status {
			t.Errorf("%s: expected %d, got %d %s", tc.uri, tc.status, res.status, res.body)
			continue
		}
		if tc.status != fasthttp.StatusOK {
			continue
		}
		var tasks []domain.Task
		if err := json.Unmarshal([]byte(res.body), &tasks); err != nil {
			t.Fatalf("%s: decode: %v", tc.uri, err)
		}
		if len(tasks) != tc.wantLen {
			t.Errorf("%s: expected %d tasks, got %d", tc.uri, tc.wantLen, len(tasks))
		}
		if tc.wantLen > 0 && tasks[0].ID != tc.firstID {
			t.Errorf("%s: expected first id %d, got %d", tc.uri, tc.firstID, tasks[0].ID)
		}
	}
}

func TestTaskIDMustBeInteger(t *testing.T) {
	h := newBoltServer(t)
	for _, method := range []string{fasthttp.MethodGet, fasthttp.MethodDelete} {
		res := do(h, method, "/tasks/abc", "")
		if res.status != fasthttp.StatusUnprocessableEntity {
			t.Errorf("%s /tasks/abc: expected 422, got %d", method, res.status)
		}
	}
}

func TestOversizedTaskIDIsNotFound(t *testing.T) {
	h := newBoltServer(t)
	for _, method := range []string{fasthttp.MethodGet, fasthttp.MethodDelete} {
		res := do(h, method, "/tasks/99999999999999999999", "")
		if res.status != fasthttp.StatusNotFound {
			t.Errorf("%s: expected 404, got %d %s", method, res.status, res.body)
		}
	}
}

type brokenRepo struct{ repository.TaskRepository }

func (brokenRepo) GetByID(context.Context, int64) (*domain.Task, error) {
	return nil, errors.New("dial tcp 127.0.0.1:5432: connection refused")
}

func TestStorageFailureIsInternalError(t *testing.T) {
	h := newServer(t, brokenRepo{})

	res := do(h, fasthttp.MethodGet, "/tasks/1", "")
	if res.status != fasthttp.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.status)
	}
	if strings.Contains(res.body, "5432") {
		t.Errorf("storage details leaked to client: %s", res.body)
	}
}

type fixedStatus monitor.Status

func (f fixedStatus) GetStatus() monitor.Status { return monitor.Status(f) }

func TestHealth(t *testing.T) {
	for _, tc := range []struct {
		status monitor.Status
		want   int
	}{
		{monitor.Status{StorageDriver: "bolt", Storage: true}, fasthttp.StatusOK},
		{monitor.Status{StorageDriver: "postgres", Storage: false}, fasthttp.StatusServiceUnavailable},
	} {
		h := apiHandler.NewHealthHandler(fixedStatus(tc.status), nil, nil)
		r := router.New(router.Handlers{
			Task:   apiHandler.NewTaskHandler(nil, nil, nil),
			Health: h,
		})
		res := do(r.Handler, fasthttp.MethodGet, "/health", "")
		if res.status != tc.want {
			t.Errorf("status %+v: expected %d, got %d", tc.status, tc.want, res.status)
		}
	}
}

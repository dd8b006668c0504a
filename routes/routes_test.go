package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/models"
	"taskboard/repositories"
	"taskboard/services"
)

type apiServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	handler := NewRouter(repositories.NewMemoryStore(), Options{
		Tokens: services.NewTokenService("test-secret", time.Hour),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &apiServer{t: t, srv: srv}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (a *apiServer) do(method, path, token string, body, out interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			a.t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *apiServer) register(name string) models.AuthResponse {
	a.t.Helper()
	var resp models.AuthResponse
	status := a.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: name, Email: name + "@example.com", Password: "password1",
	}, &resp)
	if status != http.StatusCreated {
		a.t.Fatalf("register %s: status %d", name, status)
	}
	return resp
}

func TestBoardLifecycleEndToEnd(t *testing.T) {
	api := newAPIServer(t)
	a := api.register("alice")

	var login models.AuthResponse
	if status := api.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "alice@example.com", Password: "password1"}, &login); status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	token := login.Token

	var project models.ProjectView
	if status := api.do(http.MethodPost, "/api/projects", token, models.ProjectInput{Name: "Launch"}, &project); status != http.StatusCreated {
		t.Fatalf("create project status = %d", status)
	}
	if project.Owner.ID != a.User.ID {
		t.Errorf("owner = %s, want %s", project.Owner.ID.Hex(), a.User.ID.Hex())
	}

	var task models.TaskView
	if status := api.do(http.MethodPost, "/api/tasks", token, map[string]string{"name": "ship it", "projectId": project.ID.Hex()}, &task); status != http.StatusCreated {
		t.Fatalf("create task status = %d", status)
	}
	if task.Status != models.StatusPending || task.AssignedTo != nil {
		t.Errorf("new task = %+v, want pending and unassigned", task)
	}

	var updated models.TaskView
	if status := api.do(http.MethodPut, "/api/tasks/"+task.ID.Hex(), token, map[string]string{"status": "completed"}, &updated); status != http.StatusOK {
		t.Fatalf("update task status = %d", status)
	}
	if updated.Status != models.StatusCompleted || updated.Name != "ship it" {
		t.Errorf("updated task = %+v", updated)
	}

	var stats models.DashboardStats
	if status := api.do(http.MethodGet, "/api/dashboard/stats", token, nil, &stats); status != http.StatusOK {
		t.Fatalf("stats status = %d", status)
	}
	if stats.TotalProjects != 1 || stats.TotalTasks != 1 || stats.TasksByStatus[models.StatusCompleted] != 1 {
		t.Errorf("stats = %+v", stats)
	}

	var listed []models.TaskView
	if status := api.do(http.MethodGet, "/api/tasks?project="+project.ID.Hex(), token, nil, &listed); status != http.StatusOK || len(listed) != 1 {
		t.Errorf("list tasks = %d / %d tasks", status, len(listed))
	}

	var msg models.MessageResponse
	if status := api.do(http.MethodDelete, "/api/projects/"+project.ID.Hex(), token, nil, &msg); status != http.StatusOK || msg.Msg == "" {
		t.Errorf("delete project = %d %+v", status, msg)
	}
	if status := api.do(http.MethodGet, "/api/tasks/"+task.ID.Hex(), token, nil, nil); status != http.StatusNotFound {
		t.Errorf("task after project delete status = %d, want 404", status)
	}
}

func TestNonMemberForbidden(t *testing.T) {
	api := newAPIServer(t)
	a := api.register("alice")
	b := api.register("bob")

	var project models.ProjectView
	api.do(http.MethodPost, "/api/projects", a.Token, models.ProjectInput{Name: "Secret"}, &project)

	if status := api.do(http.MethodGet, "/api/projects/"+project.ID.Hex(), b.Token, nil, nil); status != http.StatusForbidden {
		t.Errorf("non-member GET status = %d, want 403", status)
	}
	if status := api.do(http.MethodGet, "/api/tasks?project="+project.ID.Hex(), b.Token, nil, nil); status != http.StatusForbidden {
		t.Errorf("non-member task list status = %d, want 403", status)
	}
}

func TestCollaboratorMembershipEndToEnd(t *testing.T) {
	api := newAPIServer(t)
	a := api.register("alice")
	b := api.register("bob")

	var project models.ProjectView
	api.do(http.MethodPost, "/api/projects", a.Token, models.ProjectInput{Name: "Shared"}, &project)
	path := "/api/projects/" + project.ID.Hex()

	var added models.CollaboratorResponse
	if status := api.do(http.MethodPost, path+"/collaborators", a.Token, models.CollaboratorInput{Email: "bob@example.com"}, &added); status != http.StatusOK {
		t.Fatalf("add collaborator status = %d", status)
	}
	if added.User.ID != b.User.ID {
		t.Errorf("added user = %+v", added.User)
	}

	var seen models.ProjectView
	if status := api.do(http.MethodGet, path, b.Token, nil, &seen); status != http.StatusOK {
		t.Fatalf("collaborator GET status = %d, want 200", status)
	}
	if len(seen.Collaborators) != 1 || seen.Collaborators[0].Email != "bob@example.com" {
		t.Errorf("collaborators = %+v", seen.Collaborators)
	}

	if status := api.do(http.MethodDelete, path+"/collaborators/"+b.User.ID.Hex(), a.Token, nil, nil); status != http.StatusOK {
		t.Fatalf("remove collaborator status = %d", status)
	}
	if status := api.do(http.MethodGet, path, b.Token, nil, nil); status != http.StatusForbidden {
		t.Errorf("removed collaborator GET status = %d, want 403", status)
	}
}

func TestErrorResponses(t *testing.T) {
	api := newAPIServer(t)
	a := api.register("alice")
	var project models.ProjectView
	api.do(http.MethodPost, "/api/projects", a.Token, models.ProjectInput{Name: "P"}, &project)

	t.Run("duplicate registration", func(t *testing.T) {
		var body models.MessageResponse
		status := api.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{Name: "x", Email: "alice@example.com", Password: "password1"}, &body)
		if status != http.StatusBadRequest || body.Msg == "" {
			t.Errorf("status = %d body = %+v, want 400 with msg", status, body)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		status := api.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "alice@example.com", Password: "nope-nope"}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("owner as collaborator", func(t *testing.T) {
		status := api.do(http.MethodPost, "/api/projects/"+project.ID.Hex()+"/collaborators", a.Token, models.CollaboratorInput{Email: "alice@example.com"}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("unknown collaborator email", func(t *testing.T) {
		status := api.do(http.MethodPost, "/api/projects/"+project.ID.Hex()+"/collaborators", a.Token, models.CollaboratorInput{Email: "ghost@example.com"}, nil)
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("validation errors list fields", func(t *testing.T) {
		var body struct {
			Errors []services.FieldError `json:"errors"`
		}
		status := api.do(http.MethodPost, "/api/projects", a.Token, map[string]string{"description": "no name"}, &body)
		if status != http.StatusBadRequest || len(body.Errors) != 1 || body.Errors[0].Field != "name" {
			t.Errorf("status = %d body = %+v", status, body)
		}
	})

	t.Run("missing project query", func(t *testing.T) {
		if status := api.do(http.MethodGet, "/api/tasks", a.Token, nil, nil); status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		if status := api.do(http.MethodGet, "/api/projects/not-an-id", a.Token, nil, nil); status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("no token", func(t *testing.T) {
		var body models.MessageResponse
		if status := api.do(http.MethodGet, "/api/projects", "", nil, &body); status != http.StatusUnauthorized || body.Msg == "" {
			t.Errorf("status = %d body = %+v, want 401", status, body)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		if status := api.do(http.MethodGet, "/api/dashboard/stats", "garbage", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, api.srv.URL+"/api/projects", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+a.Token)
		resp, err := api.srv.Client().Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestProfileAndHealth(t *testing.T) {
	api := newAPIServer(t)
	a := api.register("alice")

	var profile map[string]interface{}
	if status := api.do(http.MethodGet, "/api/users/profile", a.Token, nil, &profile); status != http.StatusOK {
		t.Fatalf("profile status = %d", status)
	}
	if profile["email"] != "alice@example.com" {
		t.Errorf("profile = %v", profile)
	}
	if _, leaked := profile["passwordHash"]; leaked {
		t.Errorf("profile leaks password hash")
	}

	resp, err := api.srv.Client().Get(api.srv.URL + "/api")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("liveness status = %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	api := newAPIServer(t)
	req, _ := http.NewRequest(http.MethodOptions, api.srv.URL+"/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := api.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"minicrm/internal/config"
	"minicrm/internal/middleware"
	"minicrm/internal/repository"
	"minicrm/internal/service"
	"minicrm/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	srv    *httptest.Server
	db     *sql.DB
	seeder *service.Seeder
}

// newTestApp wires the full router against an in-memory sqlite database,
// mirroring the wiring in cmd/server
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open(config.DriverSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, config.AutoMigrate(db, config.DriverSQLite))

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	sessions := session.NewManager("test-secret")
	authHandler := NewAuthHandler(service.NewAuthService(userRepo), sessions)
	crmHandler := NewCRMHandler(service.NewCRMService(userRepo, customerRepo, taskRepo), sessions)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	authHandler.RegisterAuthRoutes(router)
	crmHandler.RegisterCRMRoutes(router, middleware.SessionAuthMiddleware(sessions))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{
		srv:    srv,
		db:     db,
		seeder: service.NewSeeder(userRepo, customerRepo, taskRepo),
	}
}

// newTestClient keeps cookies and does not follow redirects, so tests can
// assert on the 302 responses themselves
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(rawURL, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, rawURL string) *http.Response {
	t.Helper()
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func register(t *testing.T, client *http.Client, app *testApp, name, email, password string) *http.Response {
	return postForm(t, client, app.srv.URL+"/register", url.Values{
		"full_name": {name},
		"email":     {email},
		"password":  {password},
	})
}

func login(t *testing.T, client *http.Client, app *testApp, email, password string) *http.Response {
	return postForm(t, client, app.srv.URL+"/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	resp := get(t, client, app.srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestDashboard_RedirectsWhenUnauthenticated(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	resp := get(t, client, app.srv.URL+"/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestFormEndpoints_RedirectWhenUnauthenticated(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	resp := postForm(t, client, app.srv.URL+"/customer/add", url.Values{"name": {"X"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, 0, app.count(t, "customers"))

	resp = postForm(t, client, app.srv.URL+"/task/add", url.Values{"title": {"X"}, "due_date": {"2025-01-20"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, 0, app.count(t, "tasks"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	resp := register(t, client, app, "Ada", "ada@example.com", "pw")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = register(t, client, app, "Imposter", "ada@example.com", "pw2")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/register", resp.Header.Get("Location"))
	assert.Equal(t, 1, app.count(t, "users"))

	// The flash message lands on the next register page render
	page := get(t, client, app.srv.URL+"/register")
	var body struct {
		Flash *session.Flash `json:"flash"`
	}
	require.NoError(t, json.NewDecoder(page.Body).Decode(&body))
	require.NotNil(t, body.Flash)
	assert.Equal(t, "Email already registered", body.Flash.Message)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	register(t, client, app, "Ada", "ada@example.com", "pw")

	resp := login(t, client, app, "ada@example.com", "wrong")
	assert.Equal(t, http.StatusOK, resp.StatusCode) // login page re-rendered, no redirect
	var body struct {
		Page  string        `json:"page"`
		Flash session.Flash `json:"flash"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "login", body.Page)
	assert.Equal(t, "Invalid credentials", body.Flash.Message)

	// Still unauthenticated
	dash := get(t, client, app.srv.URL+"/")
	assert.Equal(t, http.StatusFound, dash.StatusCode)
}

func TestLoginLogoutFlow(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	register(t, client, app, "Ada", "ada@example.com", "pw")

	resp := login(t, client, app, "ada@example.com", "pw")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	dash := get(t, client, app.srv.URL+"/")
	assert.Equal(t, http.StatusOK, dash.StatusCode)
	var body struct {
		Page string `json:"page"`
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(dash.Body).Decode(&body))
	assert.Equal(t, "dashboard", body.Page)
	assert.Equal(t, "ada@example.com", body.User.Email)

	out := get(t, client, app.srv.URL+"/logout")
	assert.Equal(t, http.StatusFound, out.StatusCode)
	assert.Equal(t, "/login", out.Header.Get("Location"))

	// The same session now redirects to login
	dash = get(t, client, app.srv.URL+"/")
	assert.Equal(t, http.StatusFound, dash.StatusCode)
	assert.Equal(t, "/login", dash.Header.Get("Location"))
}

func TestAddTask_StoresDueDateAtMidnight(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	register(t, client, app, "Ada", "ada@example.com", "pw")
	login(t, client, app, "ada@example.com", "pw")

	resp := postForm(t, client, app.srv.URL+"/task/add", url.Values{
		"title":    {"Follow-up"},
		"due_date": {"2025-01-20"},
		"priority": {"high"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	dash := get(t, client, app.srv.URL+"/")
	var body struct {
		Tasks []struct {
			Title    string    `json:"title"`
			DueDate  time.Time `json:"due_date"`
			Status   string    `json:"status"`
			Priority string    `json:"priority"`
		} `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(dash.Body).Decode(&body))
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, "Follow-up", body.Tasks[0].Title)
	assert.True(t, time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC).Equal(body.Tasks[0].DueDate))
	assert.Equal(t, "pending", body.Tasks[0].Status)
	assert.Equal(t, "high", body.Tasks[0].Priority)
}

func TestAddTask_MalformedDueDateIsServerError(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	register(t, client, app, "Ada", "ada@example.com", "pw")
	login(t, client, app, "ada@example.com", "pw")

	resp := postForm(t, client, app.srv.URL+"/task/add", url.Values{
		"title":    {"Broken"},
		"due_date": {"not-a-date"},
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 0, app.count(t, "tasks"))
}

func TestAddCustomer(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	register(t, client, app, "Ada", "ada@example.com", "pw")
	login(t, client, app, "ada@example.com", "pw")

	resp := postForm(t, client, app.srv.URL+"/customer/add", url.Values{
		"name":    {"John Doe"},
		"email":   {"john@example.com"},
		"company": {"Example Corp"},
		"status":  {"Active"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	dash := get(t, client, app.srv.URL+"/")
	var body struct {
		Customers []struct {
			Name        string     `json:"name"`
			Status      string     `json:"status"`
			LastContact *time.Time `json:"last_contact"`
		} `json:"customers"`
		TotalCustomers int `json:"total_customers"`
	}
	require.NoError(t, json.NewDecoder(dash.Body).Decode(&body))
	require.Len(t, body.Customers, 1)
	assert.Equal(t, "John Doe", body.Customers[0].Name)
	assert.Equal(t, "Active", body.Customers[0].Status)
	assert.NotNil(t, body.Customers[0].LastContact)
	assert.Equal(t, 1, body.TotalCustomers)
}

func TestDashboard_TaskListCappedAndSorted(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	register(t, client, app, "Ada", "ada@example.com", "pw")
	login(t, client, app, "ada@example.com", "pw")

	// 7 tasks submitted in reverse due-date order
	for day := 16; day >= 10; day-- {
		postForm(t, client, app.srv.URL+"/task/add", url.Values{
			"title":    {"t"},
			"due_date": {time.Date(2025, time.February, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")},
		})
	}

	dash := get(t, client, app.srv.URL+"/")
	var body struct {
		Tasks []struct {
			DueDate time.Time `json:"due_date"`
		} `json:"tasks"`
		TotalTasks   int `json:"total_tasks"`
		PendingTasks int `json:"pending_tasks"`
	}
	require.NoError(t, json.NewDecoder(dash.Body).Decode(&body))
	require.Len(t, body.Tasks, 5)
	assert.Equal(t, 5, body.TotalTasks) // counts the fetched page, not all 7
	assert.Equal(t, 7, body.PendingTasks)
	for i := 0; i < len(body.Tasks)-1; i++ {
		assert.False(t, body.Tasks[i].DueDate.After(body.Tasks[i+1].DueDate))
	}
}

func TestSeededAdminCanLogIn(t *testing.T) {
	app := newTestApp(t)
	client := newTestClient(t)

	require.NoError(t, app.seeder.EnsureSeedData(context.Background()))

	resp := login(t, client, app, service.SeedAdminEmail, "admin123")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	dash := get(t, client, app.srv.URL+"/")
	assert.Equal(t, http.StatusOK, dash.StatusCode)
	var body struct {
		TotalCustomers int `json:"total_customers"`
		TotalTasks     int `json:"total_tasks"`
		PendingTasks   int `json:"pending_tasks"`
	}
	require.NoError(t, json.NewDecoder(dash.Body).Decode(&body))
	assert.Equal(t, 2, body.TotalCustomers)
	assert.Equal(t, 2, body.TotalTasks)
	assert.Equal(t, 2, body.PendingTasks)
}

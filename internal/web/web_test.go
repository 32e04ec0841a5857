package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/auth"
	"github.com/erazemk/healthpilot/internal/backend/backendtest"
	"github.com/erazemk/healthpilot/internal/config"
	"github.com/erazemk/healthpilot/internal/db"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

const (
	testSecret = "test-secret"
	testDate   = "2025-06-02"
)

type testEnv struct {
	handler http.Handler
	backend *backendtest.Server
	lookups *httptest.Server
	svc     *app.Services
	cookies map[string]*http.Cookie
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{cookies: make(map[string]*http.Cookie)}

	env.backend = backendtest.New(t)
	env.backend.AddUser("alice", "alice@example.com", "secret")

	env.lookups = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/food-database/v2/parser":
			w.Write([]byte(`{"hints":[{"food":{"foodId":"f1","label":"Apple","nutrients":{"ENERC_KCAL":52}}}]}`))
		case r.URL.Path == "/demo.png":
			img := image.NewRGBA(image.Rect(0, 0, 40, 20))
			img.Set(1, 1, color.RGBA{R: 255, A: 255})
			png.Encode(w, img)
		case strings.HasPrefix(r.URL.Path, "/exercises/name/"):
			w.Write([]byte(`[{"id":"1","name":"barbell squat","target":"quads","equipment":"barbell"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(env.lookups.Close)

	cfg := config.Default()
	cfg.BackendURL = env.backend.URL
	cfg.Food = config.FoodAPI{URL: env.lookups.URL, AppID: "id", AppKey: "key"}
	cfg.Exercise = config.ExerciseAPI{
		URL:        env.lookups.URL,
		Key:        "k",
		Host:       "h",
		AssetHosts: []string{env.lookups.Listener.Addr().String()},
	}

	env.svc = app.New(cfg, db.NewTestDB(t), testSecret)
	env.svc.Now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local) }

	h, err := NewRouter(env.svc)
	require.NoError(t, err)
	env.handler = h
	return env
}

// login stores a session cookie for alice without going through the form.
func (env *testEnv) login(t *testing.T) {
	t.Helper()
	sess := env.backend.Session("alice")
	token, err := auth.GenerateToken(testSecret, sess.Username, sess.AccessToken)
	require.NoError(t, err)
	env.cookies[auth.CookieName] = &http.Cookie{Name: auth.CookieName, Value: token}
}

// do sends a request carrying the stored cookies and keeps the ones set by
// the response, like a browser that does not follow redirects.
func (env *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range env.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(env.cookies, c.Name)
			continue
		}
		env.cookies[c.Name] = c
	}
	return rec
}

// flash decodes the notice queued by the last response.
func flash(t *testing.T, rec *httptest.ResponseRecorder) notify.Notice {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != flashCookie || c.Value == "" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(c.Value)
		require.NoError(t, err)
		var n notify.Notice
		require.NoError(t, json.Unmarshal(data, &n))
		return n
	}
	t.Fatal("no flash notice set")
	return notify.Notice{}
}

func TestRedirectsWithoutSession(t *testing.T) {
	env := setup(t)

	for _, path := range []string{"/", "/calories", "/profile", "/workout", "/workouts"} {
		rec := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
	assert.Zero(t, env.backend.TotalCalls())
}

func TestLoginPageRenders(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
}

func TestLoginAndHome(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")
	assert.NotContains(t, env.cookies, auth.CookieName)

	rec = env.do(http.MethodPost, "/login", url.Values{"email": {"alice@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Contains(t, env.cookies, auth.CookieName)
	assert.Equal(t, notify.Success, flash(t, rec).Level)

	env.backend.SetProfile(model.Profile{Username: "alice", CalorieGoal: 1000})
	env.backend.SetMeals("alice", testDate, model.DayMeals{Lunch: []model.MealItem{{Name: "Rice", Calories: 500, Quantity: 200, Unit: "g"}}})

	rec = env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello, alice")
	assert.Contains(t, body, "500 / 1000 kcal")
	assert.Contains(t, body, `<div class="toast toast-success" role="status">Welcome back, alice!</div>`)
	assert.Contains(t, body, "No workout logged today")
}

func TestSearchScriptToastsFailures(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/static/app.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	script := rec.Body.String()
	assert.Contains(t, script, `"toast toast-" + level`)
	assert.Contains(t, script, `notify("error", source.failure)`)
	assert.Contains(t, script, "Food search failed")
	assert.Contains(t, script, "Exercise search failed")
}

func TestRegister(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/register", url.Values{
		"username": {"bob"}, "email": {"bob@example.com"}, "password": {"pw"}, "age": {"abc"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Age must be a number.")
	assert.Contains(t, rec.Body.String(), `value="bob@example.com"`)

	rec = env.do(http.MethodPost, "/register", url.Values{
		"username": {"bob"}, "email": {"bob@example.com"}, "password": {"pw"}, "age": {"30"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(http.MethodPost, "/login", url.Values{"email": {"bob@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestWaterSubmit(t *testing.T) {
	env := setup(t)
	env.login(t)

	rec := env.do(http.MethodPost, "/water", url.Values{"ml": {"500"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0.5, env.backend.Water("alice", testDate))

	rec = env.do(http.MethodPost, "/water", url.Values{"ml": {"-1"}, "next": {"//evil.example"}})
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, notify.Warn, flash(t, rec).Level)
	assert.Equal(t, 0.5, env.backend.Water("alice", testDate))
}

func TestCaloriesAdd(t *testing.T) {
	env := setup(t)
	env.login(t)

	rec := env.do(http.MethodPost, "/calories/add", url.Values{
		"date": {testDate}, "slot": {"lunch"}, "label": {"Apple"}, "kcal": {"52"}, "quantity": {"150"}, "food_id": {"f1"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/calories?date="+testDate, rec.Header().Get("Location"))
	assert.Equal(t, notify.Success, flash(t, rec).Level)

	meals, ok := env.backend.Meals("alice", testDate)
	require.True(t, ok)
	require.Len(t, meals.Lunch, 1)
	assert.Equal(t, model.MealItem{Name: "Apple", Calories: 78, Quantity: 150, Unit: "g"}, meals.Lunch[0])

	rec = env.do(http.MethodPost, "/calories/add", url.Values{
		"date": {testDate}, "slot": {"brunch"}, "label": {"Apple"}, "kcal": {"52"}, "quantity": {"100"},
	})
	assert.Equal(t, notify.Warn, flash(t, rec).Level)

	rec = env.do(http.MethodPost, "/calories/add", url.Values{
		"date": {testDate}, "slot": {"lunch"}, "label": {"Apple"}, "kcal": {"52"}, "quantity": {"0"},
	})
	assert.Equal(t, notify.Warn, flash(t, rec).Level)

	for _, bad := range []url.Values{
		{"quantity": {"1e300"}, "kcal": {"52"}},
		{"quantity": {"100"}, "kcal": {"1e300"}},
		{"quantity": {"100"}, "kcal": {"NaN"}},
	} {
		bad.Set("date", testDate)
		bad.Set("slot", "lunch")
		bad.Set("label", "Apple")
		rec = env.do(http.MethodPost, "/calories/add", bad)
		assert.Equal(t, notify.Warn, flash(t, rec).Level, bad.Encode())
	}

	meals, _ = env.backend.Meals("alice", testDate)
	assert.Len(t, meals.Lunch, 1)
}

func TestCaloriesPage(t *testing.T) {
	env := setup(t)
	env.login(t)
	env.backend.SetMeals("alice", "2025-06-01", model.DayMeals{Dinner: []model.MealItem{{Name: "Pasta", Calories: 700, Quantity: 250, Unit: "g"}}})

	rec := env.do(http.MethodGet, "/calories?date=2025-06-01&q=apple&slot=dinner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pasta")
	assert.Contains(t, body, "700 / 2000 kcal")
	assert.Contains(t, body, `name="label" value="Apple"`)
	assert.Contains(t, body, `<option value="dinner" selected>`)
	assert.Contains(t, body, "bar-low")

	rec = env.do(http.MethodGet, "/calories?date=yesterday", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid date")
}

func TestProfileSubmit(t *testing.T) {
	env := setup(t)
	env.login(t)

	rec := env.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="calorieGoal"`)

	rec = env.do(http.MethodPost, "/profile", url.Values{"calorieGoal": {"2500"}, "weight": {"72.5"}})
	assert.Equal(t, notify.Success, flash(t, rec).Level)
	p := env.backend.Profile("alice")
	assert.Equal(t, model.Number(2500), p.CalorieGoal)
	assert.Equal(t, model.Number(72.5), p.Weight)

	calls := env.backend.Calls("PUT /api/auth/updateprofile")
	rec = env.do(http.MethodPost, "/profile", url.Values{"calorieGoal": {"2500"}})
	assert.Equal(t, notify.Info, flash(t, rec).Level)
	assert.Equal(t, calls, env.backend.Calls("PUT /api/auth/updateprofile"))

	rec = env.do(http.MethodPost, "/profile", url.Values{"height": {"tall"}})
	assert.Equal(t, notify.Warn, flash(t, rec).Level)
	assert.Equal(t, calls, env.backend.Calls("PUT /api/auth/updateprofile"))
}

func TestRejectedSessionRedirectsToLogin(t *testing.T) {
	env := setup(t)
	env.login(t)
	env.backend.Fail("GET /api/auth/profile", http.StatusUnauthorized, "jwt expired")

	rec := env.do(http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotContains(t, env.cookies, auth.CookieName)
}

func TestExpiredBackendTokenRedirects(t *testing.T) {
	env := setup(t)
	stale := env.backend.Token("alice", time.Now().Add(-time.Minute))
	token, err := auth.GenerateToken(testSecret, "alice", stale)
	require.NoError(t, err)
	env.cookies[auth.CookieName] = &http.Cookie{Name: auth.CookieName, Value: token}

	rec := env.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Zero(t, env.backend.TotalCalls())
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setup(t)
	env.login(t)
	token := env.cookies[auth.CookieName].Value

	rec := env.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotContains(t, env.cookies, auth.CookieName)

	env.cookies[auth.CookieName] = &http.Cookie{Name: auth.CookieName, Value: token}
	rec = env.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestWorkoutFlow(t *testing.T) {
	env := setup(t)
	env.login(t)

	rec := env.do(http.MethodGet, "/workout?name=squat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "barbell squat")

	rec = env.do(http.MethodPost, "/workout", url.Values{"title": {"Leg day"}})
	assert.Equal(t, notify.Warn, flash(t, rec).Level)
	assert.Zero(t, env.backend.Calls("POST /api/workout/log"))

	env.do(http.MethodPost, "/workout/exercises", url.Values{"name": {"barbell squat"}, "target": {"quads"}, "title": {"Leg day"}})
	env.do(http.MethodPost, "/workout/exercises", url.Values{"name": {"lunge"}})
	require.Contains(t, env.cookies, draftCookie)

	rec = env.do(http.MethodPost, "/workout/sets", url.Values{"exercise": {"0"}, "weight": {"60"}, "reps": {"5"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = env.do(http.MethodPost, "/workout/sets", url.Values{"exercise": {"0"}, "weight": {"60"}, "reps": {"0"}})
	assert.Equal(t, notify.Warn, flash(t, rec).Level)
	env.do(http.MethodPost, "/workout/exercises/1/delete", nil)

	rec = env.do(http.MethodGet, "/workout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Leg day"`)
	assert.NotContains(t, body, "lunge")

	rec = env.do(http.MethodPost, "/workout", nil)
	assert.Equal(t, notify.Success, flash(t, rec).Level)
	assert.NotContains(t, env.cookies, draftCookie)

	logged := env.backend.Workouts("alice")
	require.Len(t, logged, 1)
	assert.Equal(t, "Leg day", logged[0].Title)
	assert.Equal(t, testDate, logged[0].Date)
	require.Len(t, logged[0].Exercises, 1)
	assert.Equal(t, []model.Set{{Weight: 60, Reps: 5}}, logged[0].Exercises[0].Sets)

	rec = env.do(http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "Leg day")
}

func TestTamperedDraftIsIgnored(t *testing.T) {
	env := setup(t)
	env.login(t)
	env.cookies[draftCookie] = &http.Cookie{Name: draftCookie, Value: "not-sealed"}

	rec := env.do(http.MethodGet, "/workout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkoutHistoryEditAndDelete(t *testing.T) {
	env := setup(t)
	env.login(t)
	id := env.backend.AddWorkout("alice", model.Workout{
		Title: "Push",
		Date:  "2025-05-30",
		Exercises: []model.LoggedExercise{{
			Name: "bench press",
			Sets: []model.Set{{Weight: 50, Reps: 8}, {Weight: 55, Reps: 6}},
		}},
	})
	env.backend.AddWorkout("alice", model.Workout{Title: "Pull", Date: "2025-06-01", Exercises: []model.LoggedExercise{{Name: "row", Sets: []model.Set{{Weight: 40, Reps: 10}}}}})

	rec := env.do(http.MethodGet, "/workouts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "Pull"), strings.Index(body, "Push"), "newest first")

	rec = env.do(http.MethodGet, "/workouts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="reps_0_1"`)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/workouts/missing", nil).Code)

	rec = env.do(http.MethodPost, "/workouts/"+id, url.Values{
		"title": {"Push A"}, "weight_0_0": {"52.5"}, "reps_0_0": {"8"}, "weight_0_1": {"55"}, "reps_0_1": {""},
	})
	assert.Equal(t, notify.Success, flash(t, rec).Level)
	var updated model.Workout
	for _, w := range env.backend.Workouts("alice") {
		if w.ID == id {
			updated = w
		}
	}
	assert.Equal(t, "Push A", updated.Title)
	assert.Equal(t, []model.Set{{Weight: 52.5, Reps: 8}}, updated.Exercises[0].Sets)

	rec = env.do(http.MethodPost, "/workouts/"+id+"/delete", nil)
	assert.Equal(t, "/workouts", rec.Header().Get("Location"))
	assert.Len(t, env.backend.Workouts("alice"), 1)
}

func TestExerciseThumb(t *testing.T) {
	env := setup(t)
	env.login(t)

	rec := env.do(http.MethodGet, "/exercises/thumb?src="+url.QueryEscape(env.lookups.URL+"/demo.png"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	img, format, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 40, img.Bounds().Dx())

	rec = env.do(http.MethodGet, "/exercises/thumb?src="+url.QueryEscape("file:///etc/passwd"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/exercises/thumb?src="+url.QueryEscape(env.lookups.URL+"/missing.gif"), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExerciseThumbRefusesOtherHosts(t *testing.T) {
	env := setup(t)
	env.login(t)

	var hits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("secret"))
	}))
	t.Cleanup(internal.Close)

	rec := env.do(http.MethodGet, "/exercises/thumb?src="+url.QueryEscape(internal.URL+"/admin/secrets"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, hits.Load())
}

func TestContactWithoutSession(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/contact", url.Values{"email": {"x@example.com"}, "message": {"Hi"}})
	assert.Equal(t, notify.Success, flash(t, rec).Level)
	assert.Len(t, env.backend.Contacts(), 1)

	rec = env.do(http.MethodPost, "/contact", url.Values{"email": {"x@example.com"}})
	assert.Equal(t, notify.Warn, flash(t, rec).Level)
	assert.Len(t, env.backend.Contacts(), 1)
}

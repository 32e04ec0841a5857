package lookup

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/healthpilot/internal/config"
	"github.com/erazemk/healthpilot/internal/model"
)

const parserBody = `{
  "text": "apple",
  "hints": [
    {"food": {"foodId": "food_a1", "label": "Apple", "category": "Generic foods",
              "nutrients": {"ENERC_KCAL": 52, "PROCNT": 0.26, "FAT": 0.17, "CHOCDF": 13.81, "FIBTG": 2.4}}},
    {"food": {"foodId": "food_a1", "label": "Apple", "nutrients": {"ENERC_KCAL": 52}}},
    {"food": {"foodId": "food_a2", "label": "Apple Juice", "nutrients": {"ENERC_KCAL": 46}}},
    {"food": {"foodId": "food_a3", "label": "Apple Pie", "nutrients": {"ENERC_KCAL": 237}}}
  ]
}`

func foodServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, foodParsePath, r.URL.Path)
		assert.Equal(t, "id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "key", r.URL.Query().Get("app_key"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFoodSearch(t *testing.T) {
	var calls atomic.Int32
	srv := foodServer(t, http.StatusOK, parserBody, &calls)

	c := NewFoodClient(config.FoodAPI{URL: srv.URL + "/", AppID: "id", AppKey: "key"}, 0, srv.Client())
	foods, err := c.Search(context.Background(), "  apple ")
	require.NoError(t, err)
	require.Len(t, foods, 3, "duplicate food ids are dropped")

	assert.Equal(t, model.Food{
		ID:       "food_a1",
		Label:    "Apple",
		Category: "Generic foods",
		Nutrients: model.Nutrients{
			Calories: 52, Protein: 0.26, Fat: 0.17, Carbs: 13.81, Fiber: 2.4,
		},
	}, foods[0])
	assert.Equal(t, "Apple Juice", foods[1].Label)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFoodSearchKeepsHintsWithoutID(t *testing.T) {
	body := `{"hints": [
		{"food": {"label": "Homemade Bread", "nutrients": {"ENERC_KCAL": 265}}},
		{"food": {"label": "Homemade Jam", "nutrients": {"ENERC_KCAL": 250}}},
		{"food": {"label": "homemade bread", "nutrients": {"ENERC_KCAL": 265}}},
		{"food": {"foodId": "food_b1", "label": "Homemade Bread", "nutrients": {"ENERC_KCAL": 270}}}
	]}`
	var calls atomic.Int32
	srv := foodServer(t, http.StatusOK, body, &calls)

	c := NewFoodClient(config.FoodAPI{URL: srv.URL, AppID: "id", AppKey: "key"}, 0, srv.Client())
	foods, err := c.Search(context.Background(), "homemade")
	require.NoError(t, err)

	labels := make([]string, 0, len(foods))
	for _, f := range foods {
		labels = append(labels, f.Label)
	}
	assert.Equal(t, []string{"Homemade Bread", "Homemade Jam", "Homemade Bread"}, labels)
	assert.Equal(t, "food_b1", foods[2].ID)
}

func TestFoodSearchQueryParam(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("ingr")
		w.Write([]byte(`{"hints": []}`))
	}))
	defer srv.Close()

	c := NewFoodClient(config.FoodAPI{URL: srv.URL, AppID: "id", AppKey: "key"}, 10, nil)
	foods, err := c.Search(context.Background(), "peanut butter & jam")
	require.NoError(t, err)
	assert.Equal(t, "peanut butter & jam", got)
	assert.NotNil(t, foods)
	assert.Empty(t, foods, "no hints is an empty result, not an error")
}

func TestFoodSearchLimit(t *testing.T) {
	var calls atomic.Int32
	srv := foodServer(t, http.StatusOK, parserBody, &calls)

	c := NewFoodClient(config.FoodAPI{URL: srv.URL, AppID: "id", AppKey: "key"}, 2, nil)
	foods, err := c.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Len(t, foods, 2)
}

func TestFoodSearchBlankQuerySkipsCall(t *testing.T) {
	var calls atomic.Int32
	srv := foodServer(t, http.StatusOK, parserBody, &calls)

	c := NewFoodClient(config.FoodAPI{URL: srv.URL, AppID: "id", AppKey: "key"}, 0, nil)
	foods, err := c.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, foods)
	assert.Zero(t, calls.Load())
}

func TestFoodSearchErrors(t *testing.T) {
	var calls atomic.Int32
	srv := foodServer(t, http.StatusUnauthorized, `{"message":"bad key"}`, &calls)

	c := NewFoodClient(config.FoodAPI{URL: srv.URL, AppID: "id", AppKey: "key"}, 0, nil)
	_, err := c.Search(context.Background(), "apple")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Contains(t, se.Error(), "bad key")

	unconfigured := NewFoodClient(config.FoodAPI{URL: srv.URL}, 0, nil)
	_, err = unconfigured.Search(context.Background(), "apple")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFoodSearchMalformed(t *testing.T) {
	var calls atomic.Int32
	srv := foodServer(t, http.StatusOK, `{"hints": [`, &calls)

	c := NewFoodClient(config.FoodAPI{URL: srv.URL, AppID: "id", AppKey: "key"}, 0, nil)
	_, err := c.Search(context.Background(), "apple")
	assert.Error(t, err)
}

func exerciseServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /exercises/name/{name}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "exercisedb.p.rapidapi.com", r.Header.Get("X-RapidAPI-Host"))
		if r.PathValue("name") == "none" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[
			{"id":"1","name":"barbell bench press","target":"pectorals","bodyPart":"chest","equipment":"barbell","gifUrl":"https://cdn/1.gif"},
			{"id":"2","name":"dumbbell bench press","target":"pectorals","bodyPart":"chest","equipment":"dumbbell"},
			{"id":"3","name":"incline bench press","target":"pectorals","bodyPart":"chest","equipment":"barbell"},
			{"id":"4","name":"decline bench press","target":"pectorals","bodyPart":"chest","equipment":"barbell"},
			{"id":"5","name":"close-grip bench press","target":"triceps","bodyPart":"upper arms","equipment":"barbell"},
			{"id":"6","name":"smith bench press","target":"pectorals","bodyPart":"chest","equipment":"smith machine"}
		]`))
	})
	mux.HandleFunc("GET /asset.gif", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("GIF89a"))
	})
	mux.HandleFunc("GET /huge.gif", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0}, MaxAssetSize+10))
	})
	mux.HandleFunc("GET /moved.gif", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Query().Get("to"), http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newExerciseClient(srv *httptest.Server) *ExerciseClient {
	return NewExerciseClient(config.ExerciseAPI{
		URL:        srv.URL,
		Key:        "secret",
		Host:       "exercisedb.p.rapidapi.com",
		AssetHosts: []string{srv.Listener.Addr().String()},
	}, srv.Client())
}

func TestExerciseSearch(t *testing.T) {
	srv := exerciseServer(t)
	c := newExerciseClient(srv)

	found, err := c.Search(context.Background(), "Bench Press")
	require.NoError(t, err)
	require.Len(t, found, MaxExercises)
	assert.Equal(t, model.ExerciseInfo{
		ID: "1", Name: "barbell bench press", Target: "pectorals",
		BodyPart: "chest", Equipment: "barbell", GifURL: "https://cdn/1.gif",
	}, found[0])

	none, err := c.Search(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExerciseSearchNotConfigured(t *testing.T) {
	c := NewExerciseClient(config.ExerciseAPI{URL: "http://127.0.0.1:1"}, nil)
	_, err := c.Search(context.Background(), "squat")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestAsset(t *testing.T) {
	srv := exerciseServer(t)
	c := newExerciseClient(srv)

	data, err := c.Asset(context.Background(), srv.URL+"/asset.gif")
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), data)

	_, err = c.Asset(context.Background(), srv.URL+"/huge.gif")
	assert.ErrorIs(t, err, ErrAssetTooLarge)

	_, err = c.Asset(context.Background(), srv.URL+"/missing.gif")
	var se *StatusError
	assert.ErrorAs(t, err, &se)

	for _, bad := range []string{"file:///etc/passwd", "not a url", "/relative.gif"} {
		_, err = c.Asset(context.Background(), bad)
		assert.ErrorIs(t, err, ErrAssetURL, bad)
	}
}

func TestAssetOnlyFromAssetHosts(t *testing.T) {
	var hits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("GIF89a"))
	}))
	t.Cleanup(internal.Close)

	srv := exerciseServer(t)
	c := newExerciseClient(srv)

	_, err := c.Asset(context.Background(), internal.URL+"/admin/secrets")
	assert.ErrorIs(t, err, ErrAssetURL)

	_, err = c.Asset(context.Background(), srv.URL+"/moved.gif?to="+internal.URL+"/admin/secrets")
	assert.ErrorIs(t, err, ErrAssetURL)

	assert.Zero(t, hits.Load(), "a host outside the asset hosts was contacted")

	data, err := c.Asset(context.Background(), srv.URL+"/moved.gif?to=/asset.gif")
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), data)
}

func TestAssetHostWithoutPortMatchesAnyPort(t *testing.T) {
	srv := exerciseServer(t)
	c := NewExerciseClient(config.ExerciseAPI{AssetHosts: []string{"127.0.0.1"}}, srv.Client())

	data, err := c.Asset(context.Background(), srv.URL+"/asset.gif")
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), data)

	c = NewExerciseClient(config.ExerciseAPI{}, srv.Client())
	_, err = c.Asset(context.Background(), srv.URL+"/asset.gif")
	assert.ErrorIs(t, err, ErrAssetURL)
}

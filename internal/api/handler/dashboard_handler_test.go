package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-dashboard/internal/model"
	"engagement-dashboard/internal/session"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	rows := []model.Record{
		{Gender: "Male", Profession: "Student", Age: 20, Location: "USA", Platform: "TikTok", DeviceType: "Mobile", ConnectionType: "Wi-Fi", TotalTimeSpent: 120, Engagement: 5},
		{Gender: "Female", Profession: "Student", Age: 22, Location: "USA", Platform: "TikTok", DeviceType: "Mobile", ConnectionType: "Wi-Fi", TotalTimeSpent: 30, Engagement: 7},
	}
	for i := range rows {
		rows[i].Derive()
	}
	report := &model.LoadReport{Source: "usage.csv", RowsRead: 3, RowsKept: 2, DroppedIncomplete: 1}
	return New(session.New(model.NewTable(rows, false), report))
}

func do(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newHandler(t)
	rec := do(h.Health, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.Rows)
	assert.NotEmpty(t, body.SessionID)
}

func TestOptions(t *testing.T) {
	rec := do(newHandler(t).Options, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body session.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Female", "Male"}, body.Genders)
	assert.Equal(t, 20, body.AgeMin)
	assert.Equal(t, 22, body.AgeMax)
}

func TestDashboard(t *testing.T) {
	rec := do(newHandler(t).Dashboard, http.MethodPost, `{"filter":{"genders":["Male"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Rows int `json:"rows"`
		KPIs struct {
			AvgEngagement struct {
				Value  float64 `json:"value"`
				NoData bool    `json:"no_data"`
			} `json:"avg_engagement"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Rows)
	assert.Equal(t, 5.0, body.KPIs.AvgEngagement.Value)
}

func TestDashboardBadRequests(t *testing.T) {
	h := newHandler(t)

	rec := do(h.Dashboard, http.MethodPost, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Dashboard, http.MethodPost, `{"filter":{"age_min":-3}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "AgeMin")

	rec = do(h.Dashboard, http.MethodPost, `{"filter":{"age_min":40,"age_max":30}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAggregate(t *testing.T) {
	h := newHandler(t)

	rec := do(h.Aggregate, http.MethodPost, `{"op":"mean","group_by":["Gender"],"measure":"Engagement"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp session.AggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	row, ok := resp.Result.Lookup("Female")
	require.True(t, ok)
	assert.Equal(t, 7.0, row.Value)
}

func TestAggregateEmptyScalarIsNoData(t *testing.T) {
	rec := do(newHandler(t).Aggregate, http.MethodPost,
		`{"filter":{"platforms":[]},"op":"scalar_mean","measure":"Engagement"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scalar":{"op":"scalar_mean","measure":"Engagement","value":null,"no_data":true}}`, rec.Body.String())
}

func TestAggregateErrors(t *testing.T) {
	h := newHandler(t)

	rec := do(h.Aggregate, http.MethodPost, `{"op":"median"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Aggregate, http.MethodPost, `{"op":"mean","group_by":["Shoe Size"],"measure":"Engagement"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Shoe Size")
}

func TestLoadReport(t *testing.T) {
	rec := do(newHandler(t).LoadReport, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body model.LoadReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.DroppedIncomplete)
}

package hrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
}

func decodeFilters(t *testing.T, r *http.Request) [][]any {
	t.Helper()
	var filters [][]any
	require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters))
	return filters
}

func testSource(t *testing.T, cfg Config, loc *time.Location) overtime.Source {
	t.Helper()
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return NewSource(client, loc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestFetchEmployees_TokenAuthAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Employee", r.URL.Path)
		assert.Equal(t, "token key:secret", r.Header.Get("Authorization"))

		filters := decodeFilters(t, r)
		assert.Equal(t, [][]any{
			{"status", "=", "Active"},
			{"company", "=", "ACME"},
			{"department", "=", "Ops"},
		}, filters)

		writeData(t, w, []map[string]any{
			{"name": "HR-EMP-001", "employee_name": "Ayu", "company": "ACME", "department": "Ops", "default_shift": "DAY"},
			{"name": "HR-EMP-002", "employee_name": "Budi", "company": "ACME", "department": "Ops", "default_shift": nil},
		})
	}))
	defer srv.Close()

	source := testSource(t, Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}, nil)
	employees, err := source.FetchEmployees(context.Background(), "ACME", "Ops")
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, overtime.Employee{ID: "HR-EMP-001", Name: "Ayu", Company: "ACME", Department: "Ops", DefaultShiftID: "DAY"}, employees[0])
	assert.Equal(t, "", employees[1].DefaultShiftID)
}

func TestFetchShiftTypes_Paginates(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/resource/Shift Type", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit_page_length"))

		start, _ := strconv.Atoi(r.URL.Query().Get("limit_start"))
		all := []map[string]string{
			{"name": "DAY", "start_time": "9:00:00", "end_time": "18:00:00"},
			{"name": "LATE", "start_time": "13:00:00", "end_time": "22:00:00"},
			{"name": "NIGHT", "start_time": "22:00:00", "end_time": "6:00:00"},
		}
		writeData(t, w, all[min(start, len(all)):min(start+2, len(all))])
	}))
	defer srv.Close()

	source := testSource(t, Config{BaseURL: srv.URL, PageSize: 2}, nil)
	shiftTypes, err := source.FetchShiftTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, shiftTypes, 3)
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, overtime.ShiftType{ID: "NIGHT", Name: "NIGHT", StartTime: "22:00:00", EndTime: "6:00:00"}, shiftTypes[2])
}

func TestFetchShiftAssignments_DropsEndedAndMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filters := decodeFilters(t, r)
		assert.Contains(t, filters, []any{"start_date", "<=", "2024-06-30"})
		writeData(t, w, []map[string]any{
			{"employee": "E1", "shift_type": "NIGHT", "start_date": "2024-06-10", "end_date": nil},
			{"employee": "E1", "shift_type": "DAY", "start_date": "2024-05-01", "end_date": "2024-05-15"},
			{"employee": "E1", "shift_type": "DAY", "start_date": "2024-05-01", "end_date": "2024-06-01"},
			{"employee": "E2", "shift_type": "DAY", "start_date": "not a date", "end_date": nil},
		})
	}))
	defer srv.Close()

	source := testSource(t, Config{BaseURL: srv.URL}, nil)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	assignments, err := source.FetchShiftAssignments(context.Background(), []string{"E1", "E2"}, from, to)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Nil(t, assignments[0].EndDate)
	require.NotNil(t, assignments[1].EndDate)
	assert.True(t, assignments[1].EndDate.Equal(from))
}

func TestFetchCheckEvents_ParsesInLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Employee Checkin", r.URL.Path)
		filters := decodeFilters(t, r)
		assert.Contains(t, filters, []any{"time", ">=", "2024-06-01 00:00:00"})
		assert.Contains(t, filters, []any{"time", "<", "2024-06-03 00:00:00"})
		writeData(t, w, []map[string]any{
			{"employee": "E1", "time": "2024-06-01 09:00:00", "log_type": "IN"},
			{"employee": "E1", "time": "2024-06-01 18:30:00.000000", "log_type": "OUT"},
			{"employee": "E1", "time": "garbage", "log_type": "OUT"},
			{"employee": "E2", "time": "2024-06-02 08:00:00", "log_type": nil},
		})
	}))
	defer srv.Close()

	source := testSource(t, Config{BaseURL: srv.URL}, wib)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, wib)
	to := time.Date(2024, 6, 3, 0, 0, 0, 0, wib)

	events, err := source.FetchCheckEvents(context.Background(), []string{"E1", "E2"}, from, to)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].Time.Equal(time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, overtime.LogTypeOut, events[1].LogType)
	assert.Equal(t, overtime.LogType(""), events[2].LogType)
}

func TestFetchCheckEvents_ChunksEmployeesWithinConcurrencyCap(t *testing.T) {
	var inFlight, peak, requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)

		filters := decodeFilters(t, r)
		ids, _ := filters[0][2].([]any)
		assert.LessOrEqual(t, len(ids), idChunkSize)
		writeData(t, w, []map[string]any{})
	}))
	defer srv.Close()

	ids := make([]string, 0, 450)
	for i := range 450 {
		ids = append(ids, fmt.Sprintf("E%03d", i))
	}

	source := testSource(t, Config{BaseURL: srv.URL, MaxConcurrent: 2}, nil)
	events, err := source.FetchCheckEvents(context.Background(), ids, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, int32(5), requests.Load())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestFetch_NoEmployeesSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	source := testSource(t, Config{BaseURL: srv.URL}, nil)
	events, err := source.FetchCheckEvents(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"exc_type":"PermissionError"}`))
	}))
	defer srv.Close()

	source := testSource(t, Config{BaseURL: srv.URL}, nil)
	_, err := source.FetchShiftTypes(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Shift Type", apiErr.Resource)
	assert.Contains(t, apiErr.Message, "PermissionError")
}

func TestFetch_OAuthClientCredentials(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"abc123","token_type":"Bearer","expires_in":3600}`))
		case "/api/resource/Shift Type":
			assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
			writeData(t, w, []map[string]string{{"name": "DAY", "start_time": "09:00:00", "end_time": "18:00:00"}})
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	source := testSource(t, Config{
		BaseURL:           srv.URL,
		APIKey:            "ignored",
		OAuthClientID:     "report",
		OAuthClientSecret: "s3cret",
		OAuthTokenURL:     srv.URL + "/oauth/token",
	}, nil)

	shiftTypes, err := source.FetchShiftTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, shiftTypes, 1)
}

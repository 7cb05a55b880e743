package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/james-see/midisurface/pkg/surface"
	"github.com/james-see/midisurface/pkg/surface/devices"
)

func newTestRouter(store *surface.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewServer(devices.Default(), store).Router(gin.New())
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(nil)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := doRequest(t, r, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	w := doRequest(t, newTestRouter(nil), http.MethodOptions, "/api/v1/parameters", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestListDevices(t *testing.T) {
	w := doRequest(t, newTestRouter(nil), http.MethodGet, "/api/v1/devices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /devices = %d, want 200", w.Code)
	}

	var resp struct {
		Devices []DeviceInfo `json:"devices"`
	}
	decode(t, w, &resp)
	if len(resp.Devices) != 3 {
		t.Fatalf("got %d devices, want 3", len(resp.Devices))
	}
}

func TestGetDevice(t *testing.T) {
	r := newTestRouter(nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/devices/xl", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /devices/xl = %d, want 200", w.Code)
	}
	var info DeviceInfo
	decode(t, w, &info)
	if info.Name != devices.LaunchControlXLName {
		t.Errorf("name = %q, want %q", info.Name, devices.LaunchControlXLName)
	}
	if info.Parameters["fontSize"] != "12" {
		t.Errorf("fontSize control = %q, want 12", info.Parameters["fontSize"])
	}
	if len(info.ColumnStarts) != 4 || info.ColumnStarts[1] != 49 {
		t.Errorf("column_starts = %v", info.ColumnStarts)
	}

	w = doRequest(t, r, http.MethodGet, "/api/v1/devices/mpk-mini", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /devices/mpk-mini = %d, want 404", w.Code)
	}
}

func TestResolve(t *testing.T) {
	r := newTestRouter(nil)

	tests := []struct {
		name   string
		body   ResolveRequest
		status int
		number int
	}{
		{"valid", ResolveRequest{Device: "xl", Control: "21"}, http.StatusOK, 50},
		{"three digits", ResolveRequest{Device: "xl", Control: "105"}, http.StatusBadRequest, 0},
		{"column zero", ResolveRequest{Device: "xl", Control: "01"}, http.StatusBadRequest, 0},
		{"row out of range", ResolveRequest{Device: "launchkey", Control: "11"}, http.StatusBadRequest, 0},
		{"unknown device", ResolveRequest{Device: "mpk-mini", Control: "21"}, http.StatusNotFound, 0},
		{"missing control", ResolveRequest{Device: "xl"}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/v1/resolve", tt.body)
			if w.Code != tt.status {
				t.Fatalf("POST /resolve = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp ResolveResponse
			decode(t, w, &resp)
			if resp.Number != tt.number {
				t.Errorf("number = %d, want %d", resp.Number, tt.number)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	r := newTestRouter(nil)
	def := 2.5

	tests := []struct {
		name     string
		body     LookupRequest
		expected float64
	}{
		{"present", LookupRequest{Device: "xl", Control: "21", Values: map[int]float64{50: 0.8}}, 0.8},
		{"absent", LookupRequest{Device: "xl", Control: "12", Values: map[int]float64{50: 0.8}}, 0.5},
		{"custom default", LookupRequest{Device: "xl", Control: "12", Default: &def}, 2.5},
		{"by identifier", LookupRequest{Device: "xl", Control: "12", Controls: map[string]float64{"12": 0.1}}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/v1/lookup", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("POST /lookup = %d, want 200 (%s)", w.Code, w.Body.String())
			}
			var resp LookupResponse
			decode(t, w, &resp)
			if resp.Value != tt.expected {
				t.Errorf("value = %v, want %v", resp.Value, tt.expected)
			}
		})
	}

	w := doRequest(t, r, http.MethodPost, "/api/v1/lookup", LookupRequest{Device: "xl", Control: "105"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /lookup invalid = %d, want 400", w.Code)
	}
}

func TestParameters(t *testing.T) {
	r := newTestRouter(nil)

	w := doRequest(t, r, http.MethodPost, "/api/v1/parameters", ParametersRequest{
		Device:   "Launch Control XL",
		Values:   map[int]float64{50: 0.8},
		Controls: map[string]float64{"22": 1},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /parameters = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	var resp ParametersResponse
	decode(t, w, &resp)

	expected := map[string]float64{"fontSize": 1020, "wght": 0.8, "tu": 250, "wdth": 0.5, "slnt": 0.5}
	for name, want := range expected {
		if resp.Parameters[name] != want {
			t.Errorf("%s = %v, want %v", name, resp.Parameters[name], want)
		}
	}

	w = doRequest(t, r, http.MethodPost, "/api/v1/parameters", ParametersRequest{
		Device:   "xl",
		Controls: map[string]float64{"5": 1},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /parameters bad control = %d, want 400", w.Code)
	}
}

func TestLive(t *testing.T) {
	w := doRequest(t, newTestRouter(nil), http.MethodGet, "/api/v1/live/xl", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /live without store = %d, want 503", w.Code)
	}

	store := surface.NewStore()
	store.Set(devices.LaunchControlXLName, 29, 1)
	store.Set(devices.APCMiniName, 48, 0.3)
	w = doRequest(t, newTestRouter(store), http.MethodGet, "/api/v1/live/xl", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /live = %d, want 200", w.Code)
	}

	var resp ParametersResponse
	decode(t, w, &resp)
	if resp.Parameters["fontSize"] != 2020 {
		t.Errorf("fontSize = %v, want 2020", resp.Parameters["fontSize"])
	}
	if len(resp.Values) != 1 || resp.Values[29] != 1 {
		t.Errorf("values = %v, want map[29:1]", resp.Values)
	}
}

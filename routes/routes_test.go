package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	periodsRepo "kpitracker/database/repository/periods"
	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/handlers"
	"kpitracker/middleware"
	"kpitracker/models"
	"kpitracker/services/entry"
	"kpitracker/services/period"
	"kpitracker/services/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	testAdminToken = "admin-secret"
	testWebhookKey = "hook-key"
)

type testServer struct {
	router    *gin.Engine
	records   *recordsRepo.MemoryRecordRepo
	snapshots *periodsRepo.MemorySnapshotRepo
}

// newTestServer wires the full route table over in-memory storage with the
// clock pinned to noon UTC on today.
func newTestServer(t *testing.T, today string, adminToken string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now, err := time.Parse("2006-01-02", today)
	if err != nil {
		t.Fatalf("bad date %q: %v", today, err)
	}
	now = now.Add(12 * time.Hour)
	cal := period.NewCalendar(time.UTC, func() time.Time { return now })

	logger := zap.NewNop()
	records := recordsRepo.NewMemoryRecordRepo()
	snapshots := periodsRepo.NewMemorySnapshotRepo()
	goals := models.DefaultGoals()

	archiver := period.NewArchiveManager(cal, records, snapshots, goals, nil, logger)
	migrator := period.NewMigrator(cal, records, archiver, logger)
	entries := entry.NewEntryService(cal, records, archiver, models.DefaultSpinRules(), logger)
	statsSvc := stats.NewStatsService(cal, records, archiver, goals, logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	RegisterRoutes(router, &handlers.HandlerBundle{
		Info:        handlers.NewInfoHandler(cal, goals, "test"),
		Entries:     handlers.NewEntryHandler(entries),
		Periods:     handlers.NewPeriodHandler(archiver),
		Stats:       handlers.NewStatsHandler(statsSvc),
		Webhook:     handlers.NewWebhookHandler(entries),
		Admin:       handlers.NewAdminHandler(archiver, migrator, entries, nil, nil),
		AdminAuth:   middleware.AdminAuthMiddleware(adminToken),
		WebhookAuth: middleware.WebhookAuthMiddleware(testWebhookKey),
	})
	return &testServer{router: router, records: records, snapshots: snapshots}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func admin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestArchivedPeriodIsFrozenOverHTTP(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)
	const closed = "2025-03-01_to_2025-03-14"

	if w := s.do(t, http.MethodPut, "/api/entries/2025-03-03/calls?calls_received=10", "", nil); w.Code != http.StatusOK {
		t.Fatalf("set calls: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/entries/2025-03-03/bookings", `{"profit":12.5,"is_prepaid":true}`, nil); w.Code != http.StatusOK {
		t.Fatalf("add booking: %d %s", w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodPost, "/api/admin/periods/"+closed+"/archive", "", admin())
	if w.Code != http.StatusOK {
		t.Fatalf("archive: %d %s", w.Code, w.Body.String())
	}
	var snapshot models.PeriodSnapshot
	decode(t, w, &snapshot)
	if snapshot.PeriodID != closed || snapshot.Totals.Calls != 10 || snapshot.Totals.Reservations != 1 || snapshot.Totals.Profit != 12.5 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	if w := s.do(t, http.MethodPut, "/api/entries/2025-03-03/calls", `{"calls_received":99}`, nil); w.Code != http.StatusConflict {
		t.Fatalf("write to archived date: expected 409, got %d %s", w.Code, w.Body.String())
	}
	// Dates in the archived period without a record are refused too.
	if w := s.do(t, http.MethodPost, "/api/entries/2025-03-09/spins", `{"amount":5}`, nil); w.Code != http.StatusConflict {
		t.Fatalf("new record in archived period: expected 409, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/periods/"+closed, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get snapshot: %d", w.Code)
	}
	var stored models.PeriodSnapshot
	decode(t, w, &stored)
	if stored.ID != snapshot.ID || stored.Totals.Calls != 10 {
		t.Fatalf("stored snapshot drifted: %+v", stored)
	}

	if w := s.do(t, http.MethodPost, "/api/admin/periods/"+closed+"/archive", "", admin()); w.Code != http.StatusConflict {
		t.Fatalf("second archive: expected 409, got %d", w.Code)
	}
}

func TestCurrentPeriodRejectsArchive(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)
	w := s.do(t, http.MethodPost, "/api/admin/periods/2025-03-15_to_2025-03-31/archive", "", admin())
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for open period, got %d %s", w.Code, w.Body.String())
	}
	if n, _ := s.snapshots.List(context.Background(), 0); len(n) != 0 {
		t.Fatalf("open period must not be stored")
	}
}

func TestBoundaryDayClosesPreviousOnFirstRequest(t *testing.T) {
	s := newTestServer(t, "2025-03-15", testAdminToken)
	s.records.Seed(models.DailyRecord{
		Date:          "2025-03-10",
		PeriodID:      "2025-03-01_to_2025-03-14",
		CallsReceived: 7,
	})

	w := s.do(t, http.MethodGet, "/api/entries/today", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("today: %d %s", w.Code, w.Body.String())
	}
	var today models.DailyRecord
	decode(t, w, &today)
	if today.Date != "2025-03-15" || today.PeriodID != "2025-03-15_to_2025-03-31" {
		t.Fatalf("unexpected today record %+v", today)
	}

	w = s.do(t, http.MethodGet, "/api/periods/current", "", nil)
	var info models.PeriodInfo
	decode(t, w, &info)
	if !info.IsBoundaryDay || !info.PreviousPeriod.IsArchived || info.PreviousPeriod.PeriodID != "2025-03-01_to_2025-03-14" {
		t.Fatalf("unexpected period info %+v", info)
	}

	rec, _ := s.records.GetByDate(context.Background(), "2025-03-10")
	if !rec.Archived {
		t.Fatalf("previous period record not frozen")
	}
}

func TestForceArchiveReportsExistingSnapshot(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)

	w := s.do(t, http.MethodPost, "/api/admin/force-archive", "", admin())
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Successfully archived period 2025-03-01_to_2025-03-14") {
		t.Fatalf("first force-archive: %d %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/api/admin/force-archive", "", admin())
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "already archived") {
		t.Fatalf("second force-archive: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/periods/archive/previous", "", nil); w.Code != http.StatusConflict {
		t.Fatalf("archive previous after force: expected 409, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/admin/force-archive?async=true", "", admin()); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("async without queue: expected 503, got %d", w.Code)
	}
}

func TestMigrateLegacyEndpoint(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)
	s.records.Seed(
		models.DailyRecord{Date: "2025-02-03", CallsReceived: 4},
		models.DailyRecord{Date: "2025-02-20", CallsReceived: 6},
		models.DailyRecord{Date: "2025-03-18", CallsReceived: 1},
	)

	w := s.do(t, http.MethodPost, "/api/admin/migrate-legacy", "", admin())
	if w.Code != http.StatusOK {
		t.Fatalf("migrate: %d %s", w.Code, w.Body.String())
	}
	var res models.MigrationResult
	decode(t, w, &res)
	if res.MigratedEntries != 3 || res.PeriodsFound != 3 || res.PeriodsCreated != 2 {
		t.Fatalf("unexpected migration result %+v", res)
	}

	w = s.do(t, http.MethodPost, "/api/admin/migrate-legacy", "", admin())
	decode(t, w, &res)
	if res.Message != "No legacy entries found" {
		t.Fatalf("rerun should find nothing, got %+v", res)
	}

	w = s.do(t, http.MethodGet, "/api/periods", "", nil)
	var list []models.PeriodSnapshot
	decode(t, w, &list)
	if len(list) != 2 || list[0].PeriodID != "2025-02-15_to_2025-02-28" {
		t.Fatalf("expected newest snapshot first, got %+v", list)
	}
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		headers map[string]string
		want    int
	}{
		{name: "missing header", token: testAdminToken, want: http.StatusUnauthorized},
		{name: "wrong token", token: testAdminToken, headers: map[string]string{"Authorization": "Bearer nope"}, want: http.StatusUnauthorized},
		{name: "not bearer", token: testAdminToken, headers: map[string]string{"Authorization": testAdminToken}, want: http.StatusUnauthorized},
		{name: "valid", token: testAdminToken, headers: admin(), want: http.StatusOK},
		{name: "disabled", token: "", headers: admin(), want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, "2025-03-20", tt.token)
			w := s.do(t, http.MethodGet, "/api/admin/scheduler-status", "", tt.headers)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestWebhookCall(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)

	if w := s.do(t, http.MethodPost, "/api/webhook/call", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/webhook/call", "", map[string]string{"X-API-Key": testWebhookKey}); w.Code != http.StatusOK {
		t.Fatalf("header key: %d %s", w.Code, w.Body.String())
	}
	w := s.do(t, http.MethodPost, "/api/webhook/call?api_key="+testWebhookKey, `{"ignored":true}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("query key: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Date       string `json:"date"`
		TotalCalls int    `json:"total_calls"`
	}
	decode(t, w, &body)
	if body.Date != "2025-03-20" || body.TotalCalls != 2 {
		t.Fatalf("unexpected webhook response %+v", body)
	}
	if w := s.do(t, http.MethodGet, "/api/webhook/test", "", nil); w.Code != http.StatusOK {
		t.Fatalf("webhook test: %d", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)
	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/periods/not-a-period", "", http.StatusBadRequest},
		{http.MethodGet, "/api/periods/2025-02-01_to_2025-02-14", "", http.StatusNotFound},
		{http.MethodGet, "/api/entries/2025-03-19", "", http.StatusNotFound},
		{http.MethodGet, "/api/entries/03-19-2025", "", http.StatusBadRequest},
		{http.MethodPut, "/api/entries/2025-02-30/calls?calls_received=1", "", http.StatusBadRequest},
		{http.MethodPut, "/api/entries/2025-03-19/calls?calls_received=-1", "", http.StatusBadRequest},
		{http.MethodPut, "/api/entries/2025-03-19/calls", `{}`, http.StatusBadRequest},
		{http.MethodDelete, "/api/entries/2025-03-19/bookings/missing", "", http.StatusNotFound},
		{http.MethodGet, "/api/stats/daily/2025-13-01", "", http.StatusBadRequest},
		{http.MethodGet, "/api/entries?archived=maybe", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := s.do(t, tt.method, tt.path, tt.body, nil)
		if w.Code != tt.want {
			t.Fatalf("%s %s: expected %d, got %d %s", tt.method, tt.path, tt.want, w.Code, w.Body.String())
		}
	}
}

func TestStatsAndGoals(t *testing.T) {
	s := newTestServer(t, "2025-03-20", testAdminToken)
	s.do(t, http.MethodPut, "/api/entries/2025-03-18/calls?calls_received=20", "", nil)
	s.do(t, http.MethodPost, "/api/entries/2025-03-18/bookings", `{"profit":10}`, nil)
	s.do(t, http.MethodPost, "/api/entries/2025-03-18/bonuses", `{"amount":5,"booking_number":4}`, nil)

	w := s.do(t, http.MethodGet, "/api/stats/biweekly", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("biweekly: %d %s", w.Code, w.Body.String())
	}
	var st models.BiweeklyStats
	decode(t, w, &st)
	if st.PeriodID != "2025-03-15_to_2025-03-31" || st.DaysTracked != 1 {
		t.Fatalf("unexpected biweekly stats %+v", st)
	}
	if st.ConversionRate.Rate != 5 {
		t.Fatalf("expected 5%% conversion, got %v", st.ConversionRate.Rate)
	}

	w = s.do(t, http.MethodGet, "/api/stats/daily/2025-03-01", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("daily with no record: %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/goals", "", nil)
	var goals models.Goals
	decode(t, w, &goals)
	if goals.ConversionRateTarget != 15.79 {
		t.Fatalf("unexpected goals %+v", goals)
	}
}

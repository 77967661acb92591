package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/farellandr/ticketbook/config"
	"github.com/farellandr/ticketbook/internal/clock"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/farellandr/ticketbook/internal/services"
	"github.com/farellandr/ticketbook/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var suiteNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

type APISuite struct {
	suite.Suite
	DB     *gorm.DB
	Router *gin.Engine
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.DB = testutil.NewTestDB(s.T())

	cfg := &config.Config{JWTSecret: "suite-secret", TokenExpiry: 30 * time.Minute}
	svc, err := NewServices(s.DB, cfg, clock.NewFixed(suiteNow), services.WithHashCost(bcrypt.MinCost))
	s.Require().NoError(err)
	s.Router, err = NewRouter(s.DB, svc, nil)
	s.Require().NoError(err)
}

func (s *APISuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) login(email, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// userToken registers the account and returns its access token.
func (s *APISuite) userToken(email string, admin bool) string {
	body := fmt.Sprintf(`{"email":%q,"password":"pw-123456","is_admin":%t}`, email, admin)
	w := s.do(http.MethodPost, "/api/v1/auth/register", body, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.login(email, "pw-123456")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "access_token").String()
}

func (s *APISuite) createEvent(adminToken string, tickets int) string {
	body := fmt.Sprintf(`{
		"title": "Rock Night",
		"description": "Loud",
		"date": %q,
		"venue": "Stadium",
		"total_tickets": %d,
		"price": 12.5
	}`, suiteNow.Add(72*time.Hour).Format(time.RFC3339), tickets)
	w := s.do(http.MethodPost, "/api/v1/admin/events", body, adminToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "id").String()
}

func (s *APISuite) availableTickets(eventID string) int64 {
	w := s.do(http.MethodGet, "/api/v1/events/"+eventID, "", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "available_tickets").Int()
}

func (s *APISuite) TestRootAndHealth() {
	w := s.do(http.MethodGet, "/", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Event management system", gjson.Get(w.Body.String(), "msg").String())

	w = s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", gjson.Get(w.Body.String(), "status").String())

	w = s.do(http.MethodGet, "/nowhere", "", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("not_found", gjson.Get(w.Body.String(), "error").String())
}

func (s *APISuite) TestRegisterAndLogin() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"Kim@Example.com","password":"secret-pw"}`, "")
	s.Require().Equal(http.StatusCreated, w.Code)
	body := w.Body.String()
	s.Equal("kim@example.com", gjson.Get(body, "email").String())
	s.False(gjson.Get(body, "is_admin").Bool())
	s.False(gjson.Get(body, "password_hash").Exists())
	s.NotEmpty(gjson.Get(body, "id").String())

	w = s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"kim@example.com","password":"again"}`, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("duplicate_email", gjson.Get(w.Body.String(), "code").String())
	s.Equal("Email already registered", gjson.Get(w.Body.String(), "message").String())

	w = s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"lee@example.com"}`, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Password is required", gjson.Get(w.Body.String(), "message").String())

	w = s.login("kim@example.com", "secret-pw")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("bearer", gjson.Get(w.Body.String(), "token_type").String())
	token := gjson.Get(w.Body.String(), "access_token").String()

	w = s.do(http.MethodGet, "/api/v1/auth/me", "", token)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("kim@example.com", gjson.Get(w.Body.String(), "email").String())

	for _, creds := range [][2]string{{"kim@example.com", "wrong"}, {"ghost@example.com", "secret-pw"}} {
		w = s.login(creds[0], creds[1])
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Equal("Bearer", w.Header().Get("WWW-Authenticate"))
		s.Equal("authentication_error", gjson.Get(w.Body.String(), "error").String())
		s.Equal("Incorrect email or password", gjson.Get(w.Body.String(), "message").String())
	}

	w = s.login("", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestAuthGates() {
	w := s.do(http.MethodGet, "/api/v1/auth/me", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Bearer", w.Header().Get("WWW-Authenticate"))

	w = s.do(http.MethodGet, "/api/v1/auth/me", "", "garbage")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("invalid_token", gjson.Get(w.Body.String(), "code").String())

	userToken := s.userToken("user@example.com", false)
	w = s.do(http.MethodGet, "/api/v1/admin/events", "", userToken)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("authorization_error", gjson.Get(w.Body.String(), "error").String())

	w = s.do(http.MethodPost, "/api/v1/events/history", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestEventLifecycle() {
	admin := s.userToken("admin@example.com", true)
	eventID := s.createEvent(admin, 100)
	s.EqualValues(100, s.availableTickets(eventID))

	w := s.do(http.MethodGet, "/api/v1/events", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(eventID, gjson.Get(w.Body.String(), "0.id").String())

	w = s.do(http.MethodGet, "/api/v1/events/not-a-uuid", "", "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid_id", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodGet, "/api/v1/events/00000000-0000-0000-0000-000000000001", "", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Event not found", gjson.Get(w.Body.String(), "message").String())

	user := s.userToken("fan@example.com", false)
	w = s.do(http.MethodPost, "/api/v1/events/"+eventID+"/book", `{"number_of_tickets":40}`, user)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/v1/admin/events/"+eventID, `{"total_tickets":150,"title":"Rock Night II"}`, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(int64(110), gjson.Get(w.Body.String(), "available_tickets").Int())
	s.Equal("Rock Night II", gjson.Get(w.Body.String(), "title").String())
	s.Equal("rock-night-ii", gjson.Get(w.Body.String(), "slug").String())

	w = s.do(http.MethodPut, "/api/v1/admin/events/"+eventID, `{"total_tickets":39}`, admin)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("tickets_already_booked", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodGet, "/api/v1/admin/events/"+eventID+"/booking", "", admin)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "#").Int())

	w = s.do(http.MethodDelete, "/api/v1/admin/events/"+eventID, "", admin)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/events/"+eventID, "", "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/admin/events/"+eventID, "", admin)
	s.Equal(http.StatusNotFound, w.Code)

	var bookings int64
	s.Require().NoError(s.DB.Model(&models.Booking{}).Count(&bookings).Error)
	s.Zero(bookings)
}

func (s *APISuite) TestCreateEventValidation() {
	admin := s.userToken("admin@example.com", true)
	future := suiteNow.Add(time.Hour).Format(time.RFC3339)
	past := suiteNow.Add(-time.Hour).Format(time.RFC3339)

	tests := []struct {
		name string
		body string
		code string
	}{
		{
			name: "past date",
			body: fmt.Sprintf(`{"title":"T","date":%q,"venue":"V","total_tickets":5,"price":1}`, past),
			code: "past_date",
		},
		{
			name: "blank title",
			body: fmt.Sprintf(`{"title":"  ","date":%q,"venue":"V","total_tickets":5,"price":1}`, future),
			code: "invalid_request",
		},
		{
			name: "missing price",
			body: fmt.Sprintf(`{"title":"T","date":%q,"venue":"V","total_tickets":5}`, future),
			code: "invalid_request",
		},
		{
			name: "no tickets",
			body: fmt.Sprintf(`{"title":"T","date":%q,"venue":"V","total_tickets":0,"price":1}`, future),
			code: "invalid_request",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/api/v1/admin/events", tt.body, admin)
			s.Equal(http.StatusBadRequest, w.Code)
			s.Equal(tt.code, gjson.Get(w.Body.String(), "code").String())
		})
	}

	w := s.do(http.MethodPost, "/api/v1/admin/events",
		fmt.Sprintf(`{"title":"Free","date":%q,"venue":"Park","total_tickets":5,"price":0}`, future), admin)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *APISuite) TestEventDatesWithoutZone() {
	admin := s.userToken("admin@example.com", true)

	w := s.do(http.MethodPost, "/api/v1/admin/events",
		`{"title":"Jazz","date":"2025-09-05T10:00:00.123456","venue":"Club","total_tickets":5,"price":8}`, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("2025-09-05T10:00:00.123456Z", gjson.Get(w.Body.String(), "date").String())
	eventID := gjson.Get(w.Body.String(), "id").String()

	w = s.do(http.MethodPut, "/api/v1/admin/events/"+eventID, `{"date":"2025-09-06T20:30:00"}`, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("2025-09-06T20:30:00Z", gjson.Get(w.Body.String(), "date").String())

	w = s.do(http.MethodPut, "/api/v1/admin/events/"+eventID, `{"date":"2025-08-01T10:00:00"}`, admin)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("past_date", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodPost, "/api/v1/admin/events",
		`{"title":"Jazz","date":"next friday","venue":"Club","total_tickets":5,"price":8}`, admin)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid_request", gjson.Get(w.Body.String(), "code").String())
	s.Equal("Invalid input. Please check your fields.", gjson.Get(w.Body.String(), "message").String())

	w = s.do(http.MethodPost, "/api/v1/admin/events",
		`{"title":"Jazz","venue":"Club","total_tickets":5,"price":8}`, admin)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(gjson.Get(w.Body.String(), "message").String(), "date (required)")
}

func (s *APISuite) TestBookingFlow() {
	admin := s.userToken("admin@example.com", true)
	alice := s.userToken("alice@example.com", false)
	bob := s.userToken("bob@example.com", false)
	eventID := s.createEvent(admin, 10)

	w := s.do(http.MethodPost, "/api/v1/events/"+eventID+"/book", `{"number_of_tickets":3}`, alice)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(eventID, gjson.Get(w.Body.String(), "event_id").String())
	s.EqualValues(7, s.availableTickets(eventID))

	w = s.do(http.MethodPost, "/api/v1/events/"+eventID+"/book", `{"number_of_tickets":8}`, bob)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("insufficient_tickets", gjson.Get(w.Body.String(), "code").String())
	s.Equal("Not enough tickets available: requested 8, available 7", gjson.Get(w.Body.String(), "message").String())

	w = s.do(http.MethodPost, "/api/v1/events/"+eventID+"/book", `{"number_of_tickets":1}`, alice)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("already_booked", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodPost, "/api/v1/events/"+eventID+"/book", `{"number_of_tickets":0}`, bob)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid_ticket_count", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodPost, "/api/v1/events/"+eventID+"/book",
		`{"number_of_tickets":1,"event_id":"00000000-0000-0000-0000-000000000001"}`, bob)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("event_id_mismatch", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodPost, "/api/v1/events/history", "", alice)
	s.Require().Equal(http.StatusOK, w.Code)
	history := w.Body.String()
	s.Equal(int64(1), gjson.Get(history, "#").Int())
	s.Equal("alice@example.com", gjson.Get(history, "0.user_email").String())
	s.Equal(37.5, gjson.Get(history, "0.total_price").Float())
	s.Equal("Rock Night", gjson.Get(history, "0.event.title").String())

	w = s.do(http.MethodGet, "/api/v1/admin/booking?skip=0&limit=10", "", admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "#").Int())

	w = s.do(http.MethodDelete, "/api/v1/events/"+eventID+"/cancel", "", alice)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(int64(3), gjson.Get(w.Body.String(), "number_of_tickets").Int())
	s.EqualValues(10, s.availableTickets(eventID))

	w = s.do(http.MethodDelete, "/api/v1/events/"+eventID+"/cancel", "", alice)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("booking_not_found", gjson.Get(w.Body.String(), "code").String())

	w = s.do(http.MethodPost, "/api/v1/events/00000000-0000-0000-0000-000000000001/book", `{"number_of_tickets":1}`, bob)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("event_not_found", gjson.Get(w.Body.String(), "code").String())
}

func (s *APISuite) TestPagination() {
	admin := s.userToken("admin@example.com", true)
	s.createEvent(admin, 5)
	s.createEvent(admin, 5)

	w := s.do(http.MethodGet, "/api/v1/events?skip=1&limit=5", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "#").Int())

	for _, query := range []string{"limit=-1", "skip=-3", "skip=abc"} {
		w = s.do(http.MethodGet, "/api/v1/events?"+query, "", "")
		s.Equal(http.StatusBadRequest, w.Code, query)
		s.Equal("invalid_pagination", gjson.Get(w.Body.String(), "code").String())
	}

	w = s.do(http.MethodGet, "/api/v1/admin/events?limit=5000", "", admin)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(2), gjson.Get(w.Body.String(), "#").Int())
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

// Package testserver provides a self-contained stand-in for the ticket
// backend. It serves every endpoint the flows touch, with knobs for the
// interesting failure modes (sold-out reservations, accounts without
// contacts) and for the backend's shape quirks (bare arrays vs envelopes).
package testserver

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Options configures the failure modes and response shapes of the server.
type Options struct {
	// SoldOut makes both reservation endpoints reject with a business
	// error instead of booking.
	SoldOut bool
	// EmptyContacts serves an empty contact list for every account.
	EmptyContacts bool
	// Enveloped wraps list responses in the status envelope instead of
	// returning bare arrays, mimicking the other half of the real
	// backend's inconsistency.
	Enveloped bool
}

type account struct {
	id       string
	password string
}

// Server emulates the ticket backend.
type Server struct {
	opts   Options
	engine *gin.Engine

	preserveCalls atomic.Int64
	orderSeq      atomic.Int64

	mu       sync.Mutex
	accounts map[string]account // username -> account
	tokens   map[string]string  // token -> account id
}

// NewServer creates a server pre-seeded with the default test accounts.
func NewServer(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		opts:   opts,
		engine: gin.New(),
		accounts: map[string]account{
			"fdse_microservices": {id: "4d2a46c7-71cb-4cf1-b5bb-b68406d9da6f", password: "111111"},
			"admin":              {id: "admin-id", password: "222222"},
		},
		tokens: make(map[string]string),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// PreserveCalls reports how many reservation requests were received.
func (s *Server) PreserveCalls() int64 {
	return s.preserveCalls.Load()
}

func (s *Server) routes() {
	e := s.engine
	e.POST("/api/v1/users/login", s.login)
	e.POST("/api/v1/travelservice/trips/left", s.tripsLeft("G", "D"))
	e.POST("/api/v1/travel2service/trips/left", s.tripsLeft("K", "Z"))
	e.GET("/api/v1/assuranceservice/assurances/types", s.assuranceTypes)
	e.GET("/api/v1/contactservice/contacts/account/:accountId", s.contacts)
	e.GET("/api/v1/foodservice/foods/:date/:start/:end/:tripId", s.foods)
	e.POST("/api/v1/preserveservice/preserve", s.preserve)
	e.POST("/api/v1/preserveotherservice/preserveOther", s.preserve)
	e.GET("/api/v1/users", s.listUsers)
	e.POST("/api/v1/adminuserservice/users", s.register)
}

func envelope(status int, msg string, data any) gin.H {
	return gin.H{"status": status, "msg": msg, "data": data}
}

// list serves a sequence either bare or enveloped, per Options.
func (s *Server) list(c *gin.Context, data any) {
	if s.opts.Enveloped {
		c.JSON(http.StatusOK, envelope(1, "Success", data))
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, envelope(0, "bad request", nil))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[body.Username]
	if !ok || acct.password != body.Password {
		c.JSON(http.StatusOK, envelope(0, "Incorrect username or password.", nil))
		return
	}
	token := uuid.NewString()
	s.tokens[token] = acct.id
	c.JSON(http.StatusOK, envelope(1, "login success", gin.H{
		"userId":   acct.id,
		"username": body.Username,
		"token":    token,
	}))
}

// authorized resolves the bearer token to an account id.
func (s *Server) authorized(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[strings.TrimPrefix(h, "Bearer ")]
	return id, ok
}

func (s *Server) tripsLeft(types ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			StartPlace    string `json:"startPlace"`
			EndPlace      string `json:"endPlace"`
			DepartureTime string `json:"departureTime"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.StartPlace == "" || body.EndPlace == "" {
			c.JSON(http.StatusOK, envelope(0, "bad query", nil))
			return
		}

		trips := make([]gin.H, 0, len(types))
		for i, tt := range types {
			trips = append(trips, gin.H{
				"tripId":          gin.H{"type": tt, "number": fmt.Sprintf("%d", 1234+i)},
				"startingStation": body.StartPlace,
				"terminalStation": body.EndPlace,
				"startingTime":    body.DepartureTime + " 09:00:00",
			})
		}
		c.JSON(http.StatusOK, envelope(1, "Success", trips))
	}
}

func (s *Server) assuranceTypes(c *gin.Context) {
	if _, ok := s.authorized(c); !ok {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}
	c.JSON(http.StatusOK, envelope(1, "Success", []gin.H{
		{"index": 1, "name": "Traffic Accident Assurance", "price": 3.0},
	}))
}

func (s *Server) contacts(c *gin.Context) {
	if _, ok := s.authorized(c); !ok {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}
	if s.opts.EmptyContacts {
		s.list(c, []gin.H{})
		return
	}
	accountID := c.Param("accountId")
	s.list(c, []gin.H{
		{
			"id":             "contact-" + accountID,
			"accountId":      accountID,
			"name":           "Contacts_One",
			"documentType":   1,
			"documentNumber": "DocumentNumber_One",
			"phoneNumber":    "ContactsPhoneNum_One",
		},
	})
}

func (s *Server) foods(c *gin.Context) {
	start := c.Param("start")
	c.JSON(http.StatusOK, envelope(1, "Success", gin.H{
		"trainFoodList": []gin.H{
			{"foodType": 1, "foodName": "Spicy hot noodles", "price": 2.5},
		},
		"foodStoreListMap": gin.H{
			start: gin.H{
				"Roman Holiday": []gin.H{
					{"foodType": 2, "foodName": "Big Burger", "price": 9.5},
				},
			},
		},
	}))
}

func (s *Server) preserve(c *gin.Context) {
	s.preserveCalls.Add(1)
	if _, ok := s.authorized(c); !ok {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	var order struct {
		AccountID  string `json:"accountId"`
		ContactsID string `json:"contactsId"`
		TripID     string `json:"tripId"`
		SeatType   string `json:"seatType"`
		Date       string `json:"date"`
		From       string `json:"from"`
		To         string `json:"to"`
	}
	if err := c.ShouldBindJSON(&order); err != nil || order.TripID == "" || order.ContactsID == "" {
		c.JSON(http.StatusOK, envelope(0, "invalid order", nil))
		return
	}
	if s.opts.SoldOut {
		c.JSON(http.StatusOK, envelope(0, "Seat sold out", nil))
		return
	}
	c.JSON(http.StatusOK, envelope(1, "Success.",
		fmt.Sprintf("order-%d", s.orderSeq.Add(1))))
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	users := make([]gin.H, 0, len(s.accounts))
	for name, acct := range s.accounts {
		users = append(users, gin.H{"userId": acct.id, "userName": name})
	}
	s.mu.Unlock()
	s.list(c, users)
}

func (s *Server) register(c *gin.Context) {
	if _, ok := s.authorized(c); !ok {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	var body struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UserName == "" {
		c.JSON(http.StatusOK, envelope(0, "invalid user", nil))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[body.UserName]; exists {
		c.JSON(http.StatusOK, envelope(0, "USER HAS ALREADY EXISTS", nil))
		return
	}
	acct := account{id: uuid.NewString(), password: body.Password}
	s.accounts[body.UserName] = acct
	c.JSON(http.StatusOK, envelope(1, "REGISTER USER SUCCESS", gin.H{
		"userId":   acct.id,
		"userName": body.UserName,
	}))
}

// Package clienttest provides an in-process fake of the meal-analysis
// service for tests. It speaks the same JSON wire format as the real service,
// including bearer authentication and the daily request limit.
package clienttest

import (
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Food is an entry of the fake food database.
type Food struct {
	Name     string
	Category string
	Unit     string
	UnitDesc string
	GI       float64
	NetCarbs float64
}

// DefaultFoods is a small database used when New is given none.
var DefaultFoods = []Food{
	{Name: "Roti", Category: "Breads", Unit: "piece", UnitDesc: "1 medium roti (40g)", GI: 62, NetCarbs: 11.7},
	{Name: "Dal (Toor)", Category: "Lentils", Unit: "bowl", UnitDesc: "1 bowl (150g)", GI: 29, NetCarbs: 17},
	{Name: "Chicken Curry (Homemade)", Category: "Curries", Unit: "bowl", UnitDesc: "1 bowl (200g)", GI: 40, NetCarbs: 8},
	{Name: "Chicken Curry (Restaurant)", Category: "Curries", Unit: "bowl", UnitDesc: "1 bowl (250g)", GI: 45, NetCarbs: 14},
	{Name: "White Rice", Category: "Grains", Unit: "cup", UnitDesc: "1 cup cooked (158g)", GI: 73, NetCarbs: 44},
}

// Request is a recorded incoming request.
type Request struct {
	Method        string
	Path          string
	RequestID     string
	Authorization string
}

// Server is a running fake service.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	foods      []Food
	token      string
	dailyLimit int
	used       int
	failures   map[string][]int
	requests   []Request
	bareArray  bool
}

// Option configures a Server.
type Option func(*Server)

// WithFoods replaces the food database.
func WithFoods(foods []Food) Option {
	return func(s *Server) { s.foods = foods }
}

// WithToken requires "Authorization: Bearer <token>" on metered endpoints.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithDailyLimit caps metered requests; further ones get 429.
func WithDailyLimit(n int) Option {
	return func(s *Server) { s.dailyLimit = n }
}

// WithBareArrayParse makes /parse-meal-chat answer with a bare item array.
func WithBareArrayParse() Option {
	return func(s *Server) { s.bareArray = true }
}

// New starts a fake service. Callers must Close it.
func New(opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{foods: DefaultFoods, failures: map[string][]int{}}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.record)
	router.GET("/health", s.handleHealth)
	router.GET("/foods", s.handleFoods)
	router.POST("/portion-info", s.failer, s.handlePortionInfo)

	metered := router.Group("/", s.failer, s.authorize, s.meter)
	metered.POST("/parse-meal-chat", s.handleParse)
	metered.POST("/parse-meal-smart", s.handleSmartParse)
	metered.POST("/calculate-gl", s.handleCalculate)

	s.Server = httptest.NewServer(router)
	return s
}

// FailNext makes the next request to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], status)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Used returns the number of metered requests accepted.
func (s *Server) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		RequestID:     c.GetHeader("X-Request-ID"),
		Authorization: c.GetHeader("Authorization"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) failer(c *gin.Context) {
	s.mu.Lock()
	queue := s.failures[c.Request.URL.Path]
	status := 0
	if len(queue) > 0 {
		status = queue[0]
		s.failures[c.Request.URL.Path] = queue[1:]
	}
	s.mu.Unlock()

	if status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status), "message": "injected failure"})
		return
	}
	c.Next()
}

func (s *Server) authorize(c *gin.Context) {
	if s.token == "" {
		c.Next()
		return
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] != s.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid or expired token",
			"message": "Please login again to get a new token",
		})
		return
	}
	c.Next()
}

func (s *Server) meter(c *gin.Context) {
	s.mu.Lock()
	if s.dailyLimit > 0 && s.used >= s.dailyLimit {
		used := s.used
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Daily limit reached",
			"message":     "You have used all " + strconv.Itoa(s.dailyLimit) + " meal calculations for today. Please try again tomorrow.",
			"daily_limit": s.dailyLimit,
			"used_today":  used,
		})
		return
	}
	s.used++
	s.mu.Unlock()
	c.Next()
}

func (s *Server) usage() gin.H {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := s.dailyLimit
	if limit == 0 {
		limit = 10
	}
	return gin.H{"used_today": s.used, "daily_limit": limit, "remaining": max(limit-s.used, 0)}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database_loaded": len(s.foods) > 0, "total_foods": len(s.foods)})
}

func (s *Server) handleFoods(c *gin.Context) {
	foods := make([]gin.H, 0, len(s.foods))
	for _, f := range s.foods {
		foods = append(foods, gin.H{"name": f.Name, "category": f.Category})
	}
	c.JSON(http.StatusOK, gin.H{"total_foods": len(foods), "foods": foods})
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) bindText(c *gin.Context) (string, bool) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "message": `Request must contain "text" field`})
		return "", false
	}
	return req.Text, true
}

func (s *Server) handleParse(c *gin.Context) {
	text, ok := s.bindText(c)
	if !ok {
		return
	}
	meal := make([]gin.H, 0)
	for _, m := range splitMeal(text) {
		name := m.name
		if found := s.lookup(m.name); len(found) > 0 {
			name = found[0].Name
		}
		meal = append(meal, gin.H{"food": name, "quantity": m.quantity})
	}
	if s.bareArray {
		c.JSON(http.StatusOK, meal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal, "usage": s.usage()})
}

func (s *Server) handleSmartParse(c *gin.Context) {
	text, ok := s.bindText(c)
	if !ok {
		return
	}
	mentions := splitMeal(text)
	if len(mentions) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "No food items found in description", "items": []gin.H{}})
		return
	}

	items := make([]gin.H, 0, len(mentions))
	for _, m := range mentions {
		found := s.lookup(m.name)
		matches := make([]gin.H, 0, len(found))
		for _, f := range found {
			matches = append(matches, gin.H{"name": f.Name, "category": f.Category, "unit_desc": f.UnitDesc})
		}
		item := gin.H{"original_name": m.name, "quantity": m.quantity, "matches": matches}
		switch len(found) {
		case 0:
			item["status"] = "needs_ai"
		case 1:
			item["status"] = "single_match"
			item["selected_food"] = found[0].Name
		default:
			item["status"] = "needs_disambiguation"
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "items": items, "usage": s.usage()})
}

func (s *Server) handlePortionInfo(c *gin.Context) {
	var req struct {
		Food string `json:"food"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Food == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "message": `Request must contain "food" field`})
		return
	}
	for _, f := range s.foods {
		if strings.EqualFold(f.Name, req.Food) {
			c.JSON(http.StatusOK, gin.H{"food": f.Name, "unit": f.Unit, "unit_desc": f.UnitDesc, "source": "database"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Food not found", "message": "No portion information for " + req.Food})
}

func (s *Server) handleCalculate(c *gin.Context) {
	var req struct {
		Meal []map[string]any `json:"meal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Meal == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "message": `Request must contain "meal" array`})
		return
	}

	total := 0.0
	items := make([]gin.H, 0, len(req.Meal))
	for _, entry := range req.Meal {
		food, _ := entry["food"].(string)
		qty, ok := entry["quantity"].(float64)
		switch {
		case food == "" || !ok:
			items = append(items, gin.H{"food": food, "status": "invalid_format", "message": `Each meal item must have "food" and "quantity" fields`})
		case qty <= 0:
			items = append(items, gin.H{"food": food, "status": "invalid_quantity", "message": "Quantity must be a positive number"})
		default:
			if f, found := s.exact(food); found {
				gl := round2(f.GI * f.NetCarbs / 100 * qty)
				total += gl
				items = append(items, gin.H{"food": food, "gl": gl})
			} else {
				gl := round2(5 * qty)
				total += gl
				items = append(items, gin.H{"food": food, "gl": gl, "status": "ai_estimated"})
			}
		}
	}

	suggestions := []gin.H{}
	if total >= 11 {
		suggestions = append(suggestions, gin.H{"text": "Add a side salad before the meal", "reason": "Fibre slows glucose absorption"})
	}
	c.JSON(http.StatusOK, gin.H{"total_gl": round2(total), "items": items, "suggestions": suggestions, "usage": s.usage()})
}

func (s *Server) exact(name string) (Food, bool) {
	for _, f := range s.foods {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Food{}, false
}

// lookup returns foods whose name contains every word of name.
func (s *Server) lookup(name string) []Food {
	if f, ok := s.exact(name); ok {
		return []Food{f}
	}
	words := strings.Fields(strings.ToLower(name))
	var out []Food
	for _, f := range s.foods {
		lower := strings.ToLower(f.Name)
		all := len(words) > 0
		for _, w := range words {
			if !strings.Contains(lower, strings.TrimSuffix(w, "s")) {
				all = false
				break
			}
		}
		if all {
			out = append(out, f)
		}
	}
	return out
}

type mention struct {
	name     string
	quantity float64
}

var (
	separators = regexp.MustCompile(`(?i)\s*(?:,|\band\b|\bwith\b|\+)\s*`)
	leadingQty = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(.+)$`)
)

// splitMeal turns "2 rotis with dal" into [{rotis 2} {dal 1}].
func splitMeal(text string) []mention {
	var out []mention
	for _, part := range separators.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := mention{name: part, quantity: 1}
		if sub := leadingQty.FindStringSubmatch(part); sub != nil {
			if q, err := strconv.ParseFloat(sub[1], 64); err == nil {
				m.quantity = q
				m.name = sub[2]
			}
		}
		out = append(out, m)
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

package taskapi

import (
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Demo credentials accepted by every Server.
const (
	DemoEmail    = "user1@example.com"
	DemoPassword = "password123"
)

type account struct {
	ID           int64
	Email        string
	PasswordHash string
}

// Options configures a Server.
type Options struct {
	// TokenTTL bounds issued tokens. Zero means one hour.
	TokenTTL time.Duration
	// CORSOrigins defaults to "*".
	CORSOrigins []string
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
	// Throttle limits failed logins per email when set.
	Throttle *ThrottleOptions
}

// Server is the fake Task API.
type Server struct {
	engine   *gin.Engine
	tokens   *tokenAuthority
	throttle *loginThrottle
	logger   zerolog.Logger

	mu       sync.RWMutex
	accounts map[string]*account
	nextID   int64

	dashboardHits atomic.Int64
	rejections    atomic.Int64
}

// New builds a Server seeded with the demo account.
func New(opts Options) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	key, err := randomKey()
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "taskapi").Logger()
	}

	s := &Server{
		tokens:   newTokenAuthority(key, ttl),
		throttle: newLoginThrottle(opts.Throttle),
		logger:   logger,
		accounts: make(map[string]*account),
	}
	if _, err := s.AddAccount(DemoEmail, DemoPassword); err != nil {
		return nil, err
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	api := r.Group("/api")
	api.POST("/login", s.handleLogin)

	secured := api.Group("")
	secured.Use(s.requireBearer())
	secured.GET("/dashboard", s.handleDashboard)

	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves on an httptest listener. Callers close the returned server.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.engine)
}

// AddAccount registers email with password and returns its id.
func (s *Server) AddAccount(email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return 0, errors.New("email and password required")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return 0, errors.New("account exists")
	}
	s.nextID++
	s.accounts[email] = &account{ID: s.nextID, Email: email, PasswordHash: hash}
	return s.nextID, nil
}

// Revoke makes token fail authentication from now on.
func (s *Server) Revoke(token string) error {
	return s.tokens.revoke(token)
}

// RotateKey invalidates every token issued so far.
func (s *Server) RotateKey() error {
	key, err := randomKey()
	if err != nil {
		return err
	}
	s.tokens.rotate(key)
	return nil
}

// SetClock overrides the clock used for issuing and verifying tokens.
func (s *Server) SetClock(now func() time.Time) {
	s.tokens.now = now
}

// DashboardHits counts authenticated dashboard reads.
func (s *Server) DashboardHits() int64 {
	return s.dashboardHits.Load()
}

// Rejections counts 401 answers from protected routes.
func (s *Server) Rejections() int64 {
	return s.rejections.Load()
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.throttle.check(ctx, email); err != nil {
		if errors.Is(err, errThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts"})
			return
		}
		s.logger.Warn().Err(err).Msg("login throttle unavailable")
	}

	s.mu.RLock()
	acct := s.accounts[email]
	s.mu.RUnlock()
	ok := false
	if acct != nil {
		var err error
		ok, err = verifyPassword(req.Password, acct.PasswordHash)
		ok = ok && err == nil
	}
	if !ok {
		if err := s.throttle.fail(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := s.throttle.reset(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("login throttle unavailable")
	}

	token, err := s.tokens.issue(acct)
	if err != nil {
		s.logger.Error().Err(err).Msg("token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, ID: acct.ID, Email: acct.Email})
}

func (s *Server) handleDashboard(c *gin.Context) {
	s.dashboardHits.Add(1)
	c.JSON(http.StatusOK, sampleDashboard())
}

func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.reject(c)
			return
		}
		id, err := s.tokens.verify(token)
		if err != nil {
			s.logger.Debug().Err(err).Msg("bearer rejected")
			s.reject(c)
			return
		}
		c.Set("accountID", id)
		c.Next()
	}
}

func (s *Server) reject(c *gin.Context) {
	s.rejections.Add(1)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func randomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

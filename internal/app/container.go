package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/api"
	"github.com/nekogravitycat/league-admin-backend/internal/auth"
	"github.com/nekogravitycat/league-admin-backend/internal/billing"
	"github.com/nekogravitycat/league-admin-backend/internal/config"
	"github.com/nekogravitycat/league-admin-backend/internal/facilitator"
	"github.com/nekogravitycat/league-admin-backend/internal/job"
	"github.com/nekogravitycat/league-admin-backend/internal/mail"
	"github.com/nekogravitycat/league-admin-backend/internal/metrics"
	"github.com/nekogravitycat/league-admin-backend/internal/preference"
	"github.com/nekogravitycat/league-admin-backend/internal/registration"
	"github.com/nekogravitycat/league-admin-backend/internal/roster"
	"github.com/nekogravitycat/league-admin-backend/internal/team"
	"github.com/nekogravitycat/league-admin-backend/internal/user"
)

const (
	rosterSweepSpec = "@every 1m"
	feedResyncSpec  = "@every 5m"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Listener   *registration.Listener
	Scheduler  *job.Scheduler
	Hub        *registration.Hub

	closers []func() error
}

// NewContainer initializes all modules and returns the container.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.SugaredLogger) (*Container, error) {
	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	c := &Container{}

	// Preferences
	var prefs preference.Store
	if cfg.RedisURL != "" {
		rs, err := preference.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init preference store: %w", err)
		}
		c.closers = append(c.closers, rs.Close)
		prefs = rs
	} else {
		log.Infow("REDIS_URL not set, preferences kept in memory")
		prefs = preference.NewMemoryStore(0)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)
	calc := billing.NewCalculator(cfg.TaxRate)

	// User Module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher, jwtManager, user.ServiceConfig{
		PublicURL:        cfg.PublicURL,
		PasswordResetTTL: cfg.PasswordResetTTL,
		Logger:           log.Named("user"),
	})

	// Roster Module
	rosterSessions := roster.NewManager(roster.ManagerConfig{
		Source:         roster.NewPgxSource(pool),
		Admins:         userService,
		Preferences:    prefs,
		Calculator:     calc,
		StrictRows:     cfg.RosterStrictRows,
		SearchDebounce: cfg.SearchDebounce,
		PageSize:       cfg.RosterDefaultPageSize,
		IdleTTL:        cfg.SessionIdleTTL,
		Logger:         log.Named("roster"),
		Metrics:        m,
	})

	// Facilitator Module
	facilitatorService := facilitator.NewService(facilitator.NewPgxRepository(pool), log.Named("facilitator"))

	// Team Module
	teamService := team.NewService(team.NewPgxRepository(pool), prefs, log.Named("team"))

	// Mail Module
	var sender mail.Sender
	if cfg.SMTPEnabled() {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	} else {
		sender = mail.NewLogSender(log.Named("mail"))
	}
	mailService := mail.NewService(sender, mail.NewPgxRecipients(pool), log.Named("mail"), m)

	// Registration Module
	feed := registration.NewFeed(cfg.FeedMaxEntries)
	hub := registration.NewHub(log.Named("stream"))
	listener := registration.NewListener(registration.ListenerDeps{
		Pool:       pool,
		Repository: registration.NewPgxRepository(pool),
		Feed:       feed,
		Hub:        hub,
		Calculator: calc,
		Logger:     log.Named("registration"),
		Metrics:    m,
	})

	// Jobs
	scheduler := job.NewScheduler(log.Named("job"))
	if _, err := scheduler.Register(rosterSweepSpec, job.NewRosterSweepJob(rosterSessions)); err != nil {
		return nil, fmt.Errorf("register roster sweep: %w", err)
	}
	if _, err := scheduler.Register(feedResyncSpec, job.NewFeedResyncJob(listener)); err != nil {
		return nil, fmt.Errorf("register feed resync: %w", err)
	}

	// API Router Config
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		RosterSessions:     rosterSessions,
		FacilitatorService: facilitatorService,
		TeamService:        teamService,
		MailService:        mailService,
		RegistrationFeed:   feed,
		RegistrationHub:    hub,
		JWTManager:         jwtManager,
		Gatherer:           reg,
		Logger:             log,
	})

	c.Router = router
	c.JWTManager = jwtManager
	c.Listener = listener
	c.Scheduler = scheduler
	c.Hub = hub
	return c, nil
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	c.Hub.Close()
	var firstErr error
	for _, fn := range c.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

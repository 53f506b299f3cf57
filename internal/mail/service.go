package mail

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/metrics"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
)

const (
	maxSubjectLen  = 200
	maxRecipients  = 1000
	resultSent     = "sent"
	resultFailed   = "failed"
	resultRejected = "rejected"
)

// BulkRequest addresses either an explicit recipient list or every member of a league.
type BulkRequest struct {
	Subject    string
	Body       string
	Recipients []string
	LeagueID   *int64
}

// Failure records one recipient that could not be reached.
type Failure struct {
	Email  string
	Reason string
}

// BulkResult counts deliveries. Failed recipients are not retried.
type BulkResult struct {
	Sent     int
	Failed   int
	Failures []Failure
}

type Service interface {
	SendBulk(ctx context.Context, req BulkRequest) (*BulkResult, error)
}

type service struct {
	sender     Sender
	recipients RecipientSource
	validate   *validator.Validate
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
}

func NewService(sender Sender, recipients RecipientSource, log *zap.SugaredLogger, m *metrics.Metrics) Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	return &service{
		sender:     sender,
		recipients: recipients,
		validate:   validator.New(),
		log:        log,
		metrics:    m,
	}
}

func (s *service) SendBulk(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	subject := strings.Join(strings.Fields(req.Subject), " ")
	body := SanitizeBody(req.Body)

	fe := &apperror.FieldError{}
	switch {
	case subject == "":
		fe.Add("subject", "subject is required")
	case len(subject) > maxSubjectLen:
		fe.Add("subject", "subject is too long")
	}
	if body == "" {
		fe.Add("body", "body is required")
	}
	if len(req.Recipients) == 0 && req.LeagueID == nil {
		fe.Add("recipients", "provide recipients or a league")
	}
	if err := fe.OrNil(); err != nil {
		return nil, err
	}

	addrs, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	html, err := Render(subject, body)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for _, to := range addrs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.validate.Var(to, "required,email"); err != nil {
			result.fail(to, "invalid email address")
			s.metrics.EmailsSent.WithLabelValues(resultRejected).Inc()
			continue
		}

		if err := s.sender.Send(ctx, Message{To: to, Subject: subject, HTML: html}); err != nil {
			s.log.Warnw("bulk email delivery failed", "to", to, "error", err)
			result.fail(to, "delivery failed")
			s.metrics.EmailsSent.WithLabelValues(resultFailed).Inc()
			continue
		}
		result.Sent++
		s.metrics.EmailsSent.WithLabelValues(resultSent).Inc()
	}

	s.log.Infow("bulk email finished", "subject", subject, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

// resolve merges explicit and league recipients, dropping duplicates case-insensitively.
func (s *service) resolve(ctx context.Context, req BulkRequest) ([]string, error) {
	all := append([]string(nil), req.Recipients...)
	if req.LeagueID != nil {
		league, err := s.recipients.LeagueEmails(ctx, *req.LeagueID)
		if err != nil {
			return nil, err
		}
		all = append(all, league...)
	}

	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, addr := range all {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	if len(out) == 0 {
		return nil, apperror.NewFieldError("recipients", "no recipients found")
	}
	if len(out) > maxRecipients {
		return nil, apperror.NewFieldError("recipients", "too many recipients")
	}
	return out, nil
}

func (r *BulkResult) fail(email, reason string) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{Email: email, Reason: reason})
}

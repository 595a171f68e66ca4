// Package digest sends an end-of-run summary email to the operator: how
// many notices were fetched, sent and flagged, broken down by nature.
package digest

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"boampwatch/internal/notice/domain"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// Sender delivers run digests over SMTP. A nil Sender is a valid no-op, so
// callers do not have to guard on the digest being enabled.
type Sender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	toEmail   string
	log       *logger.Logger
}

func NewSender(cfg config.DigestConfig, log *logger.Logger) *Sender {
	if !cfg.GetDigestEnabled() {
		return nil
	}
	return &Sender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetDigestFromName(),
		fromEmail: cfg.GetDigestFromAddress(),
		toEmail:   cfg.GetDigestToAddress(),
		log:       log,
	}
}

// SendRunDigest mails the summary for one completed run.
func (s *Sender) SendRunDigest(ctx context.Context, run domain.RunStats) error {
	if s == nil {
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("digest from: %w", err)
	}
	if err := msg.To(s.toEmail); err != nil {
		return fmt.Errorf("digest to: %w", err)
	}
	msg.Subject(fmt.Sprintf("BOAMP %s : %d avis, %d envoyés", run.Date, run.TotalCount, run.Sent))
	msg.SetBodyString(gomail.TypeTextHTML, renderBody(run))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("digest client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("digest send: %w", err)
	}
	s.log.Info("run digest sent", "date", run.Date, "to", s.toEmail)
	return nil
}

func renderBody(run domain.RunStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>BOAMP du %s</h2>", run.Date)
	fmt.Fprintf(&b, "<p>%d avis récupérés, %d notifications envoyées.</p>", run.TotalCount, run.Sent)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Appels d'offre : %d</li>", run.ByNature[domain.NatureAward])
	fmt.Fprintf(&b, "<li>Rectificatifs : %d</li>", run.ByNature[domain.NatureAmendment])
	fmt.Fprintf(&b, "<li>Attributions : %d</li>", run.ByNature[domain.NatureResult])
	b.WriteString("</ul>")
	if run.Anomalies > 0 {
		fmt.Fprintf(&b, "<p>⚠️ %d anomalie(s) de données, voir les journaux.</p>", run.Anomalies)
	}
	return b.String()
}

// Package ses mails fortunes to users via AWS SES.
package ses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/models"
	"golf-fortune-engine/internal/utils"
)

// ErrNoSender is returned when SES_SENDER_EMAIL is not configured.
var ErrNoSender = errors.New("ses sender email not configured")

// EmailAPI is the subset of the SES client used by the service.
type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    EmailAPI
	fromEmail string
	logger    *zap.Logger
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	if appCfg.SESSenderEmail == "" {
		return nil, ErrNoSender
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(ses.NewFromConfig(cfg), appCfg.SESSenderEmail), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client EmailAPI, fromEmail string) *Service {
	return &Service{
		client:    client,
		fromEmail: fromEmail,
		logger:    utils.Named("ses"),
	}
}

// Name identifies the sink in logs.
func (s *Service) Name() string {
	return "ses"
}

// Save implements the recorder sink interface. Records without an email are skipped.
func (s *Service) Save(ctx context.Context, record *models.FortuneRecord) error {
	if record.User.Email == "" {
		return nil
	}
	if _, err := s.SendFortune(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}
	return nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	s.logger.Info("Email sent successfully",
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// fortuneSection is one rendered section of the email.
type fortuneSection struct {
	Title string
	Body  string
}

type fortuneEmail struct {
	Name        string
	ElementName string
	Sections    []fortuneSection
	LuckyClub   string
	LuckyHole   string
	LuckyItem   string
}

func buildFortuneEmail(record *models.FortuneRecord) fortuneEmail {
	name := record.User.Name
	if name == "" {
		name = "골퍼"
	}

	email := fortuneEmail{
		Name:        name,
		ElementName: record.Analysis.ElementName,
		LuckyClub:   record.Fortune.LuckyClub,
		LuckyHole:   record.Fortune.LuckyHole,
		LuckyItem:   record.Fortune.LuckyItem,
	}
	for _, key := range models.SectionKeys() {
		email.Sections = append(email.Sections, fortuneSection{
			Title: key.Title(),
			Body:  record.Fortune.Sections.Get(key),
		})
	}
	return email
}

// FortuneSubject returns the subject line for a record.
func FortuneSubject(record *models.FortuneRecord) string {
	name := record.User.Name
	if name == "" {
		name = "골퍼"
	}
	return fmt.Sprintf("⛳ %s님의 오늘의 골프 운세", name)
}

// SendFortune mails the fortune to the user's address.
func (s *Service) SendFortune(ctx context.Context, record *models.FortuneRecord) (*SendEmailResult, error) {
	if record.User.Email == "" {
		return nil, errors.New("record has no email address")
	}

	email := buildFortuneEmail(record)
	htmlBody, err := renderFortuneHTML(email)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       record.User.Email,
		Subject:  FortuneSubject(record),
		HTMLBody: htmlBody,
		TextBody: renderFortuneText(email),
	})
}

var fortuneHTML = template.Must(template.New("fortune").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Apple SD Gothic Neo', 'Malgun Gothic', sans-serif; line-height: 1.7; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f6f43; color: white; padding: 24px; border-radius: 10px 10px 0 0; text-align: center; }
        .content { background: #f7f7f2; padding: 24px; border-radius: 0 0 10px 10px; }
        .section h3 { margin: 18px 0 6px 0; color: #1f6f43; }
        .lucky { background: white; border-radius: 8px; padding: 16px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>⛳ 골신 할아버지의 운세</h1>
        <p>{{.Name}}님{{if .ElementName}} · {{.ElementName}}{{end}}</p>
    </div>
    <div class="content">
        {{range .Sections}}
        <div class="section">
            <h3>{{.Title}}</h3>
            <p>{{.Body}}</p>
        </div>
        {{end}}
        <div class="lucky">
            <p>행운의 클럽: {{.LuckyClub}}</p>
            <p>행운의 홀: {{.LuckyHole}}</p>
            <p>행운의 아이템: {{.LuckyItem}}</p>
        </div>
    </div>
</body>
</html>`))

func renderFortuneHTML(email fortuneEmail) (string, error) {
	var buf bytes.Buffer
	if err := fortuneHTML.Execute(&buf, email); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderFortuneText(email fortuneEmail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s님의 골프 운세\n\n", email.Name)
	for _, section := range email.Sections {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", section.Title, section.Body)
	}
	fmt.Fprintf(&b, "행운의 클럽: %s\n", email.LuckyClub)
	fmt.Fprintf(&b, "행운의 홀: %s\n", email.LuckyHole)
	fmt.Fprintf(&b, "행운의 아이템: %s\n", email.LuckyItem)

	return b.String()
}

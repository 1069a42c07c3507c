package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/models"
)

type fakeMailer struct {
	sent []*ses.SendEmailInput
	err  error
}

func (f *fakeMailer) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func record(email string) *models.FortuneRecord {
	return &models.FortuneRecord{
		RequestID: "req-1",
		User:      models.UserInput{Name: "김철수", Email: email},
		Analysis:  models.ElementAnalysis{ElementName: "木 - 나무의 기운"},
		Fortune: models.FortuneResult{
			Sections: models.FortuneSections{
				Greeting:    "허허, 철수야 반갑네.",
				FinalAdvice: "<b>힘 빼고</b> 치게나.",
			},
			LuckyItems: models.LuckyItems{
				LuckyClub: "Titleist T150 Irons",
				LuckyHole: "1번홀",
				LuckyItem: "초록색 거리측정기 🌳",
			},
		},
	}
}

func TestSendFortune_RendersSections(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewWithClient(mailer, "fortune@example.com")

	result, err := svc.SendFortune(context.Background(), record("golfer@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "msg-1", result.MessageID)

	require.Len(t, mailer.sent, 1)
	in := mailer.sent[0]
	assert.Equal(t, []string{"golfer@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "fortune@example.com", aws.ToString(in.Source))
	assert.Contains(t, aws.ToString(in.Message.Subject.Data), "김철수")

	html := aws.ToString(in.Message.Body.Html.Data)
	assert.Contains(t, html, "인사말")
	assert.Contains(t, html, "허허, 철수야 반갑네.")
	assert.Contains(t, html, "&lt;b&gt;힘 빼고&lt;/b&gt;", "section text is escaped")
	assert.Contains(t, html, "1번홀")

	text := aws.ToString(in.Message.Body.Text.Data)
	assert.Contains(t, text, "[마무리 조언]")
	assert.Contains(t, text, "행운의 아이템: 초록색 거리측정기 🌳")
}

func TestSave_SkipsRecordsWithoutEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewWithClient(mailer, "fortune@example.com")

	require.NoError(t, svc.Save(context.Background(), record("")))
	assert.Empty(t, mailer.sent)
}

func TestSave_WrapsPersistenceError(t *testing.T) {
	svc := NewWithClient(&fakeMailer{err: errors.New("throttled")}, "fortune@example.com")

	err := svc.Save(context.Background(), record("golfer@example.com"))
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestNewService_RequiresSender(t *testing.T) {
	_, err := NewService(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, ErrNoSender)
}

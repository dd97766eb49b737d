package mailservice

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/postboard/internal/common"
)

type MailService struct {
	mb      common.MessageConsumer
	m       Mailer
	logger  MailLogger
	baseURL string
	retry   retryPolicy
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// retryPolicy is exponential backoff with full jitter.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Template struct{}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// postPublishedData feeds templates/post_published.html.
type postPublishedData struct {
	Username string
	Title    string
	PostURL  string
}

package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Identity provider issuing the bearer tokens admins authenticate with.
	// JWKS are fetched from <issuer>/.well-known/jwks.json.
	AuthIssuerURL string `envconfig:"AUTH_ISSUER_URL"`

	// Object storage for proposal documents.
	UploadBucket string `envconfig:"UPLOAD_BUCKET" default:"tenderd-uploads"`

	// Sender address for status-change notifications. Notifications are
	// disabled when blank.
	MailSender string `envconfig:"MAIL_SENDER"`
}

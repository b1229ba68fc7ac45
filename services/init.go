package services

import (
	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/crypto"
	"github.com/warmuphero/warmstack/internal/logger"
	"github.com/warmuphero/warmstack/internal/repository"
	"github.com/warmuphero/warmstack/services/ai"
	"github.com/warmuphero/warmstack/services/events"
	"github.com/warmuphero/warmstack/services/imap"
	"github.com/warmuphero/warmstack/services/smtp"
	"github.com/warmuphero/warmstack/services/warmup"
)

type Services struct {
	AIService       interfaces.AIService
	SMTPService     interfaces.SMTPService
	MailboxService  interfaces.MailboxService
	CredentialVault interfaces.CredentialVault
	EventsPublisher interfaces.EventsPublisher
	WarmupService   interfaces.WarmupService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	vault, err := crypto.NewVault(cfg.AppConfig.EncryptionKey)
	if err != nil {
		return nil, err
	}

	// The broker is optional; without it cycle completions are only logged.
	var publisher interfaces.EventsPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisherConfig := &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		}
		publisher, err = events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
		if err != nil {
			return nil, err
		}
	}

	aiService := ai.NewAIService(cfg.OpenAIConfig)
	smtpService := smtp.NewSMTPService(cfg.WarmupConfig)
	mailboxService := imap.NewMailboxService(log, cfg.WarmupConfig)

	services := Services{
		AIService:       aiService,
		SMTPService:     smtpService,
		MailboxService:  mailboxService,
		CredentialVault: vault,
		EventsPublisher: publisher,
		WarmupService: warmup.NewWarmupService(
			log,
			repos,
			smtpService,
			mailboxService,
			aiService,
			vault,
			publisher,
			cfg.WarmupConfig,
		),
	}

	return &services, nil
}

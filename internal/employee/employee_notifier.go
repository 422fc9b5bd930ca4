package employee

import (
	"context"

	employeeerrors "employee-service/internal/employee/errors"
	"employee-service/internal/events"
	"employee-service/internal/messaging/kafka/producer"
	"employee-service/internal/notification"
	"employee-service/internal/shared/contextutil"
	"employee-service/internal/shared/metrics"

	"go.uber.org/zap"
)

const (
	defaultNotificationSubject = "Employee Created Successfully"
	defaultSourceService       = "employee-service"
)

type NotifierConfig struct {
	Topic         string
	Recipient     string
	Subject       string
	SourceService string
}

// Notifier turns a persisted employee into an email notification event and
// hands it to the message bus. Both steps are synchronous; neither retries.
type Notifier interface {
	BuildCreatedEvent(ctx context.Context, empl Employee) (events.NotificationEvent, error)
	Dispatch(ctx context.Context, event events.NotificationEvent) error
}

type notifier struct {
	renderer  notification.Renderer
	publisher producer.Publisher
	cfg       NotifierConfig
	logger    *zap.Logger
}

func NewNotifier(
	renderer notification.Renderer,
	publisher producer.Publisher,
	cfg NotifierConfig,
	logger ...*zap.Logger,
) Notifier {
	l := zap.L().Named("employee.notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.notifier")
	}
	if cfg.Topic == "" {
		cfg.Topic = events.EmailNotificationTopic
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultNotificationSubject
	}
	if cfg.SourceService == "" {
		cfg.SourceService = defaultSourceService
	}
	return &notifier{
		renderer:  renderer,
		publisher: publisher,
		cfg:       cfg,
		logger:    l,
	}
}

func (n *notifier) BuildCreatedEvent(ctx context.Context, empl Employee) (events.NotificationEvent, error) {
	vars := map[string]string{
		"employeeName": empl.FirstName,
		"department":   string(empl.Department),
		"designation":  string(empl.Designation),
		"salary":       empl.Salary.StringFixed(2),
		"status":       string(empl.Status),
	}

	html, err := n.renderer.Render(notification.EmployeeCreatedTemplate, vars)
	if err != nil {
		contextutil.GetLogger(ctx, n.logger).Error("render employee created template failed",
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return events.NotificationEvent{}, employeeerrors.NotificationRender(err)
	}

	return events.NewEmailNotification(
		n.cfg.SourceService,
		n.cfg.Recipient,
		n.cfg.Subject,
		html,
		true,
	), nil
}

// Dispatch keys the message by event id, not employee id.
func (n *notifier) Dispatch(ctx context.Context, event events.NotificationEvent) error {
	eventID := event.Metadata.EventID

	if err := n.publisher.Publish(ctx, n.cfg.Topic, eventID, event); err != nil {
		metrics.NotificationDispatches.WithLabelValues(n.cfg.Topic, metrics.ResultFailure).Inc()
		contextutil.GetLogger(ctx, n.logger).Error("dispatch notification event failed",
			zap.String("event_id", eventID),
			zap.String("topic", n.cfg.Topic),
			zap.Error(err),
		)
		return employeeerrors.NotificationPublish(err)
	}

	metrics.NotificationDispatches.WithLabelValues(n.cfg.Topic, metrics.ResultSuccess).Inc()
	contextutil.GetLogger(ctx, n.logger).Info("email notification event sent",
		zap.String("event_id", eventID),
		zap.String("topic", n.cfg.Topic),
	)
	return nil
}

package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"candy-bianca-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// FinishJob asks the pool to notify the subscribers of one washer.
type FinishJob struct {
	DeviceID string
	Message  string
}

// Payload is the JSON body pushed to the browser.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan FinishJob
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan FinishJob, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("Worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForDevice(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("Worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a job for the workers. The job is dropped when the queue
// is full so callers on the poll path never block.
func (wp *WorkerPool) Dispatch(job FinishJob) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.logger.Warn("Notification queue full, job dropped",
			zap.String("device", job.DeviceID),
			zap.Int("queue_size", cap(wp.jobs)))
		return false
	}
}

// Finished queues a push for the device's subscribers.
func (wp *WorkerPool) Finished(deviceID, message string) {
	wp.Dispatch(FinishJob{DeviceID: deviceID, Message: message})
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan FinishJob {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForDevice(ctx context.Context, job FinishJob) {
	log := wp.logger.With(zap.String("device", job.DeviceID))

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_device_mapping sdm ON sdm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sdm.device_id = ?", job.DeviceID).
		Find(&subscriptions).Error
	if err != nil {
		log.Error("Error fetching subscriptions", zap.Error(err))
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	title := job.DeviceID
	var device model.Device
	if err := wp.db.WithContext(ctx).
		Select("name").
		Where("id = ?", job.DeviceID).
		First(&device).Error; err != nil {
		log.Warn("Error fetching device", zap.Error(err))
	} else if device.Name != "" {
		title = device.Name
	}

	payload, err := json.Marshal(Payload{Title: title, Body: job.Message})
	if err != nil {
		log.Error("Error encoding payload", zap.Error(err))
		return
	}

	log.Info("Sending notifications", zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("Error sending notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("Subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.logger.Error("Failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}

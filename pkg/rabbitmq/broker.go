package rabbitmq

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/streadway/amqp"
	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/models"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
)

// RabbitMQ publishes asset status updates to the status queue.
type RabbitMQ struct {
	Queue   amqp.Queue
	Channel *amqp.Channel
	Logger  logger.Logger
	Cfg     config.Config
}

// New - declares the status queue and returns the broker handle
func New(cfg *config.Config, log logger.Logger) (*RabbitMQ, error) {
	log.Info(
		"Dialing to rabbitmq host with",
		logger.String("host", cfg.RabbitMqHost),
		logger.String("user", cfg.RabbitMqUser),
	)

	conn, err := amqp.Dial(dialURL(cfg))
	if err != nil {
		log.Error("Error while connecting to rabbitmq", logger.Error(err))
		return nil, err
	}

	log.Info("RabbitMQ connection is created...")

	channel, err := conn.Channel()
	if err != nil {
		log.Error("Error while connecting to channel", logger.Error(err))
		return nil, err
	}

	log.Info("RabbitMQ channel is created...")

	queue, err := channel.QueueDeclare(
		cfg.StatusQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("Error while declaring queue", logger.Error(err))
		return nil, err
	}

	return &RabbitMQ{
		Queue:   queue,
		Channel: channel,
		Logger:  log,
		Cfg:     *cfg,
	}, nil
}

// PublishStatusUpdate sends one asset status transition to the queue.
func (r *RabbitMQ) PublishStatusUpdate(update *models.AssetStatusUpdate) error {
	jsonByte, err := json.Marshal(update)
	if err != nil {
		r.Logger.Error("Error while marshalling status update", logger.Error(err))
		return err
	}

	err = r.publish(jsonByte)
	if err != nil {
		if strings.Contains(err.Error(), "channel/connection is not open") {
			if rerr := r.Reconnect(); rerr != nil {
				return rerr
			}
			err = r.publish(jsonByte)
		}
		if err != nil {
			r.Logger.Error("Error while publishing the message", logger.Error(err))
			return err
		}
	}

	return nil
}

func (r *RabbitMQ) publish(body []byte) error {
	return r.Channel.Publish(
		"",
		r.Queue.Name,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Reconnect re-dials and re-declares the status queue after a dropped
// connection.
func (r *RabbitMQ) Reconnect() error {
	r.Logger.Info("reconnecting to rabbitmq")

	conn, err := amqp.Dial(dialURL(&r.Cfg))
	if err != nil {
		r.Logger.Error("Error while connecting to rabbitmq", logger.Error(err))
		return err
	}

	r.Channel, err = conn.Channel()
	if err != nil {
		r.Logger.Error("Error while connecting to channel", logger.Error(err))
		return err
	}

	r.Queue, err = r.Channel.QueueDeclare(
		r.Cfg.StatusQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		r.Logger.Error("Error while declaring queue", logger.Error(err))
		return err
	}

	return nil
}

func dialURL(cfg *config.Config) string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		cfg.RabbitMqUser,
		cfg.RabbitMqPassword,
		cfg.RabbitMqHost,
		cfg.RabbitMqPort,
	)
}

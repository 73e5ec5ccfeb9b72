package kafka

import (
	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/events"
)

// ElementEventTopic is the Kafka topic element change events are published to.
const ElementEventTopic = "element-event"

// AsyncProducer is an events.Publisher implementation for Kafka queues.
type AsyncProducer struct {
	producer       sarama.AsyncProducer
	logger         *zap.Logger
	reconnect      bool
	successActions []string
	failureActions []string
}

// Publish implements the events.Publisher interface.
func (ap *AsyncProducer) Publish(e events.Event) {

	publishEvent := false
	if e.IsSuccessful() {
		publishEvent = publishEvent || stringInSlice("*", ap.successActions)
		publishEvent = publishEvent || stringInSlice(e.EventAction(), ap.successActions)
	} else {
		publishEvent = publishEvent || stringInSlice("*", ap.failureActions)
		publishEvent = publishEvent || stringInSlice(e.EventAction(), ap.failureActions)
	}
	if !publishEvent {
		return
	}

	msg := sarama.ProducerMessage{
		Topic: ElementEventTopic,
		Value: sarama.ByteEncoder(e.Yield()),
	}

	ap.producer.Input() <- &msg
}

func stringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// Reconnect implements the events.Publisher interface.
func (ap *AsyncProducer) Reconnect() bool {
	return ap.reconnect
}

// Opt sets an option on an AsyncProducer.
type Opt func(*AsyncProducer)

// WithLogger sets a custom logger on an AsyncProducer.
func WithLogger(logger *zap.Logger) Opt {
	return func(ap *AsyncProducer) {
		ap.logger = logger
	}
}

// WithPublishActions sets success and failure actions that should be published on an AsyncProducer.
func WithPublishActions(successActions []string, failureActions []string) Opt {
	return func(ap *AsyncProducer) {
		ap.successActions = successActions
		ap.failureActions = failureActions
	}
}

// NewAsyncProducer constructs an AsyncProducer with internal defaults and supplied options.
func NewAsyncProducer(brokerList []string, opts ...Opt) (*AsyncProducer, error) {

	producer, err := sarama.NewAsyncProducer(brokerList, nil)
	if err != nil {
		return nil, err
	}
	ap := AsyncProducer{producer: producer, reconnect: false}
	defaults(&ap)
	for _, opt := range opts {
		opt(&ap)
	}
	ap.start()

	return &ap, nil
}

func defaults(ap *AsyncProducer) {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	ap.logger = logger
}

func (ap *AsyncProducer) start() {

	go func() {
		defer func() { ap.reconnect = true }()
		for err := range ap.producer.Errors() {
			ap.logger.Error("kafka error", zap.Error(err))
			if requiresReconnect(err) {
				ap.reconnect = true
			}
		}
	}()

}

func requiresReconnect(err interface{}) bool {

	// From sarama docs: ProducerError is the type of error generated when the producer
	// fails to deliver a message. It contains the original ProducerMessage as well as
	// the actual error value.
	pe, ok := err.(*sarama.ProducerError)
	if !ok {
		return false
	}

	if v, ok := pe.Err.(sarama.KError); ok {
		switch v {
		case sarama.ErrUnknown,
			sarama.ErrClosedClient,
			sarama.ErrOffsetOutOfRange,
			sarama.ErrInvalidMessage,
			sarama.ErrUnknownTopicOrPartition,
			sarama.ErrInvalidMessageSize,
			sarama.ErrLeaderNotAvailable,
			sarama.ErrNotLeaderForPartition,
			sarama.ErrBrokerNotAvailable,
			sarama.ErrMessageSizeTooLarge,
			sarama.ErrStaleControllerEpochCode,
			sarama.ErrOffsetMetadataTooLarge,
			sarama.ErrNetworkException,
			sarama.ErrInvalidTopic,
			sarama.ErrMessageSetSizeTooLarge,
			sarama.ErrNotEnoughReplicas,
			sarama.ErrNotEnoughReplicasAfterAppend,
			sarama.ErrInvalidRequiredAcks,
			sarama.ErrInconsistentGroupProtocol,
			sarama.ErrInvalidGroupId,
			sarama.ErrUnknownMemberId,
			sarama.ErrRebalanceInProgress,
			sarama.ErrInvalidCommitOffsetSize,
			sarama.ErrTopicAuthorizationFailed,
			sarama.ErrGroupAuthorizationFailed,
			sarama.ErrClusterAuthorizationFailed,
			sarama.ErrInvalidTimestamp,
			sarama.ErrUnsupportedSASLMechanism,
			sarama.ErrIllegalSASLState,
			sarama.ErrUnsupportedVersion:
			return true
		case sarama.ErrInvalidSessionTimeout,
			sarama.ErrIllegalGeneration,
			sarama.ErrOffsetsLoadInProgress,
			sarama.ErrConsumerCoordinatorNotAvailable,
			sarama.ErrNotCoordinatorForConsumer,
			sarama.ErrRequestTimedOut,
			sarama.ErrReplicaNotAvailable,
			sarama.ErrNoError:
			return false

		}
	}

	return false
}

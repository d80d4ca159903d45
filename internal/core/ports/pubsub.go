package ports

// AnyTopic subscribes a client to every published topic.
const AnyTopic = "*"

// Subscription is the info of a client registered on the pubsub service.
type Subscription interface {
	Topic() string
	Id() string
	NotifyAt() string
}

// PubSub defines the methods of the service used to notify external
// consumers about engine events. Publication is best-effort and always
// happens after the originating transaction has been committed.
type PubSub interface {
	// Subscribe adds a new subscription for the requested topic and returns
	// its id.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns all clients subscribed for a topic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish delivers a message to all clients subscribed for the topic.
	Publish(topic, message string) error
}

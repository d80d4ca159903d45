package webhookpubsub

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/rfq-network/rfqd/internal/core/ports"
	"github.com/rfq-network/rfqd/pkg/circuitbreaker"
)

const requestTimeout = 5 * time.Second

type webhook struct {
	id       string
	topic    string
	endpoint string
	secret   string
}

func (w webhook) Topic() string    { return w.topic }
func (w webhook) Id() string       { return w.id }
func (w webhook) NotifyAt() string { return w.endpoint }

type webhookService struct {
	lock       sync.RWMutex
	hooks      map[string]webhook
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a PubSub delivering engine events as HTTP
// POSTs to the registered endpoints. Calls towards a flapping endpoint are
// shed by a circuit breaker instead of piling up.
func NewWebhookPubSubService() ports.PubSub {
	return &webhookService{
		hooks:      make(map[string]webhook),
		httpClient: &http.Client{Timeout: requestTimeout},
		cb:         circuitbreaker.NewCircuitBreaker("webhook"),
	}
}

func (ws *webhookService) Subscribe(topic, endpoint, secret string) (string, error) {
	if topic == "" {
		return "", fmt.Errorf("missing topic")
	}
	if endpoint == "" {
		return "", fmt.Errorf("missing endpoint")
	}

	hook := webhook{
		id:       uuid.New().String(),
		topic:    topic,
		endpoint: endpoint,
		secret:   secret,
	}

	ws.lock.Lock()
	defer ws.lock.Unlock()

	ws.hooks[hook.id] = hook
	return hook.id, nil
}

func (ws *webhookService) Unsubscribe(_, id string) error {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	if _, ok := ws.hooks[id]; !ok {
		return fmt.Errorf("subscription %s not found", id)
	}
	delete(ws.hooks, id)
	return nil
}

func (ws *webhookService) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	ws.lock.RLock()
	defer ws.lock.RUnlock()

	subs := make([]ports.Subscription, 0)
	for _, hook := range ws.hooks {
		if hook.topic == topic || hook.topic == ports.AnyTopic {
			subs = append(subs, hook)
		}
	}
	return subs
}

func (ws *webhookService) Publish(topic, message string) error {
	ws.lock.RLock()
	hooks := make([]webhook, 0)
	for _, hook := range ws.hooks {
		if hook.topic == topic || hook.topic == ports.AnyTopic {
			hooks = append(hooks, hook)
		}
	}
	ws.lock.RUnlock()

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.invoke(hook, message) })
	}
	return eg.Wait()
}

func (ws *webhookService) invoke(hook webhook, message string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequest(
			http.MethodPost, hook.endpoint, bytes.NewBufferString(message),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if hook.secret != "" {
			req.Header.Set("Authorization", "Bearer "+hook.secret)
		}

		resp, err := ws.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf(
				"endpoint %s replied with status %d", hook.endpoint, resp.StatusCode,
			)
		}
		return nil, nil
	})
	return err
}

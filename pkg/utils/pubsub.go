package utils

import (
	"github.com/sasha-s/go-deadlock"
)

// SUBSCRIBER_BUFFER is how many values a subscriber may fall behind before it
// is marked slow.
const SUBSCRIBER_BUFFER = 16

// Topic fans values out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the value and is marked slow.
type Topic[T any] struct {
	subscribers map[*Subscriber[T]]struct{}
	mutex       deadlock.Mutex
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subscribers: make(map[*Subscriber[T]]struct{}),
	}
}

func (t *Topic[T]) Publish(value T) {
	t.mutex.Lock()
	for subscriber := range t.subscribers {
		select {
		case subscriber.channel <- value:
		default:
			if !subscriber.isSlow {
				subscriber.isSlow = true
				close(subscriber.slow)
			}
		}
	}
	t.mutex.Unlock()
}

// Subscribers returns the number of active subscribers.
func (t *Topic[T]) Subscribers() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.subscribers)
}

type Subscriber[T any] struct {
	channel chan T
	slow    chan struct{}
	isSlow  bool
	topic   *Topic[T]
}

func (t *Topic[T]) Subscribe() *Subscriber[T] {
	subscriber := &Subscriber[T]{
		channel: make(chan T, SUBSCRIBER_BUFFER),
		slow:    make(chan struct{}),
		topic:   t,
	}

	t.mutex.Lock()
	t.subscribers[subscriber] = struct{}{}
	t.mutex.Unlock()

	return subscriber
}

func (s *Subscriber[T]) Recv() <-chan T {
	return s.channel
}

// Slow is closed the first time a value could not be delivered.
func (s *Subscriber[T]) Slow() <-chan struct{} {
	return s.slow
}

func (s *Subscriber[T]) Done() {
	topic := s.topic
	topic.mutex.Lock()
	delete(topic.subscribers, s)
	topic.mutex.Unlock()
}

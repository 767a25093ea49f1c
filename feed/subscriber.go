package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// State 每个集合订阅的状态机：
// unsubscribed → subscribing → subscribed → unsubscribed（主动退订）
//                                         → disconnected（底层频道挂了）
// disconnected 是显式状态，调用方看到后自己决定要不要重订，不做自动重连。
type State int

const (
	StateUnsubscribed State = iota
	StateSubscribing
	StateSubscribed
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unsubscribed"
	}
}

// Handler 在订阅者自己的 goroutine 上被调；刷新逻辑必须幂等（同一个变更
// 可能收到两次）。
type Handler func(Event)

// openFunc 打开某个频道，返回事件流和关闭函数。默认实现走 redis pub/sub，
// 测试里换成假流。事件流被关闭（且不是 stop 引起的）视为断连。
type openFunc func(ctx context.Context, channel string) (<-chan Event, func(), error)

type tableSub struct {
	state State
	stop  func()
}

// Subscriber 管理一个客户端会话的全部集合订阅。
// 同一集合重复订阅会先拆掉旧的，保证最多一个活跃订阅。
type Subscriber struct {
	open openFunc

	mu   sync.Mutex
	subs map[string]*tableSub
}

func NewSubscriber(rdb *redis.Client) *Subscriber {
	return &Subscriber{
		open: redisOpen(rdb),
		subs: make(map[string]*tableSub),
	}
}

func newSubscriberWithOpen(open openFunc) *Subscriber {
	return &Subscriber{open: open, subs: make(map[string]*tableSub)}
}

func redisOpen(rdb *redis.Client) openFunc {
	return func(ctx context.Context, channel string) (<-chan Event, func(), error) {
		ps := rdb.Subscribe(ctx, channel)
		// 等订阅确认，拿不到就直接报错
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return nil, nil, err
		}
		out := make(chan Event)
		go func() {
			defer close(out)
			for msg := range ps.Channel() {
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				out <- ev
			}
		}()
		stop := func() { _ = ps.Close() }
		return out, stop, nil
	}
}

// Subscribe 订阅一个集合。已有订阅先退掉再建新的。
func (s *Subscriber) Subscribe(ctx context.Context, collection string, h Handler) error {
	s.Unsubscribe(collection)

	s.mu.Lock()
	sub := &tableSub{state: StateSubscribing}
	s.subs[collection] = sub
	s.mu.Unlock()

	events, stop, err := s.open(ctx, channelFor(collection))
	if err != nil {
		s.mu.Lock()
		delete(s.subs, collection)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	// 等 open 的间隙里可能被退订了
	if s.subs[collection] != sub {
		s.mu.Unlock()
		stop()
		return nil
	}
	sub.state = StateSubscribed
	sub.stop = stop
	s.mu.Unlock()

	go func() {
		for ev := range events {
			h(ev)
		}
		// 流关闭：主动退订的话状态已经被清掉，否则标记断连
		s.mu.Lock()
		if s.subs[collection] == sub {
			sub.state = StateDisconnected
			sub.stop = nil
		}
		s.mu.Unlock()
	}()
	return nil
}

// Unsubscribe 幂等：没订阅也能安全调用。
func (s *Subscriber) Unsubscribe(collection string) {
	s.mu.Lock()
	sub, ok := s.subs[collection]
	if ok {
		delete(s.subs, collection)
	}
	s.mu.Unlock()
	if ok && sub.stop != nil {
		sub.stop()
	}
}

// UnsubscribeAll 同样幂等。
func (s *Subscriber) UnsubscribeAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]*tableSub)
	s.mu.Unlock()
	for _, sub := range subs {
		if sub.stop != nil {
			sub.stop()
		}
	}
}

// StateOf 当前订阅状态。
func (s *Subscriber) StateOf(collection string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[collection]; ok {
		return sub.state
	}
	return StateUnsubscribed
}

// Active 活跃（subscribed）集合数，测试与诊断用。
func (s *Subscriber) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs {
		if sub.state == StateSubscribed {
			n++
		}
	}
	return n
}

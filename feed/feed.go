// Package feed is the change-notification layer: every successful mutation is
// published on a per-collection Redis channel and fanned out to subscribed
// clients. Delivery is at-least-once; consumers refresh idempotently instead
// of applying deltas.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "mag:changes:"

// Action 变更类型。payload 不带行数据，订阅方收到后重新拉取。
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event 单条变更通知。
type Event struct {
	Collection string    `json:"collection"`
	Action     Action    `json:"action"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
}

func channelFor(collection string) string { return channelPrefix + collection }

// Publisher 把变更事件发到对应集合的频道。发布失败只记日志语义上不回滚——
// 订阅端本来就要容忍丢失后的主动刷新。
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

func (p *Publisher) Publish(ctx context.Context, collection string, action Action, id string) error {
	b, err := json.Marshal(Event{
		Collection: collection,
		Action:     action,
		ID:         id,
		At:         time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, channelFor(collection), b).Err()
}
